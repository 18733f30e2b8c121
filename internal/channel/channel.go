// Package channel abstracts the destination a change event is delivered
// to. Each variant owns its connection lifecycle, markup dialect and
// transport; the watcher drives all of them through the same contract.
package channel

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"wikinotify/internal/config"
	"wikinotify/internal/wiki"
)

// Channel is the delivery contract. Send must propagate transport
// failures to the caller; the watcher's fatal-on-error policy depends on
// errors never being swallowed here.
type Channel interface {
	// Connect establishes the transport session (login, client setup).
	Connect(ctx context.Context) error
	// Send renders the event for this destination and delivers it. Safe to
	// call concurrently with Run.
	Send(ctx context.Context, ev wiki.ChangeEvent) error
	// Run drives the channel's own receive loop, blocking until ctx is
	// cancelled or the transport fails unrecoverably. Variants without a
	// receive loop simply block on ctx.
	Run(ctx context.Context) error
	// Close releases the transport session.
	Close() error
}

// ErrUnsupportedType reports a config naming an unknown channel variant.
var ErrUnsupportedType = errors.New("unsupported channel type")

// New builds the channel variant selected by cfg.Type. No network traffic
// happens here; unknown types fail before any connection is attempted.
func New(cfg *config.Config, log zerolog.Logger) (Channel, error) {
	switch cfg.Type {
	case "matrix":
		return NewMatrix(cfg.Server, cfg.MXID, cfg.Password, cfg.Room, log), nil
	case "signal":
		return NewSignal(cfg.SignalAPIURL, cfg.SignalSourceNumber, cfg.SignalTargetGroup, log), nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: matrix, signal)", ErrUnsupportedType, cfg.Type)
	}
}

// DeliveryError reports a failed send: a transport error or a non-success
// response, with the response body when there is one.
type DeliveryError struct {
	Channel string
	Status  int // HTTP status, 0 when not applicable
	Body    string
	Err     error
}

func (e *DeliveryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s delivery failed: status %d: %s", e.Channel, e.Status, e.Body)
	}
	return fmt.Sprintf("%s delivery failed: %v", e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
