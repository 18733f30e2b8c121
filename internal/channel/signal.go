package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"wikinotify/internal/render"
	"wikinotify/internal/wiki"
)

// Signal delivers change events to a group via the signal-cli REST API,
// rendered as styled text.
type Signal struct {
	apiURL string // no trailing slash
	source string // sending phone number
	group  string // target group id
	log    zerolog.Logger

	client *http.Client
}

// NewSignal creates an unconnected Signal channel.
func NewSignal(apiURL, source, group string, log zerolog.Logger) *Signal {
	return &Signal{apiURL: apiURL, source: source, group: group, log: log}
}

// Connect opens the HTTP session. There is no handshake with the REST API.
func (s *Signal) Connect(ctx context.Context) error {
	s.log.Info().Str("api", s.apiURL).Str("source", s.source).Str("group", s.group).
		Msg("using signal REST API")
	s.client = &http.Client{Timeout: 30 * time.Second}
	return nil
}

type signalSendRequest struct {
	Number     string   `json:"number"`
	Recipients []string `json:"recipients"`
	Message    string   `json:"message"`
	TextMode   string   `json:"text_mode"`
}

// Send posts the styled rendering to /v2/send. Anything but 201 is a
// delivery failure carrying the response body.
func (s *Signal) Send(ctx context.Context, ev wiki.ChangeEvent) error {
	if s.client == nil {
		return &DeliveryError{Channel: "signal", Err: fmt.Errorf("not connected")}
	}
	message := render.Message(ev, render.Styled)
	s.log.Info().Int64("rcid", ev.ID).Str("group", s.group).Msg("sending signal message")

	body, err := json.Marshal(signalSendRequest{
		Number:     s.source,
		Recipients: []string{s.group},
		Message:    message,
		TextMode:   "styled",
	})
	if err != nil {
		return &DeliveryError{Channel: "signal", Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/v2/send", bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Channel: "signal", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return &DeliveryError{Channel: "signal", Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusCreated {
		return &DeliveryError{Channel: "signal", Status: resp.StatusCode, Body: string(respBody)}
	}
	return nil
}

// Run has no inherent work: dispatch is driven entirely by the watcher.
// It blocks until the context is cancelled.
func (s *Signal) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// Close releases the HTTP session.
func (s *Signal) Close() error {
	if s.client != nil {
		s.client.CloseIdleConnections()
	}
	return nil
}
