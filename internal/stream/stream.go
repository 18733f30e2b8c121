// Package stream ingests push-shape change records from a live
// recentchange feed: EventStreams SSE over http(s), or a WebSocket relay
// of the same feed over ws(s).
package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"wikinotify/internal/wiki"
)

// ssePrefix marks JSON payload lines in an SSE body.
var ssePrefix = []byte("data: ")

// Sender delivers one normalized event to the destination channel.
type Sender interface {
	Send(ctx context.Context, ev wiki.ChangeEvent) error
}

// Listener subscribes to a live stream and forwards each decoded change.
// Undecodable or malformed stream lines are skipped (stream noise is
// expected); delivery failures are returned and terminate the process,
// same policy as the polling watcher.
type Listener struct {
	URL       string
	Sender    Sender
	Limiter   *rate.Limiter // send throttle; streams can burst
	Log       zerolog.Logger
	UserAgent string

	// lastSeen dedups replayed events by identity, same strict-greater
	// rule as the polling cursor. Zero until the first delivery.
	lastSeen int64
}

// Run connects to the stream URL and forwards events until ctx is
// cancelled or the transport fails. The transport is picked by scheme.
func (l *Listener) Run(ctx context.Context) error {
	u, err := url.Parse(l.URL)
	if err != nil {
		return fmt.Errorf("stream url %q: %w", l.URL, err)
	}
	switch u.Scheme {
	case "ws", "wss":
		return l.runWebSocket(ctx)
	default:
		return l.runSSE(ctx)
	}
}

func (l *Listener) runSSE(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return fmt.Errorf("connect stream: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	if l.UserAgent != "" {
		req.Header.Set("User-Agent", l.UserAgent)
	}

	// No client timeout: the response body is a long-lived stream.
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("connect stream: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("connect stream: status %d %s", resp.StatusCode, resp.Status)
	}
	l.Log.Info().Str("url", l.URL).Msg("connected to event stream")

	scanner := bufio.NewScanner(resp.Body)
	const maxLine = 1024 * 1024
	scanner.Buffer(make([]byte, maxLine), maxLine)

	for scanner.Scan() {
		line := scanner.Bytes()
		if !bytes.HasPrefix(line, ssePrefix) {
			continue
		}
		if err := l.handle(ctx, line[len(ssePrefix):]); err != nil {
			return err
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return fmt.Errorf("stream %s closed by server", l.URL)
}

func (l *Listener) runWebSocket(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, l.URL, nil)
	if err != nil {
		return fmt.Errorf("connect stream: %w", err)
	}
	defer conn.Close()
	l.Log.Info().Str("url", l.URL).Msg("connected to websocket stream")

	// Unblock the read loop when the process shuts down.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read stream: %w", err)
		}
		if err := l.handle(ctx, payload); err != nil {
			return err
		}
	}
}

func (l *Listener) handle(ctx context.Context, payload []byte) error {
	var sc wiki.StreamChange
	if err := json.Unmarshal(payload, &sc); err != nil {
		l.Log.Warn().Err(err).Msg("skipping undecodable stream event")
		return nil
	}
	if sc.ID != 0 && sc.ID <= l.lastSeen {
		return nil
	}

	ev, err := wiki.FromStreamChange(sc)
	if err != nil {
		l.Log.Warn().Err(err).Msg("skipping malformed stream event")
		return nil
	}

	if l.Limiter != nil {
		if err := l.Limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if err := l.Sender.Send(ctx, ev); err != nil {
		return fmt.Errorf("forward change %d: %w", ev.ID, err)
	}
	if ev.ID > l.lastSeen {
		l.lastSeen = ev.ID
	}
	return nil
}
