// Package watcher implements the change-detection loop: prime the cursor
// from the newest feed record, then poll, deduplicate and forward.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"wikinotify/internal/wiki"
)

// ErrEmptyFeed reports a fetch that returned zero records. The cursor
// cannot be maintained without at least one record, so this is fatal.
var ErrEmptyFeed = errors.New("feed returned no records")

// Fetcher retrieves the current recentchanges window, newest first.
type Fetcher interface {
	RecentChanges(ctx context.Context) ([]wiki.RecentChange, error)
}

// Sender delivers one normalized event to the destination channel.
type Sender interface {
	Send(ctx context.Context, ev wiki.ChangeEvent) error
}

// Watcher polls the feed and forwards every record newer than the cursor.
// There is no retry and no backoff anywhere: the first error of any kind
// is returned and terminates the process. A supervisor restart re-primes
// to "latest"; changes missed during downtime are intentionally dropped.
type Watcher struct {
	Fetcher  Fetcher
	Sender   Sender
	BaseURL  string
	Interval time.Duration
	Log      zerolog.Logger

	// lastSeen is the cursor: the rcid of the newest record of the most
	// recent fetch. Touched only by Run's goroutine, never persisted.
	lastSeen int64
}

// Run primes the cursor, then polls until ctx is cancelled or an error
// occurs. The priming fetch delivers nothing.
func (w *Watcher) Run(ctx context.Context) error {
	rcs, err := w.Fetcher.RecentChanges(ctx)
	if err != nil {
		return fmt.Errorf("priming fetch: %w", err)
	}
	if len(rcs) == 0 {
		return fmt.Errorf("priming fetch: %w", ErrEmptyFeed)
	}
	w.lastSeen = rcs[0].RCID
	w.Log.Info().Int64("rcid", w.lastSeen).Msg("primed cursor from latest change")

	// Poll once right away; changes that land while priming should not
	// wait a full interval.
	if err := w.poll(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.poll(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *Watcher) poll(ctx context.Context) error {
	rcs, err := w.Fetcher.RecentChanges(ctx)
	if err != nil {
		return fmt.Errorf("poll fetch: %w", err)
	}
	if len(rcs) == 0 {
		return fmt.Errorf("poll fetch: %w", ErrEmptyFeed)
	}

	delivered := 0
	// The feed is newest first and deliveries keep that order; within one
	// cycle events therefore arrive in reverse chronological order.
	for _, rc := range rcs {
		if rc.RCID <= w.lastSeen {
			continue
		}
		ev, err := wiki.FromRecentChange(rc, w.BaseURL)
		if err != nil {
			return fmt.Errorf("normalize change %d: %w", rc.RCID, err)
		}
		if err := w.Sender.Send(ctx, ev); err != nil {
			return fmt.Errorf("forward change %d: %w", rc.RCID, err)
		}
		delivered++
	}

	if delivered == 0 {
		w.Log.Debug().Msg("no new changes")
	} else {
		w.Log.Info().Int("count", delivered).Msg("forwarded changes")
	}

	// The cursor tracks the newest record of the current fetch, not the
	// maximum ever seen.
	w.lastSeen = rcs[0].RCID
	return nil
}
