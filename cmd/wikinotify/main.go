// Command wikinotify watches a MediaWiki recentchanges feed and relays
// each new change to a configured Matrix room or Signal group.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"wikinotify/internal/channel"
	"wikinotify/internal/config"
	"wikinotify/internal/logging"
	"wikinotify/internal/stream"
	"wikinotify/internal/watcher"
	"wikinotify/internal/wiki"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./config.toml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot := logging.New("info")
		boot.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logging.New(cfg.LogLevel)

	ch, err := channel.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid channel configuration")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := ch.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("channel connect failed")
	}
	defer ch.Close()

	errs := make(chan error, 2)
	if cfg.StreamURL != "" {
		li := &stream.Listener{
			URL:       cfg.StreamURL,
			Sender:    ch,
			Limiter:   rate.NewLimiter(rate.Limit(cfg.SendRate), cfg.SendRate),
			Log:       log,
			UserAgent: wiki.UserAgent,
		}
		log.Info().Str("url", cfg.StreamURL).Msg("starting in stream mode")
		go func() { errs <- li.Run(ctx) }()
	} else {
		w := &watcher.Watcher{
			Fetcher:  wiki.NewClient(cfg.BaseURL, cfg.APIPath),
			Sender:   ch,
			BaseURL:  cfg.BaseURL,
			Interval: time.Duration(cfg.Timeout) * time.Second,
			Log:      log,
		}
		log.Info().Str("wiki", cfg.BaseURL).Int("interval_s", cfg.Timeout).Msg("starting in polling mode")
		go func() { errs <- w.Run(ctx) }()
	}
	go func() { errs <- ch.Run(ctx) }()

	// No retries anywhere: the first failure from either loop ends the
	// process, and the supervising service manager restarts it.
	select {
	case err := <-errs:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("terminating")
			ch.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
	}
}
