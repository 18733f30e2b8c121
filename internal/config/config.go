package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all configuration for the wikinotify relay. Keys are flat to
// stay compatible with the recognized config shape: one file describes one
// wiki and one destination channel.
type Config struct {
	// Channel discriminator: "matrix" or "signal".
	Type string `toml:"type"`

	// Wiki feed.
	BaseURL string `toml:"baseurl"`
	APIPath string `toml:"api_path"`
	Timeout int    `toml:"timeout"` // poll interval, seconds

	// Optional live stream intake. When set, the process subscribes to this
	// URL (SSE over http(s) or a ws(s) relay) instead of polling the API.
	StreamURL string `toml:"stream_url"`
	SendRate  int    `toml:"send_rate"` // stream mode send throttle, events/sec

	// Matrix channel.
	Server   string `toml:"server"`
	MXID     string `toml:"mxid"`
	Password string `toml:"password"`
	Room     string `toml:"room"`

	// Signal channel (signal-cli REST API).
	SignalAPIURL       string `toml:"signal_api_url"`
	SignalSourceNumber string `toml:"signal_source_number"`
	SignalTargetGroup  string `toml:"signal_target_group"`

	LogLevel string `toml:"log_level"`
}

func defaults() Config {
	return Config{
		Type:     "matrix",
		APIPath:  "/api.php",
		Timeout:  60,
		SendRate: 2,
		LogLevel: "info",
	}
}

// Load reads the TOML config file at path and validates it.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that required fields are set for the configured channel
// type. It does not reject unknown types; that is the channel factory's job
// so the error carries the full set of supported variants.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("baseurl is required")
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout < 1 {
		c.Timeout = 60
	}
	if c.SendRate < 1 {
		c.SendRate = 2
	}

	c.Type = strings.ToLower(c.Type)
	switch c.Type {
	case "matrix":
		if c.Server == "" || c.MXID == "" || c.Password == "" || c.Room == "" {
			return fmt.Errorf("matrix channel requires server, mxid, password and room")
		}
	case "signal":
		if c.SignalAPIURL == "" || c.SignalSourceNumber == "" || c.SignalTargetGroup == "" {
			return fmt.Errorf("signal channel requires signal_api_url, signal_source_number and signal_target_group")
		}
		c.SignalAPIURL = strings.TrimRight(c.SignalAPIURL, "/")
	}

	return nil
}
