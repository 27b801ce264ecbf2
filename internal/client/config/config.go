package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the DevNotes terminal client.
//
// Fields:
//   - ServerBaseURL: base URL of the note store HTTP API.
//   - RequestTimeout: per-request timeout of the note store client.
//   - AccessToken: bearer token sent to the note store, if any.
//   - LogLevel: debug, info, warn or error.
//   - PreviewStyle: glamour style used to render markdown previews.
type Config struct {
	ServerBaseURL  string
	RequestTimeout time.Duration
	AccessToken    string
	LogLevel       string
	PreviewStyle   string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:8787"
	c.RequestTimeout = 10 * time.Second
	c.AccessToken = ""
	c.LogLevel = "warn"
	c.PreviewStyle = "dark"
}

// LoadConfig applies defaults, then the JSON file named by -c/-config (if
// any), then the remaining flags in args (os.Args[1:]). Later sources take
// precedence.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}
