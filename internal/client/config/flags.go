package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/devnotes/internal/flagx"
)

// parseFlags overlays cfg with the client's flags found in args. Flags owned
// by other components (-c, -config) are filtered out with flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-k", "-l", "-s"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the note store")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.AccessToken, "k", cfg.AccessToken, "bearer access token")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.PreviewStyle, "s", cfg.PreviewStyle, "markdown preview style")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
