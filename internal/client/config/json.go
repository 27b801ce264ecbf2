package config

import (
	"os"

	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/devnotes/internal/flagx"
	"github.com/dmitrijs2005/devnotes/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerBaseURL  string         `json:"server_base_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	AccessToken    string         `json:"access_token"`
	LogLevel       string         `json:"log_level"`
	PreviewStyle   string         `json:"preview_style"`
}

// parseJson overlays cfg with the file named by -c/-config in args. Without
// such a flag nothing happens; keys missing from the file keep their values.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.AccessToken != "" {
		cfg.AccessToken = jc.AccessToken
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.PreviewStyle != "" {
		cfg.PreviewStyle = jc.PreviewStyle
	}
	return nil
}
