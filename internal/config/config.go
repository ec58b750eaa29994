package config

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	// APIURL is the base URL of the platform REST API.
	APIURL string `json:"api_url"`
	// WSURL is the websocket endpoint for the watch-party protocol.
	WSURL string `json:"ws_url"`
	// LogLevel is a slog level name.
	LogLevel string `json:"log_level"`
	// ReconnectDelay is the fixed wait between transport reconnects.
	ReconnectDelay time.Duration `json:"reconnect_delay"`
	// CredentialsPath overrides the credential store location.
	CredentialsPath string `json:"-"`
}

func (cfg *Config) Validate() error {
	if cfg.APIURL == "" {
		return fmt.Errorf("api url must be set")
	}
	if cfg.WSURL == "" {
		return fmt.Errorf("ws url must be set")
	}
	if cfg.ReconnectDelay <= 0 {
		return fmt.Errorf("reconnect delay must be positive")
	}
	return nil
}

// DeriveWSURL maps the API base URL to the default websocket endpoint:
// scheme swapped to ws(s), path /ws.
func DeriveWSURL(apiURL string) string {
	base := strings.TrimRight(apiURL, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}

	return base + "/ws"
}
