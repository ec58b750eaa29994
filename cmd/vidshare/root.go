package main

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vidshare/client/internal/app"
	"github.com/vidshare/client/internal/config"
	"github.com/vidshare/client/internal/redirect"
	"github.com/vidshare/client/pkg/ctxlogger"
)

const (
	apiURLKey         = "api-url"
	wsURLKey          = "ws-url"
	logLevelKey       = "log-level"
	reconnectDelayKey = "reconnect-delay"
	credentialsKey    = "credentials-file"
)

var rootCmd = &cobra.Command{
	Use:           "vidshare",
	Short:         "Command-line client for the vidshare video platform",
	Long:          "Browse and upload videos, follow local trending, and run synchronized watch-party rooms from the terminal.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// every log line of one invocation carries the same id
		cmd.SetContext(ctxlogger.AppendCtx(cmd.Context(),
			slog.String("invocation_id", uuid.NewString()),
			slog.String("command", cmd.Name()),
		))
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String(apiURLKey, "http://localhost:8080", "Base URL of the platform API")
	pf.String(wsURLKey, "", "Websocket endpoint (defaults to the API URL with ws scheme and /ws path)")
	pf.String(logLevelKey, "WARN", "Logging level")
	pf.Duration(reconnectDelayKey, 2*time.Second, "Delay between websocket reconnect attempts")
	pf.String(credentialsKey, "", "Path of the credentials file")

	viper.BindPFlags(pf)
	viper.SetEnvPrefix("VIDSHARE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func loadConfig() (*config.Config, error) {
	cfg := &config.Config{
		APIURL:          viper.GetString(apiURLKey),
		WSURL:           viper.GetString(wsURLKey),
		LogLevel:        viper.GetString(logLevelKey),
		ReconnectDelay:  viper.GetDuration(reconnectDelayKey),
		CredentialsPath: viper.GetString(credentialsKey),
	}
	if cfg.WSURL == "" {
		cfg.WSURL = config.DeriveWSURL(cfg.APIURL)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func newApp(nav redirect.Navigator) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	return app.New(cfg, nav)
}
