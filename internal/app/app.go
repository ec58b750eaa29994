package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/vidshare/client/internal/api"
	"github.com/vidshare/client/internal/config"
	"github.com/vidshare/client/internal/credstore"
	"github.com/vidshare/client/internal/identity"
	"github.com/vidshare/client/internal/redirect"
	"github.com/vidshare/client/internal/session"
	"github.com/vidshare/client/internal/streamchat"
	"github.com/vidshare/client/pkg/ctxlogger"
	"github.com/vidshare/client/pkg/stompws"
)

// App wires the client together: credential store, identity decoding, REST
// client, room session controller and the process-lifetime redirect
// listener.
type App struct {
	Logger      *slog.Logger
	Credentials *credstore.Store
	Identity    *identity.Provider
	API         *api.Client
	Session     *session.Controller
	Chat        *streamchat.Service
	Redirect    *redirect.Listener
}

func New(cfg *config.Config, nav redirect.Navigator) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}),
	}
	logger := slog.New(h)

	store, err := credstore.New(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	identityProvider := identity.NewProvider(store)
	apiClient := api.NewClient(cfg.APIURL, store, logger)

	transportFactory := session.StompTransportFactory(stompws.Config{
		URL:            cfg.WSURL,
		ReconnectDelay: cfg.ReconnectDelay,
		Token:          store.Token,
		Logger:         logger,
	})
	controller := session.NewController(transportFactory, logger)

	// chat rides the same websocket transport contract as the room session
	chat := streamchat.NewService(func(onConnect func()) streamchat.Transport {
		return transportFactory(onConnect)
	}, logger)

	return &App{
		Logger:      logger,
		Credentials: store,
		Identity:    identityProvider,
		API:         apiClient,
		Session:     controller,
		Chat:        chat,
		Redirect:    redirect.NewListener(controller, identityProvider, nav, logger),
	}, nil
}
