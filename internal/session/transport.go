package session

import (
	"context"

	"github.com/vidshare/client/pkg/stompws"
)

// Transport is the message channel the controller speaks through. It must
// reconnect on its own and fire the connected callback after every
// successful (re)connect, at which point prior subscriptions are gone.
type Transport interface {
	Connect(ctx context.Context)
	Subscribe(destination string, handler func(body []byte)) error
	Publish(destination string, body []byte) error
	Connected() bool
	Close()
}

// TransportFactory builds a fresh transport for one room connection.
// The controller creates one per Connect call and closes it on teardown.
type TransportFactory func(onConnect func()) Transport

// StompTransportFactory adapts the STOMP websocket client to the
// controller's transport contract.
func StompTransportFactory(cfg stompws.Config) TransportFactory {
	return func(onConnect func()) Transport {
		clientCfg := cfg
		clientCfg.OnConnect = onConnect
		return stompTransport{stompws.NewClient(clientCfg)}
	}
}

type stompTransport struct {
	*stompws.Client
}

func (t stompTransport) Subscribe(destination string, handler func(body []byte)) error {
	_, err := t.Client.Subscribe(destination, handler)
	return err
}
