package stompws

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// broker is a minimal in-process STOMP endpoint for driving the client.
type broker struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu       sync.Mutex
	conns    map[*websocket.Conn]map[string]string
	connects []*Frame

	sends chan *Frame
}

func newBroker(t *testing.T) *broker {
	b := &broker{
		conns: make(map[*websocket.Conn]map[string]string),
		sends: make(chan *Frame, 16),
	}
	b.srv = httptest.NewServer(http.HandlerFunc(b.handle))
	t.Cleanup(b.srv.Close)

	return b
}

func (b *broker) wsURL() string {
	return "ws" + strings.TrimPrefix(b.srv.URL, "http")
}

func (b *broker) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	b.mu.Lock()
	b.conns[conn] = make(map[string]string)
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.conns, conn)
		b.mu.Unlock()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		frame, err := Unmarshal(data)
		if err != nil {
			continue
		}

		switch frame.Command {
		case CommandConnect:
			b.mu.Lock()
			b.connects = append(b.connects, frame)
			b.mu.Unlock()
			conn.WriteMessage(websocket.TextMessage,
				NewFrame(CommandConnected).SetHeader("version", "1.2").Marshal())
		case CommandSubscribe:
			b.mu.Lock()
			b.conns[conn][frame.Header(HeaderDestination)] = frame.Header(HeaderID)
			b.mu.Unlock()
		case CommandSend:
			b.sends <- frame
		}
	}
}

func (b *broker) publish(destination string, body []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for conn, subs := range b.conns {
		id, ok := subs[destination]
		if !ok {
			continue
		}
		msg := NewFrame(CommandMessage).
			SetHeader(HeaderSubscription, id).
			SetHeader(HeaderDestination, destination)
		msg.Body = body
		conn.WriteMessage(websocket.TextMessage, msg.Marshal())
	}
}

func (b *broker) subscribed(destination string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, subs := range b.conns {
		if _, ok := subs[destination]; ok {
			return true
		}
	}

	return false
}

func (b *broker) dropConns() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for conn := range b.conns {
		conn.Close()
	}
}

func newTestClient(t *testing.T, b *broker, cfg Config) (*Client, chan struct{}) {
	connected := make(chan struct{}, 8)
	userOnConnect := cfg.OnConnect
	cfg.URL = b.wsURL()
	if cfg.ReconnectDelay == 0 {
		cfg.ReconnectDelay = 10 * time.Millisecond
	}
	cfg.Logger = slog.Default()
	cfg.OnConnect = func() {
		if userOnConnect != nil {
			userOnConnect()
		}
		connected <- struct{}{}
	}

	client := NewClient(cfg)
	t.Cleanup(client.Close)

	return client, connected
}

func waitConnected(t *testing.T, connected chan struct{}) {
	select {
	case <-connected:
	case <-time.After(5 * time.Second):
		t.Fatal("client did not connect")
	}
}

func TestClientSubscribeReceivesMessages(t *testing.T) {
	b := newBroker(t)
	client, connected := newTestClient(t, b, Config{})

	client.Connect(context.Background())
	waitConnected(t, connected)

	bodies := make(chan []byte, 1)
	_, err := client.Subscribe("/topic/watch-party/r1/state", func(body []byte) {
		bodies <- body
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return b.subscribed("/topic/watch-party/r1/state")
	}, 5*time.Second, 10*time.Millisecond)

	b.publish("/topic/watch-party/r1/state", []byte(`{"roomId":"r1"}`))

	select {
	case body := <-bodies:
		assert.JSONEq(t, `{"roomId":"r1"}`, string(body))
	case <-time.After(5 * time.Second):
		t.Fatal("no message delivered")
	}
}

func TestClientPublish(t *testing.T) {
	b := newBroker(t)
	client, connected := newTestClient(t, b, Config{})

	client.Connect(context.Background())
	waitConnected(t, connected)

	require.NoError(t, client.Publish("/app/watch-party/join", []byte(`{"roomId":"r1"}`)))

	select {
	case frame := <-b.sends:
		assert.Equal(t, "/app/watch-party/join", frame.Header(HeaderDestination))
		assert.Equal(t, "application/json", frame.Header(HeaderContentType))
		assert.JSONEq(t, `{"roomId":"r1"}`, string(frame.Body))
	case <-time.After(5 * time.Second):
		t.Fatal("no SEND frame received")
	}
}

func TestClientPublishNotConnected(t *testing.T) {
	b := newBroker(t)
	client, _ := newTestClient(t, b, Config{})

	err := client.Publish("/app/watch-party/join", []byte(`{}`))
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestClientBearerTokenOnConnect(t *testing.T) {
	b := newBroker(t)
	client, connected := newTestClient(t, b, Config{
		Token: func() string { return "tok123" },
	})

	client.Connect(context.Background())
	waitConnected(t, connected)

	b.mu.Lock()
	defer b.mu.Unlock()
	require.Len(t, b.connects, 1)
	assert.Equal(t, "Bearer tok123", b.connects[0].Header(HeaderAuthorization))
}

func TestClientReconnects(t *testing.T) {
	b := newBroker(t)
	client, connected := newTestClient(t, b, Config{})

	client.Connect(context.Background())
	waitConnected(t, connected)

	_, err := client.Subscribe("/topic/x", func([]byte) {})
	require.NoError(t, err)

	b.dropConns()

	// OnConnect fires again and the old subscription set is gone
	waitConnected(t, connected)

	require.Eventually(t, client.Connected, 5*time.Second, 10*time.Millisecond)
	assert.False(t, b.subscribed("/topic/x"))

	_, err = client.Subscribe("/topic/x", func([]byte) {})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return b.subscribed("/topic/x")
	}, 5*time.Second, 10*time.Millisecond)
}

func TestClientCloseStopsReconnecting(t *testing.T) {
	b := newBroker(t)
	client, connected := newTestClient(t, b, Config{})

	client.Connect(context.Background())
	waitConnected(t, connected)

	client.Close()
	b.dropConns()

	select {
	case <-connected:
		t.Fatal("client reconnected after Close")
	case <-time.After(100 * time.Millisecond):
	}
}
