package stompws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var ErrNotConnected = errors.New("not connected")

const defaultReconnectDelay = 2 * time.Second

// MessageHandler receives the body of a MESSAGE frame. Handlers for one
// subscription run sequentially in frame arrival order.
type MessageHandler func(body []byte)

// TokenSource supplies the current bearer token for the CONNECT handshake.
// It is re-read on every (re)connect attempt.
type TokenSource func() string

type Config struct {
	// URL is the websocket endpoint, e.g. ws://host/ws.
	URL string
	// ReconnectDelay is the fixed wait between reconnect attempts.
	// Defaults to 2s.
	ReconnectDelay time.Duration
	// Token, when set, is sent as a bearer Authorization header on CONNECT.
	Token TokenSource
	// OnConnect fires after every successful CONNECT handshake, including
	// reconnects. Subscriptions do not survive a reconnect, so the owner
	// re-subscribes here.
	OnConnect func()
	Logger    *slog.Logger
}

// Client is a STOMP 1.2 session over a websocket connection. It reconnects
// with a fixed delay, indefinitely, until Close is called. Subscriptions are
// connection-scoped: a dropped connection discards them and OnConnect gives
// the owner the chance to establish a fresh set.
type Client struct {
	cfg    Config
	logger *slog.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	subs      map[string]*Subscription

	writeMu sync.Mutex

	closed    chan struct{}
	closeOnce sync.Once
}

// Subscription identifies one active topic subscription.
type Subscription struct {
	ID          string
	Destination string
	handler     MessageHandler
}

func NewClient(cfg Config) *Client {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		cfg:    cfg,
		logger: logger,
		subs:   make(map[string]*Subscription),
		closed: make(chan struct{}),
	}
}

// Connect starts the session loop in the background. It returns immediately;
// connection state is reported through OnConnect and Connected.
func (c *Client) Connect(ctx context.Context) {
	go c.run(ctx)
}

func (c *Client) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		default:
		}

		if err := c.session(ctx); err != nil {
			c.logger.Debug("stomp session ended", "url", c.cfg.URL, "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		case <-time.After(c.cfg.ReconnectDelay):
		}
	}
}

// session dials, performs the CONNECT handshake and reads frames until the
// connection drops.
func (c *Client) session(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, c.cfg.URL, http.Header{})
	cancel()
	if err != nil {
		return err
	}
	defer conn.Close()

	connect := NewFrame(CommandConnect).
		SetHeader(HeaderAcceptVersion, "1.2").
		SetHeader(HeaderHost, "/").
		SetHeader(HeaderHeartBeat, "0,0")
	if c.cfg.Token != nil {
		if token := c.cfg.Token(); token != "" {
			connect.SetHeader(HeaderAuthorization, "Bearer "+token)
		}
	}

	if err := conn.WriteMessage(websocket.TextMessage, connect.Marshal()); err != nil {
		return err
	}

	frame, err := c.readFrame(conn)
	if err != nil {
		return err
	}
	if frame.Command != CommandConnected {
		return errors.New("handshake rejected: " + frame.Command + " " + frame.Header(HeaderMessage))
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.connected = false
		c.subs = make(map[string]*Subscription)
		c.mu.Unlock()
	}()

	if c.cfg.OnConnect != nil {
		c.cfg.OnConnect()
	}

	for {
		frame, err := c.readFrame(conn)
		if err != nil {
			return err
		}
		c.dispatch(frame)
	}
}

func (c *Client) readFrame(conn *websocket.Conn) (*Frame, error) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, err
		}

		frame, err := Unmarshal(data)
		if err == errHeartBeat {
			continue
		}
		if err != nil {
			c.logger.Warn("dropping malformed frame", "error", err)
			continue
		}

		return frame, nil
	}
}

func (c *Client) dispatch(frame *Frame) {
	switch frame.Command {
	case CommandMessage:
		c.mu.Lock()
		sub := c.subs[frame.Header(HeaderSubscription)]
		c.mu.Unlock()
		if sub == nil {
			c.logger.Debug("message for unknown subscription",
				"subscription", frame.Header(HeaderSubscription),
				"destination", frame.Header(HeaderDestination))
			return
		}
		sub.handler(frame.Body)
	case CommandError:
		c.logger.Warn("broker error frame", "message", frame.Header(HeaderMessage), "body", string(frame.Body))
	default:
		c.logger.Debug("ignoring frame", "command", frame.Command)
	}
}

// Subscribe registers a handler for a destination on the current connection.
func (c *Client) Subscribe(destination string, handler MessageHandler) (*Subscription, error) {
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}

	sub := &Subscription{
		ID:          uuid.NewString(),
		Destination: destination,
		handler:     handler,
	}
	c.subs[sub.ID] = sub
	c.mu.Unlock()

	frame := NewFrame(CommandSubscribe).
		SetHeader(HeaderID, sub.ID).
		SetHeader(HeaderDestination, destination)
	if err := c.write(conn, frame); err != nil {
		c.mu.Lock()
		delete(c.subs, sub.ID)
		c.mu.Unlock()
		return nil, err
	}

	return sub, nil
}

// Unsubscribe removes a subscription. Best-effort after a disconnect.
func (c *Client) Unsubscribe(sub *Subscription) error {
	c.mu.Lock()
	delete(c.subs, sub.ID)
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	return c.write(conn, NewFrame(CommandUnsubscribe).SetHeader(HeaderID, sub.ID))
}

// Publish sends a SEND frame with a JSON body to the destination.
func (c *Client) Publish(destination string, body []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	frame := NewFrame(CommandSend).
		SetHeader(HeaderDestination, destination).
		SetHeader(HeaderContentType, "application/json")
	frame.Body = body

	return c.write(conn, frame)
}

func (c *Client) write(conn *websocket.Conn, frame *Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, frame.Marshal())
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Close ends the session loop permanently. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.mu.Unlock()
	})
}
