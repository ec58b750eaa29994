package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vidshare/client/internal/domain"
	"github.com/vidshare/client/pkg/observable"
)

var ErrNotConnected = errors.New("not connected")

const (
	stateTopicFmt  = "/topic/watch-party/%s/state"
	eventsTopicFmt = "/topic/watch-party/%s/events"
	errorsQueue    = "/user/queue/watch-party/errors"

	stateDestination = "/app/watch-party/state"
	joinDestination  = "/app/watch-party/join"
	startDestination = "/app/watch-party/start"
	stopDestination  = "/app/watch-party/stop"
)

type roomCommand struct {
	RoomID string `json:"roomId"`
}

type startCommand struct {
	RoomID  string `json:"roomId"`
	VideoID int    `json:"videoId"`
}

type errorMessage struct {
	Message string `json:"message"`
}

// Controller owns at most one active room connection and mediates between
// user intent and transport messages. Inbound pushes land in three last-value
// caches (state, events, errors) that any number of views read concurrently.
type Controller struct {
	logger       *slog.Logger
	newTransport TransportFactory

	state     *observable.Value[*domain.RoomState]
	events    *observable.Value[*domain.RoomEvent]
	lastError *observable.Value[string]

	mu        sync.Mutex
	transport Transport
	roomID    string
	cancel    context.CancelFunc
}

func NewController(newTransport TransportFactory, logger *slog.Logger) *Controller {
	return &Controller{
		logger:       logger,
		newTransport: newTransport,
		state:        observable.NewValue[*domain.RoomState](),
		events:       observable.NewValue[*domain.RoomEvent](),
		lastError:    observable.NewValue[string](),
	}
}

// State is the last-known authoritative room snapshot, nil before the first
// one arrives.
func (c *Controller) State() *observable.Value[*domain.RoomState] { return c.state }

// Events is the last-received ephemeral room event, nil initially.
func (c *Controller) Events() *observable.Value[*domain.RoomEvent] { return c.events }

// Errors relays server-pushed error messages verbatim, "" when clear.
func (c *Controller) Errors() *observable.Value[string] { return c.lastError }

// RoomID reports the room the controller is currently scoped to.
func (c *Controller) RoomID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID
}

// Connect tears down any previous connection and establishes a new one
// scoped to roomID. Calling it twice leaves exactly one subscription set.
// Caches are reset so the views never see another room's leftovers.
func (c *Controller) Connect(ctx context.Context, roomID string) {
	c.Disconnect()

	runCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.roomID = roomID
	var t Transport
	t = c.newTransport(func() { c.onConnected(t, roomID) })
	c.transport = t
	c.cancel = cancel
	c.mu.Unlock()

	t.Connect(runCtx)
}

// onConnected runs after every successful transport (re)connect. The
// subscription set died with the previous connection, so it is rebuilt here,
// and a fresh snapshot is requested since the broker does not replay history.
func (c *Controller) onConnected(t Transport, roomID string) {
	c.mu.Lock()
	current := c.transport == t
	c.mu.Unlock()
	if !current {
		// a late callback from a transport already torn down
		return
	}

	subscriptions := []struct {
		destination string
		handler     func(body []byte)
	}{
		{fmt.Sprintf(stateTopicFmt, roomID), func(body []byte) { c.handleState(roomID, body) }},
		{fmt.Sprintf(eventsTopicFmt, roomID), func(body []byte) { c.handleEvent(roomID, body) }},
		{errorsQueue, func(body []byte) { c.handleError(roomID, body) }},
	}

	for _, sub := range subscriptions {
		if err := t.Subscribe(sub.destination, sub.handler); err != nil {
			c.logger.Warn("room subscription failed", "destination", sub.destination, "error", err)
		}
	}

	c.RequestState(roomID)
}

// scopedTo reports whether the controller is still connected to roomID, so
// handlers held by an already torn-down connection write nothing.
func (c *Controller) scopedTo(roomID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID == roomID && c.transport != nil
}

func (c *Controller) handleState(roomID string, body []byte) {
	if !c.scopedTo(roomID) {
		return
	}

	var st domain.RoomState
	if err := json.Unmarshal(body, &st); err != nil {
		c.logger.Warn("dropping malformed room state", "error", err)
		return
	}

	if st.RoomID != roomID {
		// stale-room guard: a snapshot for another room must not leak in
		c.logger.Debug("ignoring state for another room", "got", st.RoomID, "want", roomID)
		return
	}

	c.state.Set(&st)
}

func (c *Controller) handleEvent(roomID string, body []byte) {
	if !c.scopedTo(roomID) {
		return
	}

	var ev domain.RoomEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		c.logger.Warn("dropping malformed room event", "error", err)
		return
	}

	c.events.Set(&ev)
}

func (c *Controller) handleError(roomID string, body []byte) {
	if !c.scopedTo(roomID) {
		return
	}

	var msg errorMessage
	if err := json.Unmarshal(body, &msg); err != nil || msg.Message == "" {
		c.lastError.Set("unknown server error")
		return
	}

	c.lastError.Set(msg.Message)
}

// RequestState asks for a fresh snapshot. Best-effort: a refresh hint, not a
// command, so it is silently dropped when disconnected.
func (c *Controller) RequestState(roomID string) {
	t := c.connectedTransport()
	if t == nil {
		return
	}

	c.publish(t, stateDestination, roomCommand{RoomID: roomID})
}

// Join publishes a join-intent. Unlike RequestState this is user-initiated
// and deserves immediate feedback, so a missing connection is an error.
func (c *Controller) Join(roomID string) error {
	t := c.connectedTransport()
	if t == nil {
		c.lastError.Set("not connected")
		return ErrNotConnected
	}

	return c.publish(t, joinDestination, roomCommand{RoomID: roomID})
}

// Start publishes a play-start command. Host-only semantics are NOT enforced
// here: the server rejects unauthorized starts and pushes the rejection on
// the personal error queue.
func (c *Controller) Start(roomID string, videoID int) error {
	t := c.connectedTransport()
	if t == nil {
		c.lastError.Set("not connected")
		return ErrNotConnected
	}

	return c.publish(t, startDestination, startCommand{RoomID: roomID, VideoID: videoID})
}

// Stop publishes a play-stop command, used when a host leaves the live view.
// Best-effort: ignored when disconnected.
func (c *Controller) Stop(roomID string) {
	t := c.connectedTransport()
	if t == nil {
		return
	}

	c.publish(t, stopDestination, roomCommand{RoomID: roomID})
}

// Disconnect tears the connection down and clears all cached values. Safe to
// call when already disconnected.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	t := c.transport
	cancel := c.cancel
	c.transport = nil
	c.cancel = nil
	c.roomID = ""
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if t != nil {
		t.Close()
	}

	c.state.Reset()
	c.events.Reset()
	c.lastError.Reset()
}

func (c *Controller) connectedTransport() Transport {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.transport == nil || !c.transport.Connected() {
		return nil
	}

	return c.transport
}

func (c *Controller) publish(t Transport, destination string, command any) error {
	body, err := json.Marshal(command)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}

	if err := t.Publish(destination, body); err != nil {
		c.logger.Warn("publish failed", "destination", destination, "error", err)
		return fmt.Errorf("publish to %s: %w", destination, err)
	}

	return nil
}
