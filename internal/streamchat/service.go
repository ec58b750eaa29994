package streamchat

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
	streamTopicFmt  = "/topic/stream/%d"
	chatSendDestFmt = "/app/stream/%d/chat.send"
)

type chatMessage struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// Transport is the message channel the chat service speaks through. Same
// contract as the room session's: reconnects on its own, fires the connected
// callback after every (re)connect, at which point subscriptions are gone.
type Transport interface {
	Connect(ctx context.Context)
	Subscribe(destination string, handler func(body []byte)) error
	Publish(destination string, body []byte) error
	Connected() bool
	Close()
}

// TransportFactory builds a fresh transport for one chat connection.
type TransportFactory func(onConnect func()) Transport

// Service is the live chat attached to one video stream. Inbound messages
// accumulate into a last-value list cache; unlike room state there is no
// authoritative snapshot to replace, every message only appends. The list
// survives transport reconnects and is cleared only on Disconnect.
type Service struct {
	logger       *slog.Logger
	newTransport TransportFactory

	messages *observable.Value[[]domain.StreamChatMessage]

	mu        sync.Mutex
	transport Transport
	videoID   int
	cancel    context.CancelFunc
}

func NewService(newTransport TransportFactory, logger *slog.Logger) *Service {
	return &Service{
		logger:       logger,
		newTransport: newTransport,
		messages:     observable.NewValue[[]domain.StreamChatMessage](),
	}
}

// Messages is the accumulated chat history of the connected stream, oldest
// first, nil before the first message arrives.
func (s *Service) Messages() *observable.Value[[]domain.StreamChatMessage] { return s.messages }

// Connect tears down any previous chat connection and attaches to videoID's
// stream topic.
func (s *Service) Connect(ctx context.Context, videoID int) {
	s.Disconnect()

	runCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.videoID = videoID
	var t Transport
	t = s.newTransport(func() { s.onConnected(t, videoID) })
	s.transport = t
	s.cancel = cancel
	s.mu.Unlock()

	t.Connect(runCtx)
}

func (s *Service) onConnected(t Transport, videoID int) {
	s.mu.Lock()
	current := s.transport == t
	s.mu.Unlock()
	if !current {
		return
	}

	topic := fmt.Sprintf(streamTopicFmt, videoID)
	if err := t.Subscribe(topic, func(body []byte) { s.handleMessage(videoID, body) }); err != nil {
		s.logger.Warn("stream chat subscription failed", "destination", topic, "error", err)
	}
}

// scopedTo reports whether the service is still attached to videoID, so a
// handler held by a torn-down connection appends nothing.
func (s *Service) scopedTo(videoID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videoID == videoID && s.transport != nil
}

func (s *Service) handleMessage(videoID int, body []byte) {
	if !s.scopedTo(videoID) {
		return
	}

	var msg domain.StreamChatMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		s.logger.Warn("dropping malformed chat message", "error", err)
		return
	}

	// copy-on-append so readers holding the previous slice never see it mutate
	prev := s.messages.Get()
	next := make([]domain.StreamChatMessage, 0, len(prev)+1)
	next = append(next, prev...)
	next = append(next, msg)
	s.messages.Set(next)
}

// Send publishes a chat message to the stream. User-initiated, so a missing
// connection is an error rather than a silent drop.
func (s *Service) Send(videoID int, sender, content string) error {
	s.mu.Lock()
	t := s.transport
	s.mu.Unlock()

	if t == nil || !t.Connected() {
		return ErrNotConnected
	}

	body, err := json.Marshal(chatMessage{Sender: sender, Content: content})
	if err != nil {
		return fmt.Errorf("marshal chat message: %w", err)
	}

	destination := fmt.Sprintf(chatSendDestFmt, videoID)
	if err := t.Publish(destination, body); err != nil {
		s.logger.Warn("chat publish failed", "destination", destination, "error", err)
		return fmt.Errorf("publish to %s: %w", destination, err)
	}

	return nil
}

// Disconnect tears the connection down and clears the message list. Safe to
// call when already disconnected.
func (s *Service) Disconnect() {
	s.mu.Lock()
	t := s.transport
	cancel := s.cancel
	s.transport = nil
	s.cancel = nil
	s.videoID = 0
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if t != nil {
		t.Close()
	}

	s.messages.Reset()
}
