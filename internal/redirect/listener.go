package redirect

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vidshare/client/internal/domain"
	"github.com/vidshare/client/pkg/observable"
)

// Navigator takes the user to the live-playback view of a room.
type Navigator interface {
	NavigateToLive(roomID string, videoID int)
}

// IdentitySource yields the local identity at the moment of the call.
type IdentitySource interface {
	Current() domain.Identity
}

// RoomStreams is the session controller surface the listener consumes.
type RoomStreams interface {
	State() *observable.Value[*domain.RoomState]
	Events() *observable.Value[*domain.RoomEvent]
}

// Listener watches the room event stream for the whole process lifetime and
// navigates any member of a room to the live view when its host starts a
// video, even while the user is elsewhere in the application. It is
// constructed once at boot, started once, and never stopped.
//
// The event stream is the trigger; membership and identity are sampled at
// the moment an event fires, never the other way round, so frequent snapshot
// updates stay cheap and only the rare start-event does the join.
type Listener struct {
	logger   *slog.Logger
	session  RoomStreams
	identity IdentitySource
	nav      Navigator

	mu         sync.Mutex
	membership map[string][]domain.RoomMember
	handled    map[string]struct{}
}

func NewListener(ctrl RoomStreams, identity IdentitySource, nav Navigator, logger *slog.Logger) *Listener {
	return &Listener{
		logger:     logger,
		session:    ctrl,
		identity:   identity,
		nav:        nav,
		membership: make(map[string][]domain.RoomMember),
		handled:    make(map[string]struct{}),
	}
}

// Start launches the watch loop. There is no corresponding stop: the
// listener is scoped by the process itself, ctx is only honored so tests can
// shut the loop down.
func (l *Listener) Start(ctx context.Context) {
	stateCh, cancelState := l.session.State().Watch()
	eventCh, cancelEvents := l.session.Events().Watch()

	go func() {
		defer cancelState()
		defer cancelEvents()

		for {
			select {
			case <-ctx.Done():
				return
			case st := <-stateCh:
				if st != nil {
					l.recordMembership(st)
				}
			case ev := <-eventCh:
				if ev != nil {
					l.handleEvent(*ev)
				}
			}
		}
	}()
}

// recordMembership keeps the latest member list per room, replaced wholesale
// on every snapshot.
func (l *Listener) recordMembership(st *domain.RoomState) {
	if st.RoomID == "" {
		return
	}

	l.mu.Lock()
	l.membership[st.RoomID] = st.Members
	l.mu.Unlock()
}

func (l *Listener) handleEvent(ev domain.RoomEvent) {
	if ev.Type != domain.EventVideoStarted && ev.VideoID == 0 {
		return
	}
	if ev.RoomID == "" || ev.VideoID <= 0 || ev.EventID == "" {
		return
	}

	l.mu.Lock()
	members := l.membership[ev.RoomID]
	l.mu.Unlock()

	myEmail := l.identity.Current().NormalizedEmail()
	if myEmail == "" || !memberByEmail(members, myEmail) {
		return
	}

	key := ev.RoomID + ":" + ev.EventID
	l.mu.Lock()
	_, seen := l.handled[key]
	if !seen {
		l.handled[key] = struct{}{}
	}
	l.mu.Unlock()
	if seen {
		// transport redelivery after a reconnect
		return
	}

	l.logger.Info("host started playback, redirecting",
		"room_id", ev.RoomID, "video_id", ev.VideoID, "event_id", ev.EventID)
	l.nav.NavigateToLive(ev.RoomID, ev.VideoID)
}

func memberByEmail(members []domain.RoomMember, email string) bool {
	for _, m := range members {
		if m.Email != nil && domain.NormalizeEmail(*m.Email) == email {
			return true
		}
	}

	return false
}
