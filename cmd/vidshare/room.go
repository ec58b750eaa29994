package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vidshare/client/internal/app"
	"github.com/vidshare/client/internal/domain"
	"github.com/vidshare/client/internal/session"
)

// noopNavigator is used by commands that never run the redirect listener.
type noopNavigator struct{}

func (noopNavigator) NavigateToLive(string, int) {}

// liveNavigator is the terminal stand-in for the SPA router: it announces
// the live view instead of switching pages. The app field is set right
// after construction, before the listener starts.
type liveNavigator struct {
	a *app.App
}

func (n *liveNavigator) NavigateToLive(roomID string, videoID int) {
	fmt.Printf("\n>>> host started video %d in room %s\n", videoID, roomID)
	fmt.Printf(">>> stream: %s\n", n.a.API.StreamURL(videoID))
}

var roomCmd = &cobra.Command{
	Use:   "room",
	Short: "Interact with one watch-party room",
}

var roomShowCmd = &cobra.Command{
	Use:   "show <room-id>",
	Short: "Show room details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(noopNavigator{})
		if err != nil {
			return err
		}

		room, err := a.API.GetRoom(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		printRoomLine(room.PublicRoom)
		fmt.Printf("queue: %v\n", room.VideoIDs)
		if room.CurrentVideoID != nil {
			fmt.Printf("now playing: %d\n", *room.CurrentVideoID)
		}
		return nil
	},
}

var roomJoinCmd = &cobra.Command{
	Use:   "join <room-id>",
	Short: "Join a room as a member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRoomSession(cmd.Context(), args[0], func(a *app.App, roomID string) error {
			flags := session.DeriveFlags(a.Session.State().Get(), a.Identity.Current())
			switch {
			case !flags.Ready:
				fmt.Println("member list still loading, try again in a moment")
				return nil
			case flags.IsHost:
				fmt.Println("you are the host of this room")
				return nil
			case flags.IsMember:
				fmt.Println("you are already in this room")
				return nil
			}

			if err := a.Session.Join(roomID); err != nil {
				return err
			}

			return reportOutcome(a, "joined room "+roomID)
		})
	},
}

var roomStartCmd = &cobra.Command{
	Use:   "start <room-id> <video-id>",
	Short: "Start synchronized playback for all members (host only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid video id %q", args[1])
		}

		return withRoomSession(cmd.Context(), args[0], func(a *app.App, roomID string) error {
			// host-ness is decided by the server; this is only a hint
			if flags := session.DeriveFlags(a.Session.State().Get(), a.Identity.Current()); flags.Ready && !flags.IsHost {
				fmt.Println("note: only the host can start a video")
			}

			if err := a.Session.Start(roomID, videoID); err != nil {
				return err
			}

			return reportOutcome(a, fmt.Sprintf("started video %d", videoID))
		})
	},
}

var roomStopCmd = &cobra.Command{
	Use:   "stop <room-id>",
	Short: "Stop synchronized playback (host only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRoomSession(cmd.Context(), args[0], func(a *app.App, roomID string) error {
			a.Session.Stop(roomID)
			return reportOutcome(a, "stopped playback")
		})
	},
}

var roomWatchCmd = &cobra.Command{
	Use:   "watch <room-id>",
	Short: "Follow a room live: state changes, errors, and playback redirects",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		roomID := args[0]

		nav := &liveNavigator{}
		a, err := newApp(nav)
		if err != nil {
			return err
		}
		nav.a = a

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		room, err := a.API.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		printRoomLine(room.PublicRoom)

		a.Redirect.Start(ctx)
		a.Session.Connect(ctx, roomID)
		defer a.Session.Disconnect()

		stateCh, cancelState := a.Session.State().Watch()
		defer cancelState()
		errCh, cancelErrs := a.Session.Errors().Watch()
		defer cancelErrs()

		for {
			select {
			case <-ctx.Done():
				fmt.Println("leaving room")
				return nil
			case st := <-stateCh:
				if st != nil {
					printRoomState(a, st)
				}
			case msg := <-errCh:
				if msg != "" {
					fmt.Printf("server: %s\n", msg)
				}
			}
		}
	},
}

func printRoomState(a *app.App, st *domain.RoomState) {
	flags := session.DeriveFlags(st, a.Identity.Current())

	role := "viewer"
	switch {
	case flags.IsHost:
		role = "host"
	case flags.IsMember:
		role = "member"
	case !flags.Ready:
		role = "loading"
	}

	fmt.Printf("[%s] %d members, queue %v, you: %s", st.RoomID, len(st.Members), st.VideoIDs, role)
	if st.CurrentVideoID != nil {
		fmt.Printf(", playing %d", *st.CurrentVideoID)
	}
	fmt.Println()
}

// withRoomSession connects to a room, waits for the first snapshot, runs fn,
// and tears the session down.
func withRoomSession(parent context.Context, roomID string, fn func(a *app.App, roomID string) error) error {
	a, err := newApp(noopNavigator{})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	a.Session.Connect(ctx, roomID)
	defer a.Session.Disconnect()

	stateCh, cancelWatch := a.Session.State().Watch()
	defer cancelWatch()

	deadline := time.After(10 * time.Second)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return fmt.Errorf("timed out waiting for room state")
		case st := <-stateCh:
			if st == nil {
				continue
			}
			return fn(a, roomID)
		}
	}
}

// reportOutcome gives the personal error queue a moment to deliver a
// rejection before declaring success.
func reportOutcome(a *app.App, success string) error {
	time.Sleep(500 * time.Millisecond)
	if msg := a.Session.Errors().Get(); msg != "" {
		return fmt.Errorf("server rejected the command: %s", msg)
	}

	fmt.Println(success)
	return nil
}

func init() {
	roomCmd.AddCommand(roomShowCmd, roomJoinCmd, roomStartCmd, roomStopCmd, roomWatchCmd)
	rootCmd.AddCommand(roomCmd)
}
