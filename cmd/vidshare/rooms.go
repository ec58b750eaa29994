package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vidshare/client/internal/domain"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Browse watch-party rooms",
}

var roomsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List public rooms",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(noopNavigator{})
		if err != nil {
			return err
		}

		rooms, err := a.API.ListPublicRooms(cmd.Context())
		if err != nil {
			return err
		}

		for _, r := range rooms {
			printRoomLine(r)
		}
		return nil
	},
}

var roomsMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List rooms you belong to",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(noopNavigator{})
		if err != nil {
			return err
		}

		rooms, err := a.API.MyRooms(cmd.Context())
		if err != nil {
			return err
		}

		for _, r := range rooms {
			printRoomLine(r)
		}
		return nil
	},
}

var roomsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a room with you as host",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(noopNavigator{})
		if err != nil {
			return err
		}

		isPublic, _ := cmd.Flags().GetBool("public")
		room, err := a.API.CreateRoom(cmd.Context(), isPublic)
		if err != nil {
			return err
		}

		fmt.Printf("created room %s\n", room.RoomID)
		return nil
	},
}

var roomsAddVideoCmd = &cobra.Command{
	Use:   "add-video <room-id> <video-id>",
	Short: "Queue a video in a room",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid video id %q", args[1])
		}

		a, err := newApp(noopNavigator{})
		if err != nil {
			return err
		}

		room, err := a.API.AddRoomVideo(cmd.Context(), args[0], videoID)
		if err != nil {
			return err
		}

		fmt.Printf("room %s now has %d videos\n", room.RoomID, room.VideoCount)
		return nil
	},
}

func printRoomLine(r domain.PublicRoom) {
	visibility := "private"
	if r.IsPublic {
		visibility = "public"
	}
	fmt.Printf("%s  host:%s  members:%d videos:%d (%s)\n",
		r.RoomID, r.HostUsername, r.MemberCount, r.VideoCount, visibility)
}

func init() {
	roomsCreateCmd.Flags().Bool("public", true, "Whether the room is publicly listed")

	roomsCmd.AddCommand(roomsListCmd, roomsMineCmd, roomsCreateCmd, roomsAddVideoCmd)
	rootCmd.AddCommand(roomsCmd)
}
