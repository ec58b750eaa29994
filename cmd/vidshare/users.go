package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Look up user profiles",
}

var userShowCmd = &cobra.Command{
	Use:   "show <user-id>",
	Short: "Show a user profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}

		a, err := newApp(noopNavigator{})
		if err != nil {
			return err
		}

		u, err := a.API.GetUser(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Printf("#%d %s (%s %s)\n", u.ID, u.Username, u.FirstName, u.LastName)
		if u.Address != "" {
			fmt.Printf("address: %s\n", u.Address)
		}
		return nil
	},
}

var userVideosCmd = &cobra.Command{
	Use:   "videos <user-id>",
	Short: "List a user's videos",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}

		a, err := newApp(noopNavigator{})
		if err != nil {
			return err
		}

		videos, err := a.API.GetUserVideos(cmd.Context(), id)
		if err != nil {
			return err
		}

		for _, v := range videos {
			printVideoLine(v)
		}
		return nil
	},
}

func init() {
	userCmd.AddCommand(userShowCmd, userVideosCmd)
	rootCmd.AddCommand(userCmd)
}
