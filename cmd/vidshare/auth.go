package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vidshare/client/internal/api"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(noopNavigator{})
		if err != nil {
			return err
		}

		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		resp, err := a.API.Login(cmd.Context(), api.LoginRequest{Email: email, Password: password})
		if err != nil {
			return err
		}

		var expiresAt time.Time
		if resp.ExpiresAt != "" {
			if expiresAt, err = time.Parse(time.RFC3339, resp.ExpiresAt); err != nil {
				expiresAt = time.Time{}
			}
		}
		if err := a.Credentials.Save(resp.AccessToken, expiresAt); err != nil {
			return err
		}

		id := a.Identity.Current()
		if email := id.NormalizedEmail(); email != "" {
			fmt.Printf("signed in as %s\n", email)
		} else {
			fmt.Println("signed in")
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(noopNavigator{})
		if err != nil {
			return err
		}

		if err := a.Credentials.Clear(); err != nil {
			return err
		}

		fmt.Println("signed out")
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(noopNavigator{})
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		req := api.RegisterRequest{}
		req.Email, _ = flags.GetString("email")
		req.Username, _ = flags.GetString("username")
		req.FirstName, _ = flags.GetString("first-name")
		req.LastName, _ = flags.GetString("last-name")
		req.Address, _ = flags.GetString("address")
		req.Password, _ = flags.GetString("password")
		req.ConfirmPassword = req.Password

		if err := a.API.Register(cmd.Context(), req); err != nil {
			return err
		}

		fmt.Println("account created, run `vidshare login` to sign in")
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("password", "", "Account password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().String("email", "", "Account email")
	registerCmd.Flags().String("username", "", "Username")
	registerCmd.Flags().String("first-name", "", "First name")
	registerCmd.Flags().String("last-name", "", "Last name")
	registerCmd.Flags().String("address", "", "Address")
	registerCmd.Flags().String("password", "", "Password")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("username")
	registerCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd)
}
