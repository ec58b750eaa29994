package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vidshare/client/internal/api"
	"github.com/vidshare/client/internal/domain"
)

var videosCmd = &cobra.Command{
	Use:   "videos",
	Short: "Browse videos",
}

var videosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all videos",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(noopNavigator{})
		if err != nil {
			return err
		}

		videos, err := a.API.ListVideos(cmd.Context())
		if err != nil {
			return err
		}

		for _, v := range videos {
			printVideoLine(v)
		}
		return nil
	},
}

var videosShowCmd = &cobra.Command{
	Use:   "show <video-id>",
	Short: "Show one video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid video id %q", args[0])
		}

		a, err := newApp(noopNavigator{})
		if err != nil {
			return err
		}

		v, err := a.API.GetVideo(cmd.Context(), id)
		if err != nil {
			return err
		}

		printVideoLine(*v)
		if v.Description != "" {
			fmt.Println(v.Description)
		}
		fmt.Printf("stream: %s\n", a.API.StreamURL(v.ID))
		return nil
	},
}

var videosCommentsCmd = &cobra.Command{
	Use:   "comments <video-id>",
	Short: "List comments on a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid video id %q", args[0])
		}

		a, err := newApp(noopNavigator{})
		if err != nil {
			return err
		}

		comments, err := a.API.GetComments(cmd.Context(), id)
		if err != nil {
			return err
		}

		for _, c := range comments {
			fmt.Printf("[%s] %s: %s\n", c.CreatedAt, c.Username, c.Text)
		}
		return nil
	},
}

var videosCommentCmd = &cobra.Command{
	Use:   "comment <video-id> <text>",
	Short: "Comment on a video",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid video id %q", args[0])
		}

		a, err := newApp(noopNavigator{})
		if err != nil {
			return err
		}

		if _, err := a.API.AddComment(cmd.Context(), id, api.AddCommentRequest{Text: args[1]}); err != nil {
			return err
		}

		fmt.Println("comment posted")
		return nil
	},
}

var videosLikeCmd = &cobra.Command{
	Use:   "like <video-id>",
	Short: "Like a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid video id %q", args[0])
		}

		a, err := newApp(noopNavigator{})
		if err != nil {
			return err
		}

		if err := a.API.LikeVideo(cmd.Context(), id); err != nil {
			return err
		}

		fmt.Println("liked")
		return nil
	},
}

var videosUnlikeCmd = &cobra.Command{
	Use:   "unlike <video-id>",
	Short: "Remove your like from a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid video id %q", args[0])
		}

		a, err := newApp(noopNavigator{})
		if err != nil {
			return err
		}

		if err := a.API.UnlikeVideo(cmd.Context(), id); err != nil {
			return err
		}

		fmt.Println("like removed")
		return nil
	},
}

var videosChatCmd = &cobra.Command{
	Use:   "chat <video-id>",
	Short: "Join a stream's live chat: incoming messages print, typed lines send",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid video id %q", args[0])
		}

		a, err := newApp(noopNavigator{})
		if err != nil {
			return err
		}

		sender, _ := cmd.Flags().GetString("sender")
		if sender == "" {
			sender = a.Identity.Current().NormalizedEmail()
		}
		if sender == "" {
			return fmt.Errorf("sign in or pass --sender to chat")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a.Chat.Connect(ctx, id)
		defer a.Chat.Disconnect()

		messagesCh, cancelWatch := a.Chat.Messages().Watch()
		defer cancelWatch()

		lines := make(chan string)
		go func() {
			defer close(lines)
			sc := bufio.NewScanner(os.Stdin)
			for sc.Scan() {
				lines <- sc.Text()
			}
		}()

		printed := 0
		for {
			select {
			case <-ctx.Done():
				fmt.Println("leaving chat")
				return nil
			case messages := <-messagesCh:
				for ; printed < len(messages); printed++ {
					m := messages[printed]
					fmt.Printf("%s: %s\n", m.Sender, m.Content)
				}
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				if line == "" {
					continue
				}
				if err := a.Chat.Send(id, sender, line); err != nil {
					fmt.Printf("send failed: %v\n", err)
				}
			}
		}
	},
}

func printVideoLine(v domain.Video) {
	fmt.Printf("#%d %s", v.ID, v.Title)
	if v.Username != "" {
		fmt.Printf(" (by %s)", v.Username)
	}
	fmt.Printf("  likes:%d comments:%d\n", v.LikeCount, v.CommentCount)
}

func init() {
	videosChatCmd.Flags().String("sender", "", "Display name to chat as (defaults to your account email)")

	videosCmd.AddCommand(videosListCmd, videosShowCmd, videosCommentsCmd, videosCommentCmd, videosLikeCmd, videosUnlikeCmd, videosChatCmd)
	rootCmd.AddCommand(videosCmd)
}
