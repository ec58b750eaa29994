package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vidshare/client/internal/api"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <thumbnail-file> <video-file>",
	Short: "Upload a video with its thumbnail",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(noopNavigator{})
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		info := api.UploadInfo{}
		info.Title, _ = flags.GetString("title")
		info.Description, _ = flags.GetString("description")
		info.Tags, _ = flags.GetStringSlice("tags")
		info.Location, _ = flags.GetString("location")

		if err := a.API.Upload(cmd.Context(), info, args[0], args[1]); err != nil {
			return err
		}

		fmt.Println("uploaded")
		return nil
	},
}

func init() {
	uploadCmd.Flags().String("title", "", "Video title")
	uploadCmd.Flags().String("description", "", "Video description")
	uploadCmd.Flags().StringSlice("tags", nil, "Comma-separated tags")
	uploadCmd.Flags().String("location", "", "Recording location")
	uploadCmd.MarkFlagRequired("title")

	rootCmd.AddCommand(uploadCmd)
}
