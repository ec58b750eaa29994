package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vidshare/client/internal/api"
)

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "List trending videos near a location",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(noopNavigator{})
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		radiusKm, _ := flags.GetFloat64("radius-km")

		// without explicit coordinates the backend falls back to IP lookup
		var coords *api.Coordinates
		if flags.Changed("lat") && flags.Changed("lon") {
			lat, _ := flags.GetFloat64("lat")
			lon, _ := flags.GetFloat64("lon")
			coords = &api.Coordinates{Lat: lat, Lon: lon}
		}

		videos, err := a.API.LocalTrending(cmd.Context(), radiusKm, coords)
		if err != nil {
			return err
		}

		for _, v := range videos {
			printVideoLine(v)
		}
		return nil
	},
}

var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "Show the latest computed popularity top list",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(noopNavigator{})
		if err != nil {
			return err
		}

		block, err := a.API.LatestPopularity(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("computed at %s\n", block.RunAt)
		for i, v := range block.Top3 {
			fmt.Printf("%d. #%d %s (score %.2f)\n", i+1, v.VideoID, v.Title, v.Score)
		}
		return nil
	},
}

func init() {
	trendingCmd.Flags().Float64("radius-km", 50, "Search radius in kilometers")
	trendingCmd.Flags().Float64("lat", 0, "Latitude")
	trendingCmd.Flags().Float64("lon", 0, "Longitude")

	rootCmd.AddCommand(trendingCmd, popularCmd)
}
