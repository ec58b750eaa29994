package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vidshare/client/internal/domain"
)

// Coordinates is an optional explicit location for the trending lookup.
// When absent the backend falls back to IP-based geolocation.
type Coordinates struct {
	Lat float64
	Lon float64
}

func (c *Client) LocalTrending(ctx context.Context, radiusKm float64, coords *Coordinates) ([]domain.Video, error) {
	query := url.Values{}
	query.Set("radiusKm", strconv.FormatFloat(radiusKm, 'f', -1, 64))
	if coords != nil {
		query.Set("lat", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
		query.Set("lon", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	}

	var videos []domain.Video
	if err := c.doJSON(ctx, http.MethodGet, "/api/trending", query, nil, &videos); err != nil {
		return nil, err
	}

	return videos, nil
}

func (c *Client) LatestPopularity(ctx context.Context) (*domain.PopularBlock, error) {
	var block domain.PopularBlock
	if err := c.doJSON(ctx, http.MethodGet, "/api/popularity/latest", nil, nil, &block); err != nil {
		return nil, err
	}

	return &block, nil
}
