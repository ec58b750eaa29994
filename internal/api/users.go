package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vidshare/client/internal/domain"
)

func (c *Client) GetUser(ctx context.Context, id int) (*domain.UserProfile, error) {
	var user domain.UserProfile
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d", id), nil, nil, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (c *Client) GetUserVideos(ctx context.Context, id int) ([]domain.Video, error) {
	var videos []domain.Video
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d/videos", id), nil, nil, &videos); err != nil {
		return nil, err
	}

	return videos, nil
}
