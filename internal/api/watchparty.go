package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vidshare/client/internal/domain"
)

type createRoomRequest struct {
	IsPublic bool `json:"isPublic"`
}

type addRoomVideoRequest struct {
	VideoID int `json:"videoId" validate:"required,gt=0"`
}

func (c *Client) ListPublicRooms(ctx context.Context) ([]domain.PublicRoom, error) {
	var rooms []domain.PublicRoom
	if err := c.doJSON(ctx, http.MethodGet, "/api/watch-party/rooms", nil, nil, &rooms); err != nil {
		return nil, err
	}

	return rooms, nil
}

func (c *Client) MyRooms(ctx context.Context) ([]domain.PublicRoom, error) {
	var rooms []domain.PublicRoom
	if err := c.doJSON(ctx, http.MethodGet, "/api/watch-party/my-rooms", nil, nil, &rooms); err != nil {
		return nil, err
	}

	return rooms, nil
}

func (c *Client) CreateRoom(ctx context.Context, isPublic bool) (*domain.PublicRoom, error) {
	var room domain.PublicRoom
	if err := c.doJSON(ctx, http.MethodPost, "/api/watch-party/rooms", nil, createRoomRequest{IsPublic: isPublic}, &room); err != nil {
		return nil, err
	}

	return &room, nil
}

func (c *Client) GetRoom(ctx context.Context, roomID string) (*domain.RoomDetails, error) {
	var room domain.RoomDetails
	if err := c.doJSON(ctx, http.MethodGet, "/api/watch-party/rooms/"+roomID, nil, nil, &room); err != nil {
		return nil, err
	}

	return &room, nil
}

func (c *Client) AddRoomVideo(ctx context.Context, roomID string, videoID int) (*domain.PublicRoom, error) {
	req := addRoomVideoRequest{VideoID: videoID}
	if err := c.checkValid(req); err != nil {
		return nil, err
	}

	var room domain.PublicRoom
	path := fmt.Sprintf("/api/watch-party/rooms/%s/videos", roomID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, req, &room); err != nil {
		return nil, err
	}

	return &room, nil
}
