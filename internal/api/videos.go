package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/vidshare/client/internal/domain"
)

func (c *Client) ListVideos(ctx context.Context) ([]domain.Video, error) {
	var videos []domain.Video
	if err := c.doJSON(ctx, http.MethodGet, "/api/videos", nil, nil, &videos); err != nil {
		return nil, err
	}

	return videos, nil
}

func (c *Client) GetVideo(ctx context.Context, id int) (*domain.Video, error) {
	var video domain.Video
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/videos/%d", id), nil, nil, &video); err != nil {
		return nil, err
	}

	return &video, nil
}

func (c *Client) GetComments(ctx context.Context, videoID int) ([]domain.Comment, error) {
	var comments []domain.Comment
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/videos/%d/comments", videoID), nil, nil, &comments); err != nil {
		return nil, err
	}

	return comments, nil
}

type AddCommentRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}

func (c *Client) AddComment(ctx context.Context, videoID int, req AddCommentRequest) (*domain.Comment, error) {
	if err := c.checkValid(req); err != nil {
		return nil, err
	}

	var comment domain.Comment
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/videos/%d/comments", videoID), nil, req, &comment); err != nil {
		return nil, err
	}

	return &comment, nil
}

func (c *Client) LikeVideo(ctx context.Context, videoID int) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/videos/%d/like", videoID), nil, nil, nil)
}

func (c *Client) UnlikeVideo(ctx context.Context, videoID int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/videos/%d/like", videoID), nil, nil, nil)
}

func (c *Client) ThumbnailURL(id int) string {
	return fmt.Sprintf("%s/api/videos/%d/thumbnail", c.baseURL, id)
}

func (c *Client) StreamURL(id int) string {
	return fmt.Sprintf("%s/api/videos/%d/stream", c.baseURL, id)
}

type UploadInfo struct {
	Title       string   `json:"title" validate:"required,max=120"`
	Description string   `json:"description" validate:"max=2000"`
	Tags        []string `json:"tags"`
	Location    string   `json:"location"`
}

// Upload sends the video metadata and both files as one multipart request,
// mirroring the platform's upload form: an "info" JSON part plus "thumbnail"
// and "video" file parts.
func (c *Client) Upload(ctx context.Context, info UploadInfo, thumbnailPath, videoPath string) error {
	if err := c.checkValid(info); err != nil {
		return err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	infoJSON, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal upload info: %w", err)
	}
	if err := mw.WriteField("info", string(infoJSON)); err != nil {
		return fmt.Errorf("write info part: %w", err)
	}

	for _, file := range []struct {
		field string
		path  string
	}{
		{"thumbnail", thumbnailPath},
		{"video", videoPath},
	} {
		if err := writeFilePart(mw, file.field, file.path); err != nil {
			return err
		}
	}

	if err := mw.Close(); err != nil {
		return fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/videos/upload", &buf)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.do(req, nil)
}

func writeFilePart(mw *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()

	part, err := mw.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy %s: %w", field, err)
	}

	return nil
}
