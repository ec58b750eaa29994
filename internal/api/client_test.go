package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidshare/client/internal/domain"
	"github.com/vidshare/client/pkg/ctxlogger"
)

type staticTokens struct {
	token string
}

func (s staticTokens) Token() string { return s.token }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLoginSkipsBearerHeader(t *testing.T) {
	var gotAuth string
	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")

		var body LoginRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "me@x.com", body.Email)

		writeJSON(w, http.StatusOK, LoginResponse{AccessToken: "tok-1"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens{token: "stale-token"}, testLogger())
	resp, err := c.Login(context.Background(), LoginRequest{Email: "me@x.com", Password: "secret"})
	require.NoError(t, err)

	assert.Equal(t, "tok-1", resp.AccessToken)
	assert.Empty(t, gotAuth, "auth endpoints must never carry a bearer header")
}

func TestAuthedRequestCarriesBearer(t *testing.T) {
	var gotAuth string
	r := chi.NewRouter()
	r.Get("/api/videos", func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, []domain.Video{{ID: 1, Title: "first"}})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens{token: "tok-1"}, testLogger())
	videos, err := c.ListVideos(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-1", gotAuth)
	require.Len(t, videos, 1)
	assert.Equal(t, "first", videos[0].Title)
}

func TestSignedOutRequestHasNoBearer(t *testing.T) {
	var gotAuth string
	r := chi.NewRouter()
	r.Get("/api/videos", func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, []domain.Video{})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens{}, testLogger())
	_, err := c.ListVideos(context.Background())
	require.NoError(t, err)

	assert.Empty(t, gotAuth)
}

func TestErrorResponseMapping(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/videos/{id}", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "video not found"})
	})
	r.Get("/api/watch-party/rooms", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens{token: "tok"}, testLogger())

	_, err := c.GetVideo(context.Background(), 42)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "video not found", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "video not found")

	_, err = c.ListPublicRooms(context.Background())
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Empty(t, apiErr.Message)
}

func TestValidationRejectsBeforeRequest(t *testing.T) {
	var hits atomic.Int64
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens{}, testLogger())
	ctx := context.Background()

	_, err := c.Login(ctx, LoginRequest{Email: "not-an-email", Password: "x"})
	assert.ErrorContains(t, err, "invalid request")

	err = c.Register(ctx, RegisterRequest{
		Email:           "me@x.com",
		Username:        "me",
		FirstName:       "M",
		LastName:        "E",
		Address:         "here",
		Password:        "longenough",
		ConfirmPassword: "different",
	})
	assert.ErrorContains(t, err, "invalid request")

	_, err = c.AddRoomVideo(ctx, "r1", 0)
	assert.ErrorContains(t, err, "invalid request")

	assert.EqualValues(t, 0, hits.Load(), "invalid payloads must never reach the server")
}

func TestLocalTrendingQueryEncoding(t *testing.T) {
	var gotQuery map[string][]string
	r := chi.NewRouter()
	r.Get("/api/trending", func(w http.ResponseWriter, req *http.Request) {
		gotQuery = req.URL.Query()
		writeJSON(w, http.StatusOK, []domain.Video{})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens{token: "tok"}, testLogger())
	ctx := context.Background()

	_, err := c.LocalTrending(ctx, 25, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"25"}, gotQuery["radiusKm"])
	assert.NotContains(t, gotQuery, "lat")
	assert.NotContains(t, gotQuery, "lon")

	_, err = c.LocalTrending(ctx, 10.5, &Coordinates{Lat: 45.25, Lon: 19.83})
	require.NoError(t, err)
	assert.Equal(t, []string{"10.5"}, gotQuery["radiusKm"])
	assert.Equal(t, []string{"45.25"}, gotQuery["lat"])
	assert.Equal(t, []string{"19.83"}, gotQuery["lon"])
}

func TestCreateAndInspectRoom(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/watch-party/rooms", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]bool
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.True(t, body["isPublic"])

		writeJSON(w, http.StatusCreated, domain.PublicRoom{RoomID: "r1", HostUserID: 7, IsPublic: true})
	})
	r.Get("/api/watch-party/rooms/{roomID}", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "r1", chi.URLParam(req, "roomID"))

		current := 3
		writeJSON(w, http.StatusOK, domain.RoomDetails{
			PublicRoom:     domain.PublicRoom{RoomID: "r1", HostUserID: 7},
			VideoIDs:       []int{3, 5},
			CurrentVideoID: &current,
		})
	})
	r.Post("/api/watch-party/rooms/{roomID}/videos", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]int
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, 5, body["videoId"])

		writeJSON(w, http.StatusOK, domain.PublicRoom{RoomID: "r1", VideoCount: 2})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens{token: "tok"}, testLogger())
	ctx := context.Background()

	room, err := c.CreateRoom(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "r1", room.RoomID)

	details, err := c.GetRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 5}, details.VideoIDs)
	require.NotNil(t, details.CurrentVideoID)
	assert.Equal(t, 3, *details.CurrentVideoID)

	updated, err := c.AddRoomVideo(ctx, "r1", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.VideoCount)
}

func TestUploadSendsMultipartParts(t *testing.T) {
	dir := t.TempDir()
	thumbPath := filepath.Join(dir, "thumb.jpg")
	videoPath := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(thumbPath, []byte("jpeg-bytes"), 0o600))
	require.NoError(t, os.WriteFile(videoPath, []byte("mp4-bytes"), 0o600))

	r := chi.NewRouter()
	r.Post("/api/videos/upload", func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, req.ParseMultipartForm(1<<20))

		var info UploadInfo
		require.NoError(t, json.Unmarshal([]byte(req.FormValue("info")), &info))
		assert.Equal(t, "My clip", info.Title)
		assert.Equal(t, []string{"travel", "city"}, info.Tags)

		for field, want := range map[string]string{"thumbnail": "jpeg-bytes", "video": "mp4-bytes"} {
			f, _, err := req.FormFile(field)
			require.NoError(t, err)
			content, err := io.ReadAll(f)
			require.NoError(t, err)
			f.Close()
			assert.Equal(t, want, string(content))
		}

		w.WriteHeader(http.StatusCreated)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens{token: "tok"}, testLogger())
	info := UploadInfo{Title: "My clip", Description: "from the trip", Tags: []string{"travel", "city"}}

	require.NoError(t, c.Upload(context.Background(), info, thumbPath, videoPath))
}

func TestRequestLogLinesShareRequestID(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/videos", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, []domain.Video{})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	var buf bytes.Buffer
	logger := slog.New(ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})

	c := NewClient(srv.URL, staticTokens{token: "tok"}, logger)
	_, err := c.ListVideos(context.Background())
	require.NoError(t, err)

	var ids []string
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var record struct {
			Msg       string `json:"msg"`
			RequestID string `json:"request_id"`
		}
		require.NoError(t, json.Unmarshal(line, &record))
		require.NotEmpty(t, record.RequestID, "log line %q must carry the request id", record.Msg)
		ids = append(ids, record.RequestID)
	}

	require.GreaterOrEqual(t, len(ids), 2, "request and response must both be logged")
	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id, "all lines of one request share its id")
	}
}

func TestAssetURLs(t *testing.T) {
	c := NewClient("http://host:8080/", staticTokens{}, testLogger())

	assert.Equal(t, "http://host:8080/api/videos/3/thumbnail", c.ThumbnailURL(3))
	assert.Equal(t, "http://host:8080/api/videos/3/stream", c.StreamURL(3))
}
