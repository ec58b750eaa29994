package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidshare/client/pkg/ctxlogger"
	"github.com/vidshare/client/pkg/validator"
)

// TokenSource supplies the current bearer token, "" when signed out.
type TokenSource interface {
	Token() string
}

// Client is a typed wrapper over the platform REST API. The bearer header is
// injected per request by an interceptor on the underlying transport.
type Client struct {
	baseURL    string
	httpClient *http.Client
	validate   *validator.Validator
	logger     *slog.Logger
}

func NewClient(baseURL string, tokens TokenSource, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &authTransport{
				tokens: tokens,
				base:   http.DefaultTransport,
			},
		},
		validate: validator.New(),
		logger:   logger,
	}
}

// authTransport injects the Authorization header into every outgoing request
// except the auth endpoints themselves.
type authTransport struct {
	tokens TokenSource
	base   http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	path := req.URL.Path
	if strings.HasSuffix(path, "/api/auth/login") || strings.HasSuffix(path, "/api/auth/register") {
		return t.base.RoundTrip(req)
	}

	token := t.tokens.Token()
	if token == "" {
		return t.base.RoundTrip(req)
	}

	authed := req.Clone(req.Context())
	authed.Header.Set("Authorization", "Bearer "+token)

	return t.base.RoundTrip(authed)
}

// Error is a non-2xx response from the platform.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
	}

	return fmt.Sprintf("api: status %d", e.Status)
}

// checkValid runs struct validation and folds the first failure into an error.
func (c *Client) checkValid(i any) error {
	if errs, ok := c.validate.Validate(i); !ok {
		return fmt.Errorf("invalid request: %w", errs[0])
	}

	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	// a request id correlates the request and response/error log lines
	ctx = ctxlogger.AppendCtx(ctx, slog.String("request_id", uuid.NewString()))
	c.logger.DebugContext(ctx, "api request", "method", method, "path", path)

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(req.Context(), "api response", "status", resp.StatusCode)

	if resp.StatusCode >= 400 {
		apiErr := &Error{Status: resp.StatusCode}
		var serverMsg struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&serverMsg); err == nil {
			apiErr.Message = serverMsg.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
