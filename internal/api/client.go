// Package api is the single HTTP gateway to the backend. It attaches the
// viewer's bearer token, normalizes reply envelopes, and transparently
// refreshes the access token on 401 with at most one refresh in flight.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/tubeview/tubeview/internal/auth"
)

// ErrSessionExpired indicates the refresh token was rejected and all stored
// credentials have been cleared; the viewer must log in again.
var ErrSessionExpired = errors.New("session expired, please log in again")

const (
	loginPath   = "/users/login"
	refreshPath = "/users/refresh-token"
)

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithRateLimit throttles outgoing requests to rps with the given burst.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// Client is the API gateway. All service packages go through it.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	creds      *auth.Store
	logger     *slog.Logger
	limiter    *rate.Limiter
	refresh    singleflight.Group
}

// NewClient creates a gateway client for the given base URL and credential
// store.
func NewClient(baseURL string, creds *auth.Store, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		creds:      creds,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Credentials exposes the credential store backing this client.
func (c *Client) Credentials() *auth.Store { return c.creds }

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string) (Envelope, error) {
	return c.Request(ctx, http.MethodGet, path, nil)
}

// Post issues a POST request with a JSON body (nil for no body).
func (c *Client) Post(ctx context.Context, path string, body interface{}) (Envelope, error) {
	return c.Request(ctx, http.MethodPost, path, body)
}

// Patch issues a PATCH request with a JSON body (nil for no body).
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (Envelope, error) {
	return c.Request(ctx, http.MethodPatch, path, body)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (Envelope, error) {
	return c.Request(ctx, http.MethodDelete, path, nil)
}

// Request issues an HTTP request with an optional JSON body and returns the
// normalized reply envelope. Replies whose envelope reports failure are
// returned as *APIError.
func (c *Client) Request(ctx context.Context, method, path string, body interface{}) (Envelope, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return Envelope{}, fmt.Errorf("failed to encode request body: %w", err)
		}
	}
	return c.send(ctx, method, path, payload, "application/json")
}

// FileUpload names a file to attach to a multipart request.
type FileUpload struct {
	Field string
	Path  string
}

// RequestMultipart issues a multipart/form-data request with the given text
// fields and file attachments.
func (c *Client) RequestMultipart(ctx context.Context, method, path string, fields map[string]string, files []FileUpload) (Envelope, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return Envelope{}, fmt.Errorf("failed to write form field %q: %w", key, err)
		}
	}
	for _, upload := range files {
		if err := attachFile(writer, upload); err != nil {
			return Envelope{}, err
		}
	}
	if err := writer.Close(); err != nil {
		return Envelope{}, fmt.Errorf("failed to finalize form: %w", err)
	}

	return c.send(ctx, method, path, buf.Bytes(), writer.FormDataContentType())
}

func attachFile(writer *multipart.Writer, upload FileUpload) error {
	file, err := os.Open(upload.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", upload.Path, err)
	}
	defer file.Close()

	part, err := writer.CreateFormFile(upload.Field, filepath.Base(upload.Path))
	if err != nil {
		return fmt.Errorf("failed to create form file %q: %w", upload.Field, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read %s: %w", upload.Path, err)
	}
	return nil
}

// send performs the request and, on a 401 from any endpoint except login and
// refresh, refreshes the token once and replays the request. The body is held
// as bytes so the replay is byte-identical.
func (c *Client) send(ctx context.Context, method, path string, body []byte, contentType string) (Envelope, error) {
	status, replyBody, err := c.do(ctx, method, path, body, contentType)
	if err != nil {
		return Envelope{}, err
	}

	if status == http.StatusUnauthorized && path != loginPath && path != refreshPath {
		if err := c.refreshTokens(ctx); err != nil {
			return Envelope{}, err
		}
		status, replyBody, err = c.do(ctx, method, path, body, contentType)
		if err != nil {
			return Envelope{}, err
		}
	}

	env := normalizeEnvelope(status, replyBody)
	if !env.Success {
		return env, &APIError{StatusCode: env.StatusCode, Message: env.Message}
	}
	return env, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, err
		}
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	if len(body) > 0 {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)

	if creds, err := c.creds.Load(); err == nil {
		req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	replyBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("api request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", requestID),
	)

	return resp.StatusCode, replyBody, nil
}

// refreshTokens exchanges the stored refresh token for a new pair. Concurrent
// callers share a single in-flight exchange; every sharer observes the same
// outcome. On failure all stored credentials are cleared.
func (c *Client) refreshTokens(ctx context.Context) error {
	_, err, _ := c.refresh.Do("refresh", func() (interface{}, error) {
		creds, err := c.creds.Load()
		if err != nil {
			return nil, ErrSessionExpired
		}

		payload, err := json.Marshal(map[string]string{"refreshToken": creds.RefreshToken})
		if err != nil {
			return nil, fmt.Errorf("failed to encode refresh request: %w", err)
		}

		status, body, err := c.do(ctx, http.MethodPost, refreshPath, payload, "application/json")
		if err != nil {
			return nil, fmt.Errorf("token refresh failed: %w", err)
		}

		env := normalizeEnvelope(status, body)
		if !env.Success {
			c.logger.Warn("token refresh rejected", slog.Int("status", env.StatusCode))
			if clearErr := c.creds.Clear(); clearErr != nil {
				c.logger.Warn("failed to clear credentials", slog.Any("error", clearErr))
			}
			return nil, ErrSessionExpired
		}

		var tokens struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		}
		if err := env.Decode(&tokens); err != nil || tokens.AccessToken == "" {
			if clearErr := c.creds.Clear(); clearErr != nil {
				c.logger.Warn("failed to clear credentials", slog.Any("error", clearErr))
			}
			return nil, ErrSessionExpired
		}

		if err := c.creds.Save(auth.Credentials{
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
		}); err != nil {
			return nil, fmt.Errorf("failed to store refreshed tokens: %w", err)
		}

		c.logger.Info("access token refreshed")
		return nil, nil
	})
	return err
}
