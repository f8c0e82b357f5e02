package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"coursework-roadmap/internal/apperrors"
)

// RequestIDHeader carries a per-call id for correlating client and server logs
const RequestIDHeader = "X-Request-ID"

// TokenSource supplies the bearer token for authenticated calls
type TokenSource interface {
	Token() (string, error)
}

type authMode int

const (
	// authNone sends no Authorization header
	authNone authMode = iota
	// authOptional sends the token when one is available
	authOptional
	// authRequired fails locally when no token is available
	authRequired
)

// Client performs JSON calls against the coursework service
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// NewClient creates a client for baseURL. tokens may be nil for anonymous use.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
		tokens: tokens,
	}
}

// BaseURL returns the service root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doJSON sends body as JSON and decodes a 2xx response into target
func (c *Client) doJSON(ctx context.Context, method, path string, auth authMode, body, target any) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(req, auth)
	if err != nil {
		return err
	}
	return parseResponse(resp, target)
}

// send attaches auth and a request id, then performs req
func (c *Client) send(req *http.Request, auth authMode) (*http.Response, error) {
	if err := c.authorize(req, auth); err != nil {
		return nil, err
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperrors.Transient(0, "could not reach the coursework service", err)
	}
	return resp, nil
}

func (c *Client) authorize(req *http.Request, auth authMode) error {
	if auth == authNone {
		return nil
	}

	var token string
	var tokenErr error
	if c.tokens != nil {
		token, tokenErr = c.tokens.Token()
	}
	if token == "" {
		if auth == authOptional {
			return nil
		}
		if tokenErr != nil {
			return tokenErr
		}
		return apperrors.Auth(http.StatusUnauthorized, "Authentication required")
	}

	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// errorResponse is the service's error body
type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// parseResponse maps non-2xx statuses to apperrors and decodes the body into
// target otherwise
func parseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return err
	}

	if target == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.Transient(resp.StatusCode, "failed to decode response", err)
	}
	return nil
}

// statusError maps a non-2xx response to an apperrors error, consuming the
// body. It returns nil for 2xx responses and leaves the body unread.
func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	return apperrors.FromStatus(resp.StatusCode, errorDetail(body))
}

// errorDetail extracts a readable message from an error body. detail is a
// string for handled errors and a list of field errors for request validation.
func errorDetail(body []byte) string {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && len(errResp.Detail) > 0 {
		var msg string
		if err := json.Unmarshal(errResp.Detail, &msg); err == nil {
			return msg
		}

		var fields []struct {
			Loc []any  `json:"loc"`
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(errResp.Detail, &fields); err == nil && len(fields) > 0 {
			parts := make([]string, 0, len(fields))
			for _, f := range fields {
				parts = append(parts, f.Msg)
			}
			return strings.Join(parts, "; ")
		}
		return string(errResp.Detail)
	}
	return strings.TrimSpace(string(body))
}
