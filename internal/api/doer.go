package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Request is a single call against the Prava API.
type Request struct {
	Method string
	Path   string // relative to the base URL, may include a query string
	Body   any    // JSON-encoded when non-nil

	// NoAuth skips the bearer header (login, register, refresh).
	NoAuth bool
}

// Response is a successful (2xx) reply.
type Response struct {
	Status    int
	Body      []byte
	RequestID string
}

// Doer executes Requests. The HTTP implementation is wrapped by retry and
// logging decorators the same way on every call path.
type Doer interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// TokenSource supplies the current access token, or "" when logged out.
type TokenSource interface {
	AccessToken() string
}

// HTTPDoer is the base Doer that talks HTTP to the API.
type HTTPDoer struct {
	baseURL   string
	client    *http.Client
	tokens    TokenSource
	userAgent string
}

// NewHTTPDoer creates a Doer rooted at baseURL.
func NewHTTPDoer(baseURL string, client *http.Client, tokens TokenSource, userAgent string) *HTTPDoer {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPDoer{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    client,
		tokens:    tokens,
		userAgent: userAgent,
	}
}

func (d *HTTPDoer) Do(ctx context.Context, req Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, d.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestID := RequestIDFrom(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if d.userAgent != "" {
		httpReq.Header.Set("User-Agent", d.userAgent)
	}
	if !req.NoAuth && d.tokens != nil {
		if tok := d.tokens.AccessToken(); tok != "" {
			httpReq.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, &Error{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newHTTPError(resp.StatusCode, raw)
		apiErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, apiErr
	}

	return &Response{Status: resp.StatusCode, Body: raw, RequestID: requestID}, nil
}

// parseRetryAfter handles the delta-seconds form of Retry-After.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
