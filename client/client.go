// Package client is the Go SDK for the tracker points service: it delivers
// award requests with bounded retry and keeps a local hint cache of daily
// task completions so the UI avoids redundant round-trips.
package client

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
)

// ErrNoSession is returned when no authenticated session is available.
// It is never retried.
var ErrNoSession = errors.New("tracker: no active session")

const defaultMaxAttempts = 3

// TokenSource yields the bearer token for the current session.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns a TokenSource that always yields the same token.
func StaticTokenSource(token string) TokenSource {
	return staticToken(token)
}

type staticToken string

func (s staticToken) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

// APIError describes a non-2xx response from the award service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tracker: award service returned %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether a retry could plausibly succeed. Client errors
// are permanent: retrying an invalid request cannot fix it.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500
}

// Client sends authenticated award requests to the tracker service.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      TokenSource
	maxAttempts int
	backoffUnit time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackoffUnit scales the retry backoff. Tests shrink it to keep runs fast.
func WithBackoffUnit(d time.Duration) Option {
	return func(c *Client) { c.backoffUnit = d }
}

// New creates a Client for the given service base URL.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		tokens:      tokens,
		maxAttempts: defaultMaxAttempts,
		backoffUnit: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type awardPayload struct {
	UserID          string `json:"user_id"`
	ActivityType    string `json:"activity_type"`
	PointsAwarded   int    `json:"points_awarded"`
	RelatedItemID   string `json:"related_item_id,omitempty"`
	RelatedItemType string `json:"related_item_type,omitempty"`
	RequestID       string `json:"request_id"`
}

// AwardResponse is the award service's success payload. NewXP and NewLevel
// are nil when the task was already completed today (no points awarded).
type AwardResponse struct {
	Message       string `json:"message"`
	NewXP         *int   `json:"new_xp"`
	NewLevel      *int   `json:"new_level"`
	PointsAwarded *int   `json:"points_awarded"`
}

// AwardPoints delivers one award request, retrying transient failures up to
// three total attempts with exponential backoff (1s, 2s). A single request_id
// is reused across retries so the server absorbs duplicate delivery. Fails
// immediately with ErrNoSession when no session token is available.
func (c *Client) AwardPoints(ctx context.Context, userID, activityType string, points int, relatedItemID, relatedItemType string) (*AwardResponse, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil || token == "" {
		return nil, ErrNoSession
	}

	payload := awardPayload{
		UserID:          userID,
		ActivityType:    activityType,
		PointsAwarded:   points,
		RelatedItemID:   relatedItemID,
		RelatedItemType: relatedItemType,
		RequestID:       uuid.NewString(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			// delay = 2^(attempt-1) units between attempts
			select {
			case <-time.After(c.backoffUnit << (attempt - 1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := c.post(ctx, token, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) post(ctx context.Context, token string, body []byte) (*AwardResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/tracker/award", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var out AwardResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("tracker: malformed award response: %w", err)
	}
	return &out, nil
}
