// Package evalapi is the HTTP client for the course evaluation service:
// it fetches the question list, downloads attached task files, and
// submits the final answer payload for scoring.
package evalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mjimenezh/gaiabench/internal/models"
)

// ErrNoFile is returned by File when the task has no attached file.
var ErrNoFile = errors.New("no file available for task")

// ErrTimeout is returned when a request exceeds the client timeout.
var ErrTimeout = errors.New("request timed out")

// maxErrorBodyBytes bounds how much of an error response body is kept
// for display.
const maxErrorBodyBytes = 500

// HTTPError is returned when the server responds with a non-2xx status.
type HTTPError struct {
	StatusCode int
	// Detail is the "detail" field of the JSON error body, when the
	// body parses as JSON.
	Detail string
	// Body holds the raw response body (truncated) when Detail could
	// not be extracted.
	Body string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server responded with status %d. Detail: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("server responded with status %d. Response: %s", e.StatusCode, e.Body)
}

// Client talks to the evaluation API. The zero value is not usable;
// construct with New.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (useful for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for the given API base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SubmitURL returns the full URL answers are posted to.
func (c *Client) SubmitURL() string {
	return c.baseURL + "/submit"
}

// Questions fetches the full question list for the current run.
func (c *Client) Questions(ctx context.Context) ([]models.QuestionItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/questions", nil)
	if err != nil {
		return nil, fmt.Errorf("building questions request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, newHTTPError(resp)
	}

	var items []models.QuestionItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decoding questions response: %w", err)
	}

	c.logger.Debug("fetched questions", "count", len(items))
	return items, nil
}

// File downloads the task file attached to the given task, returning
// its raw bytes. ErrNoFile is returned when the server reports 404;
// callers treat any failure here as "no file available".
func (c *Client) File(ctx context.Context, taskID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/files/"+url.PathEscape(taskID), nil)
	if err != nil {
		return nil, fmt.Errorf("building file request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoFile
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newHTTPError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading file body: %w", err)
	}
	return data, nil
}

// Submit posts the payload to the scoring endpoint. This is a one-shot
// call: failures are surfaced directly, never retried.
func (c *Client) Submit(ctx context.Context, payload *models.SubmissionPayload) (*models.SubmissionReceipt, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding submission payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.SubmitURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("submitting answers", "count", len(payload.Answers), "url", c.SubmitURL())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newHTTPError(resp)
	}

	var receipt models.SubmissionReceipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return nil, fmt.Errorf("decoding submission response: %w", err)
	}
	return &receipt, nil
}

// newHTTPError builds an HTTPError from a non-2xx response, preferring
// the JSON "detail" field over the raw body.
func newHTTPError(resp *http.Response) *HTTPError {
	httpErr := &HTTPError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		return httpErr
	}

	var parsed struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Detail != "" {
		httpErr.Detail = parsed.Detail
		return httpErr
	}

	httpErr.Body = string(raw)
	return httpErr
}

// classifyTransportError maps client-side failures into the error
// taxonomy: timeouts become ErrTimeout, everything else is wrapped as a
// network error.
func classifyTransportError(err error) error {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return fmt.Errorf("network error: %w", err)
}
