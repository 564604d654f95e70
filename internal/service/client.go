// Package service talks to the hotel recommendation service: one POST /ask
// per query, answered with text and optional base64 audio.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// maxResponseBytes caps the answer body; audio makes it large.
const maxResponseBytes = 64 << 20

// ErrMalformedResponse marks a 2xx body that is not a valid answer.
var ErrMalformedResponse = errors.New("malformed service response")

// Request is the JSON body of POST /ask.
type Request struct {
	Query string `json:"query"`
}

// Answer is a successful response. AudioBase64 is either raw base64 or a
// complete data URI, and may be empty.
type Answer struct {
	Text        string `json:"text"`
	AudioBase64 string `json:"audio_base64"`
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("service returned HTTP %d", e.Code)
	}
	return fmt.Sprintf("service returned HTTP %d: %s", e.Code, e.Message)
}

// Client posts queries to a fixed ask endpoint.
type Client struct {
	url    string
	http   *http.Client
	logger *slog.Logger
}

// NewClient targets url. A zero timeout leaves the request bounded only by
// the caller's context.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url:    url,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// URL returns the ask endpoint.
func (c *Client) URL() string { return c.url }

// Ask issues exactly one request for query.
func (c *Client) Ask(ctx context.Context, query string) (Answer, error) {
	body, err := json.Marshal(Request{Query: query})
	if err != nil {
		return Answer{}, fmt.Errorf("encode ask request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Answer{}, fmt.Errorf("build ask request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return Answer{}, fmt.Errorf("post %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	c.logDebug("ask response", "status", resp.StatusCode, "elapsed_ms", time.Since(started).Milliseconds())

	limited := io.LimitReader(resp.Body, maxResponseBytes)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Answer{}, &StatusError{Code: resp.StatusCode, Message: errorMessage(limited)}
	}

	return decodeAnswer(limited)
}

func decodeAnswer(r io.Reader) (Answer, error) {
	var payload struct {
		Text        *string `json:"text"`
		AudioBase64 *string `json:"audio_base64"`
	}
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&payload); err != nil {
		return Answer{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Text == nil {
		return Answer{}, fmt.Errorf("%w: missing text field", ErrMalformedResponse)
	}

	answer := Answer{Text: *payload.Text}
	if payload.AudioBase64 != nil {
		answer.AudioBase64 = *payload.AudioBase64
	}
	return answer, nil
}

// errorMessage extracts the "error" field the service sends with failures,
// dropping any stack trace.
func errorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 8<<10))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		return truncate(payload.Error, 200)
	}
	return truncate(strings.TrimSpace(string(raw)), 200)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

func (c *Client) logDebug(msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Debug(msg, args...)
}
