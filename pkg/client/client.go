// Package client is a small Go consumer of the treatment board API. It keeps
// its own wire types so importing programs stay decoupled from the server
// internals.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrRemoteUnavailable wraps transport failures and 5xx responses that
// survived retrying.
var ErrRemoteUnavailable = errors.New("remote unavailable")

// ErrNotFound is returned for 404 responses.
var ErrNotFound = errors.New("record not found")

// Record mirrors one treatment record on the wire.
type Record struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Location string    `json:"location"`
	Drug     string    `json:"drug"`
	Start    string    `json:"start"`
	Duration int       `json:"duration"`
	Status   string    `json:"status"`
	EndDate  string    `json:"endDate,omitempty"`
	Messages []Message `json:"messages"`
}

// Message mirrors one thread entry on the wire.
type Message struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Board is the status-partitioned listing.
type Board struct {
	Active    []Record `json:"active"`
	Completed []Record `json:"completed"`
}

// APIError carries a non-2xx response the server produced deliberately.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Body)
}

// Client talks to one treatment board server. Reads are retried on transport
// errors and 5xx responses; mutations are sent exactly once.
type Client struct {
	base       string
	http       *http.Client
	maxRetries int
	backoff    time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetries sets the read retry count and initial backoff.
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = n
		c.backoff = backoff
	}
}

// New creates a Client for the server at base, e.g. "http://localhost:8000".
func New(base string, opts ...Option) *Client {
	c := &Client{
		base:       base,
		http:       &http.Client{Timeout: 10 * time.Second},
		maxRetries: 3,
		backoff:    200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListBoard fetches the full partitioned board.
func (c *Client) ListBoard(ctx context.Context) (*Board, error) {
	var board Board
	if err := c.getJSON(ctx, "/patients", &board); err != nil {
		return nil, err
	}
	return &board, nil
}

// Get fetches one record by id.
func (c *Client) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	if err := c.getJSON(ctx, "/patients/"+id, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Messages fetches a record's thread, newest first.
func (c *Client) Messages(ctx context.Context, id string) ([]Message, error) {
	var msgs []Message
	if err := c.getJSON(ctx, "/patients/"+id+"/messages", &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Create registers a new treatment record.
func (c *Client) Create(ctx context.Context, rec *Record) (*Record, error) {
	return c.mutate(ctx, http.MethodPost, "/patients", rec)
}

// UpdateFields is a partial record update; nil fields are left unchanged.
type UpdateFields struct {
	Name     *string `json:"name,omitempty"`
	Location *string `json:"location,omitempty"`
	Drug     *string `json:"drug,omitempty"`
	Start    *string `json:"start,omitempty"`
	Duration *int    `json:"duration,omitempty"`
	Status   *string `json:"status,omitempty"`
	EndDate  *string `json:"endDate,omitempty"`
}

// Update merges the given fields into an existing record.
func (c *Client) Update(ctx context.Context, id string, fields UpdateFields) (*Record, error) {
	return c.mutate(ctx, http.MethodPut, "/patients/"+id, fields)
}

// Discharge moves a record to history.
func (c *Client) Discharge(ctx context.Context, id string) (*Record, error) {
	return c.mutate(ctx, http.MethodPost, "/patients/"+id+"/discharge", nil)
}

// Restore moves a history record back to active.
func (c *Client) Restore(ctx context.Context, id string) (*Record, error) {
	return c.mutate(ctx, http.MethodPost, "/patients/"+id+"/restore", nil)
}

// Relocate updates a record's bed or unit.
func (c *Client) Relocate(ctx context.Context, id, location string) (*Record, error) {
	return c.mutate(ctx, http.MethodPost, "/patients/"+id+"/relocate",
		map[string]string{"location": location})
}

// Extend adds days to a record's planned duration.
func (c *Client) Extend(ctx context.Context, id string, days int) (*Record, error) {
	return c.mutate(ctx, http.MethodPost, "/patients/"+id+"/extend",
		map[string]int{"days": days})
}

// AddMessage appends a note to a record's thread.
func (c *Client) AddMessage(ctx context.Context, id string, msg Message) (*Message, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	res, err := c.do(ctx, http.MethodPost, "/patients/"+id+"/messages", body)
	if err != nil {
		return nil, err
	}
	var out Message
	if err := decode(res, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a history record permanently.
func (c *Client) Delete(ctx context.Context, id string) error {
	res, err := c.do(ctx, http.MethodDelete, "/patients/"+id, nil)
	if err != nil {
		return err
	}
	res.Body.Close()
	return nil
}

func (c *Client) mutate(ctx context.Context, method, path string, payload interface{}) (*Record, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	res, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := decode(res, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// getJSON retries transient failures with exponential backoff. A response
// the server produced deliberately (4xx) is returned immediately.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	backoff := c.backoff
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		res, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			if !errors.Is(err, ErrRemoteUnavailable) {
				return err
			}
			lastErr = err
			continue
		}
		return decode(res, out)
	}
	return lastErr
}

// do runs one request. Transport errors and 5xx responses come back wrapped
// in ErrRemoteUnavailable; other non-2xx responses become an *APIError.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	if res.StatusCode >= 500 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		res.Body.Close()
		return nil, fmt.Errorf("%w: status %d: %s", ErrRemoteUnavailable, res.StatusCode, bytes.TrimSpace(msg))
	}
	if res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil, ErrNotFound
	}
	if res.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		res.Body.Close()
		return nil, &APIError{StatusCode: res.StatusCode, Body: string(bytes.TrimSpace(msg))}
	}
	return res, nil
}

func decode(res *http.Response, out interface{}) error {
	defer res.Body.Close()
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
