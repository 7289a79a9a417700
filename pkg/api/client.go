// Package api fetches the data shown by the live widgets from the signage
// backend.
//
// Responses carry a SHA-256 digest of their body so that pollers can tell
// whether anything changed since the previous fetch without comparing the
// decoded values.
package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

// Client talks to the backend over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the backend at baseURL with the specified
// request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the backend address requests are made against.
func (c *Client) BaseURL() string { return c.baseURL }

// Lecturer is one entry of the department roster.
type Lecturer struct {
	ID             int    `json:"id"`
	Position       string `json:"position"`
	Title          string `json:"title"`
	Name           string `json:"name"`
	OfficeHours    string `json:"office_hours"`
	OfficeLocation string `json:"office_location"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
}

// Roster is the response of the lecturers endpoint.
type Roster struct {
	Lecturers []Lecturer `json:"lecturers"`
	Digest    string     `json:"-"`
}

// Feed is the response of the content endpoint. Items are left encoded; their
// shape depends on their type field.
type Feed struct {
	Content []json.RawMessage `json:"content"`
	Digest  string            `json:"-"`
}

// Lecturers fetches the department roster from /api/lecturers.
func (c *Client) Lecturers(ctx context.Context) (*Roster, error) {
	body, err := c.get(ctx, "/api/lecturers", nil)
	if err != nil {
		return nil, err
	}
	var r Roster
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("failed to parse lecturers: %w", err)
	}
	r.Digest = Digest(body)
	return &r, nil
}

// Content fetches a content stream from /api/content. An empty stream selects
// the backend's default stream.
func (c *Client) Content(ctx context.Context, stream string) (*Feed, error) {
	var query url.Values
	if stream != "" {
		query = url.Values{"stream": {stream}}
	}
	body, err := c.get(ctx, "/api/content", query)
	if err != nil {
		return nil, err
	}
	var f Feed
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}
	f.Digest = Digest(body)
	return &f, nil
}

// BlobURL returns the address of an uploaded content file.
func (c *Client) BlobURL(id int) string {
	return fmt.Sprintf("%s/api/content/%d/blob", c.baseURL, id)
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: u, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// Digest returns the hex SHA-256 of a response body.
func Digest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch failed: %s returned %s", e.URL, e.Status)
}
