package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SermonSource is the read side of the sermon data API
type SermonSource interface {
	ListSermons(ctx context.Context, query SermonQuery) (*PaginatedSermons, error)
	GetSermon(ctx context.Context, id string) (*Sermon, error)
}

// SermonClient talks to the external sermon data API
type SermonClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSermonClient creates a client for the sermon API rooted at baseURL
func NewSermonClient(baseURL string, timeout time.Duration) *SermonClient {
	return &SermonClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Sermon is a single sermon record as served by the data API
type Sermon struct {
	ID           string    `json:"id"`
	Topic        string    `json:"topic"`
	Preacher     string    `json:"preacher"`
	FullText     string    `json:"full_text"`
	DatePreached string    `json:"date_preached"`
	Themes       []string  `json:"themes,omitempty"`
	Scriptures   []string  `json:"scriptures,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Pagination describes one page of a sermon listing
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// PaginatedSermons is the list response of the data API
type PaginatedSermons struct {
	Data       []Sermon   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// sermonEnvelope wraps single records returned by the data API
type sermonEnvelope struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Data    *Sermon `json:"data"`
	Code    int     `json:"code"`
}

// SermonQuery holds the list filters passed through to the data API
type SermonQuery struct {
	Page   int
	Limit  int
	Search string
}

// Values encodes the query, leaving out unset fields
func (q SermonQuery) Values() url.Values {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	return values
}

// APIError is returned when the data API answers with a non 2xx status
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sermon API returned status %d: %s", e.Status, e.Message)
}

// NotFound reports whether the upstream said the sermon does not exist
func (e *APIError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// ListSermons fetches one page of sermons
func (sc *SermonClient) ListSermons(ctx context.Context, query SermonQuery) (*PaginatedSermons, error) {
	endpoint := sc.BaseURL + "/sermons"
	if encoded := query.Values().Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var list PaginatedSermons
	if err := sc.getJSON(ctx, endpoint, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetSermon fetches a single sermon by id
func (sc *SermonClient) GetSermon(ctx context.Context, id string) (*Sermon, error) {
	endpoint := sc.BaseURL + "/sermons/" + url.PathEscape(id)

	var envelope sermonEnvelope
	if err := sc.getJSON(ctx, endpoint, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		message := envelope.Message
		if message == "" {
			message = "sermon not found"
		}
		return nil, &APIError{Status: http.StatusNotFound, Message: message}
	}
	return envelope.Data, nil
}

func (sc *SermonClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := sc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call sermon API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Message: upstreamMessage(bodyBytes)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode sermon API response: %w", err)
	}
	return nil
}

// upstreamMessage pulls the message field out of an error body, falling back
// to the raw text
func upstreamMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return "Request failed"
}
