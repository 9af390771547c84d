// Package gateway talks to the remote persistence service that loads and
// saves the full book collection. It is a thin contract-level client: the
// collection either transfers whole or the local state is left untouched.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Pranoschal/BookVerse/pkg/models"
)

const (
	fetchPath  = "/api/supabase/fetchBooks"
	savePath   = "/api/supabase/saveLibrary"
	searchPath = "/api/search"
)

// TransportError reports an unreachable gateway or a non-2xx response.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client is an HTTP client for the sync gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{baseURL: baseURL, httpClient: client}
}

type fetchResponse struct {
	Data []models.Book `json:"data"`
}

// SaveResult reports the outcome of a full-collection save. The server
// upserts by id, so Errors is per-item rather than all-or-nothing.
type SaveResult struct {
	Saved  int      `json:"saved"`
	Errors []string `json:"errors,omitempty"`
}

// FetchBooks loads the full record set. A non-2xx status or malformed body
// is a TransportError; the caller keeps its current state.
func (c *Client) FetchBooks(ctx context.Context) ([]models.Book, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+fetchPath, nil)
	if err != nil {
		return nil, &TransportError{Op: "fetch books", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "fetch books", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: "fetch books", Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "fetch books", Err: err}
	}

	var out fetchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &TransportError{Op: "fetch books", Err: fmt.Errorf("malformed body: %w", err)}
	}
	return out.Data, nil
}

// SaveLibrary persists the full record set in one request.
func (c *Client) SaveLibrary(ctx context.Context, books []models.Book) (SaveResult, error) {
	payload, err := json.Marshal(books)
	if err != nil {
		return SaveResult{}, &TransportError{Op: "save library", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+savePath, bytes.NewReader(payload))
	if err != nil {
		return SaveResult{}, &TransportError{Op: "save library", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SaveResult{}, &TransportError{Op: "save library", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return SaveResult{}, &TransportError{Op: "save library", Status: resp.StatusCode}
	}

	var result SaveResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return SaveResult{}, &TransportError{Op: "save library", Err: fmt.Errorf("malformed body: %w", err)}
	}
	return result, nil
}

// Search asks the gateway's search proxy for candidate records, keeping the
// upstream API key server-side.
func (c *Client) Search(ctx context.Context, query string) ([]models.Book, error) {
	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, &TransportError{Op: "search", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Op: "search", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "search", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: "search", Status: resp.StatusCode}
	}

	var books []models.Book
	if err := json.NewDecoder(resp.Body).Decode(&books); err != nil {
		return nil, &TransportError{Op: "search", Err: fmt.Errorf("malformed body: %w", err)}
	}
	return books, nil
}
