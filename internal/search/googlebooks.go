// Package search translates free-text queries into candidate book records
// via the Google Books volumes API. Candidate ids are not stable across
// calls; the action surface assigns its own ids on insert.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/Pranoschal/BookVerse/pkg/models"
)

const defaultBaseURL = "https://www.googleapis.com/books/v1"

// Client queries the Google Books API. Requests are rate limited so burst
// assistant usage stays inside the API quota.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL, apiKey string, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(5), 10),
	}
}

type volumesResponse struct {
	Items []volume `json:"items"`
}

type volume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title         string   `json:"title"`
		Authors       []string `json:"authors"`
		Publisher     string   `json:"publisher"`
		PublishedDate string   `json:"publishedDate"`
		Description   string   `json:"description"`
		PageCount     int      `json:"pageCount"`
		Categories    []string `json:"categories"`
		AverageRating float64  `json:"averageRating"`
		Language      string   `json:"language"`
		ImageLinks    struct {
			Thumbnail string `json:"thumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

// Search returns zero or more candidate records for the query.
func (c *Client) Search(ctx context.Context, query string) ([]models.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", query)
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/volumes?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search books: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	var out volumesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	books := make([]models.Book, 0, len(out.Items))
	for _, v := range out.Items {
		books = append(books, v.toBook())
	}
	return books, nil
}

func (v volume) toBook() models.Book {
	info := v.VolumeInfo

	author := "Unknown"
	if len(info.Authors) > 0 {
		author = strings.Join(info.Authors, ", ")
	}

	genre := ""
	if len(info.Categories) > 0 {
		genre = info.Categories[0]
	}

	cover := info.ImageLinks.Thumbnail
	if cover == "" {
		cover = models.PlaceholderCover
	}

	return models.Book{
		ID:          v.ID,
		Title:       info.Title,
		Author:      author,
		Cover:       cover,
		Rating:      info.AverageRating,
		Genre:       genre,
		Description: info.Description,
		Pages:       info.PageCount,
		Publisher:   info.Publisher,
		PublishYear: parseYear(info.PublishedDate),
		Status:      models.StatusNone,
		Language:    normalizeLanguage(info.Language),
	}
}

// parseYear extracts the year from dates like "1965", "2020-08" or
// "2018-10-16".
func parseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

func normalizeLanguage(code string) string {
	switch strings.ToLower(code) {
	case "", "en":
		return "English"
	case "es":
		return "Spanish"
	case "fr":
		return "French"
	case "de":
		return "German"
	case "ja":
		return "Japanese"
	case "hi":
		return "Hindi"
	}
	return code
}
