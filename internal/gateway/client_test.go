package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pranoschal/BookVerse/pkg/models"
)

func TestFetchBooks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/supabase/fetchBooks", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"data": []models.Book{
				{ID: "b1", Title: "Dune", Author: "Frank Herbert"},
				{ID: "b2", Title: "Hyperion", Author: "Dan Simmons"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	books, err := c.FetchBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Dune", books[0].Title)
}

func TestFetchBooksNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	_, err := c.FetchBooks(context.Background())

	var transport *TransportError
	require.ErrorAs(t, err, &transport)
	assert.Equal(t, http.StatusInternalServerError, transport.Status)
}

func TestFetchBooksMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	_, err := c.FetchBooks(context.Background())

	var transport *TransportError
	require.ErrorAs(t, err, &transport)
}

func TestFetchBooksUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", http.DefaultClient)
	_, err := c.FetchBooks(context.Background())

	var transport *TransportError
	require.ErrorAs(t, err, &transport)
	assert.NotNil(t, errors.Unwrap(transport))
}

func TestSaveLibrary(t *testing.T) {
	var received []models.Book
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/supabase/saveLibrary", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(SaveResult{Saved: len(received)})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	result, err := c.SaveLibrary(context.Background(), []models.Book{
		{ID: "b1", Title: "Dune", Author: "Frank Herbert"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Saved)
	require.Len(t, received, 1)
	assert.Equal(t, "b1", received[0].ID)
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/search", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "dune", req["query"])
		json.NewEncoder(w).Encode([]models.Book{{Title: "Dune", Author: "Frank Herbert"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	books, err := c.Search(context.Background(), "dune")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
}
