// Package server exposes the gateway's HTTP surface: full-collection load
// and save backed by sqlite, plus the search proxy that keeps the books API
// key out of clients.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/Pranoschal/BookVerse/internal/storage"
	"github.com/Pranoschal/BookVerse/pkg/models"
)

// Searcher is the upstream search provider the /api/search route proxies.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.Book, error)
}

type Handler struct {
	Repo     *storage.Repo
	Searcher Searcher
	Logger   *log.Logger
}

func NewHandler(repo *storage.Repo, searcher Searcher, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{Repo: repo, Searcher: searcher, Logger: logger}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/supabase/fetchBooks", h.fetchBooks)
	r.POST("/api/supabase/saveLibrary", h.saveLibrary)
	r.POST("/api/search", h.search)
}

func (h *Handler) fetchBooks(c *gin.Context) {
	books, err := h.Repo.List(c.Request.Context())
	if err != nil {
		h.Logger.Error("fetch books failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": books})
}

// saveLibrary upserts the posted collection item by item. A bad record
// does not abort the rest; it is reported back per item.
func (h *Handler) saveLibrary(c *gin.Context) {
	var books []models.Book
	if err := c.ShouldBindJSON(&books); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	saved := 0
	kept := make([]string, 0, len(books))
	var itemErrors []string
	for _, b := range books {
		if b.ID == "" {
			itemErrors = append(itemErrors, fmt.Sprintf("%q by %s: missing id", b.Title, b.Author))
			continue
		}
		if !b.Status.Valid() {
			itemErrors = append(itemErrors, fmt.Sprintf("%s: invalid status %q", b.ID, b.Status))
			continue
		}
		if err := h.Repo.Upsert(c.Request.Context(), b); err != nil {
			h.Logger.Error("upsert failed", "id", b.ID, "err", err)
			itemErrors = append(itemErrors, fmt.Sprintf("%s: save failed", b.ID))
			continue
		}
		saved++
	}

	// A full-collection save replaces the library wholesale: rows absent
	// from the payload are deleted. Rejected items keep their stored copy.
	for _, b := range books {
		if b.ID != "" {
			kept = append(kept, b.ID)
		}
	}
	if _, err := h.Repo.PruneExcept(c.Request.Context(), kept); err != nil {
		h.Logger.Error("prune failed", "err", err)
	}

	c.JSON(http.StatusOK, gin.H{"saved": saved, "errors": itemErrors})
}

type searchRequest struct {
	Query string `json:"query"`
}

func (h *Handler) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query required"})
		return
	}
	if h.Searcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search not configured"})
		return
	}

	books, err := h.Searcher.Search(c.Request.Context(), req.Query)
	if err != nil {
		h.Logger.Error("search failed", "query", req.Query, "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, books)
}
