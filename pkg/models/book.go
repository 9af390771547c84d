package models

import (
	"fmt"
	"strings"
	"time"
)

// Status is a book's reading status. Exactly four values exist; anything
// else is rejected at the boundary and never stored.
type Status string

const (
	StatusNone      Status = "none"
	StatusWishlist  Status = "wishlist"
	StatusReadLater Status = "readLater"
	StatusRead      Status = "read"
)

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNone, StatusWishlist, StatusReadLater, StatusRead:
		return true
	}
	return false
}

// ParseStatus normalizes user-supplied status text. An empty string maps to
// StatusNone; unknown text returns an error.
func ParseStatus(s string) (Status, error) {
	switch strings.TrimSpace(s) {
	case "", "none":
		return StatusNone, nil
	case "wishlist":
		return StatusWishlist, nil
	case "readLater":
		return StatusReadLater, nil
	case "read":
		return StatusRead, nil
	}
	return "", fmt.Errorf("status must be one of: none, wishlist, readLater, read")
}

// PlaceholderCover is used when a book has no cover image URL.
const PlaceholderCover = "/placeholder.svg?height=300&width=200"

// Book is the canonical library record. JSON field names are the wire
// contract shared by the gateway, the broadcast envelope and the CLI.
type Book struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Cover       string  `json:"cover"`
	Rating      float64 `json:"rating"`
	Genre       string  `json:"genre"`
	Description string  `json:"description"`
	Pages       int     `json:"pages"`
	Publisher   string  `json:"publisher"`
	PublishYear int     `json:"publishYear"`
	Status      Status  `json:"status"`
	Language    string  `json:"language"`
}

// BookPatch is a partial update. Nil fields are left untouched by Apply.
type BookPatch struct {
	Title       *string  `json:"title,omitempty"`
	Author      *string  `json:"author,omitempty"`
	Cover       *string  `json:"cover,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Genre       *string  `json:"genre,omitempty"`
	Description *string  `json:"description,omitempty"`
	Pages       *int     `json:"pages,omitempty"`
	Publisher   *string  `json:"publisher,omitempty"`
	PublishYear *int     `json:"publishYear,omitempty"`
	Status      *Status  `json:"status,omitempty"`
	Language    *string  `json:"language,omitempty"`
}

// Apply merges the patch into b and returns the result. The ID never
// changes through a patch.
func (p BookPatch) Apply(b Book) Book {
	if p.Title != nil {
		b.Title = strings.TrimSpace(*p.Title)
	}
	if p.Author != nil {
		b.Author = strings.TrimSpace(*p.Author)
	}
	if p.Cover != nil {
		b.Cover = strings.TrimSpace(*p.Cover)
	}
	if p.Rating != nil {
		b.Rating = *p.Rating
	}
	if p.Genre != nil {
		b.Genre = *p.Genre
	}
	if p.Description != nil {
		b.Description = strings.TrimSpace(*p.Description)
	}
	if p.Pages != nil {
		b.Pages = *p.Pages
	}
	if p.Publisher != nil {
		b.Publisher = strings.TrimSpace(*p.Publisher)
	}
	if p.PublishYear != nil {
		b.PublishYear = *p.PublishYear
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.Language != nil {
		b.Language = *p.Language
	}
	return b
}

// StatusPatch builds a patch that only changes the reading status.
func StatusPatch(s Status) BookPatch {
	return BookPatch{Status: &s}
}

// MaxPublishYear is the newest publish year accepted right now. Books can
// be announced up to ten years ahead.
func MaxPublishYear() int {
	return time.Now().Year() + 10
}
