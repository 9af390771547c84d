package library

import (
	"strings"

	"github.com/Pranoschal/BookVerse/pkg/models"
)

// normalizeIdentity folds a title or author for duplicate comparison.
func normalizeIdentity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsDuplicate reports whether candidate matches any existing record on the
// normalized (title, author) pair. Both fields must match; sharing only an
// author is not a duplicate. Applied on insertion only — edits and
// remote-origin adds (deduplicated by id) are exempt.
func IsDuplicate(candidate models.Book, existing []models.Book) bool {
	title := normalizeIdentity(candidate.Title)
	author := normalizeIdentity(candidate.Author)
	for _, b := range existing {
		if normalizeIdentity(b.Title) == title && normalizeIdentity(b.Author) == author {
			return true
		}
	}
	return false
}

// FindDuplicates returns the existing records that collide with candidate,
// for user-facing duplicate notices.
func FindDuplicates(candidate models.Book, existing []models.Book) []models.Book {
	title := normalizeIdentity(candidate.Title)
	author := normalizeIdentity(candidate.Author)
	var out []models.Book
	for _, b := range existing {
		if normalizeIdentity(b.Title) == title && normalizeIdentity(b.Author) == author {
			out = append(out, b)
		}
	}
	return out
}
