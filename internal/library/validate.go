package library

import (
	"fmt"
	"strings"

	"github.com/Pranoschal/BookVerse/pkg/models"
)

// Validate checks a record against the library invariants. The id is not
// checked here; it is assigned by the action surface on insert.
func Validate(b models.Book) error {
	if strings.TrimSpace(b.Title) == "" {
		return &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if strings.TrimSpace(b.Author) == "" {
		return &ValidationError{Field: "author", Message: "must not be empty"}
	}
	if b.Pages <= 0 {
		return &ValidationError{Field: "pages", Message: "must be greater than 0"}
	}
	if max := models.MaxPublishYear(); b.PublishYear < 1000 || b.PublishYear > max {
		return &ValidationError{
			Field:   "publishYear",
			Message: fmt.Sprintf("must be between 1000 and %d", max),
		}
	}
	if b.Rating < 0 || b.Rating > 5 {
		return &ValidationError{Field: "rating", Message: "must be between 0 and 5"}
	}
	if !b.Status.Valid() {
		return &ValidationError{
			Field:   "status",
			Message: "must be one of: none, wishlist, readLater, read",
		}
	}
	return nil
}
