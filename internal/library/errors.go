package library

import "fmt"

// ValidationError reports an invalid field value on add or edit. The
// mutation it belongs to is never applied.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// DuplicateError reports an insertion rejected by the duplicate guard.
// It is a user-visible notice, not a hard failure.
type DuplicateError struct {
	Title  string
	Author string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%q by %s already exists in the library", e.Title, e.Author)
}

// NotFoundError reports an explicit edit or delete against an unknown id.
// Remote-origin events racing a delete take the silent-no-op path in the
// store instead.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no book with id %q in the library", e.ID)
}
