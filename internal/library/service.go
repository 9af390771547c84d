// Package library is the action surface: every mutation path — direct UI,
// CLI or assistant tool — funnels through Service so validation, duplicate
// policy and cross-session broadcasting apply uniformly.
package library

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Pranoschal/BookVerse/internal/broadcast"
	"github.com/Pranoschal/BookVerse/internal/gateway"
	"github.com/Pranoschal/BookVerse/internal/store"
	"github.com/Pranoschal/BookVerse/pkg/models"
)

// Syncer is the remote gateway contract the service depends on.
type Syncer interface {
	FetchBooks(ctx context.Context) ([]models.Book, error)
	SaveLibrary(ctx context.Context, books []models.Book) (gateway.SaveResult, error)
}

// Service owns the mutation entry points for one session. Mutations apply
// to the local store first, then broadcast their delta; events replayed by
// the listener never come back through here, so nothing is ever
// rebroadcast.
type Service struct {
	store  *store.Store
	bus    *broadcast.Publisher
	remote Syncer
	logger *log.Logger
}

// NewService wires the action surface. bus may be nil for a session that
// does not participate in cross-session sync; remote may be nil when no
// gateway is configured.
func NewService(st *store.Store, bus *broadcast.Publisher, remote Syncer, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{store: st, bus: bus, remote: remote, logger: logger}
}

// Store exposes the session's record store for read access and listener
// wiring.
func (s *Service) Store() *store.Store { return s.store }

// Books returns the current collection in insertion order.
func (s *Service) Books() []models.Book { return s.store.Books() }

// AddBook validates and inserts a new record, assigning it a fresh id.
// Insertions matching an existing record's normalized (title, author) pair
// are rejected with a DuplicateError before anything is stored or
// broadcast.
func (s *Service) AddBook(b models.Book) (models.Book, error) {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	if b.Cover == "" {
		b.Cover = models.PlaceholderCover
	}
	if b.Status == "" {
		b.Status = models.StatusNone
	}

	if err := Validate(b); err != nil {
		return models.Book{}, err
	}
	if IsDuplicate(b, s.store.Books()) {
		return models.Book{}, &DuplicateError{Title: b.Title, Author: b.Author}
	}

	b.ID = uuid.NewString()
	s.store.Add(b)
	s.publish(broadcast.EventAddBook, b)
	return b, nil
}

// EditBook merges a patch into an existing record. The duplicate guard does
// not apply to edits. The merged record is broadcast wholesale so receivers
// converge on last-write-wins.
func (s *Service) EditBook(id string, patch models.BookPatch) (models.Book, error) {
	current, ok := s.store.Get(id)
	if !ok {
		return models.Book{}, &NotFoundError{ID: id}
	}

	merged := patch.Apply(current)
	if err := Validate(merged); err != nil {
		return models.Book{}, err
	}

	s.store.Replace(merged)
	s.publish(broadcast.EventUpdateBook, merged)
	return merged, nil
}

// SetStatus moves a record to the given reading status. Any status may
// transition to any other; there are no automatic transitions.
func (s *Service) SetStatus(id string, status models.Status) (models.Book, error) {
	if !status.Valid() {
		return models.Book{}, &ValidationError{
			Field:   "status",
			Message: "must be one of: none, wishlist, readLater, read",
		}
	}
	return s.EditBook(id, models.StatusPatch(status))
}

// DeleteBook removes a record. Unlike the store's silent no-op for remote
// races, an explicit delete of an unknown id is surfaced to the caller.
func (s *Service) DeleteBook(id string) error {
	if !s.store.Remove(id) {
		return &NotFoundError{ID: id}
	}
	s.publish(broadcast.EventDeleteBook, id)
	return nil
}

// Load replaces the collection with the gateway's copy. Used at session
// start and for REFRESH_BOOKS handling; it never broadcasts.
func (s *Service) Load(ctx context.Context) error {
	if s.remote == nil {
		return nil
	}
	books, err := s.remote.FetchBooks(ctx)
	if err != nil {
		return err
	}
	s.store.ReplaceAll(books)
	return nil
}

// SaveLibrary persists the full collection, then tells other sessions to
// reload rather than shipping the whole set over the medium.
func (s *Service) SaveLibrary(ctx context.Context) (gateway.SaveResult, error) {
	if s.remote == nil {
		return gateway.SaveResult{}, nil
	}
	result, err := s.remote.SaveLibrary(ctx, s.store.Books())
	if err != nil {
		return gateway.SaveResult{}, err
	}
	s.publish(broadcast.EventRefreshBooks, nil)
	return result, nil
}

// Refresh is the listener's reload hook: a background Load that only logs
// failures, since there is no caller to surface them to.
func (s *Service) Refresh() {
	if err := s.Load(context.Background()); err != nil {
		s.logger.Warn("refresh after remote save failed", "err", err)
	}
}

func (s *Service) publish(t broadcast.EventType, payload any) {
	if s.bus != nil {
		s.bus.Publish(t, payload)
	}
}
