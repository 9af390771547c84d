// Package store holds the canonical in-memory book collection for one
// session. The store owns its records exclusively; consumers get copies and
// route every mutation back through the action surface.
package store

import (
	"sync"

	"github.com/Pranoschal/BookVerse/pkg/models"
)

// Store is an ordered, mutex-guarded collection of book records. Mutations
// are synchronous; registered watchers are notified after each one so views
// can re-render.
type Store struct {
	mu       sync.Mutex
	books    []models.Book
	watchers map[int]func()
	nextID   int
}

func New() *Store {
	return &Store{watchers: make(map[int]func())}
}

// Watch registers fn to run after every mutation. The returned cancel func
// removes the watcher; it is safe to call more than once.
func (s *Store) Watch(fn func()) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

// notify runs outside the lock so watchers may read the store.
func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Add appends a fully-formed record to the sequence.
func (s *Store) Add(b models.Book) {
	s.mu.Lock()
	s.books = append(s.books, b)
	s.mu.Unlock()
	s.notify()
}

// Update merges patch into the record with the given id, preserving fields
// the patch does not set. A missing id is a silent no-op: remote sessions
// may legitimately race ahead of a delete.
func (s *Store) Update(id string, patch models.BookPatch) bool {
	s.mu.Lock()
	ok := false
	for i := range s.books {
		if s.books[i].ID == id {
			s.books[i] = patch.Apply(s.books[i])
			ok = true
			break
		}
	}
	s.mu.Unlock()

	if ok {
		s.notify()
	}
	return ok
}

// Replace swaps the record matching b.ID wholesale. A missing id is a
// silent no-op.
func (s *Store) Replace(b models.Book) bool {
	s.mu.Lock()
	ok := false
	for i := range s.books {
		if s.books[i].ID == b.ID {
			s.books[i] = b
			ok = true
			break
		}
	}
	s.mu.Unlock()

	if ok {
		s.notify()
	}
	return ok
}

// Remove filters out the record with the given id. A missing id is a
// silent no-op.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	ok := false
	out := s.books[:0]
	for _, b := range s.books {
		if b.ID == id {
			ok = true
			continue
		}
		out = append(out, b)
	}
	s.books = out
	s.mu.Unlock()

	if ok {
		s.notify()
	}
	return ok
}

// ReplaceAll discards the current contents in favor of records. Used only
// for full reloads from the gateway.
func (s *Store) ReplaceAll(records []models.Book) {
	s.mu.Lock()
	s.books = make([]models.Book, len(records))
	copy(s.books, records)
	s.mu.Unlock()
	s.notify()
}

// Books returns a copy of the sequence in insertion order.
func (s *Store) Books() []models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Book, len(s.books))
	copy(out, s.books)
	return out
}

// Get returns the record with the given id, if present.
func (s *Store) Get(id string) (models.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.books {
		if b.ID == id {
			return b, true
		}
	}
	return models.Book{}, false
}

// Has reports whether a record with the given id exists.
func (s *Store) Has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.books)
}
