package library

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pranoschal/BookVerse/internal/broadcast"
	"github.com/Pranoschal/BookVerse/internal/gateway"
	"github.com/Pranoschal/BookVerse/internal/store"
	"github.com/Pranoschal/BookVerse/pkg/models"
)

// fakeSyncer is an in-memory stand-in for the gateway client.
type fakeSyncer struct {
	books     []models.Book
	fetchErr  error
	saveErr   error
	saveCalls int
}

func (f *fakeSyncer) FetchBooks(ctx context.Context) ([]models.Book, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]models.Book, len(f.books))
	copy(out, f.books)
	return out, nil
}

func (f *fakeSyncer) SaveLibrary(ctx context.Context, books []models.Book) (gateway.SaveResult, error) {
	f.saveCalls++
	if f.saveErr != nil {
		return gateway.SaveResult{}, f.saveErr
	}
	f.books = make([]models.Book, len(books))
	copy(f.books, books)
	return gateway.SaveResult{Saved: len(books)}, nil
}

func validBook(title, author string) models.Book {
	return models.Book{
		Title: title, Author: author, Pages: 250,
		PublishYear: 1999, Rating: 4, Status: models.StatusNone,
	}
}

func newTestService() *Service {
	return NewService(store.New(), nil, nil, nil)
}

func TestAddBookAssignsIDAndDefaults(t *testing.T) {
	svc := newTestService()

	added, err := svc.AddBook(models.Book{
		Title: "  Dune  ", Author: " Frank Herbert ", Pages: 412, PublishYear: 1965,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "Dune", added.Title)
	assert.Equal(t, "Frank Herbert", added.Author)
	assert.Equal(t, models.PlaceholderCover, added.Cover)
	assert.Equal(t, models.StatusNone, added.Status)
	assert.True(t, svc.Store().Has(added.ID))
}

func TestAddBookRejectsDuplicateIdentity(t *testing.T) {
	svc := newTestService()

	_, err := svc.AddBook(validBook("Dune", "Frank Herbert"))
	require.NoError(t, err)

	for _, tc := range []struct{ title, author string }{
		{"Dune", "Frank Herbert"},
		{"dune", "frank herbert"},
		{"  DUNE  ", "Frank Herbert  "},
	} {
		_, err := svc.AddBook(validBook(tc.title, tc.author))
		var dup *DuplicateError
		require.ErrorAs(t, err, &dup, "title=%q author=%q", tc.title, tc.author)
	}
	assert.Equal(t, 1, svc.Store().Len())
}

func TestAddBookAllowsSameAuthorDifferentTitle(t *testing.T) {
	svc := newTestService()

	_, err := svc.AddBook(validBook("Dune", "Frank Herbert"))
	require.NoError(t, err)
	_, err = svc.AddBook(validBook("Dune Messiah", "Frank Herbert"))
	require.NoError(t, err)

	assert.Equal(t, 2, svc.Store().Len())
}

func TestAddBookValidation(t *testing.T) {
	svc := newTestService()

	for name, b := range map[string]models.Book{
		"empty title":      {Author: "A", Pages: 10, PublishYear: 2000},
		"blank author":     {Title: "T", Author: "   ", Pages: 10, PublishYear: 2000},
		"zero pages":       {Title: "T", Author: "A", Pages: 0, PublishYear: 2000},
		"ancient year":     {Title: "T", Author: "A", Pages: 10, PublishYear: 999},
		"far future year":  {Title: "T", Author: "A", Pages: 10, PublishYear: time.Now().Year() + 11},
		"rating too high":  {Title: "T", Author: "A", Pages: 10, PublishYear: 2000, Rating: 5.5},
		"negative rating":  {Title: "T", Author: "A", Pages: 10, PublishYear: 2000, Rating: -1},
		"bogus status":     {Title: "T", Author: "A", Pages: 10, PublishYear: 2000, Status: "finished"},
	} {
		_, err := svc.AddBook(b)
		var invalid *ValidationError
		assert.ErrorAs(t, err, &invalid, name)
	}
	assert.Equal(t, 0, svc.Store().Len(), "nothing is stored on validation failure")
}

func TestEditBookMergesAndValidates(t *testing.T) {
	svc := newTestService()
	added, err := svc.AddBook(validBook("Dune", "Frank Herbert"))
	require.NoError(t, err)

	rating := 5.0
	updated, err := svc.EditBook(added.ID, models.BookPatch{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 5.0, updated.Rating)
	assert.Equal(t, "Dune", updated.Title, "unpatched fields survive")

	badPages := 0
	_, err = svc.EditBook(added.ID, models.BookPatch{Pages: &badPages})
	var invalid *ValidationError
	require.ErrorAs(t, err, &invalid)

	current, _ := svc.Store().Get(added.ID)
	assert.Equal(t, 250, current.Pages, "failed edit leaves the record untouched")
}

func TestEditBookPermitsDuplicateIdentity(t *testing.T) {
	svc := newTestService()
	_, err := svc.AddBook(validBook("Dune", "Frank Herbert"))
	require.NoError(t, err)
	second, err := svc.AddBook(validBook("Dune Messiah", "Frank Herbert"))
	require.NoError(t, err)

	// The duplicate guard applies to inserts only.
	title := "Dune"
	_, err = svc.EditBook(second.ID, models.BookPatch{Title: &title})
	assert.NoError(t, err)
}

func TestEditBookUnknownID(t *testing.T) {
	svc := newTestService()
	_, err := svc.EditBook("ghost", models.BookPatch{})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.ID)
}

func TestSetStatus(t *testing.T) {
	svc := newTestService()
	added, err := svc.AddBook(validBook("Dune", "Frank Herbert"))
	require.NoError(t, err)

	updated, err := svc.SetStatus(added.ID, models.StatusRead)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRead, updated.Status)

	// Any status may move to any other.
	updated, err = svc.SetStatus(added.ID, models.StatusWishlist)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWishlist, updated.Status)

	_, err = svc.SetStatus(added.ID, "finished")
	var invalid *ValidationError
	assert.ErrorAs(t, err, &invalid)
}

func TestDeleteBook(t *testing.T) {
	svc := newTestService()
	added, err := svc.AddBook(validBook("Dune", "Frank Herbert"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBook(added.ID))
	assert.False(t, svc.Store().Has(added.ID))

	var notFound *NotFoundError
	assert.ErrorAs(t, svc.DeleteBook(added.ID), &notFound)
}

func TestLoadReplacesCollection(t *testing.T) {
	remote := &fakeSyncer{books: []models.Book{
		{ID: "r1", Title: "Remote One"},
		{ID: "r2", Title: "Remote Two"},
	}}
	svc := NewService(store.New(), nil, remote, nil)
	svc.Store().Add(models.Book{ID: "local", Title: "Stale"})

	require.NoError(t, svc.Load(context.Background()))
	assert.False(t, svc.Store().Has("local"))
	assert.Equal(t, 2, svc.Store().Len())
}

func TestLoadFailureLeavesStoreUntouched(t *testing.T) {
	remote := &fakeSyncer{fetchErr: errors.New("gateway down")}
	svc := NewService(store.New(), nil, remote, nil)
	svc.Store().Add(models.Book{ID: "local", Title: "Keep"})

	require.Error(t, svc.Load(context.Background()))
	assert.True(t, svc.Store().Has("local"))
}

func TestSaveLibraryPersistsFullCollection(t *testing.T) {
	remote := &fakeSyncer{}
	svc := NewService(store.New(), nil, remote, nil)
	_, err := svc.AddBook(validBook("Dune", "Frank Herbert"))
	require.NoError(t, err)

	result, err := svc.SaveLibrary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Saved)
	assert.Equal(t, 1, remote.saveCalls)
	require.Len(t, remote.books, 1)
	assert.Equal(t, "Dune", remote.books[0].Title)
}

// Two sessions sharing one medium: every mutation in one shows up in the
// other, and nothing echoes back to its author.
func TestTwoSessionsConverge(t *testing.T) {
	medium := broadcast.NewMemoryMedium()

	openSession := func() *Service {
		st := store.New()
		session := &broadcast.SessionID{}
		bus := broadcast.NewPublisher(medium, session, time.Minute, nil)
		svc := NewService(st, bus, nil, nil)
		broadcast.NewListener(st, session, nil, nil).Attach(medium)
		return svc
	}

	alpha := openSession()
	beta := openSession()

	added, err := alpha.AddBook(validBook("Dune", "Frank Herbert"))
	require.NoError(t, err)
	assert.True(t, beta.Store().Has(added.ID), "add propagates")

	rating := 5.0
	_, err = alpha.EditBook(added.ID, models.BookPatch{Rating: &rating})
	require.NoError(t, err)
	got, _ := beta.Store().Get(added.ID)
	assert.Equal(t, 5.0, got.Rating, "edit propagates")

	require.NoError(t, beta.DeleteBook(added.ID))
	assert.False(t, alpha.Store().Has(added.ID), "delete propagates back")
	assert.Equal(t, 0, alpha.Store().Len())
	assert.Equal(t, 0, beta.Store().Len())
}

func TestOwnEventsDoNotDoubleApply(t *testing.T) {
	medium := broadcast.NewMemoryMedium()
	st := store.New()
	session := &broadcast.SessionID{}
	bus := broadcast.NewPublisher(medium, session, time.Minute, nil)
	svc := NewService(st, bus, nil, nil)
	broadcast.NewListener(st, session, nil, nil).Attach(medium)

	mutations := 0
	st.Watch(func() { mutations++ })

	_, err := svc.AddBook(validBook("Dune", "Frank Herbert"))
	require.NoError(t, err)

	assert.Equal(t, 1, mutations, "the author applies its own mutation exactly once")
	assert.Equal(t, 1, st.Len())
}
