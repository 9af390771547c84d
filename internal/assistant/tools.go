// Package assistant exposes the library's action surface as named-parameter
// tools for an AI assistant. The tool-calling protocol itself lives outside
// this package; every handler goes through the action surface so validation,
// duplicate policy and broadcasting apply exactly as they do for direct use.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Pranoschal/BookVerse/internal/library"
	"github.com/Pranoschal/BookVerse/pkg/models"
)

// Searcher is the search-provider contract used to back the searchBook tool
// and to auto-populate fields on assistant adds.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.Book, error)
}

// Parameter describes one named tool argument.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Tool is one callable operation with its schema.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
}

// Args holds one invocation's arguments as decoded JSON values.
type Args map[string]any

func (a Args) str(name string) (string, bool) {
	v, ok := a[name].(string)
	return v, ok
}

func (a Args) num(name string) (float64, bool) {
	switch v := a[name].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Toolbox binds the tool set to one session's action surface.
type Toolbox struct {
	svc      *library.Service
	searcher Searcher
}

func NewToolbox(svc *library.Service, searcher Searcher) *Toolbox {
	return &Toolbox{svc: svc, searcher: searcher}
}

// ErrUnknownTool is returned by Invoke for a name not in the tool set.
var ErrUnknownTool = errors.New("unknown tool")

// Invoke runs the named tool. Recoverable conditions (validation failures,
// duplicates, unknown ids) come back as text responses the assistant can
// relay; only protocol-level problems are errors.
func (t *Toolbox) Invoke(ctx context.Context, name string, args Args) (string, error) {
	switch name {
	case "searchBook":
		return t.searchBook(ctx, args)
	case "addBook":
		return t.addBook(ctx, args)
	case "editBook":
		return t.editBook(args)
	case "deleteBook":
		return t.deleteBook(args)
	case "findBookId":
		return t.findBookID(args)
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
}

// Tools lists the tool schemas for registration with an assistant runtime.
func (t *Toolbox) Tools() []Tool {
	return []Tool{
		{
			Name:        "searchBook",
			Description: "Search for books by title using the Google Books API.",
			Parameters: []Parameter{
				{Name: "bookName", Type: "string", Description: "The book title to search for.", Required: true},
			},
		},
		{
			Name:        "addBook",
			Description: "Add a new book to the library. Missing details are filled in from the top search result.",
			Parameters: []Parameter{
				{Name: "title", Type: "string", Description: "The title of the book.", Required: true},
				{Name: "author", Type: "string", Description: "The author's name.", Required: true},
				{Name: "publisher", Type: "string", Description: "The publisher of the book."},
				{Name: "genre", Type: "string", Description: "The genre of the book."},
				{Name: "language", Type: "string", Description: "The language the book is written in."},
				{Name: "rating", Type: "number", Description: "Rating on a 0-5 scale, decimals allowed."},
				{Name: "pages", Type: "number", Description: "Number of pages in the book."},
				{Name: "publishYear", Type: "number", Description: "The year the book was published."},
				{Name: "description", Type: "string", Description: "A brief description of the book."},
				{Name: "cover", Type: "string", Description: "URL of the book's cover image."},
				{Name: "status", Type: "string", Description: "Reading status: none, wishlist, readLater or read."},
			},
		},
		{
			Name:        "editBook",
			Description: "Update an existing book. Requires the exact book id; use findBookId first if needed.",
			Parameters: []Parameter{
				{Name: "bookId", Type: "string", Description: "The exact book id, not a title or author.", Required: true},
				{Name: "title", Type: "string", Description: "The updated title."},
				{Name: "author", Type: "string", Description: "The updated author name."},
				{Name: "publisher", Type: "string", Description: "The updated publisher name."},
				{Name: "genre", Type: "string", Description: "The updated genre."},
				{Name: "language", Type: "string", Description: "The updated language."},
				{Name: "rating", Type: "number", Description: "The updated rating between 0 and 5."},
				{Name: "pages", Type: "number", Description: "The updated number of pages."},
				{Name: "publishYear", Type: "number", Description: "The updated publication year."},
				{Name: "cover", Type: "string", Description: "The updated cover image URL."},
				{Name: "description", Type: "string", Description: "The updated description."},
				{Name: "status", Type: "string", Description: "The updated reading status."},
			},
		},
		{
			Name:        "deleteBook",
			Description: "Remove a book from the library. Requires the exact book id.",
			Parameters: []Parameter{
				{Name: "bookId", Type: "string", Description: "The exact book id, not a title or author.", Required: true},
			},
		},
		{
			Name:        "findBookId",
			Description: "Find a book's id by searching the library by title or author.",
			Parameters: []Parameter{
				{Name: "searchTerm", Type: "string", Description: "Title, author or keywords to look for.", Required: true},
			},
		},
	}
}

func (t *Toolbox) searchBook(ctx context.Context, args Args) (string, error) {
	query, ok := args.str("bookName")
	if !ok || strings.TrimSpace(query) == "" {
		return "Error: bookName is required.", nil
	}
	if t.searcher == nil {
		return "Book search is not available right now.", nil
	}

	books, err := t.searcher.Search(ctx, query)
	if err != nil {
		return "", fmt.Errorf("searchBook: %w", err)
	}
	if len(books) == 0 {
		return "No books found for your search query.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d book(s):\n", len(books))
	for _, b := range books {
		fmt.Fprintf(&sb, "\nTitle: %s\nAuthor: %s\nRating: %.1f/5\nGenre: %s\nPages: %d\nPublished: %d\nLanguage: %s\nDescription: %s\n",
			b.Title, b.Author, b.Rating, b.Genre, b.Pages, b.PublishYear, b.Language, b.Description)
	}
	return sb.String(), nil
}

func (t *Toolbox) addBook(ctx context.Context, args Args) (string, error) {
	book := bookFromArgs(args)
	if book.Title == "" || book.Author == "" {
		return "Error: title and author are required.", nil
	}

	// Backfill whatever the caller left out from the top search result.
	if t.searcher != nil {
		if results, err := t.searcher.Search(ctx, book.Title); err == nil && len(results) > 0 {
			book = backfill(book, results[0])
		}
	}

	added, err := t.svc.AddBook(book)
	if err != nil {
		var dup *library.DuplicateError
		if errors.As(err, &dup) {
			return duplicateNotice(book, t.svc.Books()), nil
		}
		var invalid *library.ValidationError
		if errors.As(err, &invalid) {
			return "Error: " + invalid.Error() + ".", nil
		}
		return "", fmt.Errorf("addBook: %w", err)
	}
	return fmt.Sprintf("Successfully added %q by %s to your BookVerse library!", added.Title, added.Author), nil
}

func (t *Toolbox) editBook(args Args) (string, error) {
	id, ok := args.str("bookId")
	if !ok || id == "" {
		return "Error: bookId is required.", nil
	}

	updated, err := t.svc.EditBook(id, patchFromArgs(args))
	if err != nil {
		var notFound *library.NotFoundError
		if errors.As(err, &notFound) {
			return unknownIDNotice(id, t.svc.Books()), nil
		}
		var invalid *library.ValidationError
		if errors.As(err, &invalid) {
			return "Error: " + invalid.Error() + ".", nil
		}
		return "", fmt.Errorf("editBook: %w", err)
	}
	return fmt.Sprintf("Successfully updated %q by %s in your BookVerse library!", updated.Title, updated.Author), nil
}

func (t *Toolbox) deleteBook(args Args) (string, error) {
	id, ok := args.str("bookId")
	if !ok || id == "" {
		return "Error: bookId is required.", nil
	}

	book, found := t.svc.Store().Get(id)
	if !found {
		return unknownIDNotice(id, t.svc.Books()), nil
	}
	if err := t.svc.DeleteBook(id); err != nil {
		return "", fmt.Errorf("deleteBook: %w", err)
	}
	return fmt.Sprintf("Successfully deleted %q by %s from your BookVerse library!", book.Title, book.Author), nil
}

func (t *Toolbox) findBookID(args Args) (string, error) {
	term, ok := args.str("searchTerm")
	if !ok || strings.TrimSpace(term) == "" {
		return "Error: searchTerm is required.", nil
	}
	needle := strings.ToLower(strings.TrimSpace(term))

	var matches []models.Book
	for _, b := range t.svc.Books() {
		if strings.Contains(strings.ToLower(b.Title), needle) ||
			strings.Contains(strings.ToLower(b.Author), needle) {
			matches = append(matches, b)
		}
	}

	switch len(matches) {
	case 0:
		return fmt.Sprintf("No books found matching %q in your library.", term), nil
	case 1:
		b := matches[0]
		return fmt.Sprintf("Found book: %q by %s\nBook ID: %s\nStatus: %s\nRating: %.1f/5",
			b.Title, b.Author, b.ID, b.Status, b.Rating), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d books matching %q:\n", len(matches), term)
	for _, b := range matches {
		fmt.Fprintf(&sb, "ID: %s - %q by %s\n", b.ID, b.Title, b.Author)
	}
	sb.WriteString("Please specify which book you mean by its exact ID.")
	return sb.String(), nil
}

func bookFromArgs(args Args) models.Book {
	var b models.Book
	if v, ok := args.str("title"); ok {
		b.Title = strings.TrimSpace(v)
	}
	if v, ok := args.str("author"); ok {
		b.Author = strings.TrimSpace(v)
	}
	if v, ok := args.str("publisher"); ok {
		b.Publisher = strings.TrimSpace(v)
	}
	if v, ok := args.str("genre"); ok {
		b.Genre = v
	}
	if v, ok := args.str("language"); ok {
		b.Language = v
	}
	if v, ok := args.str("description"); ok {
		b.Description = strings.TrimSpace(v)
	}
	if v, ok := args.str("cover"); ok {
		b.Cover = strings.TrimSpace(v)
	}
	if v, ok := args.num("rating"); ok {
		b.Rating = v
	}
	if v, ok := args.num("pages"); ok {
		b.Pages = int(v)
	}
	if v, ok := args.num("publishYear"); ok {
		b.PublishYear = int(v)
	}
	if v, ok := args.str("status"); ok {
		if st, err := models.ParseStatus(v); err == nil {
			b.Status = st
		} else {
			b.Status = models.Status(v) // invalid on purpose; validation reports it
		}
	}
	return b
}

func patchFromArgs(args Args) models.BookPatch {
	var p models.BookPatch
	if v, ok := args.str("title"); ok {
		p.Title = &v
	}
	if v, ok := args.str("author"); ok {
		p.Author = &v
	}
	if v, ok := args.str("publisher"); ok {
		p.Publisher = &v
	}
	if v, ok := args.str("genre"); ok {
		p.Genre = &v
	}
	if v, ok := args.str("language"); ok {
		p.Language = &v
	}
	if v, ok := args.str("description"); ok {
		p.Description = &v
	}
	if v, ok := args.str("cover"); ok {
		p.Cover = &v
	}
	if v, ok := args.num("rating"); ok {
		p.Rating = &v
	}
	if v, ok := args.num("pages"); ok {
		n := int(v)
		p.Pages = &n
	}
	if v, ok := args.num("publishYear"); ok {
		n := int(v)
		p.PublishYear = &n
	}
	if v, ok := args.str("status"); ok {
		st := models.Status(v)
		p.Status = &st
	}
	return p
}

// backfill fills b's empty fields from a search candidate.
func backfill(b, candidate models.Book) models.Book {
	if b.Publisher == "" {
		b.Publisher = candidate.Publisher
	}
	if b.Genre == "" {
		b.Genre = candidate.Genre
	}
	if b.Language == "" {
		b.Language = candidate.Language
	}
	if b.Rating == 0 {
		b.Rating = candidate.Rating
	}
	if b.Pages == 0 {
		b.Pages = candidate.Pages
	}
	if b.PublishYear == 0 {
		b.PublishYear = candidate.PublishYear
	}
	if b.Description == "" {
		b.Description = candidate.Description
	}
	if b.Cover == "" {
		b.Cover = candidate.Cover
	}
	return b
}

func duplicateNotice(candidate models.Book, existing []models.Book) string {
	var sb strings.Builder
	sb.WriteString("This book already exists in your library!\n\nExisting book(s):\n")
	for _, b := range library.FindDuplicates(candidate, existing) {
		fmt.Fprintf(&sb, "ID: %s - %q by %s (%d)\n", b.ID, b.Title, b.Author, b.PublishYear)
	}
	sb.WriteString("\nThe book was not added to avoid duplicates. To change the existing entry, use editBook with its ID.")
	return sb.String()
}

func unknownIDNotice(id string, books []models.Book) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Book with ID %q not found in the library.\n\nAvailable books:\n", id)
	if len(books) == 0 {
		sb.WriteString("(the library is empty)\n")
	}
	for _, b := range books {
		fmt.Fprintf(&sb, "ID: %s - %q by %s\n", b.ID, b.Title, b.Author)
	}
	sb.WriteString("\nPlease use an exact book ID from the list above.")
	return sb.String()
}
