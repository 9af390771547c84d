// Package storage is the gateway server's persistence layer: one books
// table keyed by the client-generated record id.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Pranoschal/BookVerse/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Upsert inserts or updates one record by id.
func (r *Repo) Upsert(ctx context.Context, b models.Book) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO books (id, title, author, cover, rating, genre, description,
			pages, publisher, publish_year, status, language, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			cover = excluded.cover,
			rating = excluded.rating,
			genre = excluded.genre,
			description = excluded.description,
			pages = excluded.pages,
			publisher = excluded.publisher,
			publish_year = excluded.publish_year,
			status = excluded.status,
			language = excluded.language,
			updated_at = CURRENT_TIMESTAMP
	`, b.ID, b.Title, b.Author, b.Cover, b.Rating, b.Genre, b.Description,
		b.Pages, b.Publisher, b.PublishYear, b.Status, b.Language)
	if err != nil {
		return fmt.Errorf("upsert book %s: %w", b.ID, err)
	}
	return nil
}

// List returns every stored record in insertion order.
func (r *Repo) List(ctx context.Context) ([]models.Book, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, author, cover, rating, genre, description,
			pages, publisher, publish_year, status, language
		FROM books
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	out := make([]models.Book, 0, 16)
	for rows.Next() {
		var b models.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Cover, &b.Rating,
			&b.Genre, &b.Description, &b.Pages, &b.Publisher, &b.PublishYear,
			&b.Status, &b.Language); err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*models.Book, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, title, author, cover, rating, genre, description,
			pages, publisher, publish_year, status, language
		FROM books
		WHERE id = ?
	`, id)

	var b models.Book
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Cover, &b.Rating,
		&b.Genre, &b.Description, &b.Pages, &b.Publisher, &b.PublishYear,
		&b.Status, &b.Language); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get book %s: %w", id, err)
	}
	return &b, nil
}

// PruneExcept deletes every record whose id is not in keep. A full-collection
// save is a wholesale replace, so rows the client no longer has must go.
func (r *Repo) PruneExcept(ctx context.Context, keep []string) (int, error) {
	if len(keep) == 0 {
		res, err := r.DB.ExecContext(ctx, `DELETE FROM books`)
		if err != nil {
			return 0, fmt.Errorf("prune books: %w", err)
		}
		n, _ := res.RowsAffected()
		return int(n), nil
	}

	placeholders := strings.Repeat("?,", len(keep))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(keep))
	for i, id := range keep {
		args[i] = id
	}

	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM books WHERE id NOT IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("prune books: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete book %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
