package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/Pranoschal/BookVerse/internal/config"
	"github.com/Pranoschal/BookVerse/pkg/models"
)

const commandTimeout = 30 * time.Second

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func (r *Runner) reload(cmd *cli.Command) {
	if path := cmd.String("config"); path != "" {
		r.config = config.LoadOrDefault(path)
	}
}

// persist writes the session's full collection through the gateway without
// a refresh broadcast; the incremental event already reached other
// sessions.
func (r *Runner) persist(ctx context.Context, s *session) error {
	result, err := r.gateway().SaveLibrary(ctx, s.store.Books())
	if err != nil {
		return err
	}
	for _, e := range result.Errors {
		r.logger.Warn("item not saved", "reason", e)
	}
	return nil
}

func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List the library",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{Name: "status", Usage: "Filter by status: none, wishlist, readLater, read"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r.reload(cmd)
			ctx, cancel := context.WithTimeout(ctx, commandTimeout)
			defer cancel()

			books, err := r.gateway().FetchBooks(ctx)
			if err != nil {
				return fmt.Errorf("load library: %w", err)
			}

			if f := cmd.String("status"); f != "" {
				status, err := models.ParseStatus(f)
				if err != nil {
					return err
				}
				filtered := books[:0]
				for _, b := range books {
					if b.Status == status {
						filtered = append(filtered, b)
					}
				}
				books = filtered
			}

			r.printBooks(books)
			return nil
		},
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search for books via the gateway's search proxy",
		Flags:     []cli.Flag{configFlag()},
		Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r.reload(cmd)
			query := cmd.StringArg("query")
			if strings.TrimSpace(query) == "" {
				return fmt.Errorf("usage: bookverse search <query>")
			}

			ctx, cancel := context.WithTimeout(ctx, commandTimeout)
			defer cancel()

			books, err := r.gateway().Search(ctx, query)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			if len(books) == 0 {
				fmt.Fprintln(r.output, "no results")
				return nil
			}
			for _, b := range books {
				fmt.Fprintf(r.output, "%q by %s (%d) %s, %dp\n",
					b.Title, b.Author, b.PublishYear, b.Publisher, b.Pages)
			}
			return nil
		},
	}
}

func bookFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Book title"},
		&cli.StringFlag{Name: "author", Usage: "Author name"},
		&cli.StringFlag{Name: "publisher", Usage: "Publisher"},
		&cli.StringFlag{Name: "genre", Usage: "Genre"},
		&cli.StringFlag{Name: "language", Usage: "Language", Value: "English"},
		&cli.FloatFlag{Name: "rating", Usage: "Rating 0-5"},
		&cli.IntFlag{Name: "pages", Usage: "Number of pages"},
		&cli.IntFlag{Name: "year", Usage: "Publish year"},
		&cli.StringFlag{Name: "description", Usage: "Description"},
		&cli.StringFlag{Name: "cover", Usage: "Cover image URL"},
		&cli.StringFlag{Name: "status", Usage: "Reading status", Value: "none"},
	}
}

func addCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a book to the library",
		Flags: append([]cli.Flag{configFlag()}, bookFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r.reload(cmd)
			ctx, cancel := context.WithTimeout(ctx, commandTimeout)
			defer cancel()

			status, err := models.ParseStatus(cmd.String("status"))
			if err != nil {
				return err
			}

			s, err := r.openSession(ctx)
			if err != nil {
				return fmt.Errorf("load library: %w", err)
			}
			defer s.close()

			added, err := s.svc.AddBook(models.Book{
				Title:       cmd.String("title"),
				Author:      cmd.String("author"),
				Publisher:   cmd.String("publisher"),
				Genre:       cmd.String("genre"),
				Language:    cmd.String("language"),
				Rating:      cmd.Float("rating"),
				Pages:       int(cmd.Int("pages")),
				PublishYear: int(cmd.Int("year")),
				Description: cmd.String("description"),
				Cover:       cmd.String("cover"),
				Status:      status,
			})
			if err != nil {
				return err
			}

			if err := r.persist(ctx, s); err != nil {
				return fmt.Errorf("save library: %w", err)
			}
			r.printBook(added)
			return nil
		},
	}
}

func editCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "edit",
		Usage: "Edit a book by id",
		Flags: append([]cli.Flag{
			configFlag(),
			&cli.StringFlag{Name: "id", Usage: "Book id", Required: true},
		}, bookFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r.reload(cmd)
			ctx, cancel := context.WithTimeout(ctx, commandTimeout)
			defer cancel()

			s, err := r.openSession(ctx)
			if err != nil {
				return fmt.Errorf("load library: %w", err)
			}
			defer s.close()

			var patch models.BookPatch
			if cmd.IsSet("title") {
				v := cmd.String("title")
				patch.Title = &v
			}
			if cmd.IsSet("author") {
				v := cmd.String("author")
				patch.Author = &v
			}
			if cmd.IsSet("publisher") {
				v := cmd.String("publisher")
				patch.Publisher = &v
			}
			if cmd.IsSet("genre") {
				v := cmd.String("genre")
				patch.Genre = &v
			}
			if cmd.IsSet("language") {
				v := cmd.String("language")
				patch.Language = &v
			}
			if cmd.IsSet("rating") {
				v := cmd.Float("rating")
				patch.Rating = &v
			}
			if cmd.IsSet("pages") {
				v := int(cmd.Int("pages"))
				patch.Pages = &v
			}
			if cmd.IsSet("year") {
				v := int(cmd.Int("year"))
				patch.PublishYear = &v
			}
			if cmd.IsSet("description") {
				v := cmd.String("description")
				patch.Description = &v
			}
			if cmd.IsSet("cover") {
				v := cmd.String("cover")
				patch.Cover = &v
			}
			if cmd.IsSet("status") {
				status, err := models.ParseStatus(cmd.String("status"))
				if err != nil {
					return err
				}
				patch.Status = &status
			}

			updated, err := s.svc.EditBook(cmd.String("id"), patch)
			if err != nil {
				return err
			}

			if err := r.persist(ctx, s); err != nil {
				return fmt.Errorf("save library: %w", err)
			}
			r.printBook(updated)
			return nil
		},
	}
}

func deleteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "delete",
		Usage: "Delete a book by id",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{Name: "id", Usage: "Book id", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r.reload(cmd)
			ctx, cancel := context.WithTimeout(ctx, commandTimeout)
			defer cancel()

			s, err := r.openSession(ctx)
			if err != nil {
				return fmt.Errorf("load library: %w", err)
			}
			defer s.close()

			id := cmd.String("id")
			if err := s.svc.DeleteBook(id); err != nil {
				return err
			}
			if err := r.persist(ctx, s); err != nil {
				return fmt.Errorf("save library: %w", err)
			}
			fmt.Fprintf(r.output, "deleted %s\n", id)
			return nil
		},
	}
}

func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Change a book's reading status",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{Name: "id", Usage: "Book id", Required: true},
			&cli.StringFlag{Name: "to", Usage: "New status: none, wishlist, readLater, read", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r.reload(cmd)
			ctx, cancel := context.WithTimeout(ctx, commandTimeout)
			defer cancel()

			status, err := models.ParseStatus(cmd.String("to"))
			if err != nil {
				return err
			}

			s, err := r.openSession(ctx)
			if err != nil {
				return fmt.Errorf("load library: %w", err)
			}
			defer s.close()

			updated, err := s.svc.SetStatus(cmd.String("id"), status)
			if err != nil {
				return err
			}

			if err := r.persist(ctx, s); err != nil {
				return fmt.Errorf("save library: %w", err)
			}
			r.printBook(updated)
			return nil
		},
	}
}

func saveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Persist the full library and tell other sessions to reload",
		Flags: []cli.Flag{configFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r.reload(cmd)
			ctx, cancel := context.WithTimeout(ctx, commandTimeout)
			defer cancel()

			s, err := r.openSession(ctx)
			if err != nil {
				return fmt.Errorf("load library: %w", err)
			}
			defer s.close()

			result, err := s.svc.SaveLibrary(ctx)
			if err != nil {
				return fmt.Errorf("save library: %w", err)
			}
			fmt.Fprintf(r.output, "saved %d book(s)\n", result.Saved)
			for _, e := range result.Errors {
				r.logger.Warn("item not saved", "reason", e)
			}
			return nil
		},
	}
}
