package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/Pranoschal/BookVerse/pkg/models"
)

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the library to CSV",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output CSV path",
				Value:   "books.csv",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r.reload(cmd)
			ctx, cancel := context.WithTimeout(ctx, commandTimeout)
			defer cancel()

			books, err := r.gateway().FetchBooks(ctx)
			if err != nil {
				return fmt.Errorf("load library: %w", err)
			}

			outPath := cmd.String("output")
			if err := writeCSV(outPath, books); err != nil {
				return fmt.Errorf("export to %s: %w", outPath, err)
			}
			fmt.Fprintf(r.output, "exported %d book(s) to %s\n", len(books), outPath)
			return nil
		},
	}
}

func writeCSV(outPath string, books []models.Book) error {
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"id", "title", "author", "genre", "rating", "pages",
		"publisher", "publish_year", "status", "language", "description", "cover",
	}); err != nil {
		return err
	}

	for _, b := range books {
		if err := w.Write([]string{
			b.ID,
			b.Title,
			b.Author,
			b.Genre,
			strconv.FormatFloat(b.Rating, 'f', 1, 64),
			strconv.Itoa(b.Pages),
			b.Publisher,
			strconv.Itoa(b.PublishYear),
			string(b.Status),
			b.Language,
			b.Description,
			b.Cover,
		}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
