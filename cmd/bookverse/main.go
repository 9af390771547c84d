package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/Pranoschal/BookVerse/internal/config"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "bookverse",
	})

	runner := NewRunner(RunnerOpts{
		Config:     config.LoadOrDefault("config.toml"),
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Logger:     logger,
		Output:     os.Stdout,
	})

	app := &cli.Command{
		Name:     "bookverse",
		Usage:    "Manage your book library from the terminal",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatal(err)
	}
}
