package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/Pranoschal/BookVerse/internal/broadcast"
	"github.com/Pranoschal/BookVerse/internal/config"
	"github.com/Pranoschal/BookVerse/internal/gateway"
	"github.com/Pranoschal/BookVerse/internal/library"
	"github.com/Pranoschal/BookVerse/internal/relay"
	"github.com/Pranoschal/BookVerse/internal/store"
	"github.com/Pranoschal/BookVerse/pkg/models"
)

// Runner holds the dependencies for CLI command actions.
type Runner struct {
	config     *config.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

type RunnerOpts struct {
	Config     *config.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		listCommand,
		searchCommand,
		addCommand,
		editCommand,
		deleteCommand,
		statusCommand,
		saveCommand,
		exportCommand,
		toolCommand,
	} {
		commands = append(commands, fn(r))
	}
	return commands
}

// session is one CLI invocation's sync context: a loaded store, an action
// surface, and (when the relay is reachable) a broadcasting publisher.
type session struct {
	svc   *library.Service
	store *store.Store
	conn  *relay.Conn
}

func (s *session) close() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
}

// openSession loads the library from the gateway and wires the broadcast
// path. An unreachable relay downgrades to a local-only session; an
// unreachable gateway is fatal to the command.
func (r *Runner) openSession(ctx context.Context) (*session, error) {
	st := store.New()
	sessionID := &broadcast.SessionID{}
	remote := gateway.NewClient(r.config.Server.BaseURL, r.httpClient)

	var bus *broadcast.Publisher
	var conn *relay.Conn
	if r.config.Sync.RelayURL != "" {
		c, err := relay.Dial(r.config.Sync.RelayURL, r.logger)
		if err != nil {
			r.logger.Debug("relay unavailable; running without sync", "err", err)
		} else {
			conn = c
			ttl := time.Duration(r.config.Sync.SlotTTLMS) * time.Millisecond
			bus = broadcast.NewPublisher(conn, sessionID, ttl, r.logger)
		}
	}

	svc := library.NewService(st, bus, remote, r.logger)
	if err := svc.Load(ctx); err != nil {
		if conn != nil {
			_ = conn.Close()
		}
		return nil, err
	}
	return &session{svc: svc, store: st, conn: conn}, nil
}

func (r *Runner) gateway() *gateway.Client {
	return gateway.NewClient(r.config.Server.BaseURL, r.httpClient)
}

func (r *Runner) printBook(b models.Book) {
	fmt.Fprintf(r.output, "%s  %q by %s  [%s]  %.1f/5  %dp  %d  %s\n",
		b.ID, b.Title, b.Author, b.Status, b.Rating, b.Pages, b.PublishYear, b.Genre)
}

func (r *Runner) printBooks(books []models.Book) {
	if len(books) == 0 {
		fmt.Fprintln(r.output, "no books")
		return
	}
	for _, b := range books {
		r.printBook(b)
	}
}
