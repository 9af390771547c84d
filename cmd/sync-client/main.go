package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Pranoschal/BookVerse/internal/broadcast"
	"github.com/Pranoschal/BookVerse/internal/gateway"
	"github.com/Pranoschal/BookVerse/internal/library"
	"github.com/Pranoschal/BookVerse/internal/relay"
	"github.com/Pranoschal/BookVerse/internal/store"
)

// sync-client attaches a passive session to the relay: it loads the library
// once, then applies and prints every mutation other sessions broadcast.
func main() {
	relayURL := flag.String("relay", "ws://127.0.0.1:8080/ws", "relay websocket address")
	baseURL := flag.String("server", "http://127.0.0.1:8080", "gateway base URL")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "sync-client",
	})

	st := store.New()
	session := &broadcast.SessionID{}
	remote := gateway.NewClient(*baseURL, nil)
	svc := library.NewService(st, nil, remote, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := svc.Load(ctx); err != nil {
		logger.Warn("initial load failed; starting empty", "err", err)
	}
	cancel()
	logger.Info("library loaded", "books", st.Len())

	stopWatch := st.Watch(func() {
		logger.Info("library changed", "books", st.Len())
		for _, b := range st.Books() {
			logger.Print("", "id", b.ID, "title", b.Title, "author", b.Author, "status", b.Status)
		}
	})
	defer stopWatch()

	conn, err := relay.Dial(*relayURL, logger)
	if err != nil {
		logger.Fatal("relay dial failed", "err", err)
	}
	defer conn.Close()
	logger.Info("connected to relay", "url", *relayURL)

	listener := broadcast.NewListener(st, session, svc.Refresh, logger)
	detach := listener.Attach(conn)
	defer detach()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutting down")
}
