package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/Pranoschal/BookVerse/internal/relay"
	"github.com/Pranoschal/BookVerse/internal/search"
	"github.com/Pranoschal/BookVerse/internal/server"
	"github.com/Pranoschal/BookVerse/internal/storage"
	"github.com/Pranoschal/BookVerse/pkg/database"
	"github.com/Pranoschal/BookVerse/pkg/utils"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "api-server",
	})

	cfg := utils.LoadServerConfig()
	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("db migrate failed", "err", err)
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := relay.NewHub()
	router.GET("/ws", relay.Handler(hub, logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"db_error": err.Error(),
				"sessions": stats.Clients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"db":       "ok",
			"sessions": stats.Clients,
		})
	})

	repo := storage.NewRepo(db)
	var searcher server.Searcher
	if cfg.GoogleBooksAPIKey != "" {
		searcher = search.NewClient("", cfg.GoogleBooksAPIKey, nil)
	} else {
		logger.Warn("GOOGLE_BOOKS_API_KEY not set; /api/search disabled")
	}
	server.NewHandler(repo, searcher, logger).RegisterRoutes(router)

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API server listening", "addr", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "sig", sig)
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "err", err)
	}
	logger.Info("server stopped")
}
