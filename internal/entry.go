// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/Thomashighbaugh/tendril-wiki/internal/api"
	"github.com/Thomashighbaugh/tendril-wiki/internal/archive"
	"github.com/Thomashighbaugh/tendril-wiki/internal/graph"
	"github.com/Thomashighbaugh/tendril-wiki/internal/mcpserver"
	"github.com/Thomashighbaugh/tendril-wiki/internal/mru"
	"github.com/Thomashighbaugh/tendril-wiki/internal/processor"
	"github.com/Thomashighbaugh/tendril-wiki/internal/queue"
	"github.com/Thomashighbaugh/tendril-wiki/internal/search"
	"github.com/Thomashighbaugh/tendril-wiki/internal/sse"
	"github.com/Thomashighbaugh/tendril-wiki/internal/storage"
	"github.com/Thomashighbaugh/tendril-wiki/internal/watcher"
	"github.com/Thomashighbaugh/tendril-wiki/internal/wikitext"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("wiki_location", cfg.Wiki.Location),
		slog.String("archive_location", cfg.Archive.Location),
		slog.String("queue_path", cfg.Queue.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure data directories exist.
	if err := os.MkdirAll(cfg.Wiki.Location, 0o755); err != nil {
		return fmt.Errorf("create wiki dir: %w", err)
	}
	if err := os.MkdirAll(cfg.Archive.Location, 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}

	// Initialize storage.
	store, err := storage.NewFS(cfg.Wiki.Location)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	archiveStore, err := archive.NewFS(cfg.Archive.Location)
	if err != nil {
		return fmt.Errorf("init archive: %w", err)
	}

	// Initialize the durable job queue.
	q, err := queue.Open(cfg.Queue.Path)
	if err != nil {
		return fmt.Errorf("init queue: %w", err)
	}
	defer q.Close()

	// Shared in-memory indexes.
	tok := search.NewTokenizer()
	builder := search.NewDocBuilder(tok)
	engine := search.NewEngine(tok)
	g := graph.New()
	recency := mru.New(cfg.MRU.Size)

	// Seed both indexes from the on-disk corpus before serving anything.
	if err := seedIndexes(store, builder, engine, g); err != nil {
		logger.Warn("initial index seed failed", slog.String("error", err.Error()))
	}
	logger.Info("Indexes seeded", slog.Int("documents", engine.Len()))

	if app.mcpMode {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(q, store, g, engine, recency).ServeStdio()
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Job processor over the shared indexes.
	proc := processor.New(processor.Config{
		Queue:         q,
		Store:         store,
		Archive:       archiveStore,
		Graph:         g,
		Sink:          engine,
		Builder:       builder,
		Recency:       recency,
		Extractor:     archive.NewHTTPExtractor(),
		Logger:        logger,
		Events:        broker.PublishIndexEvent,
		BatchSize:     cfg.Queue.BatchSize,
		DrainInterval: cfg.Queue.DrainInterval(),
	})

	// Any jobs left over from a previous run replay before new ones; make
	// sure the graph also reconciles against whatever changed while down.
	if err := q.Push(ctx, queue.Rebuild()); err != nil {
		return fmt.Errorf("enqueue startup rebuild: %w", err)
	}

	// Build API service and router.
	svc := api.NewService(q, store, g, engine, recency)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g2, gCtx := errgroup.WithContext(ctx)

	// Start the job processor.
	g2.Go(func() error {
		return proc.Run(gCtx)
	})

	// Start file watcher so external edits flow through the queue.
	g2.Go(func() error {
		return watcher.Watch(gCtx, q, cfg.Wiki.Location, logger)
	})

	// Start HTTP server.
	g2.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g2.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g2.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// seedIndexes loads every note once and populates the search engine and the
// link/tag graph from it.
func seedIndexes(store storage.Provider, builder *search.DocBuilder, engine *search.Engine, g *graph.Graph) error {
	notes, err := store.All()
	if err != nil {
		return fmt.Errorf("internal: seed indexes: %w", err)
	}
	for _, note := range notes {
		engine.IndexOrUpdate(builder.BuildDoc(note))
		g.ApplyNote(note, wikitext.Outlinks(wikitext.ParseDocument(note.Body)))
	}
	return nil
}
