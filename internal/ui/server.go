// Package ui provides the web list view of the store screen.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/difftable/internal/store"
	"github.com/leapstack-labs/difftable/internal/ui/features/storescreen"
	"github.com/leapstack-labs/difftable/internal/ui/notifier"
	"github.com/leapstack-labs/difftable/internal/ui/router"
	"github.com/leapstack-labs/difftable/internal/watch"
	"github.com/leapstack-labs/difftable/pkg/diff"
	"golang.org/x/sync/errgroup"
)

// Server is the main UI server.
type Server struct {
	screen       *storescreen.Screen
	sessionStore *sessions.CookieStore
	port         int
	watch        bool
	fixturePath  string
	dev          bool
	logger       *slog.Logger
	notifier     *notifier.Notifier[storescreen.Event]
}

// Config holds configuration for the UI server.
type Config struct {
	Title         string
	Store         *store.Store
	Port          int
	Watch         bool
	Dev           bool
	SessionSecret string
	Logger        *slog.Logger
	FixturePath   string
	DiffOpts      []diff.Option
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	n := notifier.New[storescreen.Event]()
	screen, err := storescreen.NewScreen(storescreen.Config{
		Title:    cfg.Title,
		Store:    cfg.Store,
		Notifier: n,
		Logger:   logger,
		DiffOpts: cfg.DiffOpts,
	})
	if err != nil {
		return nil, fmt.Errorf("creating store screen: %w", err)
	}

	return &Server{
		screen:       screen,
		sessionStore: sessionStore,
		port:         cfg.Port,
		watch:        cfg.Watch,
		fixturePath:  cfg.FixturePath,
		dev:          cfg.Dev,
		logger:       logger,
		notifier:     n,
	}, nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, s.screen, s.sessionStore, s.dev); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// The screen loop owns every mutation.
	eg.Go(func() error {
		return s.screen.Run(egctx)
	})

	// Start fixture watcher if enabled
	if s.watch && s.fixturePath != "" {
		eg.Go(func() error {
			return s.watchFixture(egctx)
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Screen returns the store screen served by s.
func (s *Server) Screen() *storescreen.Screen {
	return s.screen
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier[storescreen.Event] {
	return s.notifier
}

// watchFixture replaces the store items whenever the fixture file changes.
func (s *Server) watchFixture(ctx context.Context) error {
	err := watch.File(ctx, s.fixturePath, watch.DefaultDebounce, s.logger, func() {
		s.reloadFixture(ctx)
	})
	if err != nil {
		s.logger.Error("failed to watch fixture", "path", s.fixturePath, "error", err)
		// Don't fail - continue without watching
	}
	return nil
}

func (s *Server) reloadFixture(ctx context.Context) {
	f, err := store.LoadFixture(s.fixturePath)
	if err != nil {
		s.logger.Error("fixture reload failed", "error", err)
		return
	}
	if err := s.screen.Replace(ctx, f.Items); err != nil {
		s.logger.Error("fixture replace failed", "error", err)
		return
	}
	s.logger.Info("fixture reloaded", "path", s.fixturePath, "items", len(f.Items))
}
