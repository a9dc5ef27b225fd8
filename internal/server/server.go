// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and routes.
// Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go loads config and creates the Server. New() then assembles the
// whole chain in one place:
//
//	sqlite.DB → repositories → services → handlers → routes
//
// This is the "composition root" pattern — all dependencies are wired here,
// rather than scattered across the codebase.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sakif/inkwell/internal/auth"
	"github.com/sakif/inkwell/internal/handler"
	"github.com/sakif/inkwell/internal/middleware"
	sqliteRepo "github.com/sakif/inkwell/internal/repository/sqlite"
	"github.com/sakif/inkwell/internal/service"
)

// Config holds server configuration, loaded from the environment by main.
type Config struct {
	Port          int
	DBPath        string
	SessionSecret string

	// Google OAuth client credentials. Empty values leave the OAuth routes
	// registered but failing at Google's door — fine for local dev on the
	// credentials flow only.
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection. Graceful shutdown closes it
// after in-flight requests drain, flushing the WAL and releasing the file
// lock.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a new Server with the given config.
//
// Each layer only receives what it needs: services get repository
// interfaces (not the concrete sqlite.DB), handlers get services. The
// handler never touches the database; the service never touches HTTP.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.SessionSecret)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	s.setupRoutes(tokens)

	return s, nil
}

// Router exposes the assembled router, mainly for tests that drive the
// server through httptest without binding a port.
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers
// 3. Recoverer — catches panics and returns 500 instead of crashing
// 4. Logger — logs each request with timing info
// 5. Metrics — Prometheus counters and latency histogram
func (s *Server) setupRoutes(tokens *auth.TokenService) {
	registry := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(registry)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(metrics.Middleware)

	// === Services ===
	// The like and bookmark tables share one schema shape, so the sqlite
	// package exposes them as dedicated stores over the same connection.
	likes := s.db.Likes()
	bookmarks := s.db.Bookmarks()

	passwords := auth.NewPasswordService()
	google := auth.NewGoogleProvider(s.config.GoogleClientID, s.config.GoogleClientSecret, s.config.GoogleCallbackURL)

	sessionService := service.NewSessionService(s.db, tokens, s.logger)
	authService := service.NewAuthService(s.db, s.db, passwords, sessionService, s.logger)
	postService := service.NewPostService(s.db, s.logger)
	engagementService := service.NewEngagementService(likes, bookmarks, s.db, s.db, s.db, s.logger)
	notificationService := service.NewNotificationService(s.db, s.logger)
	analyticsService := service.NewAnalyticsService(s.db, likes, s.logger)

	// === Handlers ===
	authHandler := handler.NewAuthHandler(google, authService, sessionService, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)
	engagementHandler := handler.NewEngagementHandler(engagementService, s.logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, s.logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, s.logger)

	requireAuth := auth.RequireAuth(tokens)
	requirePublisher := auth.RequirePublisher()
	optionalAuth := auth.OptionalAuth(tokens)

	// === OAuth browser flow (outside /api — these are navigations) ===
	s.router.Get("/auth/google/login", authHandler.HandleGoogleLogin)
	s.router.Get("/auth/google/callback", authHandler.HandleGoogleCallback)

	// Prometheus scrape endpoint
	s.router.Handle("/metrics", middleware.MetricsHandler(registry))

	s.router.Route("/api", func(r chi.Router) {
		// --- Public ---
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Post("/auth/register", authHandler.HandleRegister)
			r.Post("/auth/signin", authHandler.HandleSignIn)
			r.Get("/feed", postHandler.HandleFeed)
			r.Get("/posts/{id}/likes/count", engagementHandler.HandleLikeCount)
			r.Get("/session/route", authHandler.HandleRoute)
		})

		// --- Authenticated ---
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/auth/logout", authHandler.HandleLogout)
			r.Post("/auth/role", authHandler.HandleSetRole)
			r.Get("/me", authHandler.HandleGetProfile)
			r.Put("/me", authHandler.HandleUpdateName)
			r.Put("/me/avatar", authHandler.HandleUpdateAvatar)
			r.Put("/me/password", authHandler.HandleChangePassword)
			r.Get("/session", authHandler.HandleGetSession)
			r.Post("/session/refresh", authHandler.HandleRefreshSession)

			r.Get("/posts/{id}", postHandler.HandleGet)
			r.Post("/posts/{id}/like", engagementHandler.HandleToggleLike)
			r.Get("/posts/{id}/like", engagementHandler.HandleLikeStatus)
			r.Post("/posts/{id}/bookmark", engagementHandler.HandleToggleBookmark)
			r.Get("/posts/{id}/bookmark", engagementHandler.HandleBookmarkStatus)
			r.Post("/engagement/status", engagementHandler.HandleBulkStatus)
			r.Get("/bookmarks", engagementHandler.HandleBookmarks)

			r.Get("/notifications", notificationHandler.HandleList)
			r.Get("/notifications/unread", notificationHandler.HandleUnreadCount)
			r.Post("/notifications/read", notificationHandler.HandleMarkAllRead)
		})

		// --- Publisher only ---
		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requirePublisher)

			r.Post("/posts", postHandler.HandleCreate)
			r.Put("/posts/{id}", postHandler.HandleUpdate)
			r.Delete("/posts/{id}", postHandler.HandleDelete)
			r.Get("/posts/mine", postHandler.HandleMine)

			r.Get("/analytics/likes", analyticsHandler.HandleEngagement)
			r.Get("/analytics/posts", analyticsHandler.HandlePublishing)
		})
	})
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
