// Package server wires the application together: it is the composition root
// that builds the repositories, services, and handlers, mounts the routes,
// and runs the HTTP server with graceful shutdown.
package server

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
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/newsdesk/internal/apperror"
	"github.com/sakif/newsdesk/internal/auth"
	"github.com/sakif/newsdesk/internal/handler"
	"github.com/sakif/newsdesk/internal/middleware"
	"github.com/sakif/newsdesk/internal/model"
	sqliteRepo "github.com/sakif/newsdesk/internal/repository/sqlite"
	"github.com/sakif/newsdesk/internal/service"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string

	// GitHub OAuth App credentials. Leave empty to disable GitHub login.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	// SecureCookies marks session cookies Secure. Off for local plain-HTTP
	// development only.
	SecureCookies bool

	// AdminEmail/AdminPassword seed an initial admin account on startup if
	// no account with that email exists yet. Without them a fresh database
	// has no admin and nothing can ever be approved.
	AdminEmail    string
	AdminPassword string
}

// Server owns the router and the database connection; the connection is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds the full dependency chain: database, services, handlers, routes.
// Each layer receives only the interfaces it needs.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
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

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" && s.config.GitHubClientSecret != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	identity := service.NewIdentityService(s.db.Users(), tokens, passwords, s.logger)
	content := service.NewContentService(s.db.Articles(), s.db.Comments(), s.logger)

	if err := s.seedAdmin(passwords); err != nil {
		return fmt.Errorf("seeding admin account: %w", err)
	}

	authHandler := handler.NewAuthHandler(identity, github, s.config.SecureCookies, s.logger)
	articleHandler := handler.NewArticleHandler(content, s.logger)
	commentHandler := handler.NewCommentHandler(content, s.logger)
	adminHandler := handler.NewAdminHandler(identity, content, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.RequestLogger(s.logger))
	s.router.Use(middleware.Metrics)

	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/logout", authHandler.HandleLogout)
		r.Get("/github/login", authHandler.HandleGitHubLogin)
		r.Get("/github/callback", authHandler.HandleGitHubCallback)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/categories", articleHandler.HandleCategories)

		// Public reads. OptionalUser resolves the caller when a token is
		// present so per-role visibility applies, but never blocks.
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalUser(tokens, identity))
			r.Get("/articles", articleHandler.HandleList)
			r.Get("/articles/{id}", articleHandler.HandleGet)
			r.Get("/articles/{id}/comments", commentHandler.HandleList)
		})

		// Authenticated writes.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser(tokens, identity))
			r.Get("/me", authHandler.HandleMe)
			r.Post("/articles", articleHandler.HandleCreate)
			r.Patch("/articles/{id}", articleHandler.HandleUpdate)
			r.Delete("/articles/{id}", articleHandler.HandleDelete)
			r.Post("/articles/{id}/comments", commentHandler.HandleCreate)
			r.Delete("/comments/{id}", commentHandler.HandleDelete)

			r.Route("/admin", func(r chi.Router) {
				r.Get("/stats", adminHandler.HandleStats)
				r.Get("/users", adminHandler.HandleListUsers)
				r.Patch("/users/{id}", adminHandler.HandleUpdateUserRole)
			})
		})
	})

	return nil
}

// seedAdmin creates the initial admin account if configured and absent.
// Idempotent: an existing account with the configured email is left alone,
// whatever its role.
func (s *Server) seedAdmin(passwords *auth.PasswordService) error {
	if s.config.AdminEmail == "" || s.config.AdminPassword == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := s.db.Users()

	_, err := users.GetByEmail(ctx, s.config.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return err
	}

	hash, err := passwords.Hash(s.config.AdminPassword)
	if err != nil {
		return err
	}

	admin := &model.User{
		Email:        s.config.AdminEmail,
		Name:         "Administrator",
		Role:         model.RoleAdmin,
		PasswordHash: hash,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	s.logger.Info("seeded initial admin account", "email", s.config.AdminEmail)
	return nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, drain in-flight requests, close the database.
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

// Router exposes the configured router for httptest-based integration tests.
func (s *Server) Router() http.Handler {
	return s.router
}
