package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/game-review-catalog/internal/api"
	"github.com/dom/game-review-catalog/internal/config"
	"github.com/dom/game-review-catalog/internal/logging"
	"github.com/dom/game-review-catalog/internal/metrics"
	"github.com/dom/game-review-catalog/internal/refresh"
	"github.com/dom/game-review-catalog/internal/repository"
	"github.com/dom/game-review-catalog/internal/repository/postgres"
	"github.com/dom/game-review-catalog/internal/repository/rest"
	"github.com/dom/game-review-catalog/internal/service"
	"github.com/dom/game-review-catalog/internal/session"
	"github.com/dom/game-review-catalog/internal/supabase"
	"github.com/dom/game-review-catalog/internal/web"
	"github.com/dom/game-review-catalog/internal/websocket"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		logrus.Fatalf("failed to configure logging: %v", err)
	}

	m := metrics.New()

	// Initialize backend client
	client, err := supabase.New(supabase.Config{
		URL:     cfg.SupabaseURL,
		AnonKey: cfg.SupabaseAnonKey,
		Timeout: cfg.BackendTimeout,
		Observe: m.ObserveBackend,
	})
	if err != nil {
		log.Fatalf("failed to create backend client: %v", err)
	}

	// Initialize repositories
	repos, err := newRepositories(cfg, client)
	if err != nil {
		log.Fatalf("failed to initialize repositories: %v", err)
	}

	// Refresh signal shared by services and live detail views
	sig := refresh.NewSignal()
	sig.Subscribe(m.RefreshTriggered)

	// Initialize services
	services := service.NewServices(repos, service.Buckets{
		Covers:      cfg.CoversBucket,
		Screenshots: cfg.ScreenshotsBucket,
	}, sig, log)

	sessions := session.NewManager(repos.Auth, session.Options{
		JWTSecret:    cfg.SupabaseJWTSecret,
		SecureCookie: cfg.CookieSecure,
		Logger:       log,
	})
	sessions.Subscribe(func(ev session.Event) {
		log.WithFields(logrus.Fields{
			"event":   ev.Kind.String(),
			"user_id": ev.UserID,
			"session": ev.SessionKey,
		}).Info("auth event")
	})

	renderer, err := web.New()
	if err != nil {
		log.Fatalf("failed to parse templates: %v", err)
	}

	// Initialize WebSocket hub
	hub := websocket.NewHub(log)
	go hub.Run()

	stop := make(chan struct{})

	// Initialize router
	router := api.NewRouter(api.Deps{
		Services:          services,
		Sessions:          sessions,
		Signal:            sig,
		Hub:               hub,
		Renderer:          renderer,
		Metrics:           m,
		Logger:            log,
		SecureCookies:     cfg.CookieSecure,
		AuthRatePerMinute: cfg.AuthRatePerMinute,
		Stop:              stop,
	})

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.WithFields(logrus.Fields{
			"port":         cfg.Port,
			"data_backend": cfg.DataBackend,
			"environment":  cfg.Environment,
		}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	close(stop)

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown.
	hub.Stop()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Info("server stopped")
}

// newRepositories picks the table backend. Storage and auth always use the
// backend's REST API.
func newRepositories(cfg *config.Config, client *supabase.Client) (*repository.Repositories, error) {
	restRepos := rest.NewRepositories(client, rest.Tables{Games: cfg.GamesTable, Reviews: cfg.ReviewsTable})
	if cfg.DataBackend != config.DataBackendPostgres {
		return restRepos, nil
	}

	level := logger.Warn
	if !cfg.IsProduction() {
		level = logger.Info
	}
	db, err := postgres.NewConnection(cfg.DatabaseURL, level)
	if err != nil {
		return nil, err
	}

	tables := postgres.Tables{Games: cfg.GamesTable, Reviews: cfg.ReviewsTable}
	if !cfg.IsProduction() {
		if err := postgres.Migrate(db, tables); err != nil {
			return nil, err
		}
	}

	repos := postgres.NewRepositories(db, tables)
	repos.Storage = restRepos.Storage
	repos.Auth = restRepos.Auth
	return repos, nil
}
