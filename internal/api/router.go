package api

import (
	"net/http"
	"time"

	"github.com/dom/game-review-catalog/internal/api/handlers"
	"github.com/dom/game-review-catalog/internal/api/middleware"
	"github.com/dom/game-review-catalog/internal/metrics"
	"github.com/dom/game-review-catalog/internal/refresh"
	"github.com/dom/game-review-catalog/internal/service"
	"github.com/dom/game-review-catalog/internal/session"
	"github.com/dom/game-review-catalog/internal/view"
	"github.com/dom/game-review-catalog/internal/web"
	"github.com/dom/game-review-catalog/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Deps is everything the router wires into handlers.
type Deps struct {
	Services      *service.Services
	Sessions      *session.Manager
	Signal        *refresh.Signal
	Hub           *websocket.Hub
	Renderer      *web.Renderer
	Metrics       *metrics.Metrics
	Logger        logrus.FieldLogger
	SecureCookies bool
	// AuthRatePerMinute limits login and register submissions per client.
	// Zero disables the limit.
	AuthRatePerMinute int
	// Stop ends background work started by the router.
	Stop <-chan struct{}
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chiMiddleware.Recoverer)
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
	}
	r.Use(d.Sessions.Middleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	// Initialize handlers
	pages := handlers.NewPages(d.Renderer, d.SecureCookies, d.Logger)
	loader := &view.Loader{Games: d.Services.Game, Reviews: d.Services.Review, Log: d.Logger}
	authHandler := handlers.NewAuthHandler(d.Services.Auth, d.Sessions, pages, d.Logger)
	catalogHandler := handlers.NewCatalogHandler(loader, pages)
	gameHandler := handlers.NewGameHandler(d.Services.Game, pages, d.Logger)
	reviewHandler := handlers.NewReviewHandler(d.Services.Review, d.Services.Game, pages, d.Logger)
	wsHandler := handlers.NewWebSocketHandler(d.Hub, loader, d.Signal, d.Renderer, d.Metrics, d.Logger)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/catalogo", http.StatusSeeOther)
	})

	// Public pages
	r.Get("/catalogo", catalogHandler.List)
	r.Get("/jogo/{id}", catalogHandler.Detail)
	r.Get("/ws/jogo/{id}", wsHandler.Handle)

	// Auth forms, only without a session
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireNoSession)
		if d.AuthRatePerMinute > 0 {
			var onLimit func(*http.Request)
			if d.Metrics != nil {
				onLimit = func(r *http.Request) { d.Metrics.RateLimited(r.URL.Path) }
			}
			limiter := middleware.NewRateLimiter(d.AuthRatePerMinute, d.Logger, onLimit)
			if d.Stop != nil {
				limiter.StartCleanup(10*time.Minute, d.Stop)
			}
			r.Use(limiter.Handler)
		}

		r.Get("/login", authHandler.LoginPage)
		r.Post("/login", authHandler.Login)
		r.Get("/register", authHandler.RegisterPage)
		r.Post("/register", authHandler.Register)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession)

		r.Post("/logout", authHandler.Logout)

		// Game routes
		r.Get("/novo-jogo", gameHandler.NewPage)
		r.Post("/novo-jogo", gameHandler.Create)
		r.Get("/jogo/editar/{id}", gameHandler.EditPage)
		r.Post("/jogo/editar/{id}", gameHandler.Update)
		r.Post("/jogo/{id}/excluir", gameHandler.Delete)

		// Review routes
		r.Get("/jogo/{jogoId}/revisao-form", reviewHandler.FormPage)
		r.Post("/jogo/{jogoId}/revisao-form", reviewHandler.Submit)
		r.Get("/jogo/{jogoId}/revisao-form/{revisaoId}", reviewHandler.FormPage)
		r.Post("/jogo/{jogoId}/revisao-form/{revisaoId}", reviewHandler.Submit)
		r.Post("/jogo/{jogoId}/revisao/{revisaoId}/excluir", reviewHandler.Delete)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/catalogo", http.StatusSeeOther)
	})

	return r
}
