package handlers

import (
	"net/http"
	"net/url"

	"github.com/dom/game-review-catalog/internal/metrics"
	"github.com/dom/game-review-catalog/internal/refresh"
	"github.com/dom/game-review-catalog/internal/view"
	"github.com/dom/game-review-catalog/internal/web"
	"github.com/dom/game-review-catalog/internal/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     sameOrigin,
}

// sameOrigin accepts browsers on this host and clients that send no Origin.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

// WebSocketHandler serves the live detail channel of /jogo/{id}.
type WebSocketHandler struct {
	hub      *websocket.Hub
	loader   *view.Loader
	signal   *refresh.Signal
	renderer *web.Renderer
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
}

func NewWebSocketHandler(hub *websocket.Hub, loader *view.Loader, signal *refresh.Signal, renderer *web.Renderer, m *metrics.Metrics, log logrus.FieldLogger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		loader:   loader,
		signal:   signal,
		renderer: renderer,
		metrics:  m,
		log:      log,
	}
}

func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid game id", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("handlers.WebSocket.Handle: upgrade failed")
		return
	}

	log := h.log.WithField("game_id", gameID)
	client := websocket.NewClient(h.hub, conn, func(render func(*view.Detail)) *view.DetailView {
		return view.NewDetailView(h.loader, h.signal, render)
	}, h.renderer.DetailFragment, log)

	if h.metrics != nil {
		h.metrics.LiveConnected()
		defer h.metrics.LiveDisconnected()
	}

	// The request context carries the viewer's session and stays alive
	// until the connection closes.
	client.Start(r.Context(), gameID)
}
