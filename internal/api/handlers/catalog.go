package handlers

import (
	"net/http"

	"github.com/dom/game-review-catalog/internal/view"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CatalogHandler serves the read-only pages.
type CatalogHandler struct {
	loader *view.Loader
	pages  *Pages
}

func NewCatalogHandler(loader *view.Loader, pages *Pages) *CatalogHandler {
	return &CatalogHandler{loader: loader, pages: pages}
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	catalog := h.loader.Catalog(r.Context())
	status := http.StatusOK
	if catalog.Err != "" {
		status = http.StatusBadGateway
	}
	h.pages.Render(w, r, status, "catalog", "Catalog", catalog)
}

func (h *CatalogHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.pages.Render(w, r, http.StatusNotFound, "detail", "Game", &view.Detail{Err: view.MsgDetailUnavailable})
		return
	}

	detail := h.loader.Detail(r.Context(), id)
	status := http.StatusOK
	title := "Game"
	if detail.Err != "" {
		status = http.StatusNotFound
	} else {
		title = detail.Game.Title
	}
	h.pages.Render(w, r, status, "detail", title, detail)
}
