package handlers

import (
	"fmt"
	"net/http"

	"github.com/dom/game-review-catalog/internal/form"
	"github.com/dom/game-review-catalog/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type GameHandler struct {
	gameService *service.GameService
	pages       *Pages
	log         logrus.FieldLogger
}

func NewGameHandler(gameService *service.GameService, pages *Pages, log logrus.FieldLogger) *GameHandler {
	return &GameHandler{gameService: gameService, pages: pages, log: log}
}

type gameFormPage struct {
	Edit    bool
	Action  string
	Form    *form.Game
	Errors  map[string]string
	Message string
	Busy    bool
}

func (h *GameHandler) render(w http.ResponseWriter, r *http.Request, status int, p gameFormPage, m *form.Machine) {
	p.Message = m.Message()
	p.Busy = m.Busy()
	title := "New game"
	if p.Edit {
		title = "Edit game"
	}
	h.pages.Render(w, r, status, "game_form", title, p)
}

func (h *GameHandler) NewPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, gameFormPage{Action: "/novo-jogo", Form: &form.Game{}}, form.NewMachine(false))
}

func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	m := form.NewMachine(false)
	page := gameFormPage{Action: "/novo-jogo"}

	f, err := form.GameFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	page.Form = f

	if err := f.Validate(true); err != nil {
		m.Reject(userMessage(err))
		page.Errors = fieldErrors(err)
		h.render(w, r, statusFor(err), page, m)
		return
	}

	m.Submit()
	game, err := h.gameService.Create(r.Context(), f.CreateInput(), f.Cover.Upload())
	if err != nil {
		h.log.WithError(err).Error("handlers.Game.Create: create failed")
		m.Fail(userMessage(err))
		page.Errors = fieldErrors(err)
		h.render(w, r, statusFor(err), page, m)
		return
	}
	m.Succeed()

	h.pages.Flash(w, "success", fmt.Sprintf("Game %q created!", game.Title))
	seeOther(w, r, "/catalogo")
}

func (h *GameHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	m := form.NewMachine(true)
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		seeOther(w, r, "/catalogo")
		return
	}
	page := gameFormPage{Edit: true, Action: "/jogo/editar/" + id.String(), Form: &form.Game{}}

	game, err := h.gameService.Get(r.Context(), id)
	if err != nil {
		m.Fail("Could not load the game: " + userMessage(err))
		h.render(w, r, statusFor(err), page, m)
		return
	}
	m.Loaded()
	page.Form = form.GameFromEntity(game)
	h.render(w, r, http.StatusOK, page, m)
}

func (h *GameHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		seeOther(w, r, "/catalogo")
		return
	}
	m := form.NewMachine(true)
	m.Loaded()
	page := gameFormPage{Edit: true, Action: "/jogo/editar/" + id.String()}

	f, err := form.GameFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	page.Form = f

	if err := f.Validate(false); err != nil {
		m.Reject(userMessage(err))
		page.Errors = fieldErrors(err)
		h.render(w, r, statusFor(err), page, m)
		return
	}

	m.Submit()
	if err := h.gameService.Update(r.Context(), id, f.Patch()); err != nil {
		h.log.WithError(err).WithField("game_id", id).Error("handlers.Game.Update: update failed")
		m.Fail(userMessage(err))
		h.render(w, r, statusFor(err), page, m)
		return
	}
	m.Succeed()

	h.pages.Flash(w, "success", "Game updated!")
	seeOther(w, r, "/jogo/"+id.String())
}

// Delete runs after the browser's confirm prompt.
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		seeOther(w, r, "/catalogo")
		return
	}

	if err := h.gameService.Delete(r.Context(), id); err != nil {
		h.log.WithError(err).WithField("game_id", id).Error("handlers.Game.Delete: delete failed")
		h.pages.Flash(w, "error", "Could not delete the game: "+userMessage(err))
		seeOther(w, r, "/jogo/"+id.String())
		return
	}

	h.pages.Flash(w, "success", "Game deleted.")
	seeOther(w, r, "/catalogo")
}
