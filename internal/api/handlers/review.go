package handlers

import (
	"net/http"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/form"
	"github.com/dom/game-review-catalog/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
	gameService   *service.GameService
	pages         *Pages
	log           logrus.FieldLogger
}

func NewReviewHandler(reviewService *service.ReviewService, gameService *service.GameService, pages *Pages, log logrus.FieldLogger) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, gameService: gameService, pages: pages, log: log}
}

type reviewFormPage struct {
	Edit    bool
	Action  string
	Form    *form.Review
	Games   []*domain.Game
	Errors  map[string]string
	Message string
	Busy    bool
}

// route holds the ids of a review form URL. reviewID is uuid.Nil on the
// create form.
type reviewRoute struct {
	gameID   uuid.UUID
	reviewID uuid.UUID
	action   string
}

func parseReviewRoute(r *http.Request) (reviewRoute, bool) {
	var rt reviewRoute
	var err error
	if rt.gameID, err = uuid.Parse(chi.URLParam(r, "jogoId")); err != nil {
		return rt, false
	}
	rt.action = "/jogo/" + rt.gameID.String() + "/revisao-form"
	if raw := chi.URLParam(r, "revisaoId"); raw != "" {
		if rt.reviewID, err = uuid.Parse(raw); err != nil {
			return rt, false
		}
		rt.action += "/" + rt.reviewID.String()
	}
	return rt, true
}

func (h *ReviewHandler) render(w http.ResponseWriter, r *http.Request, status int, p reviewFormPage, m *form.Machine) {
	p.Message = m.Message()
	p.Busy = m.Busy()
	if p.Games == nil {
		games, err := h.gameService.List(r.Context())
		if err != nil {
			h.log.WithError(err).Warn("handlers.Review: could not list games for the form")
		}
		p.Games = games
	}
	title := "New review"
	if p.Edit {
		title = "Edit review"
	}
	h.pages.Render(w, r, status, "review_form", title, p)
}

// FormPage shows the create form, or the edit form when the route names a
// review.
func (h *ReviewHandler) FormPage(w http.ResponseWriter, r *http.Request) {
	rt, ok := parseReviewRoute(r)
	if !ok {
		seeOther(w, r, "/catalogo")
		return
	}

	if rt.reviewID == uuid.Nil {
		h.render(w, r, http.StatusOK, reviewFormPage{Action: rt.action, Form: form.NewReview(rt.gameID.String())}, form.NewMachine(false))
		return
	}

	m := form.NewMachine(true)
	page := reviewFormPage{Edit: true, Action: rt.action}
	review, err := h.reviewService.Get(r.Context(), rt.reviewID)
	if err != nil {
		m.Fail("Could not load the review: " + userMessage(err))
		page.Form = form.NewReview(rt.gameID.String())
		page.Form.GameLocked = true
		h.render(w, r, statusFor(err), page, m)
		return
	}
	m.Loaded()
	page.Form = form.ReviewFromEntity(review)
	h.render(w, r, http.StatusOK, page, m)
}

func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	rt, ok := parseReviewRoute(r)
	if !ok {
		seeOther(w, r, "/catalogo")
		return
	}
	edit := rt.reviewID != uuid.Nil
	m := form.NewMachine(edit)
	page := reviewFormPage{Edit: edit, Action: rt.action}

	// The game of an existing review cannot change: submit its stored value.
	var locked *uuid.UUID
	if edit {
		review, err := h.reviewService.Get(r.Context(), rt.reviewID)
		if err != nil {
			m.Fail("Could not load the review: " + userMessage(err))
			page.Form = form.NewReview(rt.gameID.String())
			h.render(w, r, statusFor(err), page, m)
			return
		}
		locked = &review.GameID
		m.Loaded()
	}

	f, err := form.ReviewFromRequest(r, locked)
	if err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	page.Form = f

	if err := f.Validate(); err != nil {
		m.Reject(userMessage(err))
		page.Errors = fieldErrors(err)
		h.render(w, r, statusFor(err), page, m)
		return
	}

	m.Submit()
	var gameID uuid.UUID
	var successMsg string
	if edit {
		err = h.reviewService.Update(r.Context(), rt.reviewID, f.Patch())
		gameID = *locked
		successMsg = "Review updated!"
	} else {
		var review *domain.Review
		review, err = h.reviewService.Create(r.Context(), f.CreateInput(), f.Screenshot.Upload())
		if err == nil {
			gameID = review.GameID
		}
		successMsg = "Review submitted!"
	}
	if err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{"game_id": f.GameID, "review_id": rt.reviewID}).Error("handlers.Review.Submit: save failed")
		m.Fail(userMessage(err))
		page.Errors = fieldErrors(err)
		h.render(w, r, statusFor(err), page, m)
		return
	}
	m.Succeed()

	h.pages.Flash(w, "success", successMsg)
	seeOther(w, r, "/jogo/"+gameID.String())
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(chi.URLParam(r, "jogoId"))
	if err != nil {
		seeOther(w, r, "/catalogo")
		return
	}
	reviewID, err := uuid.Parse(chi.URLParam(r, "revisaoId"))
	if err != nil {
		seeOther(w, r, "/jogo/"+gameID.String())
		return
	}

	if err := h.reviewService.Delete(r.Context(), reviewID); err != nil {
		h.log.WithError(err).WithField("review_id", reviewID).Error("handlers.Review.Delete: delete failed")
		h.pages.Flash(w, "error", "Could not delete the review: "+userMessage(err))
	} else {
		h.pages.Flash(w, "success", "Review deleted.")
	}
	seeOther(w, r, "/jogo/"+gameID.String())
}
