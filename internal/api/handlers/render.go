package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/session"
	"github.com/dom/game-review-catalog/internal/supabase"
	"github.com/dom/game-review-catalog/internal/web"
	"github.com/sirupsen/logrus"
)

const flashCookie = "flash"

// Pages renders full pages with the session and pending flash filled in.
type Pages struct {
	renderer *web.Renderer
	log      logrus.FieldLogger
	secure   bool
}

func NewPages(renderer *web.Renderer, secureCookies bool, log logrus.FieldLogger) *Pages {
	return &Pages{renderer: renderer, log: log, secure: secureCookies}
}

func (p *Pages) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	page := web.Page{Title: title, Data: data, Flash: p.takeFlash(w, r)}
	if sess, ok := session.FromContext(r.Context()); ok {
		page.Session = sess
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := p.renderer.Render(w, name, page); err != nil {
		p.log.WithError(err).WithField("page", name).Error("handlers.Pages.Render: template failed")
	}
}

// Flash stores a one-shot notice for the next rendered page.
func (p *Pages) Flash(w http.ResponseWriter, kind, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(kind + "\x00" + message)),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (p *Pages) takeFlash(w http.ResponseWriter, r *http.Request) *web.Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1, HttpOnly: true, Secure: p.secure})

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	kind, message, ok := strings.Cut(string(raw), "\x00")
	if !ok || message == "" {
		return nil
	}
	return &web.Flash{Kind: kind, Message: message}
}

func seeOther(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// userMessage is what the user sees when an operation fails. Backend
// messages are passed through unchanged.
func userMessage(err error) string {
	var verr *domain.ValidationError
	var uerr *domain.UploadError
	var berr *supabase.Error
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &uerr):
		if errors.As(uerr.Err, &berr) {
			return "Image upload failed: " + berr.Message
		}
		return "Image upload failed, try again."
	case errors.As(err, &berr):
		return berr.Message
	case errors.Is(err, domain.ErrUnauthenticated):
		return "Sign in to continue."
	case errors.Is(err, domain.ErrForbidden):
		return "You do not have permission to change this."
	case errors.Is(err, domain.ErrNotFound):
		return "Not found, or you do not have permission to change it."
	default:
		return "Something went wrong, try again."
	}
}

func statusFor(err error) int {
	var verr *domain.ValidationError
	var berr *supabase.Error
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &berr) && berr.StatusCode >= 400 && berr.StatusCode < 500:
		return berr.StatusCode
	default:
		return http.StatusBadGateway
	}
}

func fieldErrors(err error) map[string]string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}
