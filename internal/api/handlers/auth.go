package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dom/game-review-catalog/internal/form"
	"github.com/dom/game-review-catalog/internal/service"
	"github.com/dom/game-review-catalog/internal/session"
	"github.com/dom/game-review-catalog/internal/supabase"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	authService *service.AuthService
	sessions    *session.Manager
	pages       *Pages
	log         logrus.FieldLogger
}

func NewAuthHandler(authService *service.AuthService, sessions *session.Manager, pages *Pages, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, pages: pages, log: log}
}

type authPage struct {
	Email   string
	Errors  map[string]string
	Message string
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, "login", "Sign in", authPage{})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	f, err := form.CredentialsFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := f.Validate(); err != nil {
		h.pages.Render(w, r, statusFor(err), "login", "Sign in", authPage{Email: f.Email, Errors: fieldErrors(err), Message: userMessage(err)})
		return
	}

	sess, err := h.authService.SignIn(r.Context(), f.Service())
	if err != nil {
		h.log.WithError(err).WithField("email", f.Email).Warn("handlers.Auth.Login: sign in failed")
		h.pages.Render(w, r, http.StatusUnauthorized, "login", "Sign in", authPage{Email: f.Email, Message: loginMessage(err)})
		return
	}

	if err := h.sessions.Establish(w, sess); err != nil {
		h.log.WithError(err).Error("handlers.Auth.Login: could not store session")
		h.pages.Render(w, r, http.StatusBadGateway, "login", "Sign in", authPage{Email: f.Email, Message: "Sign in failed, try again."})
		return
	}
	seeOther(w, r, "/catalogo")
}

// loginMessage rewrites the two common sign-in failures into friendlier text.
func loginMessage(err error) string {
	var berr *supabase.Error
	if errors.As(err, &berr) {
		switch {
		case strings.Contains(berr.Message, "Invalid login credentials"):
			return "Incorrect email or password."
		case strings.Contains(berr.Message, "Email not confirmed"):
			return "Confirm your email before signing in."
		}
	}
	return userMessage(err)
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, "register", "Register", authPage{})
}

// Register creates the account and sends the user to the login page. It
// does not sign them in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	f, err := form.CredentialsFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := f.Validate(); err != nil {
		h.pages.Render(w, r, statusFor(err), "register", "Register", authPage{Email: f.Email, Errors: fieldErrors(err), Message: userMessage(err)})
		return
	}

	userID, err := h.authService.SignUp(r.Context(), f.Service())
	if err != nil {
		h.log.WithError(err).WithField("email", f.Email).Warn("handlers.Auth.Register: sign up failed")
		h.pages.Render(w, r, statusFor(err), "register", "Register", authPage{Email: f.Email, Message: "Registration failed: " + userMessage(err)})
		return
	}

	h.log.WithField("user_id", userID).Info("account registered")
	h.pages.Flash(w, "success", "Registration successful! Sign in to continue.")
	seeOther(w, r, "/login")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	if err := h.authService.SignOut(r.Context(), sess); err != nil {
		h.log.WithError(err).Warn("handlers.Auth.Logout: backend sign out failed, clearing local session anyway")
	}
	h.sessions.Clear(w, sess)
	seeOther(w, r, "/login")
}
