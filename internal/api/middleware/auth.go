package middleware

import (
	"net/http"

	"github.com/dom/game-review-catalog/internal/session"
)

// RequireSession lets the request through only when a session is present.
// Anonymous visitors are redirected to the login page.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := session.UserID(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireNoSession is the inverse of RequireSession: signed-in users are
// sent to the catalog instead of the auth forms.
func RequireNoSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := session.UserID(r.Context()); ok {
			http.Redirect(w, r, "/catalogo", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
