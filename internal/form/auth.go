package form

import (
	"net/http"
	"strings"

	"github.com/dom/game-review-catalog/internal/service"
)

// Credentials is the login and register form.
type Credentials struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

func CredentialsFromRequest(r *http.Request) (*Credentials, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return &Credentials{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}, nil
}

func (f *Credentials) Validate() error {
	return check(f, "enter a valid email and a password of at least 6 characters")
}

func (f *Credentials) Service() service.Credentials {
	return service.Credentials{Email: f.Email, Password: f.Password}
}
