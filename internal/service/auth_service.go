package service

import (
	"context"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/repository"
	"github.com/google/uuid"
)

// AuthService forwards credentials to the backend's auth API. Errors are
// returned unchanged so their messages can be shown to the user.
type AuthService struct {
	auth repository.AuthProvider
}

func NewAuthService(auth repository.AuthProvider) *AuthService {
	return &AuthService{auth: auth}
}

type Credentials struct {
	Email    string
	Password string
}

func (s *AuthService) SignIn(ctx context.Context, creds Credentials) (*domain.Session, error) {
	return s.auth.SignIn(ctx, creds.Email, creds.Password)
}

// SignUp creates an account. It does not sign the user in; the backend may
// require the email to be confirmed first.
func (s *AuthService) SignUp(ctx context.Context, creds Credentials) (uuid.UUID, error) {
	return s.auth.SignUp(ctx, creds.Email, creds.Password)
}

// SignOut revokes the session on the backend. A nil session is a no-op.
func (s *AuthService) SignOut(ctx context.Context, sess *domain.Session) error {
	if sess == nil || sess.AccessToken == "" {
		return nil
	}
	return s.auth.SignOut(ctx, sess.AccessToken)
}
