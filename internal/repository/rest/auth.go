package rest

import (
	"context"
	"fmt"
	"time"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/supabase"
	"github.com/google/uuid"
)

type authProvider struct {
	auth *supabase.AuthClient
}

func NewAuthProvider(client *supabase.Client) *authProvider {
	return &authProvider{auth: client.Auth()}
}

func (p *authProvider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	resp, err := p.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return toSession(resp)
}

func (p *authProvider) SignUp(ctx context.Context, email, password string) (uuid.UUID, error) {
	user, err := p.auth.SignUp(ctx, email, password)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(user.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse user id: %w", err)
	}
	return id, nil
}

func (p *authProvider) Refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	resp, err := p.auth.RefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return toSession(resp)
}

func (p *authProvider) SignOut(ctx context.Context, accessToken string) error {
	return p.auth.SignOut(ctx, accessToken)
}

func toSession(resp *supabase.AuthSession) (*domain.Session, error) {
	userID, err := uuid.Parse(resp.User.ID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}

	expiresAt := time.Unix(resp.ExpiresAt, 0)
	if resp.ExpiresAt == 0 {
		expiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	return &domain.Session{
		UserID:       userID,
		Email:        resp.User.Email,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}
