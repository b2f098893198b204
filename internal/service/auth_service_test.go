package service_test

import (
	"context"
	"testing"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/service"
	"github.com/dom/game-review-catalog/internal/supabase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_SignUpThenSignIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creds := service.Credentials{Email: "gui@example.com", Password: "hunter22"}

	id, err := f.services.Auth.SignUp(ctx, creds)
	require.NoError(t, err)

	sess, err := f.services.Auth.SignIn(ctx, creds)
	require.NoError(t, err)
	assert.Equal(t, id, sess.UserID)
	assert.NotEmpty(t, sess.AccessToken)

	require.NoError(t, f.services.Auth.SignOut(ctx, sess))
	assert.Equal(t, 1, f.backend.Auth.SignOuts)
}

func TestAuthService_SignIn(t *testing.T) {
	tests := []struct {
		name        string
		password    string
		unconfirmed bool
		wantMessage string
	}{
		{name: "wrong password", password: "nope", wantMessage: "Invalid login credentials"},
		{name: "unconfirmed email", password: "hunter22", unconfirmed: true, wantMessage: "Email not confirmed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.backend.Auth.RequireConfirmation = tt.unconfirmed
			_, err := f.services.Auth.SignUp(context.Background(), service.Credentials{Email: "h@example.com", Password: "hunter22"})
			require.NoError(t, err)

			_, err = f.services.Auth.SignIn(context.Background(), service.Credentials{Email: "h@example.com", Password: tt.password})

			var backendErr *supabase.Error
			require.ErrorAs(t, err, &backendErr)
			assert.Equal(t, tt.wantMessage, backendErr.Error())
		})
	}
}

func TestAuthService_SignUpDuplicate(t *testing.T) {
	f := newFixture(t)
	creds := service.Credentials{Email: "dup@example.com", Password: "hunter22"}
	_, err := f.services.Auth.SignUp(context.Background(), creds)
	require.NoError(t, err)

	_, err = f.services.Auth.SignUp(context.Background(), creds)
	assert.EqualError(t, err, "User already registered")
}

func TestAuthService_SignOutWithoutSession(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.services.Auth.SignOut(context.Background(), nil))
	require.NoError(t, f.services.Auth.SignOut(context.Background(), &domain.Session{}))
	assert.Zero(t, f.backend.Auth.SignOuts)
}
