package handlers_test

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/dom/game-review-catalog/internal/session"
	"github.com/dom/game-review-catalog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func credentials(email, password string) url.Values {
	return url.Values{"email": {email}, "password": {password}}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		setup          func(ts *testutil.TestServer)
		form           url.Values
		expectedStatus int
		expectedText   string
	}{
		{
			name: "wrong password",
			setup: func(ts *testutil.TestServer) {
				ts.Backend.Auth.AddUser("player@example.com", "secret123")
			},
			form:           credentials("player@example.com", "wrong-password"),
			expectedStatus: http.StatusUnauthorized,
			expectedText:   "Incorrect email or password.",
		},
		{
			name:           "unknown account",
			form:           credentials("nobody@example.com", "secret123"),
			expectedStatus: http.StatusUnauthorized,
			expectedText:   "Incorrect email or password.",
		},
		{
			name: "email not confirmed",
			setup: func(ts *testutil.TestServer) {
				ts.Backend.Auth.RequireConfirmation = true
				_, err := ts.Backend.Auth.SignUp(context.Background(), "new@example.com", "secret123")
				require.NoError(t, err)
			},
			form:           credentials("new@example.com", "secret123"),
			expectedStatus: http.StatusUnauthorized,
			expectedText:   "Confirm your email before signing in.",
		},
		{
			name:           "malformed email",
			form:           credentials("not-an-email", "secret123"),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedText:   "enter a valid email address",
		},
		{
			name:           "short password",
			form:           credentials("player@example.com", "123"),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedText:   "password must be at least 6 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := testutil.NewTestServer(t)
			if tt.setup != nil {
				tt.setup(ts)
			}
			b := ts.NewBrowser(t)

			resp := b.PostForm("/login", tt.form)

			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			testutil.AssertPageContains(t, resp, tt.expectedText)
			assert.Empty(t, b.Cookie(session.AccessCookie))
		})
	}
}

func TestAuthHandler_LoginSuccess(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ts.Backend.Auth.AddUser("player@example.com", "secret123")
	b := ts.NewBrowser(t)

	resp := b.PostForm("/login", credentials("player@example.com", "secret123"))

	testutil.AssertRedirect(t, resp, "/catalogo")
	assert.NotEmpty(t, b.Cookie(session.AccessCookie))
	assert.NotEmpty(t, b.Cookie(session.RefreshCookie))

	// The session is picked up on the next request.
	page := b.Get("/catalogo")
	testutil.AssertStatusCode(t, page, http.StatusOK)
	testutil.AssertPageContains(t, page, "player@example.com", "Sign out")
}

func TestAuthHandler_GuardedBySession(t *testing.T) {
	ts := testutil.NewTestServer(t)
	b := ts.NewBrowser(t)
	b.SignIn("player@example.com")

	for _, path := range []string{"/login", "/register"} {
		t.Run(path, func(t *testing.T) {
			testutil.AssertRedirect(t, b.Get(path), "/catalogo")
		})
	}
}

func TestAuthHandler_Register(t *testing.T) {
	ts := testutil.NewTestServer(t)
	b := ts.NewBrowser(t)

	resp := b.PostForm("/register", credentials("fresh@example.com", "secret123"))

	testutil.AssertRedirect(t, resp, "/login")
	testutil.AssertFlash(t, b, "success", "Registration successful!")
	assert.Empty(t, b.Cookie(session.AccessCookie), "registering must not sign in")

	// The flash is shown once on the login page.
	page := b.Get("/login")
	testutil.AssertPageContains(t, page, "Registration successful! Sign in to continue.")
	assert.Empty(t, b.Cookie("flash"))

	resp = b.PostForm("/login", credentials("fresh@example.com", "secret123"))
	testutil.AssertRedirect(t, resp, "/catalogo")
}

func TestAuthHandler_RegisterDuplicate(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ts.Backend.Auth.AddUser("taken@example.com", "secret123")
	b := ts.NewBrowser(t)

	resp := b.PostForm("/register", credentials("taken@example.com", "secret123"))

	testutil.AssertStatusCode(t, resp, http.StatusUnprocessableEntity)
	testutil.AssertPageContains(t, resp, "Registration failed: User already registered")
}

func TestAuthHandler_Logout(t *testing.T) {
	ts := testutil.NewTestServer(t)
	b := ts.NewBrowser(t)
	b.SignIn("player@example.com")

	var mu sync.Mutex
	var events []session.Event
	unsubscribe := ts.Sessions.Subscribe(func(ev session.Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})
	defer unsubscribe()

	resp := b.PostForm("/logout", nil)

	testutil.AssertRedirect(t, resp, "/login")
	assert.Empty(t, b.Cookie(session.AccessCookie))
	assert.Empty(t, b.Cookie(session.RefreshCookie))
	assert.Equal(t, 1, ts.Backend.Auth.SignOuts)
	mu.Lock()
	got := append([]session.Event(nil), events...)
	mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, session.SignedOut, got[0].Kind)
	assert.NotEmpty(t, got[0].SessionKey)

	// Protected pages now send the browser to the login form.
	testutil.AssertRedirect(t, b.Get("/novo-jogo"), "/login")
}

func TestAuthHandler_LogoutRequiresSession(t *testing.T) {
	ts := testutil.NewTestServer(t)
	b := ts.NewBrowser(t)

	testutil.AssertRedirect(t, b.PostForm("/logout", nil), "/login")
	assert.Zero(t, ts.Backend.Auth.SignOuts)
}
