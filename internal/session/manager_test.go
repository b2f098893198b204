package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/session"
	"github.com/dom/game-review-catalog/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(auth *testutil.FakeAuth) *session.Manager {
	return session.NewManager(auth, session.Options{JWTSecret: testutil.TestJWTSecret})
}

// requestWith builds a request carrying the cookies set on rec.
func requestWith(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 && c.Value != "" {
			req.AddCookie(c)
		}
	}
	return req
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestManager_EstablishThenLoad(t *testing.T) {
	auth := testutil.NewFakeAuth()
	auth.AddUser("ana@example.com", "secret123")
	m := newManager(auth)

	var events []session.Event
	m.Subscribe(func(ev session.Event) { events = append(events, ev) })

	sess, err := auth.SignIn(context.Background(), "ana@example.com", "secret123")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Establish(rec, sess))

	access := cookieNamed(rec, session.AccessCookie)
	require.NotNil(t, access)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, sess.AccessToken, access.Value)

	loaded, ok := m.Load(httptest.NewRecorder(), requestWith(rec))
	require.True(t, ok)
	assert.Equal(t, sess.UserID, loaded.UserID)
	assert.Equal(t, "ana@example.com", loaded.Email)
	assert.Equal(t, sess.RefreshToken, loaded.RefreshToken)

	require.Len(t, events, 1)
	assert.Equal(t, session.SignedIn, events[0].Kind)
	assert.Equal(t, sess.UserID, events[0].UserID)
	assert.NotEmpty(t, events[0].SessionKey)
	// A valid token is accepted locally.
	assert.Zero(t, auth.Refreshes)
}

func TestManager_LoadWithoutCookies(t *testing.T) {
	m := newManager(testutil.NewFakeAuth())

	sess, ok := m.Load(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
	assert.Nil(t, sess)
}

func TestManager_LoadRejectsForeignSignature(t *testing.T) {
	m := newManager(testutil.NewFakeAuth())

	token, err := session.SignedToken("some-other-secret-of-sufficient-size", uuid.New(), "x@example.com", time.Now().Add(time.Hour))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.AccessCookie, Value: token})
	rec := httptest.NewRecorder()

	_, ok := m.Load(rec, req)
	assert.False(t, ok)

	cleared := cookieNamed(rec, session.AccessCookie)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
}

func TestManager_ExpiredTokenIsRefreshed(t *testing.T) {
	auth := testutil.NewFakeAuth()
	m := newManager(auth)

	var events []session.Event
	m.Subscribe(func(ev session.Event) { events = append(events, ev) })

	stale, err := auth.Issue("bia@example.com", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.AccessCookie, Value: stale.AccessToken})
	req.AddCookie(&http.Cookie{Name: session.RefreshCookie, Value: stale.RefreshToken})
	rec := httptest.NewRecorder()

	sess, ok := m.Load(rec, req)
	require.True(t, ok)
	assert.Equal(t, stale.UserID, sess.UserID)
	assert.NotEqual(t, stale.AccessToken, sess.AccessToken)
	assert.Equal(t, 1, auth.Refreshes)

	renewed := cookieNamed(rec, session.AccessCookie)
	require.NotNil(t, renewed)
	assert.Equal(t, sess.AccessToken, renewed.Value)

	require.Len(t, events, 1)
	assert.Equal(t, session.TokenRefreshed, events[0].Kind)
}

func TestManager_ExpiredTokenWithoutRefresh(t *testing.T) {
	auth := testutil.NewFakeAuth()
	m := newManager(auth)

	stale, err := auth.Issue("caio@example.com", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	tests := []struct {
		name    string
		refresh string
	}{
		{name: "no refresh cookie"},
		{name: "unknown refresh token", refresh: "bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: session.AccessCookie, Value: stale.AccessToken})
			if tt.refresh != "" {
				req.AddCookie(&http.Cookie{Name: session.RefreshCookie, Value: tt.refresh})
			}

			_, ok := m.Load(httptest.NewRecorder(), req)
			assert.False(t, ok)
		})
	}
}

func TestManager_Clear(t *testing.T) {
	auth := testutil.NewFakeAuth()
	m := newManager(auth)
	sess, err := auth.Issue("dani@example.com", time.Now().Add(time.Hour))
	require.NoError(t, err)

	var events []session.Event
	unsubscribe := m.Subscribe(func(ev session.Event) { events = append(events, ev) })

	rec := httptest.NewRecorder()
	m.Clear(rec, sess)

	for _, name := range []string{session.AccessCookie, session.RefreshCookie} {
		c := cookieNamed(rec, name)
		require.NotNil(t, c, name)
		assert.Negative(t, c.MaxAge)
	}

	require.Len(t, events, 1)
	assert.Equal(t, session.SignedOut, events[0].Kind)
	assert.Equal(t, uuid.Nil, events[0].UserID)

	unsubscribe()
	unsubscribe()
	m.Clear(httptest.NewRecorder(), nil)
	assert.Len(t, events, 1)
}

func TestManager_Middleware(t *testing.T) {
	auth := testutil.NewFakeAuth()
	m := newManager(auth)
	sess, err := auth.Issue("eva@example.com", time.Now().Add(time.Hour))
	require.NoError(t, err)

	var got *domain.Session
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = session.FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/catalogo", nil)
	req.AddCookie(&http.Cookie{Name: session.AccessCookie, Value: sess.AccessToken})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, sess.UserID, got.UserID)

	got = nil
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/catalogo", nil))
	assert.Nil(t, got)
}
