package session

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	AccessCookie  = "sb-access-token"
	RefreshCookie = "sb-refresh-token"

	refreshCookieMaxAge = 30 * 24 * time.Hour
)

type EventKind int

const (
	SignedIn EventKind = iota
	SignedOut
	TokenRefreshed
)

func (k EventKind) String() string {
	switch k {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	case TokenRefreshed:
		return "token_refreshed"
	default:
		return "unknown"
	}
}

// Event reports a change of identity. UserID is uuid.Nil after sign-out.
type Event struct {
	Kind       EventKind
	SessionKey string
	UserID     uuid.UUID
}

type Options struct {
	JWTSecret    string
	SecureCookie bool
	Logger       logrus.FieldLogger
	// Now overrides the clock used to check token expiry.
	Now func() time.Time
}

// Manager resolves the session of each request from its token cookies and is
// the only component that writes or clears those cookies.
type Manager struct {
	auth   repository.AuthProvider
	secret []byte
	secure bool
	now    func() time.Time
	log    logrus.FieldLogger

	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

func NewManager(auth repository.AuthProvider, opts Options) *Manager {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		auth:   auth,
		secret: []byte(opts.JWTSecret),
		secure: opts.SecureCookie,
		now:    now,
		log:    log,
		subs:   make(map[int]func(Event)),
	}
}

// Subscribe registers fn for every identity event. The returned function
// removes the subscription and is safe to call more than once.
func (m *Manager) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Manager) publish(ev Event) {
	m.mu.Lock()
	fns := make([]func(Event), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Load returns the session carried by the request cookies. A valid access
// token is accepted without contacting the backend. An expired one is
// exchanged once using the refresh cookie, and the new tokens are written
// to w. Anything else yields no session.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) (*domain.Session, bool) {
	access, err := r.Cookie(AccessCookie)
	if err != nil || access.Value == "" {
		return nil, false
	}

	sess, _, err := m.parse(access.Value)
	if err == nil {
		if refresh, err := r.Cookie(RefreshCookie); err == nil {
			sess.RefreshToken = refresh.Value
		}
		return sess, true
	}

	if !errors.Is(err, jwt.ErrTokenExpired) {
		m.log.WithError(err).Warn("session.Load: discarding invalid access token")
		m.clearCookies(w)
		return nil, false
	}

	refresh, cerr := r.Cookie(RefreshCookie)
	if cerr != nil || refresh.Value == "" {
		m.clearCookies(w)
		return nil, false
	}

	refreshed, err := m.auth.Refresh(r.Context(), refresh.Value)
	if err != nil {
		m.log.WithError(err).Warn("session.Load: token refresh failed")
		m.clearCookies(w)
		return nil, false
	}

	key, err := m.store(w, refreshed)
	if err != nil {
		m.log.WithError(err).Error("session.Load: refreshed token rejected")
		m.clearCookies(w)
		return nil, false
	}

	m.publish(Event{Kind: TokenRefreshed, SessionKey: key, UserID: refreshed.UserID})
	return refreshed, true
}

// Establish stores a freshly signed-in session in the response cookies.
func (m *Manager) Establish(w http.ResponseWriter, sess *domain.Session) error {
	key, err := m.store(w, sess)
	if err != nil {
		return err
	}
	m.publish(Event{Kind: SignedIn, SessionKey: key, UserID: sess.UserID})
	return nil
}

// Clear removes the session cookies. sess may be nil when the request had
// no valid session.
func (m *Manager) Clear(w http.ResponseWriter, sess *domain.Session) {
	m.clearCookies(w)

	var key string
	if sess != nil {
		if _, claims, err := m.parse(sess.AccessToken); err == nil {
			key = claims.SessionID
		}
	}
	m.publish(Event{Kind: SignedOut, SessionKey: key})
}

func (m *Manager) store(w http.ResponseWriter, sess *domain.Session) (string, error) {
	if sess == nil || sess.AccessToken == "" {
		return "", fmt.Errorf("session has no access token")
	}
	_, claims, err := m.parse(sess.AccessToken)
	if err != nil {
		return "", fmt.Errorf("validate access token: %w", err)
	}

	// The access cookie outlives the token so an expired token can still be
	// presented alongside the refresh cookie.
	http.SetCookie(w, m.cookie(AccessCookie, sess.AccessToken, int(refreshCookieMaxAge.Seconds())))
	if sess.RefreshToken != "" {
		http.SetCookie(w, m.cookie(RefreshCookie, sess.RefreshToken, int(refreshCookieMaxAge.Seconds())))
	}

	return claims.SessionID, nil
}

func (m *Manager) clearCookies(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie(AccessCookie, "", -1))
	http.SetCookie(w, m.cookie(RefreshCookie, "", -1))
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Claims is the subset of the backend's access token claims the app reads.
type Claims struct {
	Email     string `json:"email"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

func (m *Manager) parse(token string) (*domain.Session, *Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid subject: %w", err)
	}

	sess := &domain.Session{
		UserID:      userID,
		Email:       claims.Email,
		AccessToken: token,
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, claims, nil
}

// SignedToken builds an access token the way the backend does. It exists
// for tests and the seed tool, which need tokens the manager accepts.
func SignedToken(secret string, userID uuid.UUID, email string, expiresAt time.Time) (string, error) {
	claims := Claims{
		Email:     email,
		SessionID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Middleware resolves the session once per request and attaches it to the
// request context before any guard runs.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if sess, ok := m.Load(w, r); ok {
			ctx = WithSession(ctx, sess)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
