package testutil

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/repository"
	"github.com/dom/game-review-catalog/internal/session"
	"github.com/dom/game-review-catalog/internal/supabase"
	"github.com/google/uuid"
)

// TestJWTSecret signs the access tokens issued by FakeAuth.
const TestJWTSecret = "test-jwt-secret-with-at-least-32-bytes"

// Backend is an in-memory stand-in for the hosted backend. Row visibility
// follows the same ownership policy as the real one: anyone may read, only
// the owner may update or delete, and rows hidden by the policy look absent.
type Backend struct {
	mu      sync.Mutex
	games   map[uuid.UUID]*domain.Game
	reviews map[uuid.UUID]*domain.Review

	Auth    *FakeAuth
	Storage *FakeStorage

	// Injected failures, consumed by the next matching call.
	GameCreateErr   error
	ReviewCreateErr error
	GameDeleteErr   error
	ListErr         error
	ReviewListErr   error

	GameCreates   int
	ReviewCreates int
}

func NewBackend() *Backend {
	return &Backend{
		games:   make(map[uuid.UUID]*domain.Game),
		reviews: make(map[uuid.UUID]*domain.Review),
		Auth:    NewFakeAuth(),
		Storage: NewFakeStorage(),
	}
}

// Repositories exposes the backend through the repository interfaces.
func (b *Backend) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Game:    &memGames{b: b},
		Review:  &memReviews{b: b},
		Storage: b.Storage,
		Auth:    b.Auth,
	}
}

// PutGame stores g directly, bypassing the policy.
func (b *Backend) PutGame(g *domain.Game) *domain.Game {
	b.mu.Lock()
	defer b.mu.Unlock()
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	cp := *g
	b.games[g.ID] = &cp
	return g
}

func (b *Backend) PutReview(r *domain.Review) *domain.Review {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	cp := *r
	b.reviews[r.ID] = &cp
	return r
}

func (b *Backend) Game(id uuid.UUID) (*domain.Game, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g, ok := b.games[id]
	if !ok {
		return nil, false
	}
	cp := b.withAverage(g)
	return cp, true
}

func (b *Backend) Review(id uuid.UUID) (*domain.Review, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.reviews[id]
	if !ok {
		return nil, false
	}
	cp := *r
	return &cp, true
}

func (b *Backend) GameCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.games)
}

func (b *Backend) ReviewCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.reviews)
}

// withAverage copies g and fills in the computed average score. Callers hold mu.
func (b *Backend) withAverage(g *domain.Game) *domain.Game {
	cp := *g
	var sum, n int
	for _, r := range b.reviews {
		if r.GameID == g.ID {
			sum += r.Score
			n++
		}
	}
	if n > 0 {
		avg := float64(sum) / float64(n)
		cp.AverageScore = &avg
	}
	return &cp
}

func take(errp *error) error {
	err := *errp
	*errp = nil
	return err
}

type memGames struct{ b *Backend }

func (m *memGames) List(ctx context.Context) ([]*domain.Game, error) {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	if err := take(&m.b.ListErr); err != nil {
		return nil, err
	}

	games := make([]*domain.Game, 0, len(m.b.games))
	for _, g := range m.b.games {
		games = append(games, m.b.withAverage(g))
	}
	slices.SortFunc(games, func(a, b *domain.Game) int {
		return strings.Compare(a.Title, b.Title)
	})
	return games, nil
}

func (m *memGames) GetByID(ctx context.Context, id uuid.UUID) (*domain.Game, error) {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	g, ok := m.b.games[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m.b.withAverage(g), nil
}

func (m *memGames) Create(ctx context.Context, game *domain.Game) error {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	if err := take(&m.b.GameCreateErr); err != nil {
		return err
	}
	if _, ok := session.UserID(ctx); !ok {
		return policyViolation()
	}

	game.ID = uuid.New()
	game.CreatedAt = time.Now()
	cp := *game
	cp.AverageScore = nil
	m.b.games[game.ID] = &cp
	m.b.GameCreates++
	return nil
}

func (m *memGames) Update(ctx context.Context, id uuid.UUID, patch domain.GamePatch) error {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	g, ok := m.b.games[id]
	if !ok || !g.OwnedBy(callerID(ctx)) {
		return domain.ErrNotFound
	}
	if patch.Title != nil {
		g.Title = *patch.Title
	}
	if patch.Platform != nil {
		g.Platform = *patch.Platform
	}
	if patch.Genre != nil {
		g.Genre = *patch.Genre
	}
	if patch.ReleaseDate != nil {
		g.ReleaseDate = patch.ReleaseDate
	}
	return nil
}

func (m *memGames) Delete(ctx context.Context, id uuid.UUID) error {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	if err := take(&m.b.GameDeleteErr); err != nil {
		return err
	}
	g, ok := m.b.games[id]
	if !ok || !g.OwnedBy(callerID(ctx)) {
		return domain.ErrNotFound
	}
	delete(m.b.games, id)
	return nil
}

type memReviews struct{ b *Backend }

func (m *memReviews) ListByGame(ctx context.Context, gameID uuid.UUID) ([]*domain.Review, error) {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	if err := take(&m.b.ReviewListErr); err != nil {
		return nil, err
	}

	var reviews []*domain.Review
	for _, r := range m.b.reviews {
		if r.GameID == gameID {
			cp := *r
			reviews = append(reviews, &cp)
		}
	}
	slices.SortFunc(reviews, func(a, b *domain.Review) int {
		return b.ReviewDate.Compare(a.ReviewDate)
	})
	return reviews, nil
}

func (m *memReviews) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	r, ok := m.b.reviews[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memReviews) Create(ctx context.Context, review *domain.Review) error {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	if err := take(&m.b.ReviewCreateErr); err != nil {
		return err
	}
	if _, ok := session.UserID(ctx); !ok {
		return policyViolation()
	}
	if _, ok := m.b.games[review.GameID]; !ok {
		return &supabase.Error{
			Code:       "23503",
			Message:    `insert or update on table "reviews" violates foreign key constraint "reviews_game_id_fkey"`,
			StatusCode: http.StatusConflict,
		}
	}

	review.ID = uuid.New()
	cp := *review
	m.b.reviews[review.ID] = &cp
	m.b.ReviewCreates++
	return nil
}

func (m *memReviews) Update(ctx context.Context, id uuid.UUID, patch domain.ReviewPatch) error {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	r, ok := m.b.reviews[id]
	if !ok || !r.OwnedBy(callerID(ctx)) {
		return domain.ErrNotFound
	}
	if patch.GameID != nil {
		r.GameID = *patch.GameID
	}
	if patch.Score != nil {
		r.Score = *patch.Score
	}
	if patch.Strengths != nil {
		r.Strengths = *patch.Strengths
	}
	if patch.Weaknesses != nil {
		r.Weaknesses = *patch.Weaknesses
	}
	return nil
}

func (m *memReviews) Delete(ctx context.Context, id uuid.UUID) error {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	r, ok := m.b.reviews[id]
	if !ok || !r.OwnedBy(callerID(ctx)) {
		return domain.ErrNotFound
	}
	delete(m.b.reviews, id)
	return nil
}

func callerID(ctx context.Context) uuid.UUID {
	id, _ := session.UserID(ctx)
	return id
}

func policyViolation() error {
	return &supabase.Error{
		Code:       "42501",
		Message:    "new row violates row-level security policy",
		StatusCode: http.StatusForbidden,
	}
}

// StoredObject is a file held by FakeStorage.
type StoredObject struct {
	Data        []byte
	ContentType string
}

// FakeStorage is an in-memory object store.
type FakeStorage struct {
	mu      sync.Mutex
	objects map[string]StoredObject

	UploadErr error
	RemoveErr error

	Uploads int
	Removes int
	// NoPublicURL makes PublicURL return "" as if the bucket were private.
	NoPublicURL bool
}

const fakeStorageURL = "https://storage.test/object/public/"

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{objects: make(map[string]StoredObject)}
}

func (s *FakeStorage) Upload(ctx context.Context, bucket, path string, data io.Reader, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := take(&s.UploadErr); err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return err
	}
	s.objects[bucket+"/"+path] = StoredObject{Data: buf.Bytes(), ContentType: contentType}
	s.Uploads++
	return nil
}

func (s *FakeStorage) PublicURL(bucket, path string) string {
	if s.NoPublicURL || bucket == "" || path == "" {
		return ""
	}
	return fakeStorageURL + bucket + "/" + path
}

func (s *FakeStorage) ObjectPath(bucket, publicURL string) (string, bool) {
	prefix := fakeStorageURL + bucket + "/"
	if !strings.HasPrefix(publicURL, prefix) || len(publicURL) == len(prefix) {
		return "", false
	}
	return strings.TrimPrefix(publicURL, prefix), true
}

func (s *FakeStorage) Remove(ctx context.Context, bucket, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := take(&s.RemoveErr); err != nil {
		return err
	}
	// Storage policies only let a user touch objects under their own folder,
	// and objects outside it look absent.
	if id, ok := session.UserID(ctx); ok && !strings.HasPrefix(path, id.String()+"/") {
		return domain.ErrNotFound
	}
	key := bucket + "/" + path
	if _, ok := s.objects[key]; !ok {
		return domain.ErrNotFound
	}
	delete(s.objects, key)
	s.Removes++
	return nil
}

// Objects returns the keys ("bucket/path") of every stored object.
func (s *FakeStorage) Objects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (s *FakeStorage) Object(bucket, path string) (StoredObject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[bucket+"/"+path]
	return obj, ok
}

type fakeUser struct {
	id        uuid.UUID
	password  string
	confirmed bool
}

// FakeAuth issues real HS256 access tokens signed with TestJWTSecret.
type FakeAuth struct {
	mu       sync.Mutex
	users    map[string]*fakeUser
	refresh  map[string]string // refresh token -> email
	TokenTTL time.Duration
	// RequireConfirmation leaves new accounts unconfirmed.
	RequireConfirmation bool

	SignIns   int
	SignOuts  int
	Refreshes int
}

func NewFakeAuth() *FakeAuth {
	return &FakeAuth{
		users:    make(map[string]*fakeUser),
		refresh:  make(map[string]string),
		TokenTTL: time.Hour,
	}
}

// AddUser registers a confirmed account and returns its id.
func (a *FakeAuth) AddUser(email, password string) uuid.UUID {
	a.mu.Lock()
	defer a.mu.Unlock()
	u := &fakeUser{id: uuid.New(), password: password, confirmed: true}
	a.users[email] = u
	return u.id
}

func (a *FakeAuth) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	u, ok := a.users[email]
	if !ok || u.password != password {
		return nil, &supabase.Error{Code: "invalid_credentials", Message: "Invalid login credentials", StatusCode: http.StatusBadRequest}
	}
	if !u.confirmed {
		return nil, &supabase.Error{Code: "email_not_confirmed", Message: "Email not confirmed", StatusCode: http.StatusBadRequest}
	}
	a.SignIns++
	return a.issue(email, u.id, time.Now().Add(a.TokenTTL))
}

func (a *FakeAuth) SignUp(ctx context.Context, email, password string) (uuid.UUID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.users[email]; ok {
		return uuid.Nil, &supabase.Error{Code: "user_already_exists", Message: "User already registered", StatusCode: http.StatusUnprocessableEntity}
	}
	u := &fakeUser{id: uuid.New(), password: password, confirmed: !a.RequireConfirmation}
	a.users[email] = u
	return u.id, nil
}

func (a *FakeAuth) Refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	email, ok := a.refresh[refreshToken]
	if !ok {
		return nil, &supabase.Error{Code: "refresh_token_not_found", Message: "Invalid Refresh Token: Refresh Token Not Found", StatusCode: http.StatusBadRequest}
	}
	delete(a.refresh, refreshToken)
	a.Refreshes++
	return a.issue(email, a.users[email].id, time.Now().Add(a.TokenTTL))
}

func (a *FakeAuth) SignOut(ctx context.Context, accessToken string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.SignOuts++
	return nil
}

// Issue returns a session for email whose access token expires at expiresAt.
// The account is created if needed.
func (a *FakeAuth) Issue(email string, expiresAt time.Time) (*domain.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	u, ok := a.users[email]
	if !ok {
		u = &fakeUser{id: uuid.New(), confirmed: true}
		a.users[email] = u
	}
	return a.issue(email, u.id, expiresAt)
}

// issue is called with mu held.
func (a *FakeAuth) issue(email string, id uuid.UUID, expiresAt time.Time) (*domain.Session, error) {
	token, err := session.SignedToken(TestJWTSecret, id, email, expiresAt)
	if err != nil {
		return nil, err
	}
	refresh := uuid.NewString()
	a.refresh[refresh] = email
	return &domain.Session{
		UserID:       id,
		Email:        email,
		AccessToken:  token,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}

// ErrBackendDown is a generic transport failure for injection.
var ErrBackendDown = errors.New("backend unavailable")

// SessionContext returns ctx carrying a signed-in session for userID.
func SessionContext(ctx context.Context, userID uuid.UUID) context.Context {
	return session.WithSession(ctx, &domain.Session{UserID: userID, Email: "user@example.com", AccessToken: "token"})
}
