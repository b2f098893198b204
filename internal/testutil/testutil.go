package testutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dom/game-review-catalog/internal/api"
	"github.com/dom/game-review-catalog/internal/config"
	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/refresh"
	repoPostgres "github.com/dom/game-review-catalog/internal/repository/postgres"
	"github.com/dom/game-review-catalog/internal/service"
	"github.com/dom/game-review-catalog/internal/session"
	"github.com/dom/game-review-catalog/internal/web"
	"github.com/dom/game-review-catalog/internal/websocket"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestTables are the collection names used by every test.
var TestTables = repoPostgres.Tables{Games: "games", Reviews: "reviews"}

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a migrated
// connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_game_catalog"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := repoPostgres.NewConnection(dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	// uuid defaults come from pgcrypto on older servers
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		t.Fatalf("failed to enable pgcrypto: %v", err)
	}
	if err := repoPostgres.Migrate(db, TestTables); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	for _, table := range []string{TestTables.Reviews, TestTables.Games} {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %q CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:              "0", // Random port
		Environment:       "test",
		SupabaseURL:       "http://backend.test",
		SupabaseAnonKey:   "anon",
		SupabaseJWTSecret: TestJWTSecret,
		BackendTimeout:    5 * time.Second,
		DataBackend:       config.DataBackendREST,
		GamesTable:        TestTables.Games,
		ReviewsTable:      TestTables.Reviews,
		CoversBucket:      "covers",
		ScreenshotsBucket: "screenshots",
		LogLevel:          "debug",
		LogFormat:         "text",
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	Backend  *Backend
	Services *service.Services
	Sessions *session.Manager
	Signal   *refresh.Signal
	Hub      *websocket.Hub
	Config   *config.Config
	Logs     *test.Hook
}

// NewTestServer creates a complete test server over an in-memory backend
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	cfg := TestConfig()
	backend := NewBackend()
	repos := backend.Repositories()

	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	signal := refresh.NewSignal()
	services := service.NewServices(repos, service.Buckets{
		Covers:      cfg.CoversBucket,
		Screenshots: cfg.ScreenshotsBucket,
	}, signal, log)
	sessions := session.NewManager(repos.Auth, session.Options{JWTSecret: cfg.SupabaseJWTSecret, Logger: log})

	renderer, err := web.New()
	if err != nil {
		t.Fatalf("failed to parse templates: %v", err)
	}

	hub := websocket.NewHub(log)
	go hub.Run()

	router := api.NewRouter(api.Deps{
		Services: services,
		Sessions: sessions,
		Signal:   signal,
		Hub:      hub,
		Renderer: renderer,
		Logger:   log,
	})

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		Backend:  backend,
		Services: services,
		Sessions: sessions,
		Signal:   signal,
		Hub:      hub,
		Config:   cfg,
		Logs:     hook,
	}

	t.Cleanup(func() {
		hub.Stop()
		server.Close()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// URL returns the full URL for a given path
func (ts *TestServer) URL(path string) string {
	return ts.Server.URL + path
}

// WebSocketURL returns the live channel URL of a game page
func (ts *TestServer) WebSocketURL(gameID string) string {
	wsURL := "ws" + ts.Server.URL[4:] // Replace "http" with "ws"
	return fmt.Sprintf("%s/ws/jogo/%s", wsURL, gameID)
}

// Browser is an HTTP client that keeps cookies and does not follow
// redirects, so tests can assert on them.
type Browser struct {
	t      *testing.T
	ts     *TestServer
	Client *http.Client
}

func (ts *TestServer) NewBrowser(t *testing.T) *Browser {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &Browser{
		t:  t,
		ts: ts,
		Client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// SignIn registers a confirmed user on the fake backend and stores its
// session cookies in the browser.
func (b *Browser) SignIn(email string) *domain.Session {
	b.t.Helper()

	b.ts.Backend.Auth.AddUser(email, "secret123")
	sess, err := b.ts.Backend.Auth.SignIn(context.Background(), email, "secret123")
	if err != nil {
		b.t.Fatalf("failed to sign in: %v", err)
	}
	u, _ := url.Parse(b.ts.Server.URL)
	b.Client.Jar.SetCookies(u, SessionCookies(b.t, sess))
	return sess
}

func (b *Browser) Get(path string) *http.Response {
	b.t.Helper()

	resp, err := b.Client.Get(b.ts.URL(path))
	if err != nil {
		b.t.Fatalf("GET %s: %v", path, err)
	}
	b.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// PostForm submits a urlencoded form.
func (b *Browser) PostForm(path string, values url.Values) *http.Response {
	b.t.Helper()

	resp, err := b.Client.PostForm(b.ts.URL(path), values)
	if err != nil {
		b.t.Fatalf("POST %s: %v", path, err)
	}
	b.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// Post submits a prepared body, typically from Multipart.
func (b *Browser) Post(path, contentType string, body io.Reader) *http.Response {
	b.t.Helper()

	resp, err := b.Client.Post(b.ts.URL(path), contentType, body)
	if err != nil {
		b.t.Fatalf("POST %s: %v", path, err)
	}
	b.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// Cookie returns the browser's cookie called name, or "".
func (b *Browser) Cookie(name string) string {
	u, _ := url.Parse(b.ts.Server.URL)
	for _, c := range b.Client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// Body reads the whole response body.
func Body(t *testing.T, resp *http.Response) string {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(raw)
}

// Location returns the redirect target path of resp.
func Location(resp *http.Response) string {
	loc := resp.Header.Get("Location")
	if i := strings.Index(loc, "://"); i >= 0 {
		if u, err := url.Parse(loc); err == nil {
			return u.RequestURI()
		}
	}
	return loc
}
