package testutil

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/session"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// pngHeader is enough of a PNG for content sniffing to recognise it.
var pngHeader = []byte{
	0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n',
	0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R',
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}

// PNG returns the bytes of a tiny PNG image.
func PNG() []byte {
	return bytes.Clone(pngHeader)
}

func PNGReader() io.Reader {
	return bytes.NewReader(PNG())
}

// GameBuilder creates test games with a builder pattern
type GameBuilder struct {
	game domain.Game
}

// NewGameBuilder creates a new GameBuilder with default values
func NewGameBuilder() *GameBuilder {
	return &GameBuilder{game: domain.Game{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		Title:    fmt.Sprintf("Game %s", uuid.New().String()[:8]),
		Platform: "PC",
		Genre:    "Action",
	}}
}

func (b *GameBuilder) WithTitle(title string) *GameBuilder {
	b.game.Title = title
	return b
}

func (b *GameBuilder) WithOwner(userID uuid.UUID) *GameBuilder {
	b.game.UserID = userID
	return b
}

func (b *GameBuilder) WithPlatform(platform string) *GameBuilder {
	b.game.Platform = platform
	return b
}

func (b *GameBuilder) WithCoverURL(url string) *GameBuilder {
	b.game.CoverURL = &url
	return b
}

// WithReleaseDate sets the release date from a YYYY-MM-DD string
func (b *GameBuilder) WithReleaseDate(date string) *GameBuilder {
	d, err := domain.ParseDate(date)
	if err != nil {
		panic(err)
	}
	b.game.ReleaseDate = d
	return b
}

// Put stores the game in the in-memory backend
func (b *GameBuilder) Put(backend *Backend) *domain.Game {
	g := b.game
	return backend.PutGame(&g)
}

// Build inserts the game in the database
func (b *GameBuilder) Build(t *testing.T, db *gorm.DB) *domain.Game {
	t.Helper()

	g := b.game
	g.CreatedAt = time.Now()
	if err := db.Create(&g).Error; err != nil {
		t.Fatalf("failed to create game: %v", err)
	}
	return &g
}

// ReviewBuilder creates test reviews with a builder pattern
type ReviewBuilder struct {
	review domain.Review
}

func NewReviewBuilder(gameID uuid.UUID) *ReviewBuilder {
	return &ReviewBuilder{review: domain.Review{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		GameID:     gameID,
		ReviewDate: time.Now().UTC(),
		Score:      7,
		Strengths:  "solid gameplay loop",
		Weaknesses: "too many menus",
	}}
}

func (b *ReviewBuilder) WithOwner(userID uuid.UUID) *ReviewBuilder {
	b.review.UserID = userID
	return b
}

func (b *ReviewBuilder) WithScore(score int) *ReviewBuilder {
	b.review.Score = score
	return b
}

func (b *ReviewBuilder) WithDate(date time.Time) *ReviewBuilder {
	b.review.ReviewDate = date.UTC()
	return b
}

func (b *ReviewBuilder) WithStrengths(text string) *ReviewBuilder {
	b.review.Strengths = text
	return b
}

func (b *ReviewBuilder) WithScreenshotURL(url string) *ReviewBuilder {
	b.review.ScreenshotURL = &url
	return b
}

func (b *ReviewBuilder) Put(backend *Backend) *domain.Review {
	r := b.review
	return backend.PutReview(&r)
}

func (b *ReviewBuilder) Build(t *testing.T, db *gorm.DB) *domain.Review {
	t.Helper()

	r := b.review
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("failed to create review: %v", err)
	}
	return &r
}

// SessionCookies returns the cookies a signed-in browser sends.
func SessionCookies(t *testing.T, sess *domain.Session) []*http.Cookie {
	t.Helper()

	cookies := []*http.Cookie{{Name: session.AccessCookie, Value: sess.AccessToken}}
	if sess.RefreshToken != "" {
		cookies = append(cookies, &http.Cookie{Name: session.RefreshCookie, Value: sess.RefreshToken})
	}
	return cookies
}
