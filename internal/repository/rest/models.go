package rest

import (
	"time"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/google/uuid"
)

// gameRow is the PostgREST representation of a game.
type gameRow struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Title        string    `json:"title"`
	Platform     string    `json:"platform"`
	Genre        string    `json:"genre"`
	ReleaseDate  *string   `json:"release_date"`
	CoverURL     *string   `json:"cover_url"`
	AverageScore *float64  `json:"average_score,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// gameInsert omits server-assigned columns.
type gameInsert struct {
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Platform    string    `json:"platform"`
	Genre       string    `json:"genre"`
	ReleaseDate *string   `json:"release_date,omitempty"`
	CoverURL    *string   `json:"cover_url,omitempty"`
}

func (r gameRow) toDomain() *domain.Game {
	g := &domain.Game{
		ID:           r.ID,
		UserID:       r.UserID,
		Title:        r.Title,
		Platform:     r.Platform,
		Genre:        r.Genre,
		CoverURL:     r.CoverURL,
		AverageScore: r.AverageScore,
		CreatedAt:    r.CreatedAt,
	}
	if r.ReleaseDate != nil && len(*r.ReleaseDate) >= len(domain.DateLayout) {
		if d, err := domain.ParseDate((*r.ReleaseDate)[:len(domain.DateLayout)]); err == nil {
			g.ReleaseDate = d
		}
	}
	return g
}

func newGameInsert(g *domain.Game) gameInsert {
	in := gameInsert{
		UserID:   g.UserID,
		Title:    g.Title,
		Platform: g.Platform,
		Genre:    g.Genre,
		CoverURL: g.CoverURL,
	}
	if s := g.ReleaseDateString(); s != "" {
		in.ReleaseDate = &s
	}
	return in
}

func gamePatchBody(p domain.GamePatch) map[string]any {
	body := make(map[string]any)
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Platform != nil {
		body["platform"] = *p.Platform
	}
	if p.Genre != nil {
		body["genre"] = *p.Genre
	}
	if p.ReleaseDate != nil {
		body["release_date"] = time.Time(*p.ReleaseDate).Format(domain.DateLayout)
	}
	return body
}

// reviewRow is the PostgREST representation of a review.
type reviewRow struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	GameID        uuid.UUID `json:"game_id"`
	ReviewDate    time.Time `json:"review_date"`
	Score         int       `json:"score"`
	Strengths     string    `json:"strengths"`
	Weaknesses    string    `json:"weaknesses"`
	ScreenshotURL *string   `json:"screenshot_url"`
}

type reviewInsert struct {
	UserID        uuid.UUID `json:"user_id"`
	GameID        uuid.UUID `json:"game_id"`
	ReviewDate    time.Time `json:"review_date"`
	Score         int       `json:"score"`
	Strengths     string    `json:"strengths"`
	Weaknesses    string    `json:"weaknesses"`
	ScreenshotURL *string   `json:"screenshot_url,omitempty"`
}

func (r reviewRow) toDomain() *domain.Review {
	return &domain.Review{
		ID:            r.ID,
		UserID:        r.UserID,
		GameID:        r.GameID,
		ReviewDate:    r.ReviewDate,
		Score:         r.Score,
		Strengths:     r.Strengths,
		Weaknesses:    r.Weaknesses,
		ScreenshotURL: r.ScreenshotURL,
	}
}

func newReviewInsert(r *domain.Review) reviewInsert {
	return reviewInsert{
		UserID:        r.UserID,
		GameID:        r.GameID,
		ReviewDate:    r.ReviewDate,
		Score:         r.Score,
		Strengths:     r.Strengths,
		Weaknesses:    r.Weaknesses,
		ScreenshotURL: r.ScreenshotURL,
	}
}

func reviewPatchBody(p domain.ReviewPatch) map[string]any {
	body := make(map[string]any)
	if p.GameID != nil {
		body["game_id"] = *p.GameID
	}
	if p.Score != nil {
		body["score"] = *p.Score
	}
	if p.Strengths != nil {
		body["strengths"] = *p.Strengths
	}
	if p.Weaknesses != nil {
		body["weaknesses"] = *p.Weaknesses
	}
	return body
}
