package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinScore         = 1
	MaxScore         = 10
	MinReviewTextLen = 10
)

// Review is a user's review of a game.
type Review struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID        uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	GameID        uuid.UUID `json:"gameId" gorm:"type:uuid;not null;index"`
	ReviewDate    time.Time `json:"reviewDate" gorm:"not null"`
	Score         int       `json:"score" gorm:"not null;check:score >= 1 AND score <= 10"`
	Strengths     string    `json:"strengths" gorm:"not null"`
	Weaknesses    string    `json:"weaknesses" gorm:"not null"`
	ScreenshotURL *string   `json:"screenshotUrl"`
}

// OwnedBy reports whether userID wrote the review.
func (r *Review) OwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && r.UserID == userID
}

// ReviewPatch holds the fields of a partial review update.
type ReviewPatch struct {
	GameID     *uuid.UUID
	Score      *int
	Strengths  *string
	Weaknesses *string
}

func (p ReviewPatch) Empty() bool {
	return p.GameID == nil && p.Score == nil && p.Strengths == nil && p.Weaknesses == nil
}
