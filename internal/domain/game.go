package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Game is a catalog entry. UserID is the owner and is only ever set at creation.
type Game struct {
	ID           uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID       uuid.UUID       `json:"userId" gorm:"type:uuid;not null;index"`
	Title        string          `json:"title" gorm:"not null"`
	Platform     string          `json:"platform" gorm:"not null"`
	Genre        string          `json:"genre" gorm:"not null"`
	ReleaseDate  *datatypes.Date `json:"releaseDate"`
	CoverURL     *string         `json:"coverUrl"`
	AverageScore *float64        `json:"averageScore" gorm:"->;-:migration"` // computed by the backend
	CreatedAt    time.Time       `json:"createdAt"`
}

// ReleaseDateString formats the release date as YYYY-MM-DD, or "" when unset.
func (g *Game) ReleaseDateString() string {
	if g.ReleaseDate == nil {
		return ""
	}
	return time.Time(*g.ReleaseDate).Format(DateLayout)
}

// OwnedBy reports whether userID owns the game. Rendering only; the backend enforces ownership.
func (g *Game) OwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && g.UserID == userID
}

// GamePatch holds the fields of a partial game update. Nil fields are left untouched.
type GamePatch struct {
	Title       *string
	Platform    *string
	Genre       *string
	ReleaseDate *datatypes.Date
}

// Empty reports whether the patch changes nothing.
func (p GamePatch) Empty() bool {
	return p.Title == nil && p.Platform == nil && p.Genre == nil && p.ReleaseDate == nil
}

// DateLayout is the wire and form layout of calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a datatypes.Date.
func ParseDate(s string) (*datatypes.Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, err
	}
	d := datatypes.Date(t)
	return &d, nil
}
