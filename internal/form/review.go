package form

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/service"
	"github.com/google/uuid"
)

const (
	defaultScore     = 5
	msgReviewInvalid = "fill in every required field and keep the score between 1 and 10"
)

// Review is the create/edit review form. In edit mode the game field is
// locked: it is rendered disabled and the original value is submitted.
type Review struct {
	GameID     string `form:"game_id" validate:"required,uuid"`
	Score      int    `form:"score" validate:"min=1,max=10"`
	ScoreText  string `form:"-" validate:"-"`
	Strengths  string `form:"strengths" validate:"required,min=10"`
	Weaknesses string `form:"weaknesses" validate:"required,min=10"`
	Screenshot *File  `form:"-" validate:"-"`
	GameLocked bool   `form:"-" validate:"-"`
}

// NewReview is a blank create form, preselecting gameID when the form was
// opened from a game page.
func NewReview(gameID string) *Review {
	return &Review{GameID: gameID, Score: defaultScore, ScoreText: strconv.Itoa(defaultScore)}
}

// ReviewFromEntity prefills the edit form and locks the game.
func ReviewFromEntity(r *domain.Review) *Review {
	return &Review{
		GameID:     r.GameID.String(),
		Score:      r.Score,
		ScoreText:  strconv.Itoa(r.Score),
		Strengths:  r.Strengths,
		Weaknesses: r.Weaknesses,
		GameLocked: true,
	}
}

// ReviewFromRequest reads the submitted review form. lockedGame, when not
// nil, replaces whatever game was posted.
func ReviewFromRequest(r *http.Request, lockedGame *uuid.UUID) (*Review, error) {
	if err := parse(r); err != nil {
		return nil, err
	}
	shot, err := readFile(r, "screenshot")
	if err != nil {
		return nil, err
	}

	f := &Review{
		GameID:     strings.TrimSpace(r.PostFormValue("game_id")),
		ScoreText:  strings.TrimSpace(r.PostFormValue("score")),
		Strengths:  strings.TrimSpace(r.PostFormValue("strengths")),
		Weaknesses: strings.TrimSpace(r.PostFormValue("weaknesses")),
		Screenshot: shot,
	}
	// A non-integer score stays 0 and fails the range check.
	f.Score, _ = strconv.Atoi(f.ScoreText)
	if lockedGame != nil {
		f.GameID = lockedGame.String()
		f.GameLocked = true
	}
	return f, nil
}

func (f *Review) Validate() error {
	err := check(f, msgReviewInvalid)
	verr, _ := err.(*domain.ValidationError)
	if err != nil && verr == nil {
		return err
	}
	if verr == nil {
		verr = &domain.ValidationError{Message: msgReviewInvalid, Fields: map[string]string{}}
	}

	checkImage(f.Screenshot, "screenshot", verr.Fields)

	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

func (f *Review) gameID() uuid.UUID {
	id, _ := uuid.Parse(f.GameID)
	return id
}

func (f *Review) CreateInput() service.CreateReviewInput {
	return service.CreateReviewInput{
		GameID:     f.gameID(),
		Score:      f.Score,
		Strengths:  f.Strengths,
		Weaknesses: f.Weaknesses,
	}
}

func (f *Review) Patch() domain.ReviewPatch {
	gameID := f.gameID()
	return domain.ReviewPatch{
		GameID:     &gameID,
		Score:      &f.Score,
		Strengths:  &f.Strengths,
		Weaknesses: &f.Weaknesses,
	}
}
