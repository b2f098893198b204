package form

import (
	"net/http"
	"strings"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/service"
)

const msgCoverRequired = "cover image required"

// Game is the create/edit game form.
type Game struct {
	Title       string `form:"title" validate:"required,min=3"`
	Platform    string `form:"platform" validate:"required"`
	Genre       string `form:"genre" validate:"required"`
	ReleaseDate string `form:"release_date" validate:"omitempty,datetime=2006-01-02"`
	Cover       *File  `form:"-" validate:"-"`
}

// GameFromRequest reads the submitted game form.
func GameFromRequest(r *http.Request) (*Game, error) {
	if err := parse(r); err != nil {
		return nil, err
	}
	cover, err := readFile(r, "cover")
	if err != nil {
		return nil, err
	}
	return &Game{
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Platform:    strings.TrimSpace(r.PostFormValue("platform")),
		Genre:       strings.TrimSpace(r.PostFormValue("genre")),
		ReleaseDate: strings.TrimSpace(r.PostFormValue("release_date")),
		Cover:       cover,
	}, nil
}

// GameFromEntity prefills the edit form.
func GameFromEntity(g *domain.Game) *Game {
	return &Game{
		Title:       g.Title,
		Platform:    g.Platform,
		Genre:       g.Genre,
		ReleaseDate: g.ReleaseDateString(),
	}
}

// Validate checks the form before anything is sent. A cover image is only
// required when creating; edits never replace the cover.
func (f *Game) Validate(create bool) error {
	err := check(f, "check the highlighted fields")
	verr, _ := err.(*domain.ValidationError)
	if err != nil && verr == nil {
		return err
	}
	if verr == nil {
		verr = &domain.ValidationError{Message: "check the highlighted fields", Fields: map[string]string{}}
	}

	if create {
		if f.Cover == nil || !f.Cover.IsImage() {
			verr.Fields["cover"] = msgCoverRequired
		} else {
			checkImage(f.Cover, "cover", verr.Fields)
		}
		if msg, bad := verr.Fields["cover"]; bad && len(verr.Fields) == 1 {
			verr.Message = msg
		}
	}

	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

func (f *Game) CreateInput() service.CreateGameInput {
	in := service.CreateGameInput{
		Title:    f.Title,
		Platform: f.Platform,
		Genre:    f.Genre,
	}
	if f.ReleaseDate != "" {
		in.ReleaseDate, _ = domain.ParseDate(f.ReleaseDate)
	}
	return in
}

// Patch sends every editable field. An empty release date leaves the stored
// one untouched.
func (f *Game) Patch() domain.GamePatch {
	patch := domain.GamePatch{
		Title:    &f.Title,
		Platform: &f.Platform,
		Genre:    &f.Genre,
	}
	if f.ReleaseDate != "" {
		patch.ReleaseDate, _ = domain.ParseDate(f.ReleaseDate)
	}
	return patch
}
