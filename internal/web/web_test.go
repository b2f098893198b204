package web

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/view"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	return r
}

func TestNew_ParsesEveryPage(t *testing.T) {
	r := newRenderer(t)
	for _, name := range []string{"catalog", "detail", "game_form", "review_form", "login", "register"} {
		assert.Contains(t, r.pages, name)
	}
	assert.NotContains(t, r.pages, "layout")
}

func TestRender(t *testing.T) {
	r := newRenderer(t)
	avg := 7.25
	catalog := &view.Catalog{Games: []*domain.Game{
		{ID: uuid.New(), Title: "Celeste <3", Platform: "PC", Genre: "Platformer", AverageScore: &avg},
	}}

	t.Run("signed out with flash", func(t *testing.T) {
		var buf bytes.Buffer
		err := r.Render(&buf, "catalog", Page{
			Title: "Catalog",
			Flash: &Flash{Kind: "success", Message: "Game deleted."},
			Data:  catalog,
		})
		require.NoError(t, err)

		html := buf.String()
		assert.Contains(t, html, "<title>Catalog · Game Catalog</title>")
		assert.Contains(t, html, `class="flash success"`)
		assert.Contains(t, html, "Game deleted.")
		assert.Contains(t, html, "Celeste &lt;3")
		assert.Contains(t, html, "Average score: 7.2")
		assert.NotContains(t, html, `href="/novo-jogo"`)
	})

	t.Run("signed in", func(t *testing.T) {
		var buf bytes.Buffer
		err := r.Render(&buf, "catalog", Page{
			Title:   "Catalog",
			Session: &domain.Session{UserID: uuid.New(), Email: "a@example.com"},
			Data:    &view.Catalog{},
		})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), `href="/novo-jogo"`)
		assert.Contains(t, buf.String(), "No games in the catalog yet.")
	})

	t.Run("unknown page", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, r.Render(&buf, "nope", Page{}))
		assert.Zero(t, buf.Len())
	})
}

func TestDetailFragment(t *testing.T) {
	r := newRenderer(t)
	gameID := uuid.New()
	shot := "https://cdn.example.com/s.png"

	t.Run("owner sees edit links", func(t *testing.T) {
		d := &view.Detail{
			GameID:  gameID,
			Game:    &domain.Game{ID: gameID, Title: "Hades", Platform: "PC", Genre: "Roguelike"},
			IsOwner: true,
			Reviews: []view.ReviewItem{{
				Review: &domain.Review{
					ID:            uuid.New(),
					GameID:        gameID,
					Score:         9,
					Strengths:     "Combat feels great",
					Weaknesses:    "Story drags late",
					ReviewDate:    time.Now(),
					ScreenshotURL: &shot,
				},
				IsOwner: true,
			}},
		}

		out, err := r.DetailFragment(d)
		require.NoError(t, err)
		html := string(out)
		assert.Contains(t, html, "<h1>Hades</h1>")
		assert.Contains(t, html, "/jogo/editar/"+gameID.String())
		assert.Contains(t, html, "9/10")
		assert.Contains(t, html, `src="`+shot+`"`)
		assert.Equal(t, 2, strings.Count(html, "/excluir"))
		assert.NotContains(t, html, "<html")
	})

	t.Run("error and empty", func(t *testing.T) {
		out, err := r.DetailFragment(&view.Detail{GameID: gameID, Err: view.MsgDetailUnavailable})
		require.NoError(t, err)
		assert.Contains(t, string(out), view.MsgDetailUnavailable)

		out, err = r.DetailFragment(&view.Detail{GameID: gameID, Game: &domain.Game{ID: gameID, Title: "Hades"}})
		require.NoError(t, err)
		assert.Contains(t, string(out), "No reviews yet.")
		assert.NotContains(t, string(out), "/jogo/editar/")
	})
}

func TestFuncs(t *testing.T) {
	average := funcs["average"].(func(*float64) string)
	score := 6.5
	assert.Equal(t, "-", average(nil))
	assert.Equal(t, "6.5", average(&score))

	deref := funcs["deref"].(func(*string) string)
	s := "x"
	assert.Equal(t, "", deref(nil))
	assert.Equal(t, "x", deref(&s))

	seq := funcs["seq"].(func(int, int) []int)
	assert.Equal(t, []int{1, 2, 3}, seq(1, 3))

	field := funcs["field"].(func(map[string]string, string) string)
	assert.Equal(t, "required", field(map[string]string{"title": "required"}, "title"))
	assert.Equal(t, "", field(nil, "title"))
}
