package handlers_test

import (
	"net/http"
	"testing"

	"github.com/dom/game-review-catalog/internal/testutil"
	"github.com/dom/game-review-catalog/internal/view"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCatalogHandler_List(t *testing.T) {
	tests := []struct {
		name           string
		setup          func(ts *testutil.TestServer)
		expectedStatus int
		contains       []string
		absent         []string
	}{
		{
			name: "games sorted by title",
			setup: func(ts *testutil.TestServer) {
				testutil.NewGameBuilder().WithTitle("Zelda").Put(ts.Backend)
				testutil.NewGameBuilder().WithTitle("Celeste").Put(ts.Backend)
			},
			expectedStatus: http.StatusOK,
			contains:       []string{"Celeste", "Zelda"},
			absent:         []string{"No games in the catalog yet."},
		},
		{
			name:           "empty catalog",
			expectedStatus: http.StatusOK,
			contains:       []string{"No games in the catalog yet."},
		},
		{
			name: "backend failure",
			setup: func(ts *testutil.TestServer) {
				ts.Backend.ListErr = testutil.ErrBackendDown
			},
			expectedStatus: http.StatusBadGateway,
			contains:       []string{"could not load the catalog, try again later"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := testutil.NewTestServer(t)
			if tt.setup != nil {
				tt.setup(ts)
			}

			resp := ts.NewBrowser(t).Get("/catalogo")

			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			body := testutil.Body(t, resp)
			for _, s := range tt.contains {
				assert.Contains(t, body, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, body, s)
			}
		})
	}
}

func TestCatalogHandler_ListOrder(t *testing.T) {
	ts := testutil.NewTestServer(t)
	testutil.NewGameBuilder().WithTitle("Zelda").Put(ts.Backend)
	testutil.NewGameBuilder().WithTitle("Celeste").Put(ts.Backend)

	body := testutil.Body(t, ts.NewBrowser(t).Get("/catalogo"))

	assert.Less(t, indexOf(body, "Celeste"), indexOf(body, "Zelda"))
}

func TestCatalogHandler_Detail(t *testing.T) {
	ts := testutil.NewTestServer(t)

	owner := ts.NewBrowser(t)
	ownerSession := owner.SignIn("owner@example.com")
	other := ts.NewBrowser(t)
	otherSession := other.SignIn("other@example.com")
	anonymous := ts.NewBrowser(t)

	game := testutil.NewGameBuilder().WithTitle("Hollow Knight").WithOwner(ownerSession.UserID).Put(ts.Backend)
	testutil.NewReviewBuilder(game.ID).WithOwner(otherSession.UserID).WithScore(9).
		WithStrengths("beautiful hand drawn art").Put(ts.Backend)

	editGame := "/jogo/editar/" + game.ID.String()
	editReview := "/jogo/" + game.ID.String() + "/revisao-form/"

	tests := []struct {
		name        string
		browser     *testutil.Browser
		gameControl bool
		reviewEdit  bool
	}{
		{name: "owner of the game", browser: owner, gameControl: true, reviewEdit: false},
		{name: "author of the review", browser: other, gameControl: false, reviewEdit: true},
		{name: "anonymous", browser: anonymous, gameControl: false, reviewEdit: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := tt.browser.Get("/jogo/" + game.ID.String())

			testutil.AssertStatusCode(t, resp, http.StatusOK)
			body := testutil.Body(t, resp)
			assert.Contains(t, body, "Hollow Knight")
			assert.Contains(t, body, "beautiful hand drawn art")
			assert.Contains(t, body, "9/10")
			assert.Equal(t, tt.gameControl, contains(body, editGame))
			assert.Equal(t, tt.reviewEdit, contains(body, editReview))
		})
	}
}

func TestCatalogHandler_DetailUnavailable(t *testing.T) {
	ts := testutil.NewTestServer(t)
	b := ts.NewBrowser(t)

	for _, id := range []string{"not-a-uuid", uuid.NewString()} {
		t.Run(id, func(t *testing.T) {
			resp := b.Get("/jogo/" + id)

			testutil.AssertStatusCode(t, resp, http.StatusNotFound)
			testutil.AssertPageContains(t, resp, view.MsgDetailUnavailable)
		})
	}
}

func TestCatalogHandler_DetailReviewsFailing(t *testing.T) {
	ts := testutil.NewTestServer(t)
	game := testutil.NewGameBuilder().WithTitle("Celeste").Put(ts.Backend)
	testutil.NewReviewBuilder(game.ID).Put(ts.Backend)
	ts.Backend.ReviewListErr = testutil.ErrBackendDown

	resp := ts.NewBrowser(t).Get("/jogo/" + game.ID.String())

	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertPageContains(t, resp, "Celeste", "No reviews yet.")
}

func TestRouter_Redirects(t *testing.T) {
	ts := testutil.NewTestServer(t)
	b := ts.NewBrowser(t)

	for _, path := range []string{"/", "/does-not-exist", "/jogo"} {
		t.Run(path, func(t *testing.T) {
			testutil.AssertRedirect(t, b.Get(path), "/catalogo")
		})
	}
}

func TestRouter_Health(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := ts.NewBrowser(t).Get("/health")

	testutil.AssertStatusCode(t, resp, http.StatusOK)
	assert.Equal(t, "OK", testutil.Body(t, resp))
}
