package postgres_test

import (
	"context"
	"testing"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/repository/postgres"
	"github.com/dom/game-review-catalog/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewGameRepository(testDB.DB, testutil.TestTables)
	owner := uuid.New()

	tests := []struct {
		name    string
		ctx     context.Context
		wantErr error
	}{
		{
			name: "successful creation",
			ctx:  testutil.SessionContext(context.Background(), owner),
		},
		{
			name:    "anonymous caller",
			ctx:     context.Background(),
			wantErr: domain.ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)

			release, err := domain.ParseDate("2017-02-24")
			require.NoError(t, err)
			game := &domain.Game{
				UserID:      owner,
				Title:       "Hollow Knight",
				Platform:    "PC",
				Genre:       "Metroidvania",
				ReleaseDate: release,
			}

			err = repo.Create(tt.ctx, game)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, game.ID)

			stored, err := repo.GetByID(context.Background(), game.ID)
			require.NoError(t, err)
			assert.Equal(t, "Hollow Knight", stored.Title)
			assert.Equal(t, owner, stored.UserID)
			assert.Equal(t, "2017-02-24", stored.ReleaseDateString())
			assert.Nil(t, stored.AverageScore, "no reviews, no average")
		})
	}
}

func TestGameRepository_GetByID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewGameRepository(testDB.DB, testutil.TestTables)

	game := testutil.NewGameBuilder().WithTitle("Celeste").Build(t, testDB.DB)
	testutil.NewReviewBuilder(game.ID).WithScore(8).Build(t, testDB.DB)
	testutil.NewReviewBuilder(game.ID).WithScore(5).Build(t, testDB.DB)

	t.Run("computes the average score", func(t *testing.T) {
		stored, err := repo.GetByID(context.Background(), game.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.AverageScore)
		assert.InDelta(t, 6.5, *stored.AverageScore, 0.001)
	})

	t.Run("missing game", func(t *testing.T) {
		_, err := repo.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestGameRepository_List(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewGameRepository(testDB.DB, testutil.TestTables)

	zelda := testutil.NewGameBuilder().WithTitle("Zelda").Build(t, testDB.DB)
	testutil.NewGameBuilder().WithTitle("Celeste").Build(t, testDB.DB)
	testutil.NewGameBuilder().WithTitle("Hades").Build(t, testDB.DB)
	testutil.NewReviewBuilder(zelda.ID).WithScore(10).Build(t, testDB.DB)

	games, err := repo.List(context.Background())
	require.NoError(t, err)

	require.Len(t, games, 3)
	assert.Equal(t, "Celeste", games[0].Title)
	assert.Equal(t, "Hades", games[1].Title)
	assert.Equal(t, "Zelda", games[2].Title)
	assert.Nil(t, games[0].AverageScore)
	require.NotNil(t, games[2].AverageScore)
	assert.InDelta(t, 10.0, *games[2].AverageScore, 0.001)
}

func TestGameRepository_Update(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewGameRepository(testDB.DB, testutil.TestTables)
	owner := uuid.New()

	title := "Celeste Classic"
	tests := []struct {
		name    string
		ctx     func(game *domain.Game) context.Context
		id      func(game *domain.Game) uuid.UUID
		wantErr error
	}{
		{
			name: "owner updates",
			ctx:  func(*domain.Game) context.Context { return testutil.SessionContext(context.Background(), owner) },
			id:   func(g *domain.Game) uuid.UUID { return g.ID },
		},
		{
			name:    "other user is forbidden",
			ctx:     func(*domain.Game) context.Context { return testutil.SessionContext(context.Background(), uuid.New()) },
			id:      func(g *domain.Game) uuid.UUID { return g.ID },
			wantErr: domain.ErrForbidden,
		},
		{
			name:    "missing game",
			ctx:     func(*domain.Game) context.Context { return testutil.SessionContext(context.Background(), owner) },
			id:      func(*domain.Game) uuid.UUID { return uuid.New() },
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "anonymous caller",
			ctx:     func(*domain.Game) context.Context { return context.Background() },
			id:      func(g *domain.Game) uuid.UUID { return g.ID },
			wantErr: domain.ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)
			game := testutil.NewGameBuilder().WithTitle("Celeste").WithOwner(owner).Build(t, testDB.DB)

			err := repo.Update(tt.ctx(game), tt.id(game), domain.GamePatch{Title: &title})

			stored, getErr := repo.GetByID(context.Background(), game.ID)
			require.NoError(t, getErr)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, "Celeste", stored.Title)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, title, stored.Title)
			assert.Equal(t, owner, stored.UserID)
		})
	}
}

func TestGameRepository_Delete(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewGameRepository(testDB.DB, testutil.TestTables)
	owner := uuid.New()

	game := testutil.NewGameBuilder().WithOwner(owner).Build(t, testDB.DB)

	err := repo.Delete(testutil.SessionContext(context.Background(), uuid.New()), game.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = repo.Delete(testutil.SessionContext(context.Background(), owner), game.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(context.Background(), game.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repo.Delete(testutil.SessionContext(context.Background(), owner), game.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
