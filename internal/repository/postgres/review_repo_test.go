package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/repository/postgres"
	"github.com/dom/game-review-catalog/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewRepository_ListByGame(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewReviewRepository(testDB.DB, testutil.TestTables)

	game := testutil.NewGameBuilder().Build(t, testDB.DB)
	other := testutil.NewGameBuilder().Build(t, testDB.DB)
	now := time.Now()
	oldest := testutil.NewReviewBuilder(game.ID).WithDate(now.Add(-48 * time.Hour)).Build(t, testDB.DB)
	newest := testutil.NewReviewBuilder(game.ID).WithDate(now).Build(t, testDB.DB)
	middle := testutil.NewReviewBuilder(game.ID).WithDate(now.Add(-24 * time.Hour)).Build(t, testDB.DB)
	testutil.NewReviewBuilder(other.ID).Build(t, testDB.DB)

	reviews, err := repo.ListByGame(context.Background(), game.ID)
	require.NoError(t, err)

	require.Len(t, reviews, 3)
	assert.Equal(t, newest.ID, reviews[0].ID)
	assert.Equal(t, middle.ID, reviews[1].ID)
	assert.Equal(t, oldest.ID, reviews[2].ID)
}

func TestReviewRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewReviewRepository(testDB.DB, testutil.TestTables)
	author := uuid.New()
	game := testutil.NewGameBuilder().Build(t, testDB.DB)

	review := &domain.Review{
		UserID:     author,
		GameID:     game.ID,
		ReviewDate: time.Now().UTC(),
		Score:      9,
		Strengths:  "great soundtrack and art",
		Weaknesses: "short main campaign",
	}

	err := repo.Create(context.Background(), review)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	ctx := testutil.SessionContext(context.Background(), author)
	require.NoError(t, repo.Create(ctx, review))

	stored, err := repo.GetByID(context.Background(), review.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, stored.Score)
	assert.Equal(t, game.ID, stored.GameID)

	_, err = repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	t.Run("unknown game violates the foreign key", func(t *testing.T) {
		orphan := *review
		orphan.ID = uuid.Nil
		orphan.GameID = uuid.New()
		assert.Error(t, repo.Create(ctx, &orphan))
	})

	t.Run("score out of range violates the check", func(t *testing.T) {
		bad := *review
		bad.ID = uuid.Nil
		bad.Score = 11
		assert.Error(t, repo.Create(ctx, &bad))
	})
}

func TestReviewRepository_UpdateAndDelete(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewReviewRepository(testDB.DB, testutil.TestTables)
	author := uuid.New()
	game := testutil.NewGameBuilder().Build(t, testDB.DB)
	review := testutil.NewReviewBuilder(game.ID).WithOwner(author).WithScore(4).Build(t, testDB.DB)

	authorCtx := testutil.SessionContext(context.Background(), author)
	strangerCtx := testutil.SessionContext(context.Background(), uuid.New())
	score := 8

	assert.ErrorIs(t, repo.Update(strangerCtx, review.ID, domain.ReviewPatch{Score: &score}), domain.ErrForbidden)
	require.NoError(t, repo.Update(authorCtx, review.ID, domain.ReviewPatch{Score: &score}))

	stored, err := repo.GetByID(context.Background(), review.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, stored.Score)
	assert.Equal(t, review.Strengths, stored.Strengths, "fields outside the patch are untouched")

	assert.ErrorIs(t, repo.Delete(strangerCtx, review.ID), domain.ErrForbidden)
	require.NoError(t, repo.Delete(authorCtx, review.ID))
	assert.ErrorIs(t, repo.Delete(authorCtx, review.ID), domain.ErrNotFound)
}
