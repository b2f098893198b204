package rest

import (
	"context"
	"fmt"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/session"
	"github.com/dom/game-review-catalog/internal/supabase"
	"github.com/google/uuid"
)

type reviewRepository struct {
	client *supabase.Client
	table  string
}

func NewReviewRepository(client *supabase.Client, table string) *reviewRepository {
	return &reviewRepository{client: client, table: table}
}

func (r *reviewRepository) ListByGame(ctx context.Context, gameID uuid.UUID) ([]*domain.Review, error) {
	var rows []reviewRow
	err := r.client.From(r.table).
		Select("*").
		Eq("game_id", gameID).
		Order("review_date", false).
		WithToken(session.AccessToken(ctx)).
		ExecuteInto(ctx, &rows)
	if err != nil {
		return nil, err
	}

	reviews := make([]*domain.Review, len(rows))
	for i, row := range rows {
		reviews[i] = row.toDomain()
	}
	return reviews, nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	var row reviewRow
	err := r.client.From(r.table).
		Select("*").
		Eq("id", id).
		Single().
		WithToken(session.AccessToken(ctx)).
		ExecuteInto(ctx, &row)
	if err != nil {
		return nil, translate(err)
	}
	return row.toDomain(), nil
}

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	var rows []reviewRow
	err := r.client.From(r.table).
		Insert([]reviewInsert{newReviewInsert(review)}).
		WithToken(session.AccessToken(ctx)).
		ExecuteInto(ctx, &rows)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("insert into %s returned no row", r.table)
	}

	review.ID = rows[0].ID
	return nil
}

func (r *reviewRepository) Update(ctx context.Context, id uuid.UUID, patch domain.ReviewPatch) error {
	var rows []reviewRow
	err := r.client.From(r.table).
		Update(reviewPatchBody(patch)).
		Eq("id", id).
		WithToken(session.AccessToken(ctx)).
		ExecuteInto(ctx, &rows)
	if err != nil {
		return err
	}
	return affected(len(rows))
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var rows []reviewRow
	err := r.client.From(r.table).
		Delete().
		Eq("id", id).
		WithToken(session.AccessToken(ctx)).
		ExecuteInto(ctx, &rows)
	if err != nil {
		return err
	}
	return affected(len(rows))
}
