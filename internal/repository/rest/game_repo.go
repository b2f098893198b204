package rest

import (
	"context"
	"fmt"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/session"
	"github.com/dom/game-review-catalog/internal/supabase"
	"github.com/google/uuid"
)

type gameRepository struct {
	client *supabase.Client
	table  string
}

func NewGameRepository(client *supabase.Client, table string) *gameRepository {
	return &gameRepository{client: client, table: table}
}

func (r *gameRepository) List(ctx context.Context) ([]*domain.Game, error) {
	var rows []gameRow
	err := r.client.From(r.table).
		Select("*").
		Order("title", true).
		WithToken(session.AccessToken(ctx)).
		ExecuteInto(ctx, &rows)
	if err != nil {
		return nil, err
	}

	games := make([]*domain.Game, len(rows))
	for i, row := range rows {
		games[i] = row.toDomain()
	}
	return games, nil
}

func (r *gameRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Game, error) {
	var row gameRow
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

func (r *gameRepository) Create(ctx context.Context, game *domain.Game) error {
	var rows []gameRow
	err := r.client.From(r.table).
		Insert([]gameInsert{newGameInsert(game)}).
		WithToken(session.AccessToken(ctx)).
		ExecuteInto(ctx, &rows)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("insert into %s returned no row", r.table)
	}

	game.ID = rows[0].ID
	game.CreatedAt = rows[0].CreatedAt
	return nil
}

func (r *gameRepository) Update(ctx context.Context, id uuid.UUID, patch domain.GamePatch) error {
	var rows []gameRow
	err := r.client.From(r.table).
		Update(gamePatchBody(patch)).
		Eq("id", id).
		WithToken(session.AccessToken(ctx)).
		ExecuteInto(ctx, &rows)
	if err != nil {
		return err
	}
	return affected(len(rows))
}

func (r *gameRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var rows []gameRow
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

// translate maps "no row" answers to domain.ErrNotFound and leaves every
// other backend error untouched.
func translate(err error) error {
	if supabase.IsNoRows(err) {
		return domain.ErrNotFound
	}
	return err
}

// affected turns a write that matched no visible row into domain.ErrNotFound.
// Row-level policies hide rows the caller may not touch, so a denied write
// looks the same as a missing row.
func affected(n int) error {
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
