package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gameRepository struct {
	db     *gorm.DB
	tables Tables
}

func NewGameRepository(db *gorm.DB, tables Tables) *gameRepository {
	return &gameRepository{db: db, tables: tables}
}

// withAverage selects every game column plus the mean review score.
func (r *gameRepository) withAverage(ctx context.Context) *gorm.DB {
	g, rv := r.tables.Games, r.tables.Reviews
	return r.db.WithContext(ctx).Table(g).Select(fmt.Sprintf(
		"%[1]q.*, (SELECT AVG(%[2]q.score) FROM %[2]q WHERE %[2]q.game_id = %[1]q.id) AS average_score", g, rv))
}

func (r *gameRepository) List(ctx context.Context) ([]*domain.Game, error) {
	var games []*domain.Game
	err := r.withAverage(ctx).Order("title ASC").Find(&games).Error
	if err != nil {
		return nil, err
	}
	return games, nil
}

func (r *gameRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Game, error) {
	var game domain.Game
	err := r.withAverage(ctx).Where(fmt.Sprintf("%q.id = ?", r.tables.Games), id).Take(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &game, nil
}

func (r *gameRepository) Create(ctx context.Context, game *domain.Game) error {
	if _, err := actingUser(ctx); err != nil {
		return err
	}
	if game.ID == uuid.Nil {
		game.ID = uuid.New()
	}
	if game.CreatedAt.IsZero() {
		game.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Table(r.tables.Games).Create(game).Error
}

func (r *gameRepository) Update(ctx context.Context, id uuid.UUID, patch domain.GamePatch) error {
	userID, err := actingUser(ctx)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Platform != nil {
		updates["platform"] = *patch.Platform
	}
	if patch.Genre != nil {
		updates["genre"] = *patch.Genre
	}
	if patch.ReleaseDate != nil {
		updates["release_date"] = *patch.ReleaseDate
	}

	result := r.db.WithContext(ctx).Table(r.tables.Games).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	return ownedWrite(ctx, r.db, r.tables.Games, id, result)
}

func (r *gameRepository) Delete(ctx context.Context, id uuid.UUID) error {
	userID, err := actingUser(ctx)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Table(r.tables.Games).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Game{})
	return ownedWrite(ctx, r.db, r.tables.Games, id, result)
}
