package postgres

import (
	"context"
	"errors"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reviewRepository struct {
	db     *gorm.DB
	tables Tables
}

func NewReviewRepository(db *gorm.DB, tables Tables) *reviewRepository {
	return &reviewRepository{db: db, tables: tables}
}

func (r *reviewRepository) ListByGame(ctx context.Context, gameID uuid.UUID) ([]*domain.Review, error) {
	var reviews []*domain.Review
	err := r.db.WithContext(ctx).Table(r.tables.Reviews).
		Where("game_id = ?", gameID).
		Order("review_date DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	var review domain.Review
	err := r.db.WithContext(ctx).Table(r.tables.Reviews).Where("id = ?", id).Take(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	if _, err := actingUser(ctx); err != nil {
		return err
	}
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Table(r.tables.Reviews).Create(review).Error
}

func (r *reviewRepository) Update(ctx context.Context, id uuid.UUID, patch domain.ReviewPatch) error {
	userID, err := actingUser(ctx)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if patch.GameID != nil {
		updates["game_id"] = *patch.GameID
	}
	if patch.Score != nil {
		updates["score"] = *patch.Score
	}
	if patch.Strengths != nil {
		updates["strengths"] = *patch.Strengths
	}
	if patch.Weaknesses != nil {
		updates["weaknesses"] = *patch.Weaknesses
	}

	result := r.db.WithContext(ctx).Table(r.tables.Reviews).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	return ownedWrite(ctx, r.db, r.tables.Reviews, id, result)
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	userID, err := actingUser(ctx)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Table(r.tables.Reviews).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Review{})
	return ownedWrite(ctx, r.db, r.tables.Reviews, id, result)
}
