package postgres

import (
	"context"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/session"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// A direct database connection bypasses the backend's row-level policies, so
// writes are scoped to the acting identity here instead.

func actingUser(ctx context.Context) (uuid.UUID, error) {
	userID, ok := session.UserID(ctx)
	if !ok {
		return uuid.Nil, domain.ErrUnauthenticated
	}
	return userID, nil
}

// ownedWrite explains a scoped write that touched no row: the row is either
// missing or owned by someone else.
func ownedWrite(ctx context.Context, db *gorm.DB, table string, id uuid.UUID, result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Table(table).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrForbidden
}
