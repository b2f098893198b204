package postgres

import (
	"fmt"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Tables names the collections in the backend database.
type Tables struct {
	Games   string
	Reviews string
}

func NewConnection(databaseURL string, logLevel logger.LogLevel) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
}

// Migrate creates the collections when they are missing. Against the hosted
// backend the schema already exists and this is a no-op.
func Migrate(db *gorm.DB, tables Tables) error {
	if err := db.Table(tables.Games).AutoMigrate(&domain.Game{}); err != nil {
		return fmt.Errorf("migrate %s: %w", tables.Games, err)
	}
	if err := db.Table(tables.Reviews).AutoMigrate(&domain.Review{}); err != nil {
		return fmt.Errorf("migrate %s: %w", tables.Reviews, err)
	}

	fk := fmt.Sprintf(`DO $$ BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_%[1]s_game') THEN
		ALTER TABLE %[1]q ADD CONSTRAINT fk_%[1]s_game FOREIGN KEY (game_id) REFERENCES %[2]q(id) ON DELETE CASCADE;
	END IF;
END $$;`, tables.Reviews, tables.Games)
	if err := db.Exec(fk).Error; err != nil {
		return fmt.Errorf("add %s foreign key: %w", tables.Reviews, err)
	}

	return nil
}

// NewRepositories returns the table repositories. Storage and auth always go
// to the backend's REST API and are filled in by the caller.
func NewRepositories(db *gorm.DB, tables Tables) *repository.Repositories {
	return &repository.Repositories{
		Game:   NewGameRepository(db, tables),
		Review: NewReviewRepository(db, tables),
	}
}
