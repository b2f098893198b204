package rest

import (
	"github.com/dom/game-review-catalog/internal/repository"
	"github.com/dom/game-review-catalog/internal/supabase"
)

// Tables names the backend collections.
type Tables struct {
	Games   string
	Reviews string
}

func NewRepositories(client *supabase.Client, tables Tables) *repository.Repositories {
	return &repository.Repositories{
		Game:    NewGameRepository(client, tables.Games),
		Review:  NewReviewRepository(client, tables.Reviews),
		Storage: NewObjectStorage(client),
		Auth:    NewAuthProvider(client),
	}
}
