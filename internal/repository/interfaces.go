package repository

import (
	"context"
	"io"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/google/uuid"
)

// GameRepository reads and writes the games collection. Lookups that match
// no row return domain.ErrNotFound.
type GameRepository interface {
	List(ctx context.Context) ([]*domain.Game, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Game, error)
	Create(ctx context.Context, game *domain.Game) error
	Update(ctx context.Context, id uuid.UUID, patch domain.GamePatch) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ReviewRepository interface {
	ListByGame(ctx context.Context, gameID uuid.UUID) ([]*domain.Review, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	Create(ctx context.Context, review *domain.Review) error
	Update(ctx context.Context, id uuid.UUID, patch domain.ReviewPatch) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ObjectStorage stores files in named buckets. Remove returns
// domain.ErrNotFound when the object does not exist.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, path string, data io.Reader, contentType string) error
	PublicURL(bucket, path string) string
	ObjectPath(bucket, publicURL string) (string, bool)
	Remove(ctx context.Context, bucket, path string) error
}

// AuthProvider is the backend's authentication API.
type AuthProvider interface {
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignUp(ctx context.Context, email, password string) (uuid.UUID, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

type Repositories struct {
	Game    GameRepository
	Review  ReviewRepository
	Storage ObjectStorage
	Auth    AuthProvider
}
