package service

import (
	"github.com/dom/game-review-catalog/internal/refresh"
	"github.com/dom/game-review-catalog/internal/repository"
	"github.com/sirupsen/logrus"
)

// Buckets names the storage buckets attachments are uploaded to.
type Buckets struct {
	Covers      string
	Screenshots string
}

type Services struct {
	Auth   *AuthService
	Game   *GameService
	Review *ReviewService
}

func NewServices(repos *repository.Repositories, buckets Buckets, signal *refresh.Signal, log logrus.FieldLogger) *Services {
	return &Services{
		Auth:   NewAuthService(repos.Auth),
		Game:   NewGameService(repos.Game, repos.Storage, buckets.Covers, signal, log),
		Review: NewReviewService(repos.Review, repos.Storage, buckets.Screenshots, signal, log),
	}
}
