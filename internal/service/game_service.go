package service

import (
	"context"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/refresh"
	"github.com/dom/game-review-catalog/internal/repository"
	"github.com/dom/game-review-catalog/internal/session"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

type GameService struct {
	games  repository.GameRepository
	covers attachment
	signal *refresh.Signal
	log    logrus.FieldLogger
}

func NewGameService(games repository.GameRepository, storage repository.ObjectStorage, bucket string, signal *refresh.Signal, log logrus.FieldLogger) *GameService {
	log = log.WithField("component", "service.Game")
	return &GameService{
		games:  games,
		covers: attachment{storage: storage, bucket: bucket, log: log},
		signal: signal,
		log:    log,
	}
}

type CreateGameInput struct {
	Title       string
	Platform    string
	Genre       string
	ReleaseDate *datatypes.Date
}

// List returns every game ordered by title.
func (s *GameService) List(ctx context.Context) ([]*domain.Game, error) {
	return s.games.List(ctx)
}

func (s *GameService) Get(ctx context.Context, id uuid.UUID) (*domain.Game, error) {
	return s.games.GetByID(ctx, id)
}

// Create uploads the cover and then inserts the game owned by the caller.
// The two steps are not atomic: if the insert fails the cover stays in
// storage.
func (s *GameService) Create(ctx context.Context, input CreateGameInput, cover *Upload) (*domain.Game, error) {
	userID, ok := session.UserID(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if cover == nil {
		return nil, &domain.ValidationError{
			Message: "cover image required",
			Fields:  map[string]string{"cover": "cover image required"},
		}
	}

	objPath, url, err := s.covers.store(ctx, userID, cover)
	if err != nil {
		return nil, err
	}

	game := &domain.Game{
		UserID:      userID,
		Title:       input.Title,
		Platform:    input.Platform,
		Genre:       input.Genre,
		ReleaseDate: input.ReleaseDate,
		CoverURL:    &url,
	}
	if err := s.games.Create(ctx, game); err != nil {
		s.covers.orphaned(objPath, err)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"game_id": game.ID, "user_id": userID}).Info("game created")
	return game, nil
}

// Update applies a partial update. Ownership is left to the backend.
func (s *GameService) Update(ctx context.Context, id uuid.UUID, patch domain.GamePatch) error {
	if patch.Empty() {
		return nil
	}
	if err := s.games.Update(ctx, id, patch); err != nil {
		return err
	}
	s.signal.Trigger()
	return nil
}

// Delete removes the cover and then the row. A cover already gone from
// storage does not block the delete; any other storage failure does.
// Reviews of the game are not touched here.
func (s *GameService) Delete(ctx context.Context, id uuid.UUID) error {
	game, err := s.games.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.covers.remove(ctx, game.CoverURL); err != nil {
		return err
	}
	if err := s.games.Delete(ctx, id); err != nil {
		return err
	}

	s.log.WithField("game_id", id).Info("game deleted")
	s.signal.Trigger()
	return nil
}
