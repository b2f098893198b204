package service

import (
	"context"
	"time"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/refresh"
	"github.com/dom/game-review-catalog/internal/repository"
	"github.com/dom/game-review-catalog/internal/session"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ReviewService struct {
	reviews     repository.ReviewRepository
	screenshots attachment
	signal      *refresh.Signal
	log         logrus.FieldLogger
	now         func() time.Time
}

func NewReviewService(reviews repository.ReviewRepository, storage repository.ObjectStorage, bucket string, signal *refresh.Signal, log logrus.FieldLogger) *ReviewService {
	log = log.WithField("component", "service.Review")
	return &ReviewService{
		reviews:     reviews,
		screenshots: attachment{storage: storage, bucket: bucket, log: log},
		signal:      signal,
		log:         log,
		now:         time.Now,
	}
}

type CreateReviewInput struct {
	GameID     uuid.UUID
	Score      int
	Strengths  string
	Weaknesses string
}

// ListByGame returns the reviews of a game, newest first.
func (s *ReviewService) ListByGame(ctx context.Context, gameID uuid.UUID) ([]*domain.Review, error) {
	return s.reviews.ListByGame(ctx, gameID)
}

func (s *ReviewService) Get(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	return s.reviews.GetByID(ctx, id)
}

// Create uploads the optional screenshot and inserts the review dated now.
func (s *ReviewService) Create(ctx context.Context, input CreateReviewInput, screenshot *Upload) (*domain.Review, error) {
	userID, ok := session.UserID(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	review := &domain.Review{
		UserID:     userID,
		GameID:     input.GameID,
		ReviewDate: s.now().UTC(),
		Score:      input.Score,
		Strengths:  input.Strengths,
		Weaknesses: input.Weaknesses,
	}

	var objPath string
	if screenshot != nil {
		p, url, err := s.screenshots.store(ctx, userID, screenshot)
		if err != nil {
			return nil, err
		}
		objPath = p
		review.ScreenshotURL = &url
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		if objPath != "" {
			s.screenshots.orphaned(objPath, err)
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"review_id": review.ID, "game_id": review.GameID}).Info("review created")
	s.signal.Trigger()
	return review, nil
}

func (s *ReviewService) Update(ctx context.Context, id uuid.UUID, patch domain.ReviewPatch) error {
	if patch.Empty() {
		return nil
	}
	if err := s.reviews.Update(ctx, id, patch); err != nil {
		return err
	}
	s.signal.Trigger()
	return nil
}

// Delete removes the screenshot, if any, and then the review.
func (s *ReviewService) Delete(ctx context.Context, id uuid.UUID) error {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.screenshots.remove(ctx, review.ScreenshotURL); err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}

	s.log.WithField("review_id", id).Info("review deleted")
	s.signal.Trigger()
	return nil
}
