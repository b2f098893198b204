package view

import (
	"context"
	"errors"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/dom/game-review-catalog/internal/session"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MsgDetailUnavailable is shown when the game of a detail page cannot be loaded.
const MsgDetailUnavailable = "game not found or server error"

const msgCatalogUnavailable = "could not load the catalog, try again later"

type GameReader interface {
	List(ctx context.Context) ([]*domain.Game, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Game, error)
}

type ReviewReader interface {
	ListByGame(ctx context.Context, gameID uuid.UUID) ([]*domain.Review, error)
}

// Catalog is the game list page.
type Catalog struct {
	Games   []*domain.Game
	Err     string
	Loading bool
}

func (c *Catalog) Empty() bool {
	return !c.Loading && c.Err == "" && len(c.Games) == 0
}

// ReviewItem is a review with the viewer's edit rights resolved.
type ReviewItem struct {
	*domain.Review
	IsOwner bool
}

// Detail is the game page: the game, its reviews and what the viewer may edit.
type Detail struct {
	GameID  uuid.UUID
	Game    *domain.Game
	Reviews []ReviewItem
	IsOwner bool
	Err     string
	Loading bool
}

// Loader builds page models from the services.
type Loader struct {
	Games   GameReader
	Reviews ReviewReader
	Log     logrus.FieldLogger
}

// Catalog loads every game.
func (l *Loader) Catalog(ctx context.Context) *Catalog {
	games, err := l.Games.List(ctx)
	if err != nil {
		l.Log.WithError(err).Error("view.Catalog: list games")
		return &Catalog{Err: msgCatalogUnavailable}
	}
	return &Catalog{Games: games}
}

// Detail loads the game and its reviews. Reviews that fail to load are shown
// as an empty list. Ownership flags compare against the session in ctx and
// only drive which controls are rendered.
func (l *Loader) Detail(ctx context.Context, gameID uuid.UUID) *Detail {
	d := &Detail{GameID: gameID}
	log := l.Log.WithField("game_id", gameID)

	game, err := l.Games.Get(ctx, gameID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("view.Detail: get game")
		}
		d.Err = MsgDetailUnavailable
		return d
	}
	d.Game = game

	viewer, _ := session.UserID(ctx)
	d.IsOwner = game.OwnedBy(viewer)

	reviews, err := l.Reviews.ListByGame(ctx, gameID)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.WithError(err).Warn("view.Detail: list reviews, showing none")
		}
		reviews = nil
	}

	d.Reviews = make([]ReviewItem, len(reviews))
	for i, r := range reviews {
		d.Reviews[i] = ReviewItem{Review: r, IsOwner: r.OwnedBy(viewer)}
	}
	return d
}
