package view

import (
	"context"
	"sync"

	"github.com/dom/game-review-catalog/internal/refresh"
	"github.com/google/uuid"
)

// DetailView is a mounted game page. It reloads when the route's game id
// changes and on every refresh signal, feeding both into one pipeline:
// a newer reload cancels an older one, and results of a superseded or
// unmounted load are dropped.
type DetailView struct {
	loader *Loader
	signal *refresh.Signal
	render func(*Detail)

	mu          sync.Mutex
	base        context.Context
	gameID      uuid.UUID
	gen         uint64
	cancel      context.CancelFunc
	unsubscribe func()
	mounted     bool

	// deliver serialises render calls.
	deliver sync.Mutex
	wg      sync.WaitGroup
}

// NewDetailView returns an unmounted view. render receives every completed
// load and must not call Unmount.
func NewDetailView(loader *Loader, signal *refresh.Signal, render func(*Detail)) *DetailView {
	return &DetailView{loader: loader, signal: signal, render: render}
}

// Mount starts the view on gameID. ctx carries the viewer's session and
// bounds every load.
func (v *DetailView) Mount(ctx context.Context, gameID uuid.UUID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		v.base = ctx
		v.mounted = true
		v.unsubscribe = v.signal.Subscribe(v.Refresh)
	}
	v.gameID = gameID
	v.reloadLocked()
}

// Navigate switches the view to another game.
func (v *DetailView) Navigate(gameID uuid.UUID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return
	}
	v.gameID = gameID
	v.reloadLocked()
}

// Refresh reloads the current game.
func (v *DetailView) Refresh() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return
	}
	v.reloadLocked()
}

// GameID is the game currently shown.
func (v *DetailView) GameID() uuid.UUID {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gameID
}

// Unmount stops listening for refreshes, cancels any load in flight and
// waits for it to finish. No render happens after Unmount returns.
func (v *DetailView) Unmount() {
	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		return
	}
	v.mounted = false
	v.gen++
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	unsubscribe := v.unsubscribe
	v.unsubscribe = nil
	v.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	v.wg.Wait()
}

// reloadLocked starts a load of the current game. Callers hold mu.
func (v *DetailView) reloadLocked() {
	if v.cancel != nil {
		v.cancel()
	}
	v.gen++
	gen := v.gen
	gameID := v.gameID
	ctx, cancel := context.WithCancel(v.base)
	v.cancel = cancel

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		defer cancel()

		d := v.loader.Detail(ctx, gameID)

		v.deliver.Lock()
		defer v.deliver.Unlock()
		if !v.current(gen) {
			return
		}
		v.render(d)
	}()
}

func (v *DetailView) current(gen uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounted && v.gen == gen
}
