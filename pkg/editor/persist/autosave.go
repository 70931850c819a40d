package persist

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/askiada/pipeline-editor/internal/ctxlog"
	"github.com/askiada/pipeline-editor/pkg/editor/definition"
)

// SnapshotFunc returns the definition to save.
type SnapshotFunc func() (*definition.Definition, error)

// Autosaver saves the open pipeline in the background after it changed. MarkDirty never blocks.
type Autosaver struct {
	store    Store
	snapshot SnapshotFunc
	interval time.Duration

	mu    sync.Mutex
	dirty bool
	saves int
}

func NewAutosaver(store Store, snapshot SnapshotFunc, interval time.Duration) *Autosaver {
	return &Autosaver{store: store, snapshot: snapshot, interval: interval}
}

// MarkDirty schedules a save on the next tick.
func (a *Autosaver) MarkDirty() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.dirty = true
}

// Dirty reports whether changes are waiting to be saved.
func (a *Autosaver) Dirty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.dirty
}

// Saves returns the number of successful saves.
func (a *Autosaver) Saves() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.saves
}

// Flush saves now if anything changed. A failed save leaves the autosaver dirty.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	if !a.dirty {
		a.mu.Unlock()

		return nil
	}
	a.dirty = false
	a.mu.Unlock()

	err := a.save(ctx)
	if err != nil {
		a.MarkDirty()

		return err
	}

	a.mu.Lock()
	a.saves++
	a.mu.Unlock()

	return nil
}

func (a *Autosaver) save(ctx context.Context) error {
	def, err := a.snapshot()
	if err != nil {
		return err
	}

	if def == nil {
		return nil
	}

	return a.store.Save(ctx, def)
}

// Run flushes every interval until ctx is done, then flushes one last time. Save errors are logged and retried on
// the next tick.
func (a *Autosaver) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := a.Flush(context.WithoutCancel(ctx)); err != nil {
				logger.Error("final autosave failed", "error", err)
			}

			return nil
		case <-ticker.C:
			a.flushLogged(ctx, logger)
		}
	}
}

func (a *Autosaver) flushLogged(ctx context.Context, logger *slog.Logger) {
	if err := a.Flush(ctx); err != nil {
		logger.Warn("autosave failed", "error", err)
	}
}
