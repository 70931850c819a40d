// Package persist keeps snapshots of the pipeline definitions edited in the editor.
package persist

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/askiada/pipeline-editor/internal/ctxlog"
	"github.com/askiada/pipeline-editor/pkg/editor/definition"
)

var ErrNotFound = errors.New("pipeline definition not found")

// Store saves pipeline definitions.
type Store interface {
	Save(ctx context.Context, def *definition.Definition) error
	Load(ctx context.Context, pipelineID string) (*definition.Definition, error)
}

const keyPrefix = "pipeline/"

func key(pipelineID string) []byte {
	return []byte(keyPrefix + pipelineID)
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// BadgerStore keeps the latest definition of every pipeline in a badger database.
type BadgerStore struct {
	db     *badger.DB
	cfg    Config
	logger *slog.Logger
}

// Open opens the database described by cfg. A nil logger silences badger.
func Open(cfg Config, logger *slog.Logger) (*BadgerStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("path is required for a persistent store")
		}

		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, errors.Wrapf(err, "unable to create store directory %s", cfg.Path)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open badger database")
	}

	return &BadgerStore{db: db, cfg: cfg, logger: ctxlog.OrDiscard(logger)}, nil
}

func (s *BadgerStore) Save(_ context.Context, def *definition.Definition) error {
	if def.UUID == "" {
		return definition.ErrMissingUUID
	}

	buf, err := definition.Marshal(def)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(def.UUID), buf)
	})
	if err != nil {
		return errors.Wrapf(err, "unable to save pipeline %s", def.UUID)
	}

	return nil
}

func (s *BadgerStore) Load(_ context.Context, pipelineID string) (*definition.Definition, error) {
	var buf []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(pipelineID))
		if err != nil {
			return err
		}

		buf, err = item.ValueCopy(nil)

		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "pipeline %s", pipelineID)
		}

		return nil, errors.Wrapf(err, "unable to load pipeline %s", pipelineID)
	}

	return definition.Unmarshal(buf)
}

// Delete removes the snapshot of a pipeline. Deleting a missing pipeline is not an error.
func (s *BadgerStore) Delete(_ context.Context, pipelineID string) error {
	return errors.Wrapf(s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(pipelineID))
	}), "unable to delete pipeline %s", pipelineID)
}

// List returns the ids of the stored pipelines, in key order.
func (s *BadgerStore) List(_ context.Context) ([]string, error) {
	var ids []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			ids = append(ids, string(it.Item().Key()[len(keyPrefix):]))
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to list pipelines")
	}

	return ids, nil
}

// RunGC collects the value log every GCInterval until ctx is done. It returns at once for in-memory stores or when
// the interval is zero.
func (s *BadgerStore) RunGC(ctx context.Context) error {
	if s.cfg.InMemory || s.cfg.GCInterval <= 0 {
		return nil
	}

	ticker := time.NewTicker(s.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := s.db.RunValueLogGC(s.cfg.GCDiscardRatio)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				s.logger.Warn("badger value log GC error", "error", err)
			}
		}
	}
}

func (s *BadgerStore) Close() error {
	return errors.Wrap(s.db.Close(), "unable to close badger database")
}

var _ Store = (*BadgerStore)(nil)
