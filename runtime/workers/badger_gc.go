package workers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// gcDiscardRatio is the share of stale data a value log file must hold to be rewritten.
const gcDiscardRatio = 0.5

// ValueLogGCWorker reclaims value log space left behind by ledger updates.
type ValueLogGCWorker struct {
	db       *badger.DB
	log      *slog.Logger
	interval time.Duration
}

func NewValueLogGCWorker(db *badger.DB, log *slog.Logger, interval time.Duration) *ValueLogGCWorker {
	return &ValueLogGCWorker{db: db, log: log, interval: interval}
}

func (w *ValueLogGCWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.collect(ctx); err != nil {
				return err
			}
		}
	}
}

// collect rewrites files until Badger finds nothing worth rewriting.
func (w *ValueLogGCWorker) collect(ctx context.Context) error {
	rewritten := 0
	for ctx.Err() == nil {
		err := w.db.RunValueLogGC(gcDiscardRatio)
		if stderrors.Is(err, badger.ErrNoRewrite) || stderrors.Is(err, badger.ErrRejected) {
			break
		}
		if err != nil {
			return err
		}
		rewritten++
	}
	if rewritten > 0 {
		w.log.Info("Value log collected", "files", rewritten)
	}
	return nil
}
