package audit

import (
	"context"
	"time"

	"github.com/dbehnke/adlog-decoder/pkg/logger"
)

// SweepInterval is how often the retention sweep runs.
const SweepInterval = time.Hour

// RetentionSweeper periodically prunes runs older than a configured
// retention window. Adapted from the teacher's radioid.Syncer (ticker loop
// + batch repository op) with its HTTP fetch removed — spec.md's
// non-goals exclude any network I/O, and there is nothing to download
// here, only a local table to prune.
type RetentionSweeper struct {
	repo      *Repository
	retention time.Duration
	logger    *logger.Logger
}

// NewRetentionSweeper builds a sweeper that deletes runs older than
// retention every SweepInterval. A zero or negative retention disables
// pruning (Start becomes a no-op loop that never deletes).
func NewRetentionSweeper(repo *Repository, retention time.Duration, log *logger.Logger) *RetentionSweeper {
	if log == nil {
		log = logger.New(logger.Config{Level: "error"})
	}
	return &RetentionSweeper{repo: repo, retention: retention, logger: log}
}

// Start runs the sweep once immediately, then on SweepInterval, until ctx
// is cancelled.
func (s *RetentionSweeper) Start(ctx context.Context) {
	s.sweep()

	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("retention sweeper stopped")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *RetentionSweeper) sweep() {
	if s.retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-s.retention)
	deleted, err := s.repo.DeleteOlderThan(cutoff)
	if err != nil {
		s.logger.Error("retention sweep failed", logger.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("retention sweep removed stale runs", logger.Int64("deleted", deleted))
	}
}
