package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/docchat/internal/repo"
)

// TurnPruneJob trims conversation turns older than the retention window.
type TurnPruneJob struct {
	turns  *repo.TurnRepo
	maxAge time.Duration
}

func NewTurnPruneJob(turns *repo.TurnRepo, maxAge time.Duration) *TurnPruneJob {
	return &TurnPruneJob{turns: turns, maxAge: maxAge}
}

func (j *TurnPruneJob) Name() string {
	return "turn_prune"
}

func (j *TurnPruneJob) Run(ctx context.Context) error {
	if j.turns == nil {
		return nil
	}
	maxAge := j.maxAge
	if maxAge <= 0 {
		maxAge = 90 * 24 * time.Hour
	}
	cutoff := time.Now().Add(-maxAge).UnixMilli()
	deleted, err := j.turns.DeleteBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logutil.GetLogger(ctx).Info("pruned old turns", zap.Int64("deleted", deleted))
	}
	return nil
}
