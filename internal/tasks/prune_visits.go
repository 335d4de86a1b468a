package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"
)

// VisitPruner removes old monthly visit buckets.
type VisitPruner interface {
	PruneVisits(ctx context.Context, keepMonths int) (int, error)
}

// PruneVisitsTask keeps only the newest KeepMonths monthly visit buckets.
type PruneVisitsTask struct {
	KeepMonths int `json:"keep_months"`
}

func (t PruneVisitsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prune_visits",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func PruneVisitsProcessor(pruner VisitPruner, log *zap.Logger) backlite.QueueProcessor[PruneVisitsTask] {
	return func(ctx context.Context, task PruneVisitsTask) error {
		if pruner == nil {
			return fmt.Errorf("visit pruner not configured")
		}

		keep := task.KeepMonths
		if keep <= 0 {
			keep = 12
		}

		removed, err := pruner.PruneVisits(ctx, keep)
		if err != nil {
			return fmt.Errorf("prune visits: %w", err)
		}

		log.Info("pruned monthly visits", zap.Int("buckets_removed", removed), zap.Int("keep_months", keep))
		return nil
	}
}

func NewPruneVisitsQueue(pruner VisitPruner, log *zap.Logger) backlite.Queue {
	return backlite.NewQueue(PruneVisitsProcessor(pruner, log))
}
