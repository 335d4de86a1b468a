package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mrlokans/libris/internal/config"
	"github.com/mrlokans/libris/internal/tasks"
)

// PruneEnqueuer hands visit pruning to the task queue.
type PruneEnqueuer interface {
	EnqueuePruneVisits(ctx context.Context, keepMonths int) error
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// StatsRetentionScheduler periodically drops old monthly visit buckets.
// When a task queue is available the work is enqueued there, otherwise it
// runs on the cron goroutine.
type StatsRetentionScheduler struct {
	cfg      config.StatsRetention
	pruner   tasks.VisitPruner
	enqueuer PruneEnqueuer
	log      *zap.Logger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewStatsRetentionScheduler creates a new scheduler instance. enqueuer may be nil.
func NewStatsRetentionScheduler(cfg config.StatsRetention, pruner tasks.VisitPruner, enqueuer PruneEnqueuer, log *zap.Logger) *StatsRetentionScheduler {
	return &StatsRetentionScheduler{
		cfg:      cfg,
		pruner:   pruner,
		enqueuer: enqueuer,
		log:      log,
		cron:     cron.New(cron.WithParser(cronParser)),
	}
}

// Start begins the scheduler if retention is enabled
func (s *StatsRetentionScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		s.log.Info("stats retention scheduler: disabled")
		return nil
	}

	if err := ValidateCronSchedule(s.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		if err := s.RunNow(context.Background()); err != nil {
			s.log.Error("stats retention run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule retention job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	s.log.Info("stats retention scheduler: started",
		zap.String("schedule", s.cfg.Schedule),
		zap.Int("keep_months", s.cfg.Months),
		zap.Time("next_run", s.cron.Entry(entryID).Next))

	// Monitor for context cancellation
	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *StatsRetentionScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	s.log.Info("stats retention scheduler: stopped")
}

// RunNow prunes immediately, through the task queue when one is configured.
func (s *StatsRetentionScheduler) RunNow(ctx context.Context) error {
	if s.enqueuer != nil {
		return s.enqueuer.EnqueuePruneVisits(ctx, s.cfg.Months)
	}
	removed, err := s.pruner.PruneVisits(ctx, s.cfg.Months)
	if err != nil {
		return err
	}
	s.log.Info("pruned monthly visits", zap.Int("buckets_removed", removed))
	return nil
}

// IsRunning returns whether the scheduler is active
func (s *StatsRetentionScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next run will occur
func (s *StatsRetentionScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	t := s.cron.Entry(s.entryID).Next
	return &t
}
