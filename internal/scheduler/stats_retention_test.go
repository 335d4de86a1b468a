package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/libris/internal/config"
)

type fakePruner struct {
	calls int
	keep  int
}

func (f *fakePruner) PruneVisits(_ context.Context, keepMonths int) (int, error) {
	f.calls++
	f.keep = keepMonths
	return 1, nil
}

type fakeEnqueuer struct {
	calls int
	keep  int
}

func (f *fakeEnqueuer) EnqueuePruneVisits(_ context.Context, keepMonths int) error {
	f.calls++
	f.keep = keepMonths
	return nil
}

func TestValidateCronSchedule(t *testing.T) {
	assert.NoError(t, ValidateCronSchedule("0 3 1 * *"))
	assert.Error(t, ValidateCronSchedule("every day"))
	assert.Error(t, ValidateCronSchedule("0 0 3 1 * *"), "seconds field is not accepted")
}

func TestStatsRetention_Disabled(t *testing.T) {
	s := NewStatsRetentionScheduler(config.StatsRetention{Enabled: false}, &fakePruner{}, nil, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRunTime())
}

func TestStatsRetention_InvalidSchedule(t *testing.T) {
	s := NewStatsRetentionScheduler(config.StatsRetention{Enabled: true, Schedule: "nope"}, &fakePruner{}, nil, zap.NewNop())

	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestStatsRetention_StartStop(t *testing.T) {
	s := NewStatsRetentionScheduler(config.StatsRetention{Enabled: true, Schedule: "0 3 1 * *", Months: 12}, &fakePruner{}, nil, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	next := s.NextRunTime()
	require.NotNil(t, next)
	assert.Equal(t, 1, next.Day())
	assert.Equal(t, 3, next.Hour())

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop() // idempotent
}

func TestStatsRetention_RunNowInline(t *testing.T) {
	pruner := &fakePruner{}
	s := NewStatsRetentionScheduler(config.StatsRetention{Months: 6}, pruner, nil, zap.NewNop())

	require.NoError(t, s.RunNow(context.Background()))
	assert.Equal(t, 1, pruner.calls)
	assert.Equal(t, 6, pruner.keep)
}

func TestStatsRetention_RunNowEnqueues(t *testing.T) {
	pruner := &fakePruner{}
	enqueuer := &fakeEnqueuer{}
	s := NewStatsRetentionScheduler(config.StatsRetention{Months: 6}, pruner, enqueuer, zap.NewNop())

	require.NoError(t, s.RunNow(context.Background()))
	assert.Equal(t, 1, enqueuer.calls)
	assert.Equal(t, 6, enqueuer.keep)
	assert.Zero(t, pruner.calls)
}
