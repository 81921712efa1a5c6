package bot

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khalsirati/helperbot/internal/bot/tasks"
	"github.com/khalsirati/helperbot/internal/config"
	"github.com/khalsirati/helperbot/internal/database"
)

type blockingListener struct {
	started chan struct{}
}

func (l *blockingListener) Start(ctx context.Context) {
	close(l.started)
	<-ctx.Done()
}

type returningListener struct{}

func (returningListener) Start(context.Context) {}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) database.Store {
	t.Helper()
	db, err := database.NewDB(database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })
	return database.NewStore(db, nil)
}

func noopTasks() map[string]tasks.ScheduledTaskFunc {
	noop := func(context.Context) error { return nil }
	return map[string]tasks.ScheduledTaskFunc{
		config.TaskSQLMaintenance: noop,
		config.TaskUnreadReminder: noop,
	}
}

func TestSchedulerStartsEnabledTasks(t *testing.T) {
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		config.TaskSQLMaintenance: {Enabled: true, Schedule: "0 0 4 * * *"},
		config.TaskUnreadReminder: {Enabled: false, Schedule: "0 0 9 * * *"},
		"unknown":                 {Enabled: true, Schedule: "0 0 1 * * *"},
	}}

	s, err := NewScheduler(discardLogger(), cfg, noopTasks())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()))

	jobs := s.Jobs()
	sort.Strings(jobs)
	assert.Equal(t, []string{config.TaskSQLMaintenance}, jobs)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}

func TestSchedulerSkipsInvalidSchedule(t *testing.T) {
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		config.TaskSQLMaintenance: {Enabled: true, Schedule: "not a cron"},
	}}

	s, err := NewScheduler(discardLogger(), cfg, noopTasks())
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	assert.Empty(t, s.Jobs())
	require.NoError(t, s.Stop())
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	sched, err := NewScheduler(discardLogger(), &cfg.Scheduler, noopTasks())
	require.NoError(t, err)

	listener := &blockingListener{started: make(chan struct{})}
	app := NewBot(discardLogger(), cfg, newTestStore(t), listener, sched)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	<-listener.started
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRunFailsWhenListenerStops(t *testing.T) {
	cfg := config.Default()
	sched, err := NewScheduler(discardLogger(), &cfg.Scheduler, noopTasks())
	require.NoError(t, err)

	app := NewBot(discardLogger(), cfg, newTestStore(t), returningListener{}, sched)
	assert.Error(t, app.Run(context.Background()))
}
