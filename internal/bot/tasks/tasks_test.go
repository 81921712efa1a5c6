package tasks

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khalsirati/helperbot/internal/config"
	"github.com/khalsirati/helperbot/internal/database"
	"github.com/khalsirati/helperbot/internal/inbox/inboxtest"
)

func newTestDeps(t *testing.T) (TaskDeps, *inboxtest.Sender) {
	t.Helper()

	db, err := database.NewDB(database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	cfg := config.Default()
	cfg.Telegram.AdminID = "500"

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sender := inboxtest.NewSender()
	return TaskDeps{
		Logger: log,
		Store:  database.NewStore(db, log),
		Sender: sender,
		Config: cfg,
	}, sender
}

func TestRegisterAllTasks(t *testing.T) {
	deps, _ := newTestDeps(t)

	tasks := RegisterAllTasks(deps)
	assert.Len(t, tasks, 2)
	assert.Contains(t, tasks, config.TaskSQLMaintenance)
	assert.Contains(t, tasks, config.TaskUnreadReminder)
}

func TestSQLMaintenanceTask(t *testing.T) {
	deps, _ := newTestDeps(t)
	task := newSQLMaintenanceTask(deps)

	require.NoError(t, task(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, task(ctx), context.Canceled)
}

func TestSQLMaintenanceTaskHonoursTimeout(t *testing.T) {
	deps, _ := newTestDeps(t)
	deps.Config.Bot.DBOperationTimeout = -time.Second
	task := newSQLMaintenanceTask(deps)

	err := task(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorContains(t, err, "database compaction failed")
}

func TestUnreadReminderTask(t *testing.T) {
	ctx := context.Background()
	deps, sender := newTestDeps(t)
	task := newUnreadReminderTask(deps)

	require.NoError(t, task(ctx))
	assert.Empty(t, sender.Sent())

	for _, text := range []string{"one", "two"} {
		require.NoError(t, deps.Store.SaveInboxMessage(ctx, &database.InboxMessage{
			UserID:  1,
			Message: sql.NullString{String: text, Valid: true},
		}))
	}

	require.NoError(t, task(ctx))
	sent := sender.To("500")
	require.Len(t, sent, 1)
	assert.Equal(t, "Неотвеченных сообщений: 2", sent[0].Text)

	sender.FailOn["sendMessage"] = errors.New("blocked")
	assert.Error(t, task(ctx))
}
