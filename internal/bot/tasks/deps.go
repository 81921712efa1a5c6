// Package tasks implements the scheduled background jobs of the helper bot.
package tasks

import (
	"log/slog"

	"github.com/khalsirati/helperbot/internal/config"
	"github.com/khalsirati/helperbot/internal/database"
	"github.com/khalsirati/helperbot/internal/inbox"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Sender inbox.Sender
	Config *config.Config
}
