package handlers

import (
	"log/slog"

	"github.com/khalsirati/helperbot/internal/config"
	"github.com/khalsirati/helperbot/internal/database"
	"github.com/khalsirati/helperbot/internal/inbox"
	"github.com/khalsirati/helperbot/internal/menu"
	"github.com/khalsirati/helperbot/internal/stats"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Store   database.Store
	Inbox   *inbox.Manager
	Catalog *menu.Catalog
	Stats   *stats.Aggregator
}
