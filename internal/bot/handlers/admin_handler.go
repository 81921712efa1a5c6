package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewAdminStatsHandler returns a handler for the /admin command.
// Authorization is done by the AdminOnly middleware.
func NewAdminStatsHandler(deps HandlerDeps) bot.HandlerFunc {
	return adminStatsHandler{deps}.Handle
}

type adminStatsHandler struct {
	deps HandlerDeps
}

func (h adminStatsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "admin_stats")
	if update.Message == nil || update.Message.From == nil {
		log.ErrorContext(ctx, "Admin handler called with nil Message or From", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Admin requested usage statistics", "chat_id", chatID, "user_id", update.Message.From.ID)

	statsCtx, cancel := context.WithTimeout(ctx, h.deps.Config.Bot.DBOperationTimeout)
	defer cancel()

	report, err := h.deps.Stats.Collect(statsCtx)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.WarnContext(ctx, "Statistics query timed out or was cancelled", "chat_id", chatID, "update_id", update.ID)
		sendGeneralError(ctx, b, h.deps, log, chatID)
		return
	}
	if err != nil {
		log.ErrorContext(ctx, "Failed to collect statistics", "error", err, "chat_id", chatID, "update_id", update.ID)
		sendGeneralError(ctx, b, h.deps, log, chatID)
		return
	}

	sendText(ctx, b, log, chatID, report.Format(h.deps.Config.Messages.Stats), nil)
}
