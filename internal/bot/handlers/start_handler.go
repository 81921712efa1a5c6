package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler registers the user and sends the welcome sequence with the main menu.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	log.InfoContext(ctx, "Handling /start command", "chat_id", chatID, "user_id", userID)

	storeCtx, cancel := context.WithTimeout(ctx, h.deps.Config.Bot.DBOperationTimeout)
	err := h.deps.Store.TouchUser(storeCtx, userID)
	cancel()
	if err != nil {
		// The greeting still goes out; only the statistics lose this start.
		log.ErrorContext(ctx, "Failed to record user start", "error", err, "user_id", userID, "update_id", update.ID)
	}

	for _, line := range h.deps.Config.Messages.Welcome {
		if !sendText(ctx, b, log, chatID, line, nil) {
			return
		}
	}
	if sendText(ctx, b, log, chatID, h.deps.Config.Messages.MenuPrompt, h.deps.Catalog.MainKeyboard()) {
		log.DebugContext(ctx, "Successfully sent welcome sequence", "chat_id", chatID)
	}
}
