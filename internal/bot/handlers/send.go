package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// sendText sends text to chatID and logs a failure. markup may be nil.
func sendText(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, text string, markup models.ReplyMarkup) bool {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
		return false
	}
	return true
}

// sendGeneralError tells the user something went wrong on our side.
func sendGeneralError(ctx context.Context, b *bot.Bot, deps HandlerDeps, log *slog.Logger, chatID int64) {
	sendText(ctx, b, log, chatID, deps.Config.Messages.GeneralError, nil)
}
