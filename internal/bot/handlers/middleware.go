// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AdminOnly creates a middleware that checks if the sender is the configured admin user.
// If not, it sends a "Not Authorized" message and stops processing by returning early.
func AdminOnly(deps HandlerDeps) tgbot.Middleware {
	return adminGate(deps, true)
}

// AdminOnlyQuiet drops updates from anyone but the admin without replying.
// Callback queries are still answered so the client stops its spinner.
func AdminOnlyQuiet(deps HandlerDeps) tgbot.Middleware {
	return adminGate(deps, false)
}

func adminGate(deps HandlerDeps, reply bool) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			userID, ok := senderID(update)
			if !ok {
				return
			}
			if deps.Config.Telegram.IsAdmin(userID) {
				next(ctx, bot, update)
				return
			}

			log := deps.Logger.With("middleware", "AdminOnly")
			log.WarnContext(ctx, "Unauthorized access attempt", "user_id", userID, "update_id", update.ID)

			if update.CallbackQuery != nil {
				_, err := bot.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})
				if err != nil {
					log.ErrorContext(ctx, "Failed to answer callback query", "error", err)
				}
				return
			}

			if reply && update.Message != nil {
				chatID := update.Message.Chat.ID
				_, err := bot.SendMessage(ctx, &tgbot.SendMessageParams{
					ChatID: chatID,
					Text:   deps.Config.Messages.NotAuthorized,
				})
				if err != nil {
					log.ErrorContext(ctx, "Failed to send unauthorized message", "error", err, "chat_id", chatID)
				}
			}
		}
	}
}

// RecordInteractions appends one interaction row for every update that has
// a sender before passing it on. A failed write is logged and never blocks
// the update.
func RecordInteractions(deps HandlerDeps) tgbot.Middleware {
	log := deps.Logger.With("middleware", "RecordInteractions")
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if userID, ok := senderID(update); ok {
				storeCtx, cancel := context.WithTimeout(ctx, deps.Config.Bot.DBOperationTimeout)
				if err := deps.Store.RecordInteraction(storeCtx, userID); err != nil {
					log.ErrorContext(ctx, "Failed to record interaction", "error", err, "user_id", userID, "update_id", update.ID)
				}
				cancel()
			}
			next(ctx, bot, update)
		}
	}
}

func senderID(update *models.Update) (int64, bool) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, true
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID, true
	default:
		return 0, false
	}
}
