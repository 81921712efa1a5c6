// Package logger provides structured logging for the helper bot.
// It uses Go's slog package with configurable levels and formats and
// supplies the update-logging and panic-recovery bot middleware.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewLogger creates a new slog Logger with the specified level and format.
// If jsonOutput is true, logs will be formatted as JSON, otherwise as text.
func NewLogger(levelStr string, jsonOutput bool) *slog.Logger {
	return newLogger(os.Stdout, levelStr, jsonOutput)
}

func newLogger(w io.Writer, levelStr string, jsonOutput bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(levelStr),
	}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a config level name to a slog level, defaulting to info.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Middleware creates a logging middleware for the Telegram bot.
// It logs information about incoming updates and how long they took.
func Middleware(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			startTime := time.Now()

			logEntry := log.With("update_id", update.ID).With(describeUpdate(update)...)
			logEntry.InfoContext(ctx, "Processing update")

			next(ctx, b, update)

			logEntry.InfoContext(ctx, "Finished processing update", "duration", time.Since(startTime))
		}
	}
}

// Recover turns a panicking handler into an error log so the bot keeps
// serving subsequent updates.
func Recover(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				if r := recover(); r != nil {
					log.ErrorContext(ctx, "Recovered from handler panic",
						"update_id", update.ID,
						"panic", fmt.Sprint(r),
						"stack", string(debug.Stack()))
				}
			}()
			next(ctx, b, update)
		}
	}
}

// ErrorsHandler logs errors reported by the bot library itself
// (polling failures, API errors outside handlers).
func ErrorsHandler(log *slog.Logger) func(err error) {
	return func(err error) {
		log.Error("Telegram transport error", "error", err)
	}
}

func describeUpdate(update *models.Update) []any {
	switch {
	case update.Message != nil:
		attrs := []any{
			"update_type", "message",
			"message_id", update.Message.ID,
			"chat_id", update.Message.Chat.ID,
			"text_preview", truncateString(update.Message.Text, 50),
		}
		if update.Message.From != nil {
			attrs = append(attrs, "user_id", update.Message.From.ID)
		}
		return attrs

	case update.CallbackQuery != nil:
		attrs := []any{
			"update_type", "callback_query",
			"callback_query_id", update.CallbackQuery.ID,
			"user_id", update.CallbackQuery.From.ID,
			"data", update.CallbackQuery.Data,
		}
		switch {
		case update.CallbackQuery.Message.Message != nil:
			attrs = append(attrs, "chat_id", update.CallbackQuery.Message.Message.Chat.ID, "message_accessible", true)
		case update.CallbackQuery.Message.InaccessibleMessage != nil:
			attrs = append(attrs, "chat_id", update.CallbackQuery.Message.InaccessibleMessage.Chat.ID, "message_accessible", false)
		}
		return attrs

	default:
		return []any{"update_type", "other"}
	}
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(r[:maxLen-3]) + "..."
}
