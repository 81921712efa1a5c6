package tasks

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
)

// newUnreadReminderTask reminds the admin about suggestions still waiting
// for a reply. Nothing is sent when the inbox is empty.
func newUnreadReminderTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "unread_reminder")

	return func(ctx context.Context) error {
		storeCtx, cancel := context.WithTimeout(ctx, deps.Config.Bot.DBOperationTimeout)
		count, err := deps.Store.CountUnreplied(storeCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("unread reminder failed: %w", err)
		}
		if count == 0 {
			log.DebugContext(ctx, "No unread suggestions, skipping reminder")
			return nil
		}

		sendCtx, cancel := context.WithTimeout(ctx, deps.Config.Bot.SendTimeout)
		defer cancel()
		_, err = deps.Sender.SendMessage(sendCtx, &bot.SendMessageParams{
			ChatID: deps.Config.Telegram.AdminID,
			Text:   fmt.Sprintf(deps.Config.Messages.UnreadReminder, count),
		})
		if err != nil {
			return fmt.Errorf("failed to send unread reminder: %w", err)
		}

		log.InfoContext(ctx, "Sent unread reminder", "unread", count)
		return nil
	}
}
