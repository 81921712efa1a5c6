package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/khalsirati/helperbot/internal/inbox"
)

// NewInboxListHandler returns the handler that shows the admin all or only
// the unanswered suggestions.
func NewInboxListHandler(deps HandlerDeps, filter inbox.Filter) bot.HandlerFunc {
	return inboxListHandler{deps: deps, filter: filter}.Handle
}

type inboxListHandler struct {
	deps   HandlerDeps
	filter inbox.Filter
}

func (h inboxListHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "inbox_list")
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	if err := h.deps.Inbox.ShowMessages(ctx, b, chatID, h.filter); err != nil {
		log.ErrorContext(ctx, "Failed to list inbox", "error", err, "chat_id", chatID, "update_id", update.ID)
		sendGeneralError(ctx, b, h.deps, log, chatID)
	}
}

// NewReplyCallbackHandler returns the handler for the "Reply" inline button.
func NewReplyCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return replyCallbackHandler{deps}.Handle
}

type replyCallbackHandler struct {
	deps HandlerDeps
}

func (h replyCallbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "reply_callback")
	query := update.CallbackQuery
	if query == nil {
		return
	}

	answer := &bot.AnswerCallbackQueryParams{CallbackQueryID: query.ID}

	messageID, ok := inbox.ParseReplyCallbackData(query.Data)
	if !ok {
		log.WarnContext(ctx, "Malformed reply callback data", "data", query.Data, "update_id", update.ID)
		answer.Text = h.deps.Config.Messages.MessageNotFound
		answer.ShowAlert = true
	} else {
		_, err := h.deps.Inbox.SelectForReply(ctx, query.From.ID, messageID)
		switch {
		case errors.Is(err, inbox.ErrNotFound):
			log.InfoContext(ctx, "Reply target not found", "message_id", messageID)
			answer.Text = h.deps.Config.Messages.MessageNotFound
			answer.ShowAlert = true
		case err != nil:
			log.ErrorContext(ctx, "Failed to select reply target", "error", err, "message_id", messageID, "update_id", update.ID)
			answer.Text = h.deps.Config.Messages.GeneralError
			answer.ShowAlert = true
		default:
			answer.Text = h.deps.Config.Messages.ReplyPrompt
		}
	}

	if _, err := b.AnswerCallbackQuery(ctx, answer); err != nil {
		log.ErrorContext(ctx, "Failed to answer callback query", "error", err, "update_id", update.ID)
	}
}

// NewDefaultHandler returns the handler for every message no trigger claimed:
// suggestions, admin replies and stray messages.
func NewDefaultHandler(deps HandlerDeps) bot.HandlerFunc {
	return defaultHandler{deps}.Handle
}

type defaultHandler struct {
	deps HandlerDeps
}

func (h defaultHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "default")
	msg := update.Message
	if msg == nil || msg.From == nil {
		log.DebugContext(ctx, "Ignoring update without a message", "update_id", update.ID)
		return
	}

	if err := h.deps.Inbox.Route(ctx, b, msg); err != nil {
		log.ErrorContext(ctx, "Failed to route message", "error", err, "user_id", msg.From.ID, "update_id", update.ID)
		sendGeneralError(ctx, b, h.deps, log, msg.Chat.ID)
	}
}
