// Package inbox implements the suggestion inbox: it captures messages users
// send after pressing the suggestion button, notifies the admin, and routes
// the admin's reply back to the original sender exactly once.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/khalsirati/helperbot/internal/config"
	"github.com/khalsirati/helperbot/internal/database"
)

var (
	// ErrNotFound is returned when a reply targets a message that does not exist.
	ErrNotFound = errors.New("inbox message not found")
	// ErrNoBinding is returned when the admin sends a reply without selecting a message.
	ErrNoBinding = errors.New("no pending reply")
	// ErrNotInSuggestionMode is returned when a capture is attempted without the flag.
	ErrNotInSuggestionMode = errors.New("user is not in suggestion mode")
	// ErrUnsupportedContent is returned for message kinds the inbox cannot store or forward.
	ErrUnsupportedContent = errors.New("unsupported content")
)

// ReplyCallbackPrefix prefixes the callback data of the "Reply" button.
const ReplyCallbackPrefix = "reply-"

// Filter selects which suggestions ListMessages returns.
type Filter int

const (
	FilterAll Filter = iota
	FilterUnreplied
)

// Store is the persistence the inbox needs.
type Store interface {
	SaveInboxMessage(ctx context.Context, msg *database.InboxMessage) error
	GetInboxMessage(ctx context.Context, id int64) (*database.InboxMessage, error)
	ListInboxMessages(ctx context.Context, unrepliedOnly bool) ([]database.InboxMessage, error)
	MarkReplied(ctx context.Context, id int64) (bool, error)
	CountUnreplied(ctx context.Context) (int, error)
}

// Manager runs the suggestion and reply flows.
type Manager struct {
	store     Store
	sessions  *Sessions
	admin     config.TelegramConfig
	msgs      config.MessagesConfig
	logger    *slog.Logger
	opTimeout time.Duration
}

// NewManager creates a Manager. A nil logger discards output and a zero
// opTimeout falls back to the configured default.
func NewManager(store Store, sessions *Sessions, cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if sessions == nil {
		sessions = NewSessions()
	}
	timeout := cfg.Bot.DBOperationTimeout
	if timeout <= 0 {
		timeout = config.DefaultDBOperationTimeout
	}
	return &Manager{
		store:     store,
		sessions:  sessions,
		admin:     cfg.Telegram,
		msgs:      cfg.Messages,
		logger:    logger.With("component", "inbox"),
		opTimeout: timeout,
	}
}

// Sessions exposes the session store, mainly for tests and diagnostics.
func (m *Manager) Sessions() *Sessions {
	return m.sessions
}

// IsAdmin reports whether userID is the channel admin.
func (m *Manager) IsAdmin(userID int64) bool {
	return m.admin.IsAdmin(userID)
}

// EnterSuggestionMode makes the user's next message a suggestion.
func (m *Manager) EnterSuggestionMode(userID int64) {
	m.sessions.EnterSuggestion(userID)
	m.logger.Debug("User entered suggestion mode", "user_id", userID)
}

// CaptureMessage stores content as a suggestion from the user, confirms it
// in chatID and notifies the admin. The flag is consumed before the insert
// and restored if the insert fails so the user can simply resend.
func (m *Manager) CaptureMessage(ctx context.Context, s Sender, from models.User, chatID int64, c Content) (*database.InboxMessage, error) {
	if !m.sessions.TakeSuggestion(from.ID) {
		return nil, ErrNotInSuggestionMode
	}

	rec := c.record(from)
	storeCtx, cancel := context.WithTimeout(ctx, m.opTimeout)
	err := m.store.SaveInboxMessage(storeCtx, rec)
	cancel()
	if err != nil {
		m.sessions.EnterSuggestion(from.ID)
		return nil, fmt.Errorf("failed to capture suggestion: %w", err)
	}

	m.logger.InfoContext(ctx, "Suggestion captured",
		"user_id", from.ID, "message_id", rec.ID, "kind", c.Kind)

	if _, err := s.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: m.msgs.SuggestionSent}); err != nil {
		m.logger.ErrorContext(ctx, "Failed to confirm suggestion", "error", err, "user_id", from.ID)
	}

	if err := m.NotifyAdmin(ctx, s); err != nil {
		m.logger.ErrorContext(ctx, "Failed to notify admin", "error", err, "message_id", rec.ID)
	}

	return rec, nil
}

// UnreadCount returns the number of suggestions still waiting for a reply.
func (m *Manager) UnreadCount(ctx context.Context) (int, error) {
	storeCtx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()
	return m.store.CountUnreplied(storeCtx)
}

// NotifyAdmin sends the admin the current unread count.
func (m *Manager) NotifyAdmin(ctx context.Context, s Sender) error {
	count, err := m.UnreadCount(ctx)
	if err != nil {
		return err
	}
	_, err = s.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: m.admin.AdminID,
		Text:   fmt.Sprintf(m.msgs.AdminNotify, count),
	})
	if err != nil {
		return fmt.Errorf("failed to send admin notification: %w", err)
	}
	m.logger.DebugContext(ctx, "Admin notified", "unread", count)
	return nil
}

// ListMessages returns suggestions in insertion order.
func (m *Manager) ListMessages(ctx context.Context, filter Filter) ([]database.InboxMessage, error) {
	storeCtx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()
	return m.store.ListInboxMessages(storeCtx, filter == FilterUnreplied)
}

// ShowMessages renders the listing into chatID, one message per suggestion,
// each with a "Reply" button bound to its ID.
func (m *Manager) ShowMessages(ctx context.Context, s Sender, chatID int64, filter Filter) error {
	messages, err := m.ListMessages(ctx, filter)
	if err != nil {
		return err
	}

	if len(messages) == 0 {
		text := m.msgs.NoMessages
		if filter == FilterUnreplied {
			text = m.msgs.NoUnreplied
		}
		_, err := s.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
		return err
	}

	rendered := 0
	var lastErr error
	for i := range messages {
		rec := &messages[i]
		if err := m.renderMessage(ctx, s, chatID, rec); err != nil {
			m.logger.ErrorContext(ctx, "Failed to render inbox message", "error", err, "message_id", rec.ID)
			lastErr = err
			// The sender and the reply button stay reachable without the content.
			if _, perr := s.SendMessage(ctx, &bot.SendMessageParams{
				ChatID:      chatID,
				Text:        m.SenderInfo(rec),
				ReplyMarkup: m.replyKeyboard(rec.ID),
			}); perr != nil {
				continue
			}
		}
		rendered++
	}
	if rendered == 0 {
		return fmt.Errorf("failed to render any of %d inbox messages: %w", len(messages), lastErr)
	}

	m.logger.InfoContext(ctx, "Inbox listed",
		"count", len(messages), "rendered", rendered, "unreplied_only", filter == FilterUnreplied)
	return nil
}

func (m *Manager) renderMessage(ctx context.Context, s Sender, chatID int64, rec *database.InboxMessage) error {
	info := m.SenderInfo(rec)
	markup := m.replyKeyboard(rec.ID)
	c := ContentFromRecord(rec)

	switch c.Kind {
	case KindText:
		c.Text = info + ": " + c.Text
		return Send(ctx, s, chatID, c, "", markup)
	case KindVideoNote:
		if _, err := s.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: info}); err != nil {
			return fmt.Errorf("failed to send sender info: %w", err)
		}
		return Send(ctx, s, chatID, c, "", markup)
	default:
		return Send(ctx, s, chatID, c, info, markup)
	}
}

// SenderInfo formats the sender snapshot of a stored suggestion.
func (m *Manager) SenderInfo(rec *database.InboxMessage) string {
	return fmt.Sprintf(m.msgs.SenderInfo, rec.FirstName.String, rec.Username.String, rec.UserID)
}

func (m *Manager) replyKeyboard(messageID int64) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: m.msgs.ReplyButton, CallbackData: ReplyCallbackData(messageID)}},
		},
	}
}

// ReplyCallbackData builds the callback payload of the "Reply" button.
func ReplyCallbackData(messageID int64) string {
	return ReplyCallbackPrefix + strconv.FormatInt(messageID, 10)
}

// ParseReplyCallbackData extracts the message ID from a "reply-<id>" payload.
func ParseReplyCallbackData(data string) (int64, bool) {
	if len(data) <= len(ReplyCallbackPrefix) || data[:len(ReplyCallbackPrefix)] != ReplyCallbackPrefix {
		return 0, false
	}
	id, err := strconv.ParseInt(data[len(ReplyCallbackPrefix):], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// SelectForReply binds the admin session to the sender of messageID.
func (m *Manager) SelectForReply(ctx context.Context, sessionID, messageID int64) (Binding, error) {
	storeCtx, cancel := context.WithTimeout(ctx, m.opTimeout)
	rec, err := m.store.GetInboxMessage(storeCtx, messageID)
	cancel()
	if err != nil {
		return Binding{}, fmt.Errorf("failed to look up reply target: %w", err)
	}
	if rec == nil {
		return Binding{}, ErrNotFound
	}

	b := Binding{TargetUserID: rec.UserID, MessageID: rec.ID}
	m.sessions.Bind(sessionID, b)
	m.logger.InfoContext(ctx, "Reply target selected",
		"session_id", sessionID, "target_user_id", b.TargetUserID, "message_id", b.MessageID)
	return b, nil
}

// DeliverReply consumes the session's binding, marks the suggestion replied
// and forwards content to its sender behind the fixed notice. If the store
// update fails the binding is restored and nothing is sent.
func (m *Manager) DeliverReply(ctx context.Context, s Sender, sessionID, adminChatID int64, c Content) (Binding, error) {
	b, ok := m.sessions.TakeBinding(sessionID)
	if !ok {
		return Binding{}, ErrNoBinding
	}

	storeCtx, cancel := context.WithTimeout(ctx, m.opTimeout)
	flipped, err := m.store.MarkReplied(storeCtx, b.MessageID)
	cancel()
	if err != nil {
		m.sessions.RestoreBinding(sessionID, b)
		return b, fmt.Errorf("failed to mark message replied: %w", err)
	}
	if !flipped {
		m.logger.InfoContext(ctx, "Replying again to an already answered message", "message_id", b.MessageID)
	}

	// The message stays marked replied when delivery fails below.
	if _, err := s.SendMessage(ctx, &bot.SendMessageParams{ChatID: b.TargetUserID, Text: m.msgs.ReplyNotice}); err != nil {
		m.logger.ErrorContext(ctx, "Reply notice not delivered to a message marked replied",
			"error", err, "message_id", b.MessageID, "target_user_id", b.TargetUserID)
		return b, fmt.Errorf("failed to send reply notice: %w", err)
	}
	if err := Send(ctx, s, b.TargetUserID, c, "", nil); err != nil {
		m.logger.ErrorContext(ctx, "Reply not delivered to a message marked replied",
			"error", err, "message_id", b.MessageID, "target_user_id", b.TargetUserID)
		return b, fmt.Errorf("failed to forward reply: %w", err)
	}

	if _, err := s.SendMessage(ctx, &bot.SendMessageParams{ChatID: adminChatID, Text: m.msgs.ReplySent}); err != nil {
		m.logger.ErrorContext(ctx, "Failed to confirm reply to admin", "error", err)
	}

	m.logger.InfoContext(ctx, "Reply delivered",
		"target_user_id", b.TargetUserID, "message_id", b.MessageID, "kind", c.Kind)
	return b, nil
}

// Route handles a message that no keyword or command claimed:
//   - admin with a pending binding: deliver the reply;
//   - admin without one: re-send the unread count;
//   - user in suggestion mode: capture the suggestion;
//   - anyone else: remind them to press the suggestion button.
func (m *Manager) Route(ctx context.Context, s Sender, msg *models.Message) error {
	if msg == nil || msg.From == nil {
		return nil
	}
	from := *msg.From
	chatID := msg.Chat.ID
	c, supported := ContentFromMessage(msg)

	if m.IsAdmin(from.ID) {
		if _, ok := m.sessions.PeekBinding(from.ID); ok {
			if !supported {
				return m.reply(ctx, s, chatID, m.msgs.UnsupportedContent, ErrUnsupportedContent)
			}
			_, err := m.DeliverReply(ctx, s, from.ID, chatID, c)
			if errors.Is(err, ErrNoBinding) {
				// A concurrent message consumed the binding first.
				return nil
			}
			return err
		}
		m.logger.InfoContext(ctx, "Admin message without a reply target", "user_id", from.ID)
		return m.NotifyAdmin(ctx, s)
	}

	if m.sessions.InSuggestion(from.ID) {
		if !supported {
			return m.reply(ctx, s, chatID, m.msgs.UnsupportedContent, ErrUnsupportedContent)
		}
		_, err := m.CaptureMessage(ctx, s, from, chatID, c)
		if errors.Is(err, ErrNotInSuggestionMode) {
			// A concurrent message took the flag first.
			return m.reply(ctx, s, chatID, m.msgs.PressSuggestionFirst, nil)
		}
		return err
	}

	m.logger.DebugContext(ctx, "Message outside suggestion mode", "user_id", from.ID)
	return m.reply(ctx, s, chatID, m.msgs.PressSuggestionFirst, nil)
}

func (m *Manager) reply(ctx context.Context, s Sender, chatID int64, text string, result error) error {
	if _, err := s.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	if errors.Is(result, ErrUnsupportedContent) {
		m.logger.InfoContext(ctx, "Unsupported content ignored", "chat_id", chatID)
		return nil
	}
	return result
}
