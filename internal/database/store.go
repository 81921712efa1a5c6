package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations.
// Methods should accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// TouchUser creates the user on first /start, otherwise bumps the
	// start counter and refreshes last-seen.
	TouchUser(ctx context.Context, userID int64) error

	// GetUser retrieves a user by ID. Returns nil, nil if not found.
	GetUser(ctx context.Context, userID int64) (*User, error)

	// RecordInteraction appends one row to the interaction log.
	RecordInteraction(ctx context.Context, userID int64) error

	// RecordSocialNetworkRequest logs a press on a social network entry.
	RecordSocialNetworkRequest(ctx context.Context, userID int64, networkName string) error

	// RecordPromoRequest logs a press on a book/promo entry.
	RecordPromoRequest(ctx context.Context, userID int64, promoName string) error

	// SaveInboxMessage inserts a suggestion and sets its ID.
	SaveInboxMessage(ctx context.Context, msg *InboxMessage) error

	// GetInboxMessage retrieves a suggestion by ID. Returns nil, nil if not found.
	GetInboxMessage(ctx context.Context, id int64) (*InboxMessage, error)

	// ListInboxMessages returns suggestions in insertion order.
	ListInboxMessages(ctx context.Context, unrepliedOnly bool) ([]InboxMessage, error)

	// MarkReplied flips the replied flag. It reports false when the message
	// does not exist or was already replied.
	MarkReplied(ctx context.Context, id int64) (bool, error)

	// CountUnreplied returns the number of suggestions still waiting for a reply.
	CountUnreplied(ctx context.Context) (int, error)

	// GetUsageCounts gathers the totals and today counters for the stats report.
	GetUsageCounts(ctx context.Context) (*UsageCounts, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) TouchUser(ctx context.Context, userID int64) error {
	if userID == 0 {
		return fmt.Errorf("user_id cannot be zero")
	}

	query := `
        INSERT INTO users (id, timesStarted, lastSeen)
        VALUES (?, 1, CURRENT_TIMESTAMP)
        ON CONFLICT(id) DO UPDATE SET
            timesStarted = timesStarted + 1,
            lastSeen = CURRENT_TIMESTAMP;
    `
	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		s.logger.ErrorContext(ctx, "Error updating user data", "user_id", userID, "error", err)
		return fmt.Errorf("failed to update user %d: %w", userID, err)
	}

	s.logger.DebugContext(ctx, "User data updated", "user_id", userID)
	return nil
}

func (s *sqlxStore) GetUser(ctx context.Context, userID int64) (*User, error) {
	var user User
	err := s.db.GetContext(ctx, &user, `SELECT id, timesStarted, lastSeen FROM users WHERE id = ?`, userID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil

	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching user", "user_id", userID, "error", err)
		return nil, err

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting user by ID", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	return &user, nil
}

func (s *sqlxStore) RecordInteraction(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interactions (userId, interactionTime) VALUES (?, CURRENT_TIMESTAMP)`, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error recording interaction", "user_id", userID, "error", err)
		return fmt.Errorf("failed to record interaction for user %d: %w", userID, err)
	}
	return nil
}

func (s *sqlxStore) RecordSocialNetworkRequest(ctx context.Context, userID int64, networkName string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO socialNetworkRequests (userId, networkName, requestTime) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		userID, networkName)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error recording social network request",
			"user_id", userID, "network", networkName, "error", err)
		return fmt.Errorf("failed to record social network request %q: %w", networkName, err)
	}
	return nil
}

func (s *sqlxStore) RecordPromoRequest(ctx context.Context, userID int64, promoName string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO promoCodeRequests (userId, promoName, requestTime) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		userID, promoName)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error recording promo request",
			"user_id", userID, "promo", promoName, "error", err)
		return fmt.Errorf("failed to record promo request %q: %w", promoName, err)
	}
	return nil
}

// SaveInboxMessage validates the single-content rule before inserting.
func (s *sqlxStore) SaveInboxMessage(ctx context.Context, msg *InboxMessage) error {
	if msg == nil {
		return fmt.Errorf("cannot save nil message")
	}
	if msg.UserID == 0 {
		return fmt.Errorf("message must have a non-zero user_id")
	}
	if msg.Message.Valid == msg.MediaID.Valid {
		return fmt.Errorf("message must carry exactly one of text or media")
	}
	if msg.MediaID.Valid && !msg.MediaType.Valid {
		return fmt.Errorf("media message must have a media type")
	}

	query := `
        INSERT INTO messages (userId, message, media_type, media_id, first_name, username)
        VALUES (:userId, :message, :media_type, :media_id, :first_name, :username);
    `
	result, err := s.db.NamedExecContext(ctx, query, msg)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving inbox message", "user_id", msg.UserID, "error", err)
		return fmt.Errorf("failed to save inbox message from user %d: %w", msg.UserID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inbox message id: %w", err)
	}
	msg.ID = id

	s.logger.DebugContext(ctx, "Inbox message saved", "user_id", msg.UserID, "message_id", msg.ID)
	return nil
}

func (s *sqlxStore) GetInboxMessage(ctx context.Context, id int64) (*InboxMessage, error) {
	var msg InboxMessage
	query := `SELECT id, userId, message, media_type, media_id, replied, first_name, username, timestamp
	          FROM messages WHERE id = ?`

	err := s.db.GetContext(ctx, &msg, query, id)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No inbox message found", "message_id", id)
		return nil, nil

	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching inbox message",
			"message_id", id, "error", err)
		return nil, err

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting inbox message", "message_id", id, "error", err)
		return nil, fmt.Errorf("failed to get inbox message %d: %w", id, err)
	}

	return &msg, nil
}

func (s *sqlxStore) ListInboxMessages(ctx context.Context, unrepliedOnly bool) ([]InboxMessage, error) {
	query := `SELECT id, userId, message, media_type, media_id, replied, first_name, username, timestamp
	          FROM messages`
	if unrepliedOnly {
		query += ` WHERE replied = 0`
	}
	query += ` ORDER BY id ASC`

	var messages []InboxMessage
	if err := s.db.SelectContext(ctx, &messages, query); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			s.logger.WarnContext(ctx, "Context timeout or cancellation while listing inbox", "error", err)
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Error listing inbox messages", "unreplied_only", unrepliedOnly, "error", err)
		return nil, fmt.Errorf("failed to list inbox messages: %w", err)
	}

	s.logger.DebugContext(ctx, "Listed inbox messages", "count", len(messages), "unreplied_only", unrepliedOnly)
	return messages, nil
}

// MarkReplied only touches rows that are still unreplied, so the flag never
// flips back and a second call is a no-op.
func (s *sqlxStore) MarkReplied(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `UPDATE messages SET replied = 1 WHERE id = ? AND replied = 0`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error marking message replied", "message_id", id, "error", err)
		return false, fmt.Errorf("failed to mark message %d replied: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not get affected row count", "message_id", id, "error", err)
		return false, nil
	}
	return affected == 1, nil
}

func (s *sqlxStore) CountUnreplied(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages WHERE replied = 0`); err != nil {
		s.logger.ErrorContext(ctx, "Error counting unreplied messages", "error", err)
		return 0, fmt.Errorf("failed to count unreplied messages: %w", err)
	}
	return count, nil
}

func (s *sqlxStore) GetUsageCounts(ctx context.Context) (*UsageCounts, error) {
	counts := &UsageCounts{}

	scalars := []struct {
		dest  *int
		query string
	}{
		{&counts.TotalStarts, `SELECT COALESCE(SUM(timesStarted), 0) FROM users`},
		{&counts.TodayStarts, `SELECT COUNT(*) FROM users WHERE date(lastSeen) = date('now')`},
		{&counts.TotalInteractions, `SELECT COUNT(*) FROM interactions`},
		{&counts.TodayInteractions, `SELECT COUNT(*) FROM interactions WHERE date(interactionTime) = date('now')`},
	}
	for _, sc := range scalars {
		if err := s.db.GetContext(ctx, sc.dest, sc.query); err != nil {
			s.logger.ErrorContext(ctx, "Error reading usage counter", "error", err)
			return nil, fmt.Errorf("failed to read usage counter: %w", err)
		}
	}

	grouped := []struct {
		dest  *map[string]int
		query string
	}{
		{&counts.SocialTotal, `SELECT networkName AS name, COUNT(*) AS total
		    FROM socialNetworkRequests GROUP BY networkName`},
		{&counts.SocialToday, `SELECT networkName AS name, COUNT(*) AS total
		    FROM socialNetworkRequests WHERE date(requestTime) = date('now') GROUP BY networkName`},
		{&counts.PromoTotal, `SELECT promoName AS name, COUNT(*) AS total
		    FROM promoCodeRequests GROUP BY promoName`},
		{&counts.PromoToday, `SELECT promoName AS name, COUNT(*) AS total
		    FROM promoCodeRequests WHERE date(requestTime) = date('now') GROUP BY promoName`},
	}
	for _, g := range grouped {
		var rows []nameCount
		if err := s.db.SelectContext(ctx, &rows, g.query); err != nil {
			s.logger.ErrorContext(ctx, "Error reading per-category counters", "error", err)
			return nil, fmt.Errorf("failed to read per-category counters: %w", err)
		}
		m := make(map[string]int, len(rows))
		for _, r := range rows {
			m[r.Name] = r.Total
		}
		*g.dest = m
	}

	return counts, nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)

	default:
		s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	}

	return nil
}
