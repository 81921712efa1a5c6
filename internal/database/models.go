package database

import (
	"database/sql"
	"time"
)

// User is a bot user registered through /start.
type User struct {
	ID           int64     `db:"id"`
	TimesStarted int       `db:"timesStarted"`
	LastSeen     time.Time `db:"lastSeen"`
}

// InboxMessage is a suggestion a user sent to the channel admin.
// Exactly one of Message and MediaID is valid.
type InboxMessage struct {
	ID        int64          `db:"id"`
	UserID    int64          `db:"userId"`
	Message   sql.NullString `db:"message"`
	MediaType sql.NullString `db:"media_type"`
	MediaID   sql.NullString `db:"media_id"`
	Replied   bool           `db:"replied"`
	FirstName sql.NullString `db:"first_name"`
	Username  sql.NullString `db:"username"`
	Timestamp time.Time      `db:"timestamp"`
}

// HasText reports whether the message carries a text body rather than media.
func (m *InboxMessage) HasText() bool {
	return m.Message.Valid
}

// UsageCounts holds the raw counters behind the admin statistics report.
// Per-name maps are keyed by catalog entry name.
type UsageCounts struct {
	TotalStarts       int
	TodayStarts       int
	TotalInteractions int
	TodayInteractions int

	SocialTotal map[string]int
	SocialToday map[string]int
	PromoTotal  map[string]int
	PromoToday  map[string]int
}

// nameCount is a scan target for grouped per-name counts.
type nameCount struct {
	Name  string `db:"name"`
	Total int    `db:"total"`
}
