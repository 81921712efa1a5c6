// Package migrations embeds the SQL files that define the bot's SQLite schema.
package migrations

import "embed"

// FS holds the embedded SQL migration files.
//
//go:embed *.sql
var FS embed.FS
