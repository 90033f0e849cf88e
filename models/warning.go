package models

import (
	"time"
)

// Warning is one entry in a guild's moderation ledger. Append-only until
// explicitly cleared.
type Warning struct {
	ID          int64     `db:"id"`
	GuildID     int64     `db:"guild_id"`
	UserID      int64     `db:"user_id"`
	ModeratorID int64     `db:"moderator_id"`
	Reason      string    `db:"reason"`
	CreatedAt   time.Time `db:"created_at"`
}
