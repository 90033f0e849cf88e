package models

import (
	"time"
)

// Cooldown records when a user may next run an action in a guild. Rows whose
// expiry has passed are logically absent and deleted opportunistically.
type Cooldown struct {
	UserID    int64     `db:"user_id"`
	GuildID   int64     `db:"guild_id"`
	Action    string    `db:"command_name"`
	ExpiresAt time.Time `db:"expires_at"`
}
