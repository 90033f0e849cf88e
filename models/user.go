package models

import (
	"time"
)

// User represents a guild member's economy account. Users are scoped to a
// guild; the same Discord ID in two guilds is two independent rows.
type User struct {
	UserID    int64     `db:"user_id"`
	GuildID   int64     `db:"guild_id"`
	Cash      int64     `db:"cash"`
	Bank      int64     `db:"bank"`
	XP        int64     `db:"xp"`
	Level     int64     `db:"level"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// TotalBalance returns cash plus bank.
func (u *User) TotalBalance() int64 {
	return u.Cash + u.Bank
}

// WealthKey selects the column a wealth leaderboard is ordered by.
type WealthKey string

const (
	WealthKeyCash  WealthKey = "cash"
	WealthKeyBank  WealthKey = "bank"
	WealthKeyTotal WealthKey = "total"
)

// LeaderboardEntry is one row of a wealth or XP leaderboard.
type LeaderboardEntry struct {
	Rank   int64
	UserID int64
	Cash   int64
	Bank   int64
	XP     int64
	Level  int64
}

// EconomyStats aggregates a guild's economy.
type EconomyStats struct {
	Users       int64
	TotalCash   int64
	TotalBank   int64
	TotalWealth int64
	RichestID   int64
	AvgWealth   int64
}
