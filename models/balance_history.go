package models

import (
	"time"
)

// BalanceHistory is one row of the per-user balance audit trail. Rows are
// written asynchronously from balance change events; the trail is advisory,
// not transactional with the change it records.
type BalanceHistory struct {
	ID         int64     `db:"id"`
	UserID     int64     `db:"user_id"`
	GuildID    int64     `db:"guild_id"`
	Reason     string    `db:"reason"`
	CashChange int64     `db:"cash_change"`
	BankChange int64     `db:"bank_change"`
	NewCash    int64     `db:"new_cash"`
	NewBank    int64     `db:"new_bank"`
	CreatedAt  time.Time `db:"created_at"`
}
