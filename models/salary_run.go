package models

import (
	"time"
)

// SalaryRun records one bulk income-role payout for a guild.
type SalaryRun struct {
	ID               int64     `db:"id"`
	GuildID          int64     `db:"guild_id"`
	RunDate          time.Time `db:"run_date"`
	TotalDistributed int64     `db:"total_distributed"`
	MembersPaid      int       `db:"members_paid"`
	CreatedAt        time.Time `db:"created_at"`
}
