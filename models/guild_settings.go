package models

import (
	"time"
)

// IncomeResetPolicy controls how often income-role salaries may be claimed.
type IncomeResetPolicy string

const (
	// IncomeResetDaily allows one claim per calendar day.
	IncomeResetDaily IncomeResetPolicy = "daily_reset"
	// IncomeResetAccumulate never rate-limits claims. Operators are warned
	// when selecting it.
	IncomeResetAccumulate IncomeResetPolicy = "accumulate"
)

// GuildSettings represents per-guild configuration settings. Created with
// defaults on first reference.
type GuildSettings struct {
	GuildID               int64             `db:"guild_id"`
	Prefix                string            `db:"prefix"`
	CurrencyEmoji         string            `db:"currency_emoji"`
	PassiveChatIncome     int64             `db:"passive_chat_income"`
	IncomeReset           IncomeResetPolicy `db:"income_reset"`
	LastGlobalIncomeReset time.Time         `db:"last_global_income_reset"`
}
