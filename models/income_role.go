package models

// IncomeRole maps a guild role to a recurring daily bank credit for its
// members.
type IncomeRole struct {
	GuildID     int64 `db:"guild_id"`
	RoleID      int64 `db:"role_id"`
	DailyIncome int64 `db:"income"`
}
