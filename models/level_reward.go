package models

// LevelReward holds the side effects applied when a user reaches a level.
type LevelReward struct {
	GuildID     int64            `db:"guild_id"`
	Level       int64            `db:"level"`
	Money       int64            `db:"money"`
	RolesAdd    []int64          `db:"roles_add"`
	RolesRemove []int64          `db:"roles_remove"`
	Items       map[string]int64 `db:"items"` // item name -> quantity
}
