package models

// InventoryEntry tracks how many of an item a user holds. Rows are removed
// when quantity reaches zero.
type InventoryEntry struct {
	UserID   int64  `db:"user_id"`
	GuildID  int64  `db:"guild_id"`
	ItemName string `db:"item_name"`
	Quantity int64  `db:"quantity"`
}
