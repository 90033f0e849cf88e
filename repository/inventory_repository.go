package repository

import (
	"context"
	"fmt"

	"treasurer/database"
	"treasurer/models"
)

// InventoryRepository implements the service.InventoryRepository interface
type InventoryRepository struct {
	q queryable
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *database.DB) *InventoryRepository {
	return &InventoryRepository{q: db.Pool}
}

func newInventoryRepositoryWithTx(tx queryable) *InventoryRepository {
	return &InventoryRepository{q: tx}
}

// Quantity returns how many of an item the user holds. Zero on miss.
func (r *InventoryRepository) Quantity(ctx context.Context, userID, guildID, itemID int64) (int64, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM user_inventory
		WHERE user_id = $1 AND guild_id = $2 AND item_id = $3
	`
	var qty int64
	if err := r.q.QueryRow(ctx, query, userID, guildID, itemID).Scan(&qty); err != nil {
		return 0, fmt.Errorf("failed to get inventory quantity for user %d item %d: %w", userID, itemID, err)
	}
	return qty, nil
}

// Add credits qty of an item to the user, creating the row on first touch.
func (r *InventoryRepository) Add(ctx context.Context, userID, guildID, itemID, qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	query := `
		INSERT INTO user_inventory (user_id, guild_id, item_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, guild_id, item_id)
		DO UPDATE SET quantity = user_inventory.quantity + EXCLUDED.quantity
	`
	if _, err := r.q.Exec(ctx, query, userID, guildID, itemID, qty); err != nil {
		return fmt.Errorf("failed to add inventory for user %d item %d: %w", userID, itemID, err)
	}
	return nil
}

// Remove debits qty of an item, clamping at zero, and deletes the row when
// it hits zero. An over-removal beyond zero is a no-op.
func (r *InventoryRepository) Remove(ctx context.Context, userID, guildID, itemID, qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	query := `
		UPDATE user_inventory
		SET quantity = GREATEST(0, quantity - $4)
		WHERE user_id = $1 AND guild_id = $2 AND item_id = $3
	`
	if _, err := r.q.Exec(ctx, query, userID, guildID, itemID, qty); err != nil {
		return fmt.Errorf("failed to remove inventory for user %d item %d: %w", userID, itemID, err)
	}
	cleanup := `
		DELETE FROM user_inventory
		WHERE user_id = $1 AND guild_id = $2 AND item_id = $3 AND quantity = 0
	`
	if _, err := r.q.Exec(ctx, cleanup, userID, guildID, itemID); err != nil {
		return fmt.Errorf("failed to clean up empty inventory row for user %d item %d: %w", userID, itemID, err)
	}
	return nil
}

// RemoveExact debits exactly qty, failing without change when the user holds
// fewer. Used by give, where a partial debit must not happen.
func (r *InventoryRepository) RemoveExact(ctx context.Context, userID, guildID, itemID, qty int64) (bool, error) {
	if qty <= 0 {
		return false, fmt.Errorf("quantity must be positive")
	}
	query := `
		UPDATE user_inventory
		SET quantity = quantity - $4
		WHERE user_id = $1 AND guild_id = $2 AND item_id = $3 AND quantity >= $4
	`
	result, err := r.q.Exec(ctx, query, userID, guildID, itemID, qty)
	if err != nil {
		return false, fmt.Errorf("failed to remove inventory for user %d item %d: %w", userID, itemID, err)
	}
	if result.RowsAffected() == 0 {
		return false, nil
	}
	cleanup := `
		DELETE FROM user_inventory
		WHERE user_id = $1 AND guild_id = $2 AND item_id = $3 AND quantity = 0
	`
	if _, err := r.q.Exec(ctx, cleanup, userID, guildID, itemID); err != nil {
		return false, fmt.Errorf("failed to clean up empty inventory row for user %d item %d: %w", userID, itemID, err)
	}
	return true, nil
}

// ListByUser returns the user's inventory with item names, largest holdings
// first.
func (r *InventoryRepository) ListByUser(ctx context.Context, userID, guildID int64) ([]*models.InventoryEntry, error) {
	query := `
		SELECT ui.user_id, ui.guild_id, i.name, ui.quantity
		FROM user_inventory ui
		JOIN items i ON i.id = ui.item_id
		WHERE ui.user_id = $1 AND ui.guild_id = $2
		ORDER BY ui.quantity DESC, LOWER(i.name)
	`
	rows, err := r.q.Query(ctx, query, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory for user %d: %w", userID, err)
	}
	defer rows.Close()

	var entries []*models.InventoryEntry
	for rows.Next() {
		var e models.InventoryEntry
		if err := rows.Scan(&e.UserID, &e.GuildID, &e.ItemName, &e.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan inventory entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inventory: %w", err)
	}
	return entries, nil
}
