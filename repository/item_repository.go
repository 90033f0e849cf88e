package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"treasurer/database"
	"treasurer/models"

	"github.com/jackc/pgx/v5"
)

// ItemRepository implements the service.ItemRepository interface
type ItemRepository struct {
	q queryable
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *database.DB) *ItemRepository {
	return &ItemRepository{q: db.Pool}
}

func newItemRepositoryWithTx(tx queryable) *ItemRepository {
	return &ItemRepository{q: tx}
}

const itemColumns = `id, guild_id, name, description, emoji, price, category, usable, effects,
	stock, max_per_user, max_per_tx, max_balance, expires_at,
	required_roles, excluded_roles, granted_roles, revoked_roles,
	image_url, purchase_message, created_at, updated_at`

func scanItem(row pgx.Row) (*models.Item, error) {
	var (
		item                       models.Item
		effectsJSON                []byte
		requiredJSON, excludedJSON []byte
		grantedJSON, revokedJSON   []byte
	)
	err := row.Scan(
		&item.ID, &item.GuildID, &item.Name, &item.Description, &item.Emoji,
		&item.Price, &item.Category, &item.Usable, &effectsJSON,
		&item.Stock, &item.MaxPerUser, &item.MaxPerTx, &item.MaxBalance, &item.ExpiresAt,
		&requiredJSON, &excludedJSON, &grantedJSON, &revokedJSON,
		&item.ImageURL, &item.PurchaseMessage, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(effectsJSON, &item.Effects); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item effects: %w", err)
	}
	roleLists := []struct {
		raw []byte
		dst *[]int64
	}{
		{requiredJSON, &item.RequiredRoles},
		{excludedJSON, &item.ExcludedRoles},
		{grantedJSON, &item.GrantedRoles},
		{revokedJSON, &item.RevokedRoles},
	}
	for _, rl := range roleLists {
		if err := json.Unmarshal(rl.raw, rl.dst); err != nil {
			return nil, fmt.Errorf("failed to unmarshal item roles: %w", err)
		}
	}
	return &item, nil
}

func marshalItemJSON(item *models.Item) (effects, required, excluded, granted, revoked []byte, err error) {
	if item.Effects == nil {
		item.Effects = models.EffectMap{}
	}
	if effects, err = json.Marshal(item.Effects); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal item effects: %w", err)
	}
	marshalRoles := func(roles []int64) ([]byte, error) {
		if roles == nil {
			roles = []int64{}
		}
		return json.Marshal(roles)
	}
	if required, err = marshalRoles(item.RequiredRoles); err != nil {
		return nil, nil, nil, nil, nil, err
	}
	if excluded, err = marshalRoles(item.ExcludedRoles); err != nil {
		return nil, nil, nil, nil, nil, err
	}
	if granted, err = marshalRoles(item.GrantedRoles); err != nil {
		return nil, nil, nil, nil, nil, err
	}
	if revoked, err = marshalRoles(item.RevokedRoles); err != nil {
		return nil, nil, nil, nil, nil, err
	}
	return effects, required, excluded, granted, revoked, nil
}

// Create inserts a catalog entry. Names are unique per guild,
// case-insensitively; a duplicate returns an error from the unique index.
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	effects, required, excluded, granted, revoked, err := marshalItemJSON(item)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO items
		(guild_id, name, description, emoji, price, category, usable, effects,
		 stock, max_per_user, max_per_tx, max_balance, expires_at,
		 required_roles, excluded_roles, granted_roles, revoked_roles,
		 image_url, purchase_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING ` + itemColumns + `
	`
	created, err := scanItem(r.q.QueryRow(ctx, query,
		item.GuildID, item.Name, item.Description, item.Emoji, item.Price,
		item.Category, item.Usable, effects,
		item.Stock, item.MaxPerUser, item.MaxPerTx, item.MaxBalance, item.ExpiresAt,
		required, excluded, granted, revoked,
		item.ImageURL, item.PurchaseMessage,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create item %q in guild %d: %w", item.Name, item.GuildID, err)
	}
	return created, nil
}

// Update rewrites a catalog entry by ID.
func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	effects, required, excluded, granted, revoked, err := marshalItemJSON(item)
	if err != nil {
		return err
	}

	query := `
		UPDATE items
		SET name = $2, description = $3, emoji = $4, price = $5, category = $6,
		    usable = $7, effects = $8, stock = $9, max_per_user = $10,
		    max_per_tx = $11, max_balance = $12, expires_at = $13,
		    required_roles = $14, excluded_roles = $15, granted_roles = $16,
		    revoked_roles = $17, image_url = $18, purchase_message = $19,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.q.Exec(ctx, query,
		item.ID, item.Name, item.Description, item.Emoji, item.Price, item.Category,
		item.Usable, effects, item.Stock, item.MaxPerUser, item.MaxPerTx,
		item.MaxBalance, item.ExpiresAt, required, excluded, granted, revoked,
		item.ImageURL, item.PurchaseMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to update item %d: %w", item.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %d not found", item.ID)
	}
	return nil
}

// GetByName retrieves a catalog entry by case-insensitive name. Returns nil
// on miss.
func (r *ItemRepository) GetByName(ctx context.Context, guildID int64, name string) (*models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE guild_id = $1 AND LOWER(name) = $2
	`
	item, err := scanItem(r.q.QueryRow(ctx, query, guildID, models.Key(name)))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item %q in guild %d: %w", name, guildID, err)
	}
	return item, nil
}

// ListByGuild returns the guild catalog, optionally filtered by category.
func (r *ItemRepository) ListByGuild(ctx context.Context, guildID int64, category string) ([]*models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE guild_id = $1 AND ($2 = '' OR category = $2)
		ORDER BY LOWER(name)
	`
	rows, err := r.q.Query(ctx, query, guildID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list items for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

// Delete removes a catalog entry. Inventory rows cascade via foreign key.
func (r *ItemRepository) Delete(ctx context.Context, itemID int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete item %d: %w", itemID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %d not found", itemID)
	}
	return nil
}

// DecrementStock reduces a numeric stock count. Returns false when the item
// has numeric stock below qty; items with NULL stock always succeed.
func (r *ItemRepository) DecrementStock(ctx context.Context, itemID, qty int64) (bool, error) {
	query := `
		UPDATE items
		SET stock = CASE WHEN stock IS NULL THEN NULL ELSE stock - $2 END,
		    updated_at = NOW()
		WHERE id = $1 AND (stock IS NULL OR stock >= $2)
	`
	result, err := r.q.Exec(ctx, query, itemID, qty)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock for item %d: %w", itemID, err)
	}
	return result.RowsAffected() > 0, nil
}
