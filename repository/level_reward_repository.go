package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"treasurer/database"
	"treasurer/models"

	"github.com/jackc/pgx/v5"
)

// LevelRewardRepository implements the service.LevelRewardRepository interface
type LevelRewardRepository struct {
	q queryable
}

// NewLevelRewardRepository creates a new level reward repository
func NewLevelRewardRepository(db *database.DB) *LevelRewardRepository {
	return &LevelRewardRepository{q: db.Pool}
}

func newLevelRewardRepositoryWithTx(tx queryable) *LevelRewardRepository {
	return &LevelRewardRepository{q: tx}
}

func scanLevelReward(row pgx.Row) (*models.LevelReward, error) {
	var (
		reward              models.LevelReward
		addJSON, removeJSON []byte
		itemsJSON           []byte
	)
	err := row.Scan(&reward.GuildID, &reward.Level, &reward.Money, &addJSON, &removeJSON, &itemsJSON)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(addJSON, &reward.RolesAdd); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reward roles: %w", err)
	}
	if err := json.Unmarshal(removeJSON, &reward.RolesRemove); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reward roles: %w", err)
	}
	if err := json.Unmarshal(itemsJSON, &reward.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reward items: %w", err)
	}
	return &reward, nil
}

// Upsert creates or replaces the reward for a level.
func (r *LevelRewardRepository) Upsert(ctx context.Context, reward *models.LevelReward) error {
	if reward.RolesAdd == nil {
		reward.RolesAdd = []int64{}
	}
	if reward.RolesRemove == nil {
		reward.RolesRemove = []int64{}
	}
	if reward.Items == nil {
		reward.Items = map[string]int64{}
	}
	addJSON, err := json.Marshal(reward.RolesAdd)
	if err != nil {
		return fmt.Errorf("failed to marshal reward roles: %w", err)
	}
	removeJSON, err := json.Marshal(reward.RolesRemove)
	if err != nil {
		return fmt.Errorf("failed to marshal reward roles: %w", err)
	}
	itemsJSON, err := json.Marshal(reward.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal reward items: %w", err)
	}

	query := `
		INSERT INTO level_rewards (guild_id, level, money, roles_add, roles_remove, items)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (guild_id, level) DO UPDATE
		SET money = EXCLUDED.money, roles_add = EXCLUDED.roles_add,
		    roles_remove = EXCLUDED.roles_remove, items = EXCLUDED.items
	`
	if _, err := r.q.Exec(ctx, query, reward.GuildID, reward.Level, reward.Money, addJSON, removeJSON, itemsJSON); err != nil {
		return fmt.Errorf("failed to upsert level reward %d in guild %d: %w", reward.Level, reward.GuildID, err)
	}
	return nil
}

// Get retrieves the reward for a level. Returns nil when none is configured.
func (r *LevelRewardRepository) Get(ctx context.Context, guildID, level int64) (*models.LevelReward, error) {
	query := `
		SELECT guild_id, level, money, roles_add, roles_remove, items
		FROM level_rewards
		WHERE guild_id = $1 AND level = $2
	`
	reward, err := scanLevelReward(r.q.QueryRow(ctx, query, guildID, level))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get level reward %d in guild %d: %w", level, guildID, err)
	}
	return reward, nil
}

// ListByGuild returns all configured rewards ascending by level.
func (r *LevelRewardRepository) ListByGuild(ctx context.Context, guildID int64) ([]*models.LevelReward, error) {
	query := `
		SELECT guild_id, level, money, roles_add, roles_remove, items
		FROM level_rewards
		WHERE guild_id = $1
		ORDER BY level
	`
	rows, err := r.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list level rewards for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var rewards []*models.LevelReward
	for rows.Next() {
		reward, err := scanLevelReward(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan level reward: %w", err)
		}
		rewards = append(rewards, reward)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate level rewards: %w", err)
	}
	return rewards, nil
}

// Delete removes the reward for a level.
func (r *LevelRewardRepository) Delete(ctx context.Context, guildID, level int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM level_rewards WHERE guild_id = $1 AND level = $2`, guildID, level)
	if err != nil {
		return fmt.Errorf("failed to delete level reward %d in guild %d: %w", level, guildID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("level reward %d in guild %d not found", level, guildID)
	}
	return nil
}
