package repository

import (
	"context"
	"fmt"
	"time"

	"treasurer/database"

	"github.com/jackc/pgx/v5"
)

// CooldownRepository implements the service.CooldownRepository interface
type CooldownRepository struct {
	q queryable
}

// NewCooldownRepository creates a new cooldown repository
func NewCooldownRepository(db *database.DB) *CooldownRepository {
	return &CooldownRepository{q: db.Pool}
}

func newCooldownRepositoryWithTx(tx queryable) *CooldownRepository {
	return &CooldownRepository{q: tx}
}

// Set records when the user may next run the action. Last write wins.
func (r *CooldownRepository) Set(ctx context.Context, userID, guildID int64, action string, expiresAt time.Time) error {
	query := `
		INSERT INTO cooldowns (user_id, guild_id, command_name, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, guild_id, command_name) DO UPDATE SET expires_at = EXCLUDED.expires_at
	`
	if _, err := r.q.Exec(ctx, query, userID, guildID, action, expiresAt); err != nil {
		return fmt.Errorf("failed to set cooldown %s for user %d: %w", action, userID, err)
	}
	return nil
}

// Remaining returns how long until the action unlocks, zero when it is not
// on cooldown. Expired rows encountered on read are deleted.
func (r *CooldownRepository) Remaining(ctx context.Context, userID, guildID int64, action string, now time.Time) (time.Duration, error) {
	query := `
		SELECT expires_at
		FROM cooldowns
		WHERE user_id = $1 AND guild_id = $2 AND command_name = $3
	`
	var expiresAt time.Time
	err := r.q.QueryRow(ctx, query, userID, guildID, action).Scan(&expiresAt)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to check cooldown %s for user %d: %w", action, userID, err)
	}

	if !expiresAt.After(now) {
		cleanup := `DELETE FROM cooldowns WHERE user_id = $1 AND guild_id = $2 AND command_name = $3`
		if _, err := r.q.Exec(ctx, cleanup, userID, guildID, action); err != nil {
			return 0, fmt.Errorf("failed to delete expired cooldown %s for user %d: %w", action, userID, err)
		}
		return 0, nil
	}
	return expiresAt.Sub(now), nil
}

// DeleteExpired garbage-collects every expired cooldown row.
func (r *CooldownRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM cooldowns WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cooldowns: %w", err)
	}
	return result.RowsAffected(), nil
}
