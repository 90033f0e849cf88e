package repository

import (
	"context"
	"fmt"

	"treasurer/database"
	"treasurer/models"
)

// WarningRepository implements the service.WarningRepository interface
type WarningRepository struct {
	q queryable
}

// NewWarningRepository creates a new warning repository
func NewWarningRepository(db *database.DB) *WarningRepository {
	return &WarningRepository{q: db.Pool}
}

func newWarningRepositoryWithTx(tx queryable) *WarningRepository {
	return &WarningRepository{q: tx}
}

// Append inserts a warning and fills its generated ID and timestamp.
func (r *WarningRepository) Append(ctx context.Context, w *models.Warning) error {
	query := `
		INSERT INTO warnings (guild_id, user_id, moderator_id, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query, w.GuildID, w.UserID, w.ModeratorID, w.Reason).Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append warning for user %d in guild %d: %w", w.UserID, w.GuildID, err)
	}
	return nil
}

// ListByUser returns a user's warnings, most recent first.
func (r *WarningRepository) ListByUser(ctx context.Context, guildID, userID int64) ([]*models.Warning, error) {
	query := `
		SELECT id, guild_id, user_id, moderator_id, reason, created_at
		FROM warnings
		WHERE guild_id = $1 AND user_id = $2
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.q.Query(ctx, query, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list warnings for user %d in guild %d: %w", userID, guildID, err)
	}
	defer rows.Close()

	var warnings []*models.Warning
	for rows.Next() {
		var w models.Warning
		if err := rows.Scan(&w.ID, &w.GuildID, &w.UserID, &w.ModeratorID, &w.Reason, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan warning: %w", err)
		}
		warnings = append(warnings, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate warnings: %w", err)
	}
	return warnings, nil
}

// CountByUser returns how many warnings a user has.
func (r *WarningRepository) CountByUser(ctx context.Context, guildID, userID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM warnings WHERE guild_id = $1 AND user_id = $2`
	if err := r.q.QueryRow(ctx, query, guildID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count warnings for user %d in guild %d: %w", userID, guildID, err)
	}
	return count, nil
}

// ClearByUser removes every warning for a user. Clearing is total.
func (r *WarningRepository) ClearByUser(ctx context.Context, guildID, userID int64) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM warnings WHERE guild_id = $1 AND user_id = $2`, guildID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear warnings for user %d in guild %d: %w", userID, guildID, err)
	}
	return result.RowsAffected(), nil
}
