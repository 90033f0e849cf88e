package repository

import (
	"context"
	"fmt"

	"treasurer/database"
	"treasurer/models"
)

// BalanceHistoryRepository implements the service.BalanceHistoryRepository interface
type BalanceHistoryRepository struct {
	q queryable
}

// NewBalanceHistoryRepository creates a new balance history repository
func NewBalanceHistoryRepository(db *database.DB) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{q: db.Pool}
}

// Record appends one audit trail row
func (r *BalanceHistoryRepository) Record(ctx context.Context, h *models.BalanceHistory) error {
	query := `
		INSERT INTO balance_history (user_id, guild_id, reason, cash_change, bank_change, new_cash, new_bank)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q.Exec(ctx, query,
		h.UserID, h.GuildID, h.Reason, h.CashChange, h.BankChange, h.NewCash, h.NewBank)
	if err != nil {
		return fmt.Errorf("failed to record balance history for user %d: %w", h.UserID, err)
	}
	return nil
}

// ListRecent returns a user's newest balance changes, newest first
func (r *BalanceHistoryRepository) ListRecent(ctx context.Context, userID, guildID int64, limit int) ([]*models.BalanceHistory, error) {
	query := `
		SELECT id, user_id, guild_id, reason, cash_change, bank_change, new_cash, new_bank, created_at
		FROM balance_history
		WHERE user_id = $1 AND guild_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`
	rows, err := r.q.Query(ctx, query, userID, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list balance history for user %d: %w", userID, err)
	}
	defer rows.Close()

	var entries []*models.BalanceHistory
	for rows.Next() {
		var h models.BalanceHistory
		err := rows.Scan(&h.ID, &h.UserID, &h.GuildID, &h.Reason,
			&h.CashChange, &h.BankChange, &h.NewCash, &h.NewBank, &h.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance history row: %w", err)
		}
		entries = append(entries, &h)
	}
	return entries, rows.Err()
}
