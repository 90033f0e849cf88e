package repository

import (
	"context"
	"fmt"
	"time"

	"treasurer/database"

	"github.com/jackc/pgx/v5"
)

// SalaryClaimRepository implements the service.SalaryClaimRepository interface
type SalaryClaimRepository struct {
	q queryable
}

// NewSalaryClaimRepository creates a new salary claim repository
func NewSalaryClaimRepository(db *database.DB) *SalaryClaimRepository {
	return &SalaryClaimRepository{q: db.Pool}
}

func newSalaryClaimRepositoryWithTx(tx queryable) *SalaryClaimRepository {
	return &SalaryClaimRepository{q: tx}
}

// LastClaimed returns when the user last claimed role salary, nil if never.
func (r *SalaryClaimRepository) LastClaimed(ctx context.Context, userID, guildID int64) (*time.Time, error) {
	query := `SELECT last_claimed FROM salary_claims WHERE user_id = $1 AND guild_id = $2`
	var ts time.Time
	err := r.q.QueryRow(ctx, query, userID, guildID).Scan(&ts)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get salary claim for user %d in guild %d: %w", userID, guildID, err)
	}
	return &ts, nil
}

// SetLastClaimed stamps the user's last claim time. Last write wins.
func (r *SalaryClaimRepository) SetLastClaimed(ctx context.Context, userID, guildID int64, ts time.Time) error {
	query := `
		INSERT INTO salary_claims (user_id, guild_id, last_claimed)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, guild_id) DO UPDATE SET last_claimed = EXCLUDED.last_claimed
	`
	if _, err := r.q.Exec(ctx, query, userID, guildID, ts); err != nil {
		return fmt.Errorf("failed to set salary claim for user %d in guild %d: %w", userID, guildID, err)
	}
	return nil
}
