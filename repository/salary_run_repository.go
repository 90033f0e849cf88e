package repository

import (
	"context"
	"fmt"

	"treasurer/database"
	"treasurer/models"

	"github.com/jackc/pgx/v5"
)

// SalaryRunRepository implements the service.SalaryRunRepository interface
type SalaryRunRepository struct {
	q queryable
}

// NewSalaryRunRepository creates a new salary run repository
func NewSalaryRunRepository(db *database.DB) *SalaryRunRepository {
	return &SalaryRunRepository{q: db.Pool}
}

func newSalaryRunRepositoryWithTx(tx queryable) *SalaryRunRepository {
	return &SalaryRunRepository{q: tx}
}

// Record stores the outcome of one bulk payout
func (r *SalaryRunRepository) Record(ctx context.Context, run *models.SalaryRun) (*models.SalaryRun, error) {
	query := `
		INSERT INTO salary_runs (guild_id, run_date, total_distributed, members_paid)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		run.GuildID, run.RunDate, run.TotalDistributed, run.MembersPaid).
		Scan(&run.ID, &run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record salary run for guild %d: %w", run.GuildID, err)
	}
	return run, nil
}

// LastRun returns the most recent payout for a guild, nil when none exists
func (r *SalaryRunRepository) LastRun(ctx context.Context, guildID int64) (*models.SalaryRun, error) {
	query := `
		SELECT id, guild_id, run_date, total_distributed, members_paid, created_at
		FROM salary_runs
		WHERE guild_id = $1
		ORDER BY run_date DESC, id DESC
		LIMIT 1
	`
	var run models.SalaryRun
	err := r.q.QueryRow(ctx, query, guildID).Scan(
		&run.ID, &run.GuildID, &run.RunDate, &run.TotalDistributed, &run.MembersPaid, &run.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last salary run for guild %d: %w", guildID, err)
	}
	return &run, nil
}
