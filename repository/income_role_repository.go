package repository

import (
	"context"
	"fmt"

	"treasurer/database"
	"treasurer/models"

	"github.com/jackc/pgx/v5"
)

// IncomeRoleRepository implements the service.IncomeRoleRepository interface
type IncomeRoleRepository struct {
	q queryable
}

// NewIncomeRoleRepository creates a new income role repository
func NewIncomeRoleRepository(db *database.DB) *IncomeRoleRepository {
	return &IncomeRoleRepository{q: db.Pool}
}

func newIncomeRoleRepositoryWithTx(tx queryable) *IncomeRoleRepository {
	return &IncomeRoleRepository{q: tx}
}

// Upsert creates or updates the daily income of a role.
func (r *IncomeRoleRepository) Upsert(ctx context.Context, role *models.IncomeRole) error {
	query := `
		INSERT INTO income_roles (guild_id, role_id, income)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, role_id) DO UPDATE SET income = EXCLUDED.income
	`
	if _, err := r.q.Exec(ctx, query, role.GuildID, role.RoleID, role.DailyIncome); err != nil {
		return fmt.Errorf("failed to upsert income role %d in guild %d: %w", role.RoleID, role.GuildID, err)
	}
	return nil
}

// Get retrieves one income role. Returns nil on miss.
func (r *IncomeRoleRepository) Get(ctx context.Context, guildID, roleID int64) (*models.IncomeRole, error) {
	query := `SELECT guild_id, role_id, income FROM income_roles WHERE guild_id = $1 AND role_id = $2`
	var role models.IncomeRole
	err := r.q.QueryRow(ctx, query, guildID, roleID).Scan(&role.GuildID, &role.RoleID, &role.DailyIncome)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get income role %d in guild %d: %w", roleID, guildID, err)
	}
	return &role, nil
}

// ListByGuild returns all income roles of a guild.
func (r *IncomeRoleRepository) ListByGuild(ctx context.Context, guildID int64) ([]*models.IncomeRole, error) {
	query := `SELECT guild_id, role_id, income FROM income_roles WHERE guild_id = $1 ORDER BY income DESC`
	rows, err := r.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list income roles for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var roles []*models.IncomeRole
	for rows.Next() {
		var role models.IncomeRole
		if err := rows.Scan(&role.GuildID, &role.RoleID, &role.DailyIncome); err != nil {
			return nil, fmt.Errorf("failed to scan income role: %w", err)
		}
		roles = append(roles, &role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate income roles: %w", err)
	}
	return roles, nil
}

// Delete removes an income role mapping.
func (r *IncomeRoleRepository) Delete(ctx context.Context, guildID, roleID int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM income_roles WHERE guild_id = $1 AND role_id = $2`, guildID, roleID)
	if err != nil {
		return fmt.Errorf("failed to delete income role %d in guild %d: %w", roleID, guildID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("income role %d in guild %d not found", roleID, guildID)
	}
	return nil
}
