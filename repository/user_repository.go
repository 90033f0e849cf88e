package repository

import (
	"context"
	"fmt"

	"treasurer/database"
	"treasurer/models"

	"github.com/jackc/pgx/v5"
)

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

const userColumns = `user_id, guild_id, cash, bank, xp, level, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.UserID, &u.GuildID, &u.Cash, &u.Bank, &u.XP, &u.Level, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID retrieves a user by ID within a guild. Returns nil on miss.
func (r *UserRepository) GetByID(ctx context.Context, userID, guildID int64) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE user_id = $1 AND guild_id = $2
	`
	user, err := scanUser(r.q.QueryRow(ctx, query, userID, guildID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d in guild %d: %w", userID, guildID, err)
	}
	return user, nil
}

// Create creates a new user with the configured starting cash.
func (r *UserRepository) Create(ctx context.Context, userID, guildID, initialCash int64) (*models.User, error) {
	query := `
		INSERT INTO users (user_id, guild_id, cash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns + `
	`
	user, err := scanUser(r.q.QueryRow(ctx, query, userID, guildID, initialCash))
	if err != nil {
		return nil, fmt.Errorf("failed to create user %d in guild %d: %w", userID, guildID, err)
	}
	return user, nil
}

// AdjustBalances applies cash and bank deltas atomically, clamping both
// purses at zero. This clamp is the single source of negative-balance
// prevention; callers rely on it.
func (r *UserRepository) AdjustBalances(ctx context.Context, userID, guildID, deltaCash, deltaBank int64) (*models.User, error) {
	query := `
		UPDATE users
		SET cash = GREATEST(0, cash + $3),
		    bank = GREATEST(0, bank + $4),
		    updated_at = NOW()
		WHERE user_id = $1 AND guild_id = $2
		RETURNING ` + userColumns + `
	`
	user, err := scanUser(r.q.QueryRow(ctx, query, userID, guildID, deltaCash, deltaBank))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("user %d in guild %d not found", userID, guildID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to adjust balances for user %d: %w", userID, err)
	}
	return user, nil
}

// DeductCash deducts from a user's cash. Returns false with no state change
// when the user holds less than amount.
func (r *UserRepository) DeductCash(ctx context.Context, userID, guildID, amount int64) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("amount must be positive")
	}
	query := `
		UPDATE users
		SET cash = cash - $3, updated_at = NOW()
		WHERE user_id = $1 AND guild_id = $2 AND cash >= $3
	`
	result, err := r.q.Exec(ctx, query, userID, guildID, amount)
	if err != nil {
		return false, fmt.Errorf("failed to deduct cash for user %d: %w", userID, err)
	}
	return result.RowsAffected() > 0, nil
}

// AddXP credits XP and returns the updated user.
func (r *UserRepository) AddXP(ctx context.Context, userID, guildID, delta int64) (*models.User, error) {
	query := `
		UPDATE users
		SET xp = GREATEST(0, xp + $3), updated_at = NOW()
		WHERE user_id = $1 AND guild_id = $2
		RETURNING ` + userColumns + `
	`
	user, err := scanUser(r.q.QueryRow(ctx, query, userID, guildID, delta))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("user %d in guild %d not found", userID, guildID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add xp for user %d: %w", userID, err)
	}
	return user, nil
}

// SetLevel stores a user's level.
func (r *UserRepository) SetLevel(ctx context.Context, userID, guildID, level int64) error {
	query := `
		UPDATE users
		SET level = $3, updated_at = NOW()
		WHERE user_id = $1 AND guild_id = $2
	`
	result, err := r.q.Exec(ctx, query, userID, guildID, level)
	if err != nil {
		return fmt.Errorf("failed to set level for user %d: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d in guild %d not found", userID, guildID)
	}
	return nil
}

// WealthLeaderboard returns one page of the guild's wealth leaderboard,
// ordered by the chosen key descending with user ID as the tiebreak. Users
// with no money at all are filtered out.
func (r *UserRepository) WealthLeaderboard(ctx context.Context, guildID int64, key models.WealthKey, page, perPage int) ([]*models.LeaderboardEntry, error) {
	var orderBy string
	switch key {
	case models.WealthKeyCash:
		orderBy = "cash DESC"
	case models.WealthKeyBank:
		orderBy = "bank DESC"
	case models.WealthKeyTotal:
		orderBy = "(cash + bank) DESC"
	default:
		return nil, fmt.Errorf("unknown wealth key %q", key)
	}

	query := `
		SELECT user_id, cash, bank, xp, level
		FROM users
		WHERE guild_id = $1 AND (cash > 0 OR bank > 0)
		ORDER BY ` + orderBy + `, user_id ASC
		LIMIT $2 OFFSET $3
	`
	offset := (page - 1) * perPage
	rows, err := r.q.Query(ctx, query, guildID, perPage, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get wealth leaderboard for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	return scanLeaderboard(rows, int64(offset))
}

// XPLeaderboard returns one page of the guild's XP leaderboard.
func (r *UserRepository) XPLeaderboard(ctx context.Context, guildID int64, page, perPage int) ([]*models.LeaderboardEntry, error) {
	query := `
		SELECT user_id, cash, bank, xp, level
		FROM users
		WHERE guild_id = $1 AND xp > 0
		ORDER BY xp DESC, user_id ASC
		LIMIT $2 OFFSET $3
	`
	offset := (page - 1) * perPage
	rows, err := r.q.Query(ctx, query, guildID, perPage, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get xp leaderboard for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	return scanLeaderboard(rows, int64(offset))
}

func scanLeaderboard(rows pgx.Rows, offset int64) ([]*models.LeaderboardEntry, error) {
	var entries []*models.LeaderboardEntry
	rank := offset
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Cash, &e.Bank, &e.XP, &e.Level); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		rank++
		e.Rank = rank
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}
	return entries, nil
}

// XPRank returns the one-indexed XP rank: 1 plus the number of users in the
// guild with strictly more XP.
func (r *UserRepository) XPRank(ctx context.Context, userID, guildID int64) (int64, error) {
	query := `
		SELECT 1 + COUNT(*)
		FROM users
		WHERE guild_id = $2
		  AND xp > (SELECT xp FROM users WHERE user_id = $1 AND guild_id = $2)
	`
	var rank int64
	if err := r.q.QueryRow(ctx, query, userID, guildID).Scan(&rank); err != nil {
		return 0, fmt.Errorf("failed to get xp rank for user %d: %w", userID, err)
	}
	return rank, nil
}

// EconomyStats aggregates the guild economy.
func (r *UserRepository) EconomyStats(ctx context.Context, guildID int64) (*models.EconomyStats, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(cash), 0),
		       COALESCE(SUM(bank), 0)
		FROM users
		WHERE guild_id = $1
	`
	var stats models.EconomyStats
	if err := r.q.QueryRow(ctx, query, guildID).Scan(&stats.Users, &stats.TotalCash, &stats.TotalBank); err != nil {
		return nil, fmt.Errorf("failed to get economy stats for guild %d: %w", guildID, err)
	}
	stats.TotalWealth = stats.TotalCash + stats.TotalBank
	if stats.Users > 0 {
		stats.AvgWealth = stats.TotalWealth / stats.Users
	}

	richestQuery := `
		SELECT user_id
		FROM users
		WHERE guild_id = $1
		ORDER BY (cash + bank) DESC, user_id ASC
		LIMIT 1
	`
	err := r.q.QueryRow(ctx, richestQuery, guildID).Scan(&stats.RichestID)
	if err != nil && err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to get richest user for guild %d: %w", guildID, err)
	}

	return &stats, nil
}

// Delete removes a user row and their inventory. Used by the purge flow for
// members who left the guild.
func (r *UserRepository) Delete(ctx context.Context, userID, guildID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM user_inventory WHERE user_id = $1 AND guild_id = $2`, userID, guildID); err != nil {
		return fmt.Errorf("failed to delete inventory for user %d: %w", userID, err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM users WHERE user_id = $1 AND guild_id = $2`, userID, guildID); err != nil {
		return fmt.Errorf("failed to delete user %d in guild %d: %w", userID, guildID, err)
	}
	return nil
}
