package repository

import (
	"context"
	"fmt"

	"treasurer/database"
	"treasurer/models"

	"github.com/jackc/pgx/v5"
)

// GuildSettingsRepository implements the service.GuildSettingsRepository interface
type GuildSettingsRepository struct {
	q queryable
}

// NewGuildSettingsRepository creates a new guild settings repository
func NewGuildSettingsRepository(db *database.DB) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: db.Pool}
}

func newGuildSettingsRepositoryWithTx(tx queryable) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: tx}
}

const settingsColumns = `guild_id, prefix, currency_emoji, passive_chat_income, income_reset, last_global_income_reset`

func scanSettings(row pgx.Row) (*models.GuildSettings, error) {
	var s models.GuildSettings
	err := row.Scan(&s.GuildID, &s.Prefix, &s.CurrencyEmoji, &s.PassiveChatIncome, &s.IncomeReset, &s.LastGlobalIncomeReset)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetOrCreate retrieves guild settings, creating defaults on first reference.
func (r *GuildSettingsRepository) GetOrCreate(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM guild_settings WHERE guild_id = $1`
	settings, err := scanSettings(r.q.QueryRow(ctx, query, guildID))
	if err == nil {
		return settings, nil
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to get guild settings for guild %d: %w", guildID, err)
	}

	insert := `
		INSERT INTO guild_settings (guild_id)
		VALUES ($1)
		RETURNING ` + settingsColumns + `
	`
	settings, err = scanSettings(r.q.QueryRow(ctx, insert, guildID))
	if err != nil {
		return nil, fmt.Errorf("failed to create guild settings for guild %d: %w", guildID, err)
	}
	return settings, nil
}

// Update rewrites guild settings.
func (r *GuildSettingsRepository) Update(ctx context.Context, settings *models.GuildSettings) error {
	query := `
		UPDATE guild_settings
		SET prefix = $2, currency_emoji = $3, passive_chat_income = $4,
		    income_reset = $5, last_global_income_reset = $6
		WHERE guild_id = $1
	`
	result, err := r.q.Exec(ctx, query,
		settings.GuildID, settings.Prefix, settings.CurrencyEmoji,
		settings.PassiveChatIncome, settings.IncomeReset, settings.LastGlobalIncomeReset,
	)
	if err != nil {
		return fmt.Errorf("failed to update guild settings for guild %d: %w", settings.GuildID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("guild settings for guild %d not found", settings.GuildID)
	}
	return nil
}
