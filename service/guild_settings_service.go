package service

import (
	"context"
	"fmt"

	"treasurer/models"

	log "github.com/sirupsen/logrus"
)

type guildSettingsService struct {
	uowFactory UnitOfWorkFactory
}

// NewGuildSettingsService creates a new guild settings service
func NewGuildSettingsService(uowFactory UnitOfWorkFactory) GuildSettingsService {
	return &guildSettingsService{uowFactory: uowFactory}
}

func (s *guildSettingsService) Get(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.GuildSettingsRepository().GetOrCreate(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return settings, nil
}

func (s *guildSettingsService) Update(ctx context.Context, settings *models.GuildSettings) error {
	switch settings.IncomeReset {
	case models.IncomeResetDaily:
	case models.IncomeResetAccumulate:
		// Accumulate mode has no rate limiting on salary claims
		log.WithField("guildID", settings.GuildID).
			Warn("Income reset set to accumulate; salary claims will not be rate limited")
	default:
		return fmt.Errorf("%w: unknown income reset policy %q", ErrInvalidAmount, settings.IncomeReset)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Ensure the row exists before the update
	if _, err := uow.GuildSettingsRepository().GetOrCreate(ctx, settings.GuildID); err != nil {
		return err
	}
	if err := uow.GuildSettingsRepository().Update(ctx, settings); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *guildSettingsService) SetIncomeRole(ctx context.Context, role *models.IncomeRole) error {
	if role.DailyIncome <= 0 {
		return ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.IncomeRoleRepository().Upsert(ctx, role); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *guildSettingsService) RemoveIncomeRole(ctx context.Context, guildID, roleID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.IncomeRoleRepository().Delete(ctx, guildID, roleID); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *guildSettingsService) ListIncomeRoles(ctx context.Context, guildID int64) ([]*models.IncomeRole, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	roles, err := uow.IncomeRoleRepository().ListByGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return roles, nil
}
