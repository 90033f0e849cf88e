package service

import (
	"context"
	"fmt"

	"treasurer/config"
	"treasurer/events"
	"treasurer/models"

	log "github.com/sirupsen/logrus"
)

type moderationService struct {
	uowFactory UnitOfWorkFactory
	host       HostActor
	cfg        *config.Config
}

// NewModerationService creates a new moderation service
func NewModerationService(uowFactory UnitOfWorkFactory, host HostActor, cfg *config.Config) ModerationService {
	return &moderationService{
		uowFactory: uowFactory,
		host:       host,
		cfg:        cfg,
	}
}

// Warn appends a warning and, when the count reaches the configured
// threshold, times the user out. A failed timeout never voids the warning;
// it is reported on the result instead.
func (s *moderationService) Warn(ctx context.Context, guildID, userID, moderatorID int64, reason string) (*models.WarnResult, error) {
	if userID == moderatorID {
		return nil, ErrInvalidTarget
	}
	member, err := s.host.LookupMember(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil || member.Bot {
		return nil, ErrInvalidTarget
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	warning := &models.Warning{
		GuildID:     guildID,
		UserID:      userID,
		ModeratorID: moderatorID,
		Reason:      reason,
	}
	if err := uow.WarningRepository().Append(ctx, warning); err != nil {
		return nil, err
	}
	count, err := uow.WarningRepository().CountByUser(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}

	if count >= s.cfg.MaxWarnsBeforeAction {
		uow.EventBus().Publish(events.WarningThresholdEvent{
			UserID:  userID,
			GuildID: guildID,
			Count:   count,
		})
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	result := &models.WarnResult{Warning: warning, Count: count}
	if count >= s.cfg.MaxWarnsBeforeAction {
		if err := s.host.Timeout(ctx, guildID, userID, s.cfg.DefaultMuteDuration); err != nil {
			result.ActedError = err.Error()
			log.WithFields(log.Fields{
				"guildID": guildID,
				"userID":  userID,
				"count":   count,
				"error":   err,
			}).Error("Auto-timeout after warning threshold failed")
		} else {
			result.AutoActed = true
			log.WithFields(log.Fields{
				"guildID":  guildID,
				"userID":   userID,
				"count":    count,
				"duration": s.cfg.DefaultMuteDuration,
			}).Info("User timed out after reaching warning threshold")
		}
	}
	return result, nil
}

func (s *moderationService) Warnings(ctx context.Context, guildID, userID int64) ([]*models.Warning, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	warnings, err := uow.WarningRepository().ListByUser(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return warnings, nil
}

func (s *moderationService) ClearWarnings(ctx context.Context, guildID, userID int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	cleared, err := uow.WarningRepository().ClearByUser(ctx, guildID, userID)
	if err != nil {
		return 0, err
	}
	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"guildID": guildID,
		"userID":  userID,
		"cleared": cleared,
	}).Info("Cleared warnings")
	return cleared, nil
}
