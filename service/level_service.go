package service

import (
	"context"
	"fmt"
	"math"

	"treasurer/events"
	"treasurer/models"

	log "github.com/sirupsen/logrus"
)

type levelService struct {
	uowFactory UnitOfWorkFactory
}

// NewLevelService creates a new level service
func NewLevelService(uowFactory UnitOfWorkFactory) LevelService {
	return &levelService{uowFactory: uowFactory}
}

// Level maps total XP to a level. Level 1 covers everything below 100 XP;
// beyond that the curve is floor(0.1 * sqrt(xp)).
func (s *levelService) Level(xp int64) int64 {
	if xp < 100 {
		return 1
	}
	return int64(math.Floor(0.1 * math.Sqrt(float64(xp))))
}

// XPRequired returns the total XP needed to reach a level
func (s *levelService) XPRequired(level int64) int64 {
	return (10 * level) * (10 * level)
}

// ApplyXP grants XP inside the caller's unit of work. If the user crosses a
// level boundary, the reward configured for the level they land on is
// applied: money and items inside the transaction, role changes via the
// event bus after commit. Intermediate levels skipped by a large grant do
// not pay their rewards.
func (s *levelService) ApplyXP(ctx context.Context, uow UnitOfWork, userID, guildID, amount int64) (*models.LevelUpResult, error) {
	user, err := uow.UserRepository().GetByID(ctx, userID, guildID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	oldLevel := user.Level

	user, err = uow.UserRepository().AddXP(ctx, userID, guildID, amount)
	if err != nil {
		return nil, err
	}

	newLevel := s.Level(user.XP)
	if newLevel <= oldLevel {
		return nil, nil
	}
	if err := uow.UserRepository().SetLevel(ctx, userID, guildID, newLevel); err != nil {
		return nil, err
	}

	result := &models.LevelUpResult{OldLevel: oldLevel, NewLevel: newLevel}

	reward, err := uow.LevelRewardRepository().Get(ctx, guildID, newLevel)
	if err != nil {
		return nil, err
	}
	if reward != nil {
		result.Reward = reward
		if reward.Money > 0 {
			if _, err := uow.UserRepository().AdjustBalances(ctx, userID, guildID, reward.Money, 0); err != nil {
				return nil, err
			}
		}
		for name, qty := range reward.Items {
			item, err := uow.ItemRepository().GetByName(ctx, guildID, name)
			if err != nil {
				return nil, err
			}
			if item == nil {
				log.WithFields(log.Fields{
					"guildID": guildID,
					"level":   newLevel,
					"item":    name,
				}).Warn("Level reward references unknown item, skipping")
				continue
			}
			if err := uow.InventoryRepository().Add(ctx, userID, guildID, item.ID, qty); err != nil {
				return nil, err
			}
		}
	}

	event := events.LevelUpEvent{
		UserID:   userID,
		GuildID:  guildID,
		OldLevel: oldLevel,
		NewLevel: newLevel,
	}
	if reward != nil {
		event.RolesAdd = reward.RolesAdd
		event.RolesRemove = reward.RolesRemove
	}
	uow.EventBus().Publish(event)

	return result, nil
}

func (s *levelService) Rank(ctx context.Context, userID, guildID int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	rank, err := uow.UserRepository().XPRank(ctx, userID, guildID)
	if err != nil {
		return 0, err
	}
	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return rank, nil
}

func (s *levelService) XPLeaderboard(ctx context.Context, guildID int64, page int) ([]*models.LeaderboardEntry, error) {
	if page < 1 {
		page = 1
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.UserRepository().XPLeaderboard(ctx, guildID, page, leaderboardPageSize)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return entries, nil
}

func (s *levelService) SetReward(ctx context.Context, reward *models.LevelReward) error {
	if reward.Level < 2 {
		return fmt.Errorf("%w: rewards start at level 2", ErrInvalidAmount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.LevelRewardRepository().Upsert(ctx, reward); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *levelService) DeleteReward(ctx context.Context, guildID, level int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.LevelRewardRepository().Delete(ctx, guildID, level); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *levelService) ListRewards(ctx context.Context, guildID int64) ([]*models.LevelReward, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	rewards, err := uow.LevelRewardRepository().ListByGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return rewards, nil
}
