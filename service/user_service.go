package service

import (
	"context"
	"fmt"

	"treasurer/config"
	"treasurer/events"
	"treasurer/models"

	log "github.com/sirupsen/logrus"
)

type userService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory, cfg *config.Config) UserService {
	return &userService{
		uowFactory: uowFactory,
		cfg:        cfg,
	}
}

// getOrCreate fetches a user inside an open unit of work, creating them
// with the default starting balance on first reference.
func getOrCreate(ctx context.Context, uow UnitOfWork, userID, guildID, defaultBalance int64) (*models.User, error) {
	user, err := uow.UserRepository().GetByID(ctx, userID, guildID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user, err = uow.UserRepository().Create(ctx, userID, guildID, defaultBalance)
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.UserCreatedEvent{
		UserID:      userID,
		GuildID:     guildID,
		InitialCash: defaultBalance,
	})
	log.WithFields(log.Fields{
		"userID":  userID,
		"guildID": guildID,
		"cash":    defaultBalance,
	}).Info("Created new user")
	return user, nil
}

func (s *userService) GetOrCreateUser(ctx context.Context, userID, guildID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := getOrCreate(ctx, uow, userID, guildID, s.cfg.DefaultBalance)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

func (s *userService) Deposit(ctx context.Context, userID, guildID, amount int64) (*models.User, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := getOrCreate(ctx, uow, userID, guildID, s.cfg.DefaultBalance)
	if err != nil {
		return nil, err
	}
	if user.Cash < amount {
		return nil, ErrInsufficientFunds
	}

	user, err = uow.UserRepository().AdjustBalances(ctx, userID, guildID, -amount, amount)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

func (s *userService) DepositAll(ctx context.Context, userID, guildID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := getOrCreate(ctx, uow, userID, guildID, s.cfg.DefaultBalance)
	if err != nil {
		return nil, err
	}
	if user.Cash == 0 {
		return user, nil
	}

	user, err = uow.UserRepository().AdjustBalances(ctx, userID, guildID, -user.Cash, user.Cash)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

func (s *userService) Withdraw(ctx context.Context, userID, guildID, amount int64) (*models.User, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := getOrCreate(ctx, uow, userID, guildID, s.cfg.DefaultBalance)
	if err != nil {
		return nil, err
	}
	if user.Bank < amount {
		return nil, ErrInsufficientFunds
	}

	user, err = uow.UserRepository().AdjustBalances(ctx, userID, guildID, amount, -amount)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

// Transfer moves cash from one user to another. The sender pays the full
// amount; the recipient receives it minus the transfer tax, which is
// floored and burned.
func (s *userService) Transfer(ctx context.Context, fromID, toID, guildID, amount int64) (*models.TransferResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if fromID == toID {
		return nil, ErrInvalidTarget
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	sender, err := getOrCreate(ctx, uow, fromID, guildID, s.cfg.DefaultBalance)
	if err != nil {
		return nil, err
	}
	if _, err := getOrCreate(ctx, uow, toID, guildID, s.cfg.DefaultBalance); err != nil {
		return nil, err
	}

	ok, err := uow.UserRepository().DeductCash(ctx, fromID, guildID, amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInsufficientFunds
	}

	tax := amount * s.cfg.TransferTaxBps / 10000
	received := amount - tax
	recipient, err := uow.UserRepository().AdjustBalances(ctx, toID, guildID, received, 0)
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:     fromID,
		GuildID:    guildID,
		Reason:     "transfer_out",
		CashChange: -amount,
		NewCash:    sender.Cash - amount,
		NewBank:    sender.Bank,
	})
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:     toID,
		GuildID:    guildID,
		Reason:     "transfer_in",
		CashChange: received,
		NewCash:    recipient.Cash,
		NewBank:    recipient.Bank,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"fromID":  fromID,
		"toID":    toID,
		"guildID": guildID,
		"amount":  amount,
		"tax":     tax,
	}).Info("Transfer completed")

	return &models.TransferResult{
		RecipientID: toID,
		Amount:      amount,
		Tax:         tax,
		Received:    received,
		NewCash:     sender.Cash - amount,
	}, nil
}

func (s *userService) AdminAdjust(ctx context.Context, userID, guildID, deltaCash, deltaBank int64, reason string) (*models.User, error) {
	if deltaCash == 0 && deltaBank == 0 {
		return nil, ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := getOrCreate(ctx, uow, userID, guildID, s.cfg.DefaultBalance); err != nil {
		return nil, err
	}
	user, err := uow.UserRepository().AdjustBalances(ctx, userID, guildID, deltaCash, deltaBank)
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:     userID,
		GuildID:    guildID,
		Reason:     reason,
		CashChange: deltaCash,
		BankChange: deltaBank,
		NewCash:    user.Cash,
		NewBank:    user.Bank,
	})
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

func (s *userService) WealthLeaderboard(ctx context.Context, guildID int64, key models.WealthKey, page int) ([]*models.LeaderboardEntry, error) {
	if page < 1 {
		page = 1
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.UserRepository().WealthLeaderboard(ctx, guildID, key, page, leaderboardPageSize)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return entries, nil
}

const leaderboardPageSize = 10

func (s *userService) EconomyStats(ctx context.Context, guildID int64) (*models.EconomyStats, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	stats, err := uow.UserRepository().EconomyStats(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return stats, nil
}

func (s *userService) Purge(ctx context.Context, userID, guildID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID, guildID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if err := uow.UserRepository().Delete(ctx, userID, guildID); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":  userID,
		"guildID": guildID,
	}).Warn("Purged user economy record")
	return nil
}
