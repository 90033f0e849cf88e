package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"treasurer/config"
	"treasurer/events"
	"treasurer/models"

	log "github.com/sirupsen/logrus"
)

type rouletteService struct {
	uowFactory UnitOfWorkFactory
	cooldowns  CooldownService
	cfg        *config.Config
	wheel      models.RouletteWheel
	spin       func() models.Pocket
}

// NewRouletteService creates a new roulette service
func NewRouletteService(uowFactory UnitOfWorkFactory, cooldowns CooldownService, cfg *config.Config) RouletteService {
	wheel := models.RouletteWheel{American: cfg.RouletteAmerican}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var mu sync.Mutex
	return &rouletteService{
		uowFactory: uowFactory,
		cooldowns:  cooldowns,
		cfg:        cfg,
		wheel:      wheel,
		spin: func() models.Pocket {
			mu.Lock()
			defer mu.Unlock()
			return wheel.Spin(rng)
		},
	}
}

// NewRouletteServiceWithSpin creates a roulette service with an injected
// spin source. Used by tests for deterministic pockets.
func NewRouletteServiceWithSpin(uowFactory UnitOfWorkFactory, cooldowns CooldownService, cfg *config.Config, spin func() models.Pocket) RouletteService {
	return &rouletteService{
		uowFactory: uowFactory,
		cooldowns:  cooldowns,
		cfg:        cfg,
		wheel:      models.RouletteWheel{American: cfg.RouletteAmerican},
		spin:       spin,
	}
}

// Spin validates the bet, spins the wheel, and settles the stake in one
// transaction.
func (s *rouletteService) Spin(ctx context.Context, userID, guildID int64, bet *models.RouletteBet, amount int64) (*models.RouletteResult, error) {
	if amount < s.cfg.MinBet || amount > s.cfg.MaxBet {
		return nil, fmt.Errorf("%w: bet must be between %d and %d", ErrInvalidAmount, s.cfg.MinBet, s.cfg.MaxBet)
	}
	if bet == nil || !bet.Valid(s.wheel.American) {
		return nil, fmt.Errorf("%w: unsupported roulette bet", ErrInvalidAmount)
	}
	if err := guard(ctx, s.cooldowns, userID, guildID, ActionRoulette); err != nil {
		return nil, err
	}

	pocket := s.spin()
	win := bet.Wins(pocket)
	var delta int64
	if win {
		delta = amount * bet.PayoutRatio()
	} else {
		delta = -amount
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

	user, err = uow.UserRepository().AdjustBalances(ctx, userID, guildID, delta, 0)
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:     userID,
		GuildID:    guildID,
		Reason:     "roulette",
		CashChange: delta,
		NewCash:    user.Cash,
		NewBank:    user.Bank,
	})
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	if err := s.cooldowns.Start(ctx, userID, guildID, ActionRoulette); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"userID":  userID,
		"guildID": guildID,
		"pocket":  pocket.String(),
		"bet":     bet.Kind,
		"win":     win,
		"delta":   delta,
	}).Info("Roulette spin settled")

	return &models.RouletteResult{
		Pocket:  pocket,
		Bet:     *bet,
		Win:     win,
		Delta:   delta,
		NewCash: user.Cash,
	}, nil
}
