package service

import (
	"context"
	"fmt"

	"treasurer/config"
	"treasurer/events"
	"treasurer/models"

	log "github.com/sirupsen/logrus"
)

type incomeService struct {
	uowFactory UnitOfWorkFactory
	cooldowns  CooldownService
	host       HostActor
	cfg        *config.Config
	rng        Rand
}

// NewIncomeService creates a new income service
func NewIncomeService(uowFactory UnitOfWorkFactory, cooldowns CooldownService, host HostActor, cfg *config.Config, rng Rand) IncomeService {
	return &incomeService{
		uowFactory: uowFactory,
		cooldowns:  cooldowns,
		host:       host,
		cfg:        cfg,
		rng:        rng,
	}
}

// Work always pays. A bonus roll multiplies the gain by 1.5, floored.
func (s *incomeService) Work(ctx context.Context, userID, guildID int64) (*models.WorkResult, error) {
	if err := guard(ctx, s.cooldowns, userID, guildID, ActionWork); err != nil {
		return nil, err
	}

	gain := uniform(s.rng, s.cfg.WorkMinPayout, s.cfg.WorkMaxPayout)
	bonus := s.rng.Float64() < s.cfg.WorkBonusChance
	if bonus {
		gain = gain * 3 / 2
	}

	user, err := s.credit(ctx, userID, guildID, gain, "work")
	if err != nil {
		return nil, err
	}
	if err := s.cooldowns.Start(ctx, userID, guildID, ActionWork); err != nil {
		return nil, err
	}
	return &models.WorkResult{Gain: gain, Bonus: bonus, NewCash: user.Cash}, nil
}

func (s *incomeService) Crime(ctx context.Context, userID, guildID int64) (*models.RiskResult, error) {
	return s.risk(ctx, userID, guildID, ActionCrime,
		s.cfg.CrimeSuccess, s.cfg.CrimeMinPayout, s.cfg.CrimeMaxPayout,
		s.cfg.CrimeMinLosePct, s.cfg.CrimeMaxLosePct)
}

func (s *incomeService) Slut(ctx context.Context, userID, guildID int64) (*models.RiskResult, error) {
	return s.risk(ctx, userID, guildID, ActionSlut,
		s.cfg.SlutSuccess, s.cfg.SlutMinPayout, s.cfg.SlutMaxPayout,
		s.cfg.SlutMinLosePct, s.cfg.SlutMaxLosePct)
}

// risk runs the shared crime/slut flow: a Bernoulli draw that either pays a
// uniform gain or debits a drawn share of total balance from cash.
func (s *incomeService) risk(ctx context.Context, userID, guildID int64, action string,
	successProb float64, minGain, maxGain int64, minLosePct, maxLosePct float64) (*models.RiskResult, error) {

	if err := guard(ctx, s.cooldowns, userID, guildID, action); err != nil {
		return nil, err
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

	result := &models.RiskResult{}
	if s.rng.Float64() < successProb {
		result.Success = true
		result.Gain = uniform(s.rng, minGain, maxGain)
		user, err = uow.UserRepository().AdjustBalances(ctx, userID, guildID, result.Gain, 0)
	} else {
		pct := minLosePct + s.rng.Float64()*(maxLosePct-minLosePct)
		// Loss is a share of total wealth, debited from cash. The store
		// clamp at zero is authoritative for over-debits.
		result.Loss = int64(float64(user.TotalBalance()) * pct)
		user, err = uow.UserRepository().AdjustBalances(ctx, userID, guildID, -result.Loss, 0)
	}
	if err != nil {
		return nil, err
	}
	result.NewCash = user.Cash

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:     userID,
		GuildID:    guildID,
		Reason:     action,
		CashChange: result.Gain - result.Loss,
		NewCash:    user.Cash,
		NewBank:    user.Bank,
	})
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	if err := s.cooldowns.Start(ctx, userID, guildID, action); err != nil {
		return nil, err
	}
	return result, nil
}

// Rob attempts to steal cash from another user. Bank balances cannot be
// robbed.
func (s *incomeService) Rob(ctx context.Context, actorID, targetID, guildID int64) (*models.RobResult, error) {
	if actorID == targetID {
		return nil, ErrInvalidTarget
	}
	member, err := s.host.LookupMember(ctx, guildID, targetID)
	if err != nil {
		return nil, err
	}
	if member == nil || member.Bot {
		return nil, ErrInvalidTarget
	}
	if err := guard(ctx, s.cooldowns, actorID, guildID, ActionRob); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	actor, err := getOrCreate(ctx, uow, actorID, guildID, s.cfg.DefaultBalance)
	if err != nil {
		return nil, err
	}
	target, err := getOrCreate(ctx, uow, targetID, guildID, s.cfg.DefaultBalance)
	if err != nil {
		return nil, err
	}
	if target.Cash < s.cfg.RobFloor {
		return nil, fmt.Errorf("%w: target below floor %d", ErrInvalidTarget, s.cfg.RobFloor)
	}
	if actor.Cash < s.cfg.RobSelfFloor {
		return nil, ErrInsufficientFunds
	}

	targetCash := target.Cash
	if targetCash < 1 {
		targetCash = 1
	}
	ratio := float64(actor.Cash) / float64(targetCash)
	if ratio > 2 {
		ratio = 2
	}
	prob := 0.5 + 0.1*ratio
	if prob > 0.8 {
		prob = 0.8
	}

	result := &models.RobResult{}
	if s.rng.Float64() < prob {
		result.Success = true
		stolen := uniform(s.rng, target.Cash/10, target.Cash*4/10)
		if stolen > target.Cash {
			stolen = target.Cash
		}
		result.Stolen = stolen

		target, err = uow.UserRepository().AdjustBalances(ctx, targetID, guildID, -stolen, 0)
		if err != nil {
			return nil, err
		}
		actor, err = uow.UserRepository().AdjustBalances(ctx, actorID, guildID, stolen, 0)
		if err != nil {
			return nil, err
		}
	} else {
		fineCap := actor.Cash
		if fineCap > 500 {
			fineCap = 500
		}
		result.Fine = uniform(s.rng, 100, fineCap)
		actor, err = uow.UserRepository().AdjustBalances(ctx, actorID, guildID, -result.Fine, 0)
		if err != nil {
			return nil, err
		}
	}
	result.ActorCash = actor.Cash
	result.TargetCash = target.Cash

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	if err := s.cooldowns.Start(ctx, actorID, guildID, ActionRob); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"actorID":  actorID,
		"targetID": targetID,
		"guildID":  guildID,
		"success":  result.Success,
		"stolen":   result.Stolen,
		"fine":     result.Fine,
	}).Info("Rob attempt resolved")
	return result, nil
}

func (s *incomeService) Daily(ctx context.Context, userID, guildID int64) (*models.DailyResult, error) {
	if err := guard(ctx, s.cooldowns, userID, guildID, ActionDaily); err != nil {
		return nil, err
	}

	amount := s.cfg.DailyBase + uniform(s.rng, 100, 300)
	user, err := s.credit(ctx, userID, guildID, amount, "daily")
	if err != nil {
		return nil, err
	}
	if err := s.cooldowns.Start(ctx, userID, guildID, ActionDaily); err != nil {
		return nil, err
	}
	return &models.DailyResult{Amount: amount, NewCash: user.Cash}, nil
}

// credit adds cash to a user in its own transaction
func (s *incomeService) credit(ctx context.Context, userID, guildID, amount int64, reason string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := getOrCreate(ctx, uow, userID, guildID, s.cfg.DefaultBalance); err != nil {
		return nil, err
	}
	user, err := uow.UserRepository().AdjustBalances(ctx, userID, guildID, amount, 0)
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:     userID,
		GuildID:    guildID,
		Reason:     reason,
		CashChange: amount,
		NewCash:    user.Cash,
		NewBank:    user.Bank,
	})
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}
