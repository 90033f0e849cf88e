package service

import (
	"context"
	"fmt"
	"time"

	"treasurer/config"
)

// Action names used as cooldown keys
const (
	ActionWork      = "work"
	ActionCrime     = "crime"
	ActionSlut      = "slut"
	ActionRob       = "rob"
	ActionDaily     = "daily"
	ActionBlackjack = "blackjack"
	ActionRoulette  = "roulette"
)

type cooldownService struct {
	repo CooldownRepository
	cfg  *config.Config
}

// NewCooldownService creates a new cooldown service
func NewCooldownService(repo CooldownRepository, cfg *config.Config) CooldownService {
	return &cooldownService{repo: repo, cfg: cfg}
}

// durationFor maps an action name to its configured cooldown
func (s *cooldownService) durationFor(action string) (time.Duration, error) {
	switch action {
	case ActionWork:
		return s.cfg.WorkCooldown, nil
	case ActionCrime:
		return s.cfg.CrimeCooldown, nil
	case ActionSlut:
		return s.cfg.SlutCooldown, nil
	case ActionRob:
		return s.cfg.RobCooldown, nil
	case ActionDaily:
		return s.cfg.DailyCooldown, nil
	case ActionBlackjack:
		return s.cfg.BlackjackCooldown, nil
	case ActionRoulette:
		return s.cfg.RouletteCooldown, nil
	default:
		return 0, fmt.Errorf("unknown cooldown action %q", action)
	}
}

func (s *cooldownService) Check(ctx context.Context, userID, guildID int64, action string) (time.Duration, error) {
	remaining, err := s.repo.Remaining(ctx, userID, guildID, action, time.Now())
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

func (s *cooldownService) Start(ctx context.Context, userID, guildID int64, action string) error {
	d, err := s.durationFor(action)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, userID, guildID, action, time.Now().Add(d))
}

func (s *cooldownService) Sweep(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, time.Now())
}

// guard checks the cooldown and returns a CooldownError if the action is
// still locked. Shared by the income actions.
func guard(ctx context.Context, cooldowns CooldownService, userID, guildID int64, action string) error {
	remaining, err := cooldowns.Check(ctx, userID, guildID, action)
	if err != nil {
		return err
	}
	if remaining > 0 {
		return &CooldownError{Action: action, Remaining: remaining}
	}
	return nil
}
