package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"treasurer/config"
	"treasurer/events"
	"treasurer/models"

	log "github.com/sirupsen/logrus"
)

type passiveIncomeService struct {
	uowFactory UnitOfWorkFactory
	levels     LevelService
	host       HostActor
	cfg        *config.Config

	// Per-(user,guild) message throttle. In-memory only; a restart
	// resets the window.
	mu       sync.Mutex
	lastSeen map[throttleKey]time.Time
}

type throttleKey struct {
	userID  int64
	guildID int64
}

// NewPassiveIncomeService creates a new passive income service
func NewPassiveIncomeService(uowFactory UnitOfWorkFactory, levels LevelService, host HostActor, cfg *config.Config) PassiveIncomeService {
	return &passiveIncomeService{
		uowFactory: uowFactory,
		levels:     levels,
		host:       host,
		cfg:        cfg,
		lastSeen:   make(map[throttleKey]time.Time),
	}
}

// throttled records the message timestamp and reports whether the user is
// still inside the rate-limit window
func (s *passiveIncomeService) throttled(userID, guildID int64, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := throttleKey{userID, guildID}
	if last, ok := s.lastSeen[key]; ok && now.Sub(last) < s.cfg.XPCooldown {
		return true
	}
	s.lastSeen[key] = now
	return false
}

// HandleMessage awards XP and bank income for one chat message. Returns a
// nil result for throttled messages.
func (s *passiveIncomeService) HandleMessage(ctx context.Context, userID, guildID int64) (*models.LevelUpResult, error) {
	if s.throttled(userID, guildID, time.Now()) {
		return nil, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := getOrCreate(ctx, uow, userID, guildID, s.cfg.DefaultBalance); err != nil {
		return nil, err
	}
	settings, err := uow.GuildSettingsRepository().GetOrCreate(ctx, guildID)
	if err != nil {
		return nil, err
	}

	if settings.PassiveChatIncome > 0 {
		if _, err := uow.UserRepository().AdjustBalances(ctx, userID, guildID, 0, settings.PassiveChatIncome); err != nil {
			return nil, err
		}
	}

	levelUp, err := s.levels.ApplyXP(ctx, uow, userID, guildID, s.cfg.XPPerMessage)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return levelUp, nil
}

// salaryDue decides whether a claim stamped at last is payable again now.
// A claim is due when none was ever made, when the previous claim predates
// the global reset marker, or when the calendar day has rolled over.
func salaryDue(last *time.Time, globalReset, now time.Time) bool {
	if last == nil {
		return true
	}
	if last.Before(globalReset) {
		return true
	}
	if now.Day() != last.Day() {
		return true
	}
	// Same day-of-month a month or more later still counts as a new day
	return now.Month() != last.Month() || now.Year() != last.Year()
}

// memberSalary sums daily_income across every income role the member holds
func memberSalary(roles []*models.IncomeRole, member *Member) int64 {
	held := make(map[int64]bool, len(member.Roles))
	for _, r := range member.Roles {
		held[r] = true
	}
	var total int64
	for _, role := range roles {
		if held[role.RoleID] {
			total += role.DailyIncome
		}
	}
	return total
}

func (s *passiveIncomeService) ClaimSalary(ctx context.Context, userID, guildID int64) (*models.SalaryClaimResult, error) {
	member, err := s.host.LookupMember(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrInvalidTarget
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	result, err := s.claimInTx(ctx, uow, member, time.Now())
	if err != nil {
		return nil, err
	}
	if !result.Claimed && result.Amount > 0 {
		return nil, ErrAlreadyClaimed
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, nil
}

// claimInTx pays one member's salary inside an open unit of work
func (s *passiveIncomeService) claimInTx(ctx context.Context, uow UnitOfWork, member *Member, now time.Time) (*models.SalaryClaimResult, error) {
	settings, err := uow.GuildSettingsRepository().GetOrCreate(ctx, member.GuildID)
	if err != nil {
		return nil, err
	}
	roles, err := uow.IncomeRoleRepository().ListByGuild(ctx, member.GuildID)
	if err != nil {
		return nil, err
	}

	amount := memberSalary(roles, member)
	if amount <= 0 {
		return &models.SalaryClaimResult{}, nil
	}

	if settings.IncomeReset == models.IncomeResetDaily {
		last, err := uow.SalaryClaimRepository().LastClaimed(ctx, member.UserID, member.GuildID)
		if err != nil {
			return nil, err
		}
		if !salaryDue(last, settings.LastGlobalIncomeReset, now) {
			// Amount distinguishes an exhausted claim from holding no roles
			return &models.SalaryClaimResult{Amount: amount}, nil
		}
	}

	if _, err := getOrCreate(ctx, uow, member.UserID, member.GuildID, s.cfg.DefaultBalance); err != nil {
		return nil, err
	}
	user, err := uow.UserRepository().AdjustBalances(ctx, member.UserID, member.GuildID, 0, amount)
	if err != nil {
		return nil, err
	}
	if err := uow.SalaryClaimRepository().SetLastClaimed(ctx, member.UserID, member.GuildID, now); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:     member.UserID,
		GuildID:    member.GuildID,
		Reason:     "role_salary",
		BankChange: amount,
		NewCash:    user.Cash,
		NewBank:    user.Bank,
	})
	return &models.SalaryClaimResult{Claimed: true, Amount: amount}, nil
}

// sameCalendarDay compares two instants by UTC date
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// salaryRunState reads the income roles and the last bulk run in a short
// transaction of its own. The member crawl that follows suspends on host
// calls and must not hold a store handle.
func (s *passiveIncomeService) salaryRunState(ctx context.Context, guildID int64) ([]*models.IncomeRole, *models.SalaryRun, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	roles, err := uow.IncomeRoleRepository().ListByGuild(ctx, guildID)
	if err != nil {
		return nil, nil, err
	}
	last, err := uow.SalaryRunRepository().LastRun(ctx, guildID)
	if err != nil {
		return nil, nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return roles, last, nil
}

// DistributeSalaries pays every member of every income role in one
// transaction and advances the global reset marker. A guild that already
// had a run today is skipped, so the midnight loop survives restarts
// without paying twice.
func (s *passiveIncomeService) DistributeSalaries(ctx context.Context, guildID int64) (*models.BulkSalaryResult, error) {
	now := time.Now()
	roles, last, err := s.salaryRunState(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if last != nil && sameCalendarDay(last.RunDate, now) {
		log.WithField("guildID", guildID).Info("Salary run already recorded today, skipping")
		return &models.BulkSalaryResult{}, nil
	}

	// Collect each eligible member once even when they hold several roles
	members := make(map[int64]*Member)
	for _, role := range roles {
		holders, err := s.host.RoleMembers(ctx, guildID, role.RoleID)
		if err != nil {
			return nil, err
		}
		for _, m := range holders {
			if !m.Bot {
				members[m.UserID] = m
			}
		}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	result := &models.BulkSalaryResult{Members: len(members)}
	for _, member := range members {
		claim, err := s.claimInTx(ctx, uow, member, now)
		if err != nil {
			return nil, err
		}
		if claim.Claimed {
			result.Paid++
			result.Total += claim.Amount
		}
	}

	settings, err := uow.GuildSettingsRepository().GetOrCreate(ctx, guildID)
	if err != nil {
		return nil, err
	}
	settings.LastGlobalIncomeReset = now
	if err := uow.GuildSettingsRepository().Update(ctx, settings); err != nil {
		return nil, err
	}

	run := &models.SalaryRun{
		GuildID:          guildID,
		RunDate:          now,
		TotalDistributed: result.Total,
		MembersPaid:      result.Paid,
	}
	if _, err := uow.SalaryRunRepository().Record(ctx, run); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"guildID": guildID,
		"members": result.Members,
		"paid":    result.Paid,
		"total":   result.Total,
	}).Info("Distributed role salaries")
	return result, nil
}
