package service

import (
	"context"
	"time"

	"treasurer/events"
	"treasurer/models"
)

// UserRepository defines storage operations for user economy records
type UserRepository interface {
	// GetByID returns the user, or nil when no record exists
	GetByID(ctx context.Context, userID, guildID int64) (*models.User, error)
	// Create inserts a new user with the given starting cash
	Create(ctx context.Context, userID, guildID, initialCash int64) (*models.User, error)
	// AdjustBalances applies deltas to cash and bank, clamping cash at zero,
	// and returns the updated user
	AdjustBalances(ctx context.Context, userID, guildID, deltaCash, deltaBank int64) (*models.User, error)
	// DeductCash removes cash only if the user holds at least that much.
	// Returns false when funds are insufficient.
	DeductCash(ctx context.Context, userID, guildID, amount int64) (bool, error)
	// AddXP applies an XP delta, clamping at zero, and returns the updated user
	AddXP(ctx context.Context, userID, guildID, delta int64) (*models.User, error)
	// SetLevel stores a recomputed level
	SetLevel(ctx context.Context, userID, guildID, level int64) error
	WealthLeaderboard(ctx context.Context, guildID int64, key models.WealthKey, page, perPage int) ([]*models.LeaderboardEntry, error)
	XPLeaderboard(ctx context.Context, guildID int64, page, perPage int) ([]*models.LeaderboardEntry, error)
	XPRank(ctx context.Context, userID, guildID int64) (int64, error)
	EconomyStats(ctx context.Context, guildID int64) (*models.EconomyStats, error)
	// Delete removes the user and their inventory
	Delete(ctx context.Context, userID, guildID int64) error
}

// ItemRepository defines storage operations for the shop catalog
type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	// GetByName resolves an item case-insensitively, nil when absent
	GetByName(ctx context.Context, guildID int64, name string) (*models.Item, error)
	// ListByGuild returns the catalog, optionally filtered by category
	ListByGuild(ctx context.Context, guildID int64, category string) ([]*models.Item, error)
	Delete(ctx context.Context, itemID int64) error
	// DecrementStock reduces remaining stock if enough is available.
	// Unlimited-stock items always succeed.
	DecrementStock(ctx context.Context, itemID, qty int64) (bool, error)
}

// InventoryRepository defines storage operations for user item holdings
type InventoryRepository interface {
	Quantity(ctx context.Context, userID, guildID, itemID int64) (int64, error)
	Add(ctx context.Context, userID, guildID, itemID, qty int64) error
	// Remove deducts up to qty, clamping at zero
	Remove(ctx context.Context, userID, guildID, itemID, qty int64) error
	// RemoveExact deducts qty only if the holding covers it
	RemoveExact(ctx context.Context, userID, guildID, itemID, qty int64) (bool, error)
	ListByUser(ctx context.Context, userID, guildID int64) ([]*models.InventoryEntry, error)
}

// IncomeRoleRepository defines storage operations for role salary configuration
type IncomeRoleRepository interface {
	Upsert(ctx context.Context, role *models.IncomeRole) error
	Get(ctx context.Context, guildID, roleID int64) (*models.IncomeRole, error)
	ListByGuild(ctx context.Context, guildID int64) ([]*models.IncomeRole, error)
	Delete(ctx context.Context, guildID, roleID int64) error
}

// LevelRewardRepository defines storage operations for level reward configuration
type LevelRewardRepository interface {
	Upsert(ctx context.Context, reward *models.LevelReward) error
	Get(ctx context.Context, guildID, level int64) (*models.LevelReward, error)
	ListByGuild(ctx context.Context, guildID int64) ([]*models.LevelReward, error)
	Delete(ctx context.Context, guildID, level int64) error
}

// WarningRepository defines storage operations for the warning ledger
type WarningRepository interface {
	Append(ctx context.Context, w *models.Warning) error
	ListByUser(ctx context.Context, guildID, userID int64) ([]*models.Warning, error)
	CountByUser(ctx context.Context, guildID, userID int64) (int, error)
	ClearByUser(ctx context.Context, guildID, userID int64) (int64, error)
}

// CooldownRepository defines storage operations for per-action cooldowns
type CooldownRepository interface {
	Set(ctx context.Context, userID, guildID int64, action string, expiresAt time.Time) error
	Remaining(ctx context.Context, userID, guildID int64, action string, now time.Time) (time.Duration, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// GuildSettingsRepository defines storage operations for per-guild configuration
type GuildSettingsRepository interface {
	GetOrCreate(ctx context.Context, guildID int64) (*models.GuildSettings, error)
	Update(ctx context.Context, settings *models.GuildSettings) error
}

// SalaryClaimRepository tracks when users last collected role salary
type SalaryClaimRepository interface {
	LastClaimed(ctx context.Context, userID, guildID int64) (*time.Time, error)
	SetLastClaimed(ctx context.Context, userID, guildID int64, ts time.Time) error
}

// SalaryRunRepository records bulk income-role payouts
type SalaryRunRepository interface {
	Record(ctx context.Context, run *models.SalaryRun) (*models.SalaryRun, error)
	LastRun(ctx context.Context, guildID int64) (*models.SalaryRun, error)
}

// BalanceHistoryRepository stores the per-user balance audit trail
type BalanceHistoryRepository interface {
	Record(ctx context.Context, h *models.BalanceHistory) error
	ListRecent(ctx context.Context, userID, guildID int64, limit int) ([]*models.BalanceHistory, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork represents a transactional boundary for multi-step operations
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() UserRepository
	ItemRepository() ItemRepository
	InventoryRepository() InventoryRepository
	IncomeRoleRepository() IncomeRoleRepository
	LevelRewardRepository() LevelRewardRepository
	WarningRepository() WarningRepository
	CooldownRepository() CooldownRepository
	GuildSettingsRepository() GuildSettingsRepository
	SalaryClaimRepository() SalaryClaimRepository
	SalaryRunRepository() SalaryRunRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates new units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// Member is the host platform's view of a guild member
type Member struct {
	UserID      int64
	GuildID     int64
	DisplayName string
	Bot         bool
	Roles       []int64
}

// Role is the host platform's view of a guild role
type Role struct {
	RoleID  int64
	GuildID int64
	Name    string
}

// HostActor abstracts the chat platform actions services need to perform.
// Implementations live in the bot layer; services never talk to the
// platform API directly.
type HostActor interface {
	AddRole(ctx context.Context, guildID, userID, roleID int64) error
	RemoveRole(ctx context.Context, guildID, userID, roleID int64) error
	// Timeout mutes the member until now+duration
	Timeout(ctx context.Context, guildID, userID int64, duration time.Duration) error
	LookupMember(ctx context.Context, guildID, userID int64) (*Member, error)
	LookupRole(ctx context.Context, guildID, roleID int64) (*Role, error)
	// RoleMembers returns every member holding the role
	RoleMembers(ctx context.Context, guildID, roleID int64) ([]*Member, error)
}

// UserService manages user accounts, balances, and transfers
type UserService interface {
	// GetOrCreateUser fetches a user, creating one with the default balance
	GetOrCreateUser(ctx context.Context, userID, guildID int64) (*models.User, error)
	Deposit(ctx context.Context, userID, guildID, amount int64) (*models.User, error)
	// DepositAll moves all cash to the bank
	DepositAll(ctx context.Context, userID, guildID int64) (*models.User, error)
	Withdraw(ctx context.Context, userID, guildID, amount int64) (*models.User, error)
	// Transfer moves cash between users, taxing the recipient
	Transfer(ctx context.Context, fromID, toID, guildID, amount int64) (*models.TransferResult, error)
	// AdminAdjust applies a moderator-initiated balance change
	AdminAdjust(ctx context.Context, userID, guildID, deltaCash, deltaBank int64, reason string) (*models.User, error)
	WealthLeaderboard(ctx context.Context, guildID int64, key models.WealthKey, page int) ([]*models.LeaderboardEntry, error)
	EconomyStats(ctx context.Context, guildID int64) (*models.EconomyStats, error)
	// Purge deletes a user's economy record entirely
	Purge(ctx context.Context, userID, guildID int64) error
}

// IncomeService implements the active income actions
type IncomeService interface {
	Work(ctx context.Context, userID, guildID int64) (*models.WorkResult, error)
	Crime(ctx context.Context, userID, guildID int64) (*models.RiskResult, error)
	Slut(ctx context.Context, userID, guildID int64) (*models.RiskResult, error)
	Rob(ctx context.Context, actorID, targetID, guildID int64) (*models.RobResult, error)
	Daily(ctx context.Context, userID, guildID int64) (*models.DailyResult, error)
}

// PassiveIncomeService handles chat message income and role salaries
type PassiveIncomeService interface {
	// HandleMessage awards passive income and XP for a chat message,
	// subject to the in-memory rate limit. Returns nil result when the
	// message was throttled.
	HandleMessage(ctx context.Context, userID, guildID int64) (*models.LevelUpResult, error)
	// ClaimSalary collects the caller's daily income-role salary
	ClaimSalary(ctx context.Context, userID, guildID int64) (*models.SalaryClaimResult, error)
	// DistributeSalaries pays every member of every income role
	DistributeSalaries(ctx context.Context, guildID int64) (*models.BulkSalaryResult, error)
}

// LevelService implements XP progression and level rewards
type LevelService interface {
	Level(xp int64) int64
	XPRequired(level int64) int64
	// ApplyXP grants XP inside the given unit of work and applies the
	// level reward if a level boundary is crossed
	ApplyXP(ctx context.Context, uow UnitOfWork, userID, guildID, amount int64) (*models.LevelUpResult, error)
	Rank(ctx context.Context, userID, guildID int64) (int64, error)
	XPLeaderboard(ctx context.Context, guildID int64, page int) ([]*models.LeaderboardEntry, error)
	SetReward(ctx context.Context, reward *models.LevelReward) error
	DeleteReward(ctx context.Context, guildID, level int64) error
	ListRewards(ctx context.Context, guildID int64) ([]*models.LevelReward, error)
}

// ItemService manages the shop catalog and user inventories
type ItemService interface {
	CreateItem(ctx context.Context, item *models.Item) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, guildID int64, name string) error
	GetItem(ctx context.Context, guildID int64, name string) (*models.Item, error)
	ListItems(ctx context.Context, guildID int64, category string) ([]*models.Item, error)
	// Purchase runs the full buy pipeline: validation, payment, stock,
	// inventory, and role side effects
	Purchase(ctx context.Context, userID, guildID int64, name string, qty int64) (*models.PurchaseResult, error)
	// Give moves items between inventories without payment
	Give(ctx context.Context, fromID, toID, guildID int64, name string, qty int64) error
	// Spawn grants items administratively
	Spawn(ctx context.Context, userID, guildID int64, name string, qty int64) error
	// Take confiscates items administratively, clamping at what is held
	Take(ctx context.Context, userID, guildID int64, name string, qty int64) error
	// Use consumes items and applies their effects
	Use(ctx context.Context, userID, guildID int64, name string, qty int64) (*models.UseResult, error)
	Inventory(ctx context.Context, userID, guildID int64) ([]*models.InventoryEntry, error)
}

// BlackjackService runs blackjack games against the house. Start and Hit
// return a non-nil result when the action finished the game (dealt
// blackjack or bust); Stand and DoubleDown always settle.
type BlackjackService interface {
	Start(ctx context.Context, userID, guildID, bet int64) (*models.BlackjackGame, *models.BlackjackResult, error)
	Hit(ctx context.Context, userID, guildID int64) (*models.BlackjackGame, *models.BlackjackResult, error)
	Stand(ctx context.Context, userID, guildID int64) (*models.BlackjackResult, error)
	DoubleDown(ctx context.Context, userID, guildID int64) (*models.BlackjackResult, error)
	// AbandonStale clears games older than the given age without settling
	AbandonStale(maxAge time.Duration) int
}

// RouletteService runs single-spin roulette rounds
type RouletteService interface {
	Spin(ctx context.Context, userID, guildID int64, bet *models.RouletteBet, amount int64) (*models.RouletteResult, error)
}

// ModerationService manages the warning ledger and automatic timeouts
type ModerationService interface {
	Warn(ctx context.Context, guildID, userID, moderatorID int64, reason string) (*models.WarnResult, error)
	Warnings(ctx context.Context, guildID, userID int64) ([]*models.Warning, error)
	ClearWarnings(ctx context.Context, guildID, userID int64) (int64, error)
}

// CooldownService gates actions behind per-user cooldowns
type CooldownService interface {
	// Check returns the remaining cooldown for an action, zero if ready
	Check(ctx context.Context, userID, guildID int64, action string) (time.Duration, error)
	// Start begins an action's cooldown
	Start(ctx context.Context, userID, guildID int64, action string) error
	// Sweep garbage-collects expired rows
	Sweep(ctx context.Context) (int64, error)
}

// AuditService maintains the balance audit trail. Rows are written from
// balance change events after the originating transaction commits.
type AuditService interface {
	// HandleBalanceChange is an event bus subscriber
	HandleBalanceChange(ctx context.Context, event events.Event)
	History(ctx context.Context, userID, guildID int64, limit int) ([]*models.BalanceHistory, error)
}

// GuildSettingsService manages per-guild configuration
type GuildSettingsService interface {
	Get(ctx context.Context, guildID int64) (*models.GuildSettings, error)
	Update(ctx context.Context, settings *models.GuildSettings) error
	SetIncomeRole(ctx context.Context, role *models.IncomeRole) error
	RemoveIncomeRole(ctx context.Context, guildID, roleID int64) error
	ListIncomeRoles(ctx context.Context, guildID int64) ([]*models.IncomeRole, error)
}
