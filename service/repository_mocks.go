package service

import (
	"context"
	"time"

	"treasurer/events"
	"treasurer/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID, guildID int64) (*models.User, error) {
	args := m.Called(ctx, userID, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, userID, guildID, initialCash int64) (*models.User, error) {
	args := m.Called(ctx, userID, guildID, initialCash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) AdjustBalances(ctx context.Context, userID, guildID, deltaCash, deltaBank int64) (*models.User, error) {
	args := m.Called(ctx, userID, guildID, deltaCash, deltaBank)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) DeductCash(ctx context.Context, userID, guildID, amount int64) (bool, error) {
	args := m.Called(ctx, userID, guildID, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) AddXP(ctx context.Context, userID, guildID, delta int64) (*models.User, error) {
	args := m.Called(ctx, userID, guildID, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SetLevel(ctx context.Context, userID, guildID, level int64) error {
	args := m.Called(ctx, userID, guildID, level)
	return args.Error(0)
}

func (m *MockUserRepository) WealthLeaderboard(ctx context.Context, guildID int64, key models.WealthKey, page, perPage int) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, guildID, key, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

func (m *MockUserRepository) XPLeaderboard(ctx context.Context, guildID int64, page, perPage int) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, guildID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

func (m *MockUserRepository) XPRank(ctx context.Context, userID, guildID int64) (int64, error) {
	args := m.Called(ctx, userID, guildID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) EconomyStats(ctx context.Context, guildID int64) (*models.EconomyStats, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EconomyStats), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, userID, guildID int64) error {
	args := m.Called(ctx, userID, guildID)
	return args.Error(0)
}

// MockItemRepository is a mock implementation of ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepository) Update(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) GetByName(ctx context.Context, guildID int64, name string) (*models.Item, error) {
	args := m.Called(ctx, guildID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepository) ListByGuild(ctx context.Context, guildID int64, category string) ([]*models.Item, error) {
	args := m.Called(ctx, guildID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}

func (m *MockItemRepository) Delete(ctx context.Context, itemID int64) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *MockItemRepository) DecrementStock(ctx context.Context, itemID, qty int64) (bool, error) {
	args := m.Called(ctx, itemID, qty)
	return args.Bool(0), args.Error(1)
}

// MockInventoryRepository is a mock implementation of InventoryRepository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) Quantity(ctx context.Context, userID, guildID, itemID int64) (int64, error) {
	args := m.Called(ctx, userID, guildID, itemID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInventoryRepository) Add(ctx context.Context, userID, guildID, itemID, qty int64) error {
	args := m.Called(ctx, userID, guildID, itemID, qty)
	return args.Error(0)
}

func (m *MockInventoryRepository) Remove(ctx context.Context, userID, guildID, itemID, qty int64) error {
	args := m.Called(ctx, userID, guildID, itemID, qty)
	return args.Error(0)
}

func (m *MockInventoryRepository) RemoveExact(ctx context.Context, userID, guildID, itemID, qty int64) (bool, error) {
	args := m.Called(ctx, userID, guildID, itemID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *MockInventoryRepository) ListByUser(ctx context.Context, userID, guildID int64) ([]*models.InventoryEntry, error) {
	args := m.Called(ctx, userID, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryEntry), args.Error(1)
}

// MockIncomeRoleRepository is a mock implementation of IncomeRoleRepository
type MockIncomeRoleRepository struct {
	mock.Mock
}

func (m *MockIncomeRoleRepository) Upsert(ctx context.Context, role *models.IncomeRole) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockIncomeRoleRepository) Get(ctx context.Context, guildID, roleID int64) (*models.IncomeRole, error) {
	args := m.Called(ctx, guildID, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IncomeRole), args.Error(1)
}

func (m *MockIncomeRoleRepository) ListByGuild(ctx context.Context, guildID int64) ([]*models.IncomeRole, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.IncomeRole), args.Error(1)
}

func (m *MockIncomeRoleRepository) Delete(ctx context.Context, guildID, roleID int64) error {
	args := m.Called(ctx, guildID, roleID)
	return args.Error(0)
}

// MockLevelRewardRepository is a mock implementation of LevelRewardRepository
type MockLevelRewardRepository struct {
	mock.Mock
}

func (m *MockLevelRewardRepository) Upsert(ctx context.Context, reward *models.LevelReward) error {
	args := m.Called(ctx, reward)
	return args.Error(0)
}

func (m *MockLevelRewardRepository) Get(ctx context.Context, guildID, level int64) (*models.LevelReward, error) {
	args := m.Called(ctx, guildID, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LevelReward), args.Error(1)
}

func (m *MockLevelRewardRepository) ListByGuild(ctx context.Context, guildID int64) ([]*models.LevelReward, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LevelReward), args.Error(1)
}

func (m *MockLevelRewardRepository) Delete(ctx context.Context, guildID, level int64) error {
	args := m.Called(ctx, guildID, level)
	return args.Error(0)
}

// MockWarningRepository is a mock implementation of WarningRepository
type MockWarningRepository struct {
	mock.Mock
}

func (m *MockWarningRepository) Append(ctx context.Context, w *models.Warning) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockWarningRepository) ListByUser(ctx context.Context, guildID, userID int64) ([]*models.Warning, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Warning), args.Error(1)
}

func (m *MockWarningRepository) CountByUser(ctx context.Context, guildID, userID int64) (int, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockWarningRepository) ClearByUser(ctx context.Context, guildID, userID int64) (int64, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockCooldownRepository is a mock implementation of CooldownRepository
type MockCooldownRepository struct {
	mock.Mock
}

func (m *MockCooldownRepository) Set(ctx context.Context, userID, guildID int64, action string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, guildID, action, expiresAt)
	return args.Error(0)
}

func (m *MockCooldownRepository) Remaining(ctx context.Context, userID, guildID int64, action string, now time.Time) (time.Duration, error) {
	args := m.Called(ctx, userID, guildID, action, now)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *MockCooldownRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockGuildSettingsRepository is a mock implementation of GuildSettingsRepository
type MockGuildSettingsRepository struct {
	mock.Mock
}

func (m *MockGuildSettingsRepository) GetOrCreate(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsRepository) Update(ctx context.Context, settings *models.GuildSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockSalaryClaimRepository is a mock implementation of SalaryClaimRepository
type MockSalaryClaimRepository struct {
	mock.Mock
}

func (m *MockSalaryClaimRepository) LastClaimed(ctx context.Context, userID, guildID int64) (*time.Time, error) {
	args := m.Called(ctx, userID, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockSalaryClaimRepository) SetLastClaimed(ctx context.Context, userID, guildID int64, ts time.Time) error {
	args := m.Called(ctx, userID, guildID, ts)
	return args.Error(0)
}

// MockSalaryRunRepository is a mock implementation of SalaryRunRepository
type MockSalaryRunRepository struct {
	mock.Mock
}

func (m *MockSalaryRunRepository) Record(ctx context.Context, run *models.SalaryRun) (*models.SalaryRun, error) {
	args := m.Called(ctx, run)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SalaryRun), args.Error(1)
}

func (m *MockSalaryRunRepository) LastRun(ctx context.Context, guildID int64) (*models.SalaryRun, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SalaryRun), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, entry *models.BalanceHistory) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) ListRecent(ctx context.Context, userID, guildID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, userID, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockHostActor is a mock implementation of HostActor
type MockHostActor struct {
	mock.Mock
}

func (m *MockHostActor) AddRole(ctx context.Context, guildID, userID, roleID int64) error {
	args := m.Called(ctx, guildID, userID, roleID)
	return args.Error(0)
}

func (m *MockHostActor) RemoveRole(ctx context.Context, guildID, userID, roleID int64) error {
	args := m.Called(ctx, guildID, userID, roleID)
	return args.Error(0)
}

func (m *MockHostActor) Timeout(ctx context.Context, guildID, userID int64, duration time.Duration) error {
	args := m.Called(ctx, guildID, userID, duration)
	return args.Error(0)
}

func (m *MockHostActor) LookupMember(ctx context.Context, guildID, userID int64) (*Member, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Member), args.Error(1)
}

func (m *MockHostActor) LookupRole(ctx context.Context, guildID, roleID int64) (*Role, error) {
	args := m.Called(ctx, guildID, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Role), args.Error(1)
}

func (m *MockHostActor) RoleMembers(ctx context.Context, guildID, roleID int64) ([]*Member, error) {
	args := m.Called(ctx, guildID, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Member), args.Error(1)
}

// CapturingPublisher records published events for assertions
type CapturingPublisher struct {
	Events []events.Event
}

func (p *CapturingPublisher) Publish(e events.Event) {
	p.Events = append(p.Events, e)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// assigned with SetRepositories; Begin, Commit, and Rollback are regular
// mock expectations.
type MockUnitOfWork struct {
	mock.Mock

	userRepo          UserRepository
	itemRepo          ItemRepository
	inventoryRepo     InventoryRepository
	incomeRoleRepo    IncomeRoleRepository
	levelRewardRepo   LevelRewardRepository
	warningRepo       WarningRepository
	cooldownRepo      CooldownRepository
	guildSettingsRepo GuildSettingsRepository
	salaryClaimRepo   SalaryClaimRepository
	salaryRunRepo     SalaryRunRepository
	bus               *CapturingPublisher
}

// SetSalaryRunRepository wires the salary run repository separately; most
// tests never touch it.
func (m *MockUnitOfWork) SetSalaryRunRepository(runs SalaryRunRepository) {
	m.salaryRunRepo = runs
}

// SetRepositories wires the mock repositories the test cares about. Nil
// entries panic if touched, which is the point.
func (m *MockUnitOfWork) SetRepositories(
	users UserRepository,
	items ItemRepository,
	inventory InventoryRepository,
	incomeRoles IncomeRoleRepository,
	levelRewards LevelRewardRepository,
	warnings WarningRepository,
	cooldowns CooldownRepository,
	guildSettings GuildSettingsRepository,
	salaryClaims SalaryClaimRepository,
) {
	m.userRepo = users
	m.itemRepo = items
	m.inventoryRepo = inventory
	m.incomeRoleRepo = incomeRoles
	m.levelRewardRepo = levelRewards
	m.warningRepo = warnings
	m.cooldownRepo = cooldowns
	m.guildSettingsRepo = guildSettings
	m.salaryClaimRepo = salaryClaims
	m.bus = &CapturingPublisher{}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository           { return m.userRepo }
func (m *MockUnitOfWork) ItemRepository() ItemRepository           { return m.itemRepo }
func (m *MockUnitOfWork) InventoryRepository() InventoryRepository { return m.inventoryRepo }
func (m *MockUnitOfWork) IncomeRoleRepository() IncomeRoleRepository {
	return m.incomeRoleRepo
}
func (m *MockUnitOfWork) LevelRewardRepository() LevelRewardRepository {
	return m.levelRewardRepo
}
func (m *MockUnitOfWork) WarningRepository() WarningRepository   { return m.warningRepo }
func (m *MockUnitOfWork) CooldownRepository() CooldownRepository { return m.cooldownRepo }
func (m *MockUnitOfWork) GuildSettingsRepository() GuildSettingsRepository {
	return m.guildSettingsRepo
}
func (m *MockUnitOfWork) SalaryClaimRepository() SalaryClaimRepository {
	return m.salaryClaimRepo
}
func (m *MockUnitOfWork) SalaryRunRepository() SalaryRunRepository {
	return m.salaryRunRepo
}
func (m *MockUnitOfWork) EventBus() EventPublisher { return m.bus }

// PublishedEvents returns events captured by the transactional bus
func (m *MockUnitOfWork) PublishedEvents() []events.Event {
	if m.bus == nil {
		return nil
	}
	return m.bus.Events
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
