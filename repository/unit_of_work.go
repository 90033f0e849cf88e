package repository

import (
	"context"
	"fmt"

	"treasurer/database"
	"treasurer/events"
	"treasurer/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus

	userRepo          service.UserRepository
	itemRepo          service.ItemRepository
	inventoryRepo     service.InventoryRepository
	incomeRoleRepo    service.IncomeRoleRepository
	levelRewardRepo   service.LevelRewardRepository
	warningRepo       service.WarningRepository
	cooldownRepo      service.CooldownRepository
	guildSettingsRepo service.GuildSettingsRepository
	salaryClaimRepo   service.SalaryClaimRepository
	salaryRunRepo     service.SalaryRunRepository
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories bound to the transaction
	u.userRepo = newUserRepositoryWithTx(tx)
	u.itemRepo = newItemRepositoryWithTx(tx)
	u.inventoryRepo = newInventoryRepositoryWithTx(tx)
	u.incomeRoleRepo = newIncomeRoleRepositoryWithTx(tx)
	u.levelRewardRepo = newLevelRewardRepositoryWithTx(tx)
	u.warningRepo = newWarningRepositoryWithTx(tx)
	u.cooldownRepo = newCooldownRepositoryWithTx(tx)
	u.guildSettingsRepo = newGuildSettingsRepositoryWithTx(tx)
	u.salaryClaimRepo = newSalaryClaimRepositoryWithTx(tx)
	u.salaryRunRepo = newSalaryRunRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and flushes pending events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}
	return nil
}

// Rollback rolls back the transaction and discards pending events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}
	return nil
}

func (u *unitOfWork) UserRepository() service.UserRepository {
	if u.userRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userRepo
}

func (u *unitOfWork) ItemRepository() service.ItemRepository {
	if u.itemRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.itemRepo
}

func (u *unitOfWork) InventoryRepository() service.InventoryRepository {
	if u.inventoryRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.inventoryRepo
}

func (u *unitOfWork) IncomeRoleRepository() service.IncomeRoleRepository {
	if u.incomeRoleRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.incomeRoleRepo
}

func (u *unitOfWork) LevelRewardRepository() service.LevelRewardRepository {
	if u.levelRewardRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.levelRewardRepo
}

func (u *unitOfWork) WarningRepository() service.WarningRepository {
	if u.warningRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.warningRepo
}

func (u *unitOfWork) CooldownRepository() service.CooldownRepository {
	if u.cooldownRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.cooldownRepo
}

func (u *unitOfWork) GuildSettingsRepository() service.GuildSettingsRepository {
	if u.guildSettingsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.guildSettingsRepo
}

func (u *unitOfWork) SalaryClaimRepository() service.SalaryClaimRepository {
	if u.salaryClaimRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.salaryClaimRepo
}

func (u *unitOfWork) SalaryRunRepository() service.SalaryRunRepository {
	if u.salaryRunRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.salaryRunRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
