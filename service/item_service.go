package service

import (
	"context"
	"fmt"
	"time"

	"treasurer/config"
	"treasurer/events"
	"treasurer/models"

	log "github.com/sirupsen/logrus"
)

type itemService struct {
	uowFactory UnitOfWorkFactory
	levels     LevelService
	host       HostActor
	cfg        *config.Config
}

// NewItemService creates a new item service
func NewItemService(uowFactory UnitOfWorkFactory, levels LevelService, host HostActor, cfg *config.Config) ItemService {
	return &itemService{
		uowFactory: uowFactory,
		levels:     levels,
		host:       host,
		cfg:        cfg,
	}
}

func (s *itemService) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	if models.Key(item.Name) == "" {
		return nil, fmt.Errorf("%w: item name is empty", ErrInvalidAmount)
	}
	if item.Price < 0 {
		return nil, ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.ItemRepository().GetByName(ctx, item.GuildID, item.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: item %q already exists", ErrInvalidAmount, item.Name)
	}

	created, err := uow.ItemRepository().Create(ctx, item)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return created, nil
}

func (s *itemService) UpdateItem(ctx context.Context, item *models.Item) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.ItemRepository().Update(ctx, item); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *itemService) DeleteItem(ctx context.Context, guildID int64, name string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := uow.ItemRepository().GetByName(ctx, guildID, name)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}
	// Held inventory rows go with the item
	if err := uow.ItemRepository().Delete(ctx, item.ID); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *itemService) GetItem(ctx context.Context, guildID int64, name string) (*models.Item, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := uow.ItemRepository().GetByName(ctx, guildID, name)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return item, nil
}

func (s *itemService) ListItems(ctx context.Context, guildID int64, category string) ([]*models.Item, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	items, err := uow.ItemRepository().ListByGuild(ctx, guildID, category)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return items, nil
}

// Purchase runs the full buy pipeline. Payment, stock, and inventory land
// in one transaction; role side effects ride the event bus after commit and
// are never rolled back.
func (s *itemService) Purchase(ctx context.Context, userID, guildID int64, name string, qty int64) (*models.PurchaseResult, error) {
	if qty <= 0 {
		return nil, ErrInvalidAmount
	}
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

	item, err := uow.ItemRepository().GetByName(ctx, guildID, name)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	if item.Expired(time.Now()) {
		return nil, ErrItemExpired
	}
	if err := checkRoleEligibility(item, member); err != nil {
		return nil, err
	}

	user, err := getOrCreate(ctx, uow, userID, guildID, s.cfg.DefaultBalance)
	if err != nil {
		return nil, err
	}

	total := item.Price * qty
	if user.Cash < total {
		return nil, ErrInsufficientFunds
	}
	if item.MaxBalance != nil && user.TotalBalance() > *item.MaxBalance {
		return nil, fmt.Errorf("%w: balance exceeds %d", ErrRequirementUnmet, *item.MaxBalance)
	}
	if item.Stock != nil && qty > *item.Stock {
		return nil, ErrOutOfStock
	}
	if item.MaxPerUser != nil {
		owned, err := uow.InventoryRepository().Quantity(ctx, userID, guildID, item.ID)
		if err != nil {
			return nil, err
		}
		if owned+qty > *item.MaxPerUser {
			return nil, fmt.Errorf("%w: you may hold %d more", ErrLimitExceeded, *item.MaxPerUser-owned)
		}
	}
	if item.MaxPerTx != nil && qty > *item.MaxPerTx {
		return nil, fmt.Errorf("%w: at most %d per purchase", ErrLimitExceeded, *item.MaxPerTx)
	}

	ok, err := uow.UserRepository().DeductCash(ctx, userID, guildID, total)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInsufficientFunds
	}
	ok, err = uow.ItemRepository().DecrementStock(ctx, item.ID, qty)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOutOfStock
	}
	if err := uow.InventoryRepository().Add(ctx, userID, guildID, item.ID, qty); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.ItemPurchasedEvent{
		UserID:       userID,
		GuildID:      guildID,
		ItemName:     item.Name,
		Quantity:     qty,
		TotalPrice:   total,
		RolesGranted: item.GrantedRoles,
		RolesRevoked: item.RevokedRoles,
	})
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":  userID,
		"guildID": guildID,
		"item":    item.Name,
		"qty":     qty,
		"total":   total,
	}).Info("Item purchased")

	return &models.PurchaseResult{
		Item:       item,
		Quantity:   qty,
		TotalPrice: total,
		NewCash:    user.Cash - total,
	}, nil
}

// checkRoleEligibility verifies required and excluded role constraints
func checkRoleEligibility(item *models.Item, member *Member) error {
	held := make(map[int64]bool, len(member.Roles))
	for _, r := range member.Roles {
		held[r] = true
	}
	for _, required := range item.RequiredRoles {
		if !held[required] {
			return fmt.Errorf("%w: missing required role", ErrRequirementUnmet)
		}
	}
	for _, excluded := range item.ExcludedRoles {
		if held[excluded] {
			return fmt.Errorf("%w: excluded role held", ErrRequirementUnmet)
		}
	}
	return nil
}

func (s *itemService) Give(ctx context.Context, fromID, toID, guildID int64, name string, qty int64) error {
	if qty <= 0 {
		return ErrInvalidAmount
	}
	if fromID == toID {
		return ErrInvalidTarget
	}
	member, err := s.host.LookupMember(ctx, guildID, toID)
	if err != nil {
		return err
	}
	if member == nil || member.Bot {
		return ErrInvalidTarget
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := uow.ItemRepository().GetByName(ctx, guildID, name)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}
	if _, err := getOrCreate(ctx, uow, toID, guildID, s.cfg.DefaultBalance); err != nil {
		return err
	}

	ok, err := uow.InventoryRepository().RemoveExact(ctx, fromID, guildID, item.ID, qty)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: you do not own %d of %q", ErrInvalidAmount, qty, item.Name)
	}
	if err := uow.InventoryRepository().Add(ctx, toID, guildID, item.ID, qty); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *itemService) Spawn(ctx context.Context, userID, guildID int64, name string, qty int64) error {
	if qty <= 0 {
		return ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := uow.ItemRepository().GetByName(ctx, guildID, name)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}
	if _, err := getOrCreate(ctx, uow, userID, guildID, s.cfg.DefaultBalance); err != nil {
		return err
	}
	if err := uow.InventoryRepository().Add(ctx, userID, guildID, item.ID, qty); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":  userID,
		"guildID": guildID,
		"item":    item.Name,
		"qty":     qty,
	}).Info("Item spawned")
	return nil
}

// Take removes items from a member's inventory without compensation. The
// removal clamps at the held quantity, so taking more than is owned just
// empties the slot.
func (s *itemService) Take(ctx context.Context, userID, guildID int64, name string, qty int64) error {
	if qty <= 0 {
		return ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := uow.ItemRepository().GetByName(ctx, guildID, name)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}
	if err := uow.InventoryRepository().Remove(ctx, userID, guildID, item.ID, qty); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":  userID,
		"guildID": guildID,
		"item":    item.Name,
		"qty":     qty,
	}).Info("Item taken")
	return nil
}

// Use consumes items and applies their effects. Cash and XP effects are
// applied in the transaction; other effect kinds are reported untouched.
func (s *itemService) Use(ctx context.Context, userID, guildID int64, name string, qty int64) (*models.UseResult, error) {
	if qty <= 0 {
		return nil, ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := uow.ItemRepository().GetByName(ctx, guildID, name)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	if !item.Usable {
		return nil, ErrNotUsable
	}

	ok, err := uow.InventoryRepository().RemoveExact(ctx, userID, guildID, item.ID, qty)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: you do not own %d of %q", ErrInvalidAmount, qty, item.Name)
	}

	effects, err := item.Effects.Decode()
	if err != nil {
		return nil, fmt.Errorf("item %q has malformed effects: %w", item.Name, err)
	}

	result := &models.UseResult{ItemName: item.Name, Quantity: qty}
	for _, effect := range effects {
		switch e := effect.(type) {
		case models.CashEffect:
			if _, err := uow.UserRepository().AdjustBalances(ctx, userID, guildID, e.Amount*qty, 0); err != nil {
				return nil, err
			}
			result.Applied = append(result.Applied, effect)
		case models.XPEffect:
			levelUp, err := s.levels.ApplyXP(ctx, uow, userID, guildID, e.Amount*qty)
			if err != nil {
				return nil, err
			}
			if levelUp != nil {
				result.LeveledUp = true
				result.NewLevel = levelUp.NewLevel
			}
			result.Applied = append(result.Applied, effect)
		default:
			result.Reported = append(result.Reported, effect)
		}
	}

	uow.EventBus().Publish(events.ItemUsedEvent{
		UserID:   userID,
		GuildID:  guildID,
		ItemName: item.Name,
	})
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, nil
}

func (s *itemService) Inventory(ctx context.Context, userID, guildID int64) ([]*models.InventoryEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.InventoryRepository().ListByUser(ctx, userID, guildID)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return entries, nil
}
