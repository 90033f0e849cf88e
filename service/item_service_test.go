package service

import (
	"context"
	"testing"
	"time"

	"treasurer/events"
	"treasurer/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemMocks() (*MockUnitOfWork, *MockUnitOfWorkFactory, *MockUserRepository, *MockItemRepository, *MockInventoryRepository, *MockHostActor) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockItemRepo := new(MockItemRepository)
	mockInventoryRepo := new(MockInventoryRepository)
	mockRewardRepo := new(MockLevelRewardRepository)
	mockUoW.SetRepositories(mockUserRepo, mockItemRepo, mockInventoryRepo, nil, mockRewardRepo, nil, nil, nil, nil)
	mockFactory.On("Create").Return(mockUoW)
	return mockUoW, mockFactory, mockUserRepo, mockItemRepo, mockInventoryRepo, new(MockHostActor)
}

func int64ptr(v int64) *int64 { return &v }

func TestPurchase_FullPipeline(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo, mockItemRepo, mockInventoryRepo, mockHost := itemMocks()
	service := NewItemService(mockFactory, NewLevelService(mockFactory), mockHost, testConfig())

	item := &models.Item{
		ID:           3,
		GuildID:      10,
		Name:         "Fishing Rod",
		Price:        250,
		Stock:        int64ptr(5),
		MaxPerUser:   int64ptr(2),
		GrantedRoles: []int64{777},
	}

	mockHost.On("LookupMember", ctx, int64(10), int64(1)).
		Return(&Member{UserID: 1, GuildID: 10}, nil)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockItemRepo.On("GetByName", ctx, int64(10), "Fishing Rod").Return(item, nil)
	mockUserRepo.On("GetByID", ctx, int64(1), int64(10)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 1000}, nil)
	mockInventoryRepo.On("Quantity", ctx, int64(1), int64(10), int64(3)).Return(int64(0), nil)
	mockUserRepo.On("DeductCash", ctx, int64(1), int64(10), int64(500)).Return(true, nil)
	mockItemRepo.On("DecrementStock", ctx, int64(3), int64(2)).Return(true, nil)
	mockInventoryRepo.On("Add", ctx, int64(1), int64(10), int64(3), int64(2)).Return(nil)

	result, err := service.Purchase(ctx, 1, 10, "Fishing Rod", 2)

	require.NoError(t, err)
	assert.Equal(t, int64(500), result.TotalPrice)
	assert.Equal(t, int64(500), result.NewCash)

	published := mockUoW.PublishedEvents()
	require.Len(t, published, 1)
	purchased, ok := published[0].(events.ItemPurchasedEvent)
	require.True(t, ok)
	assert.Equal(t, []int64{777}, purchased.RolesGranted)
	mockInventoryRepo.AssertExpectations(t)
}

func TestPurchase_EnforcesPerUserCap(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo, mockItemRepo, mockInventoryRepo, mockHost := itemMocks()
	service := NewItemService(mockFactory, NewLevelService(mockFactory), mockHost, testConfig())

	item := &models.Item{ID: 3, GuildID: 10, Name: "Fishing Rod", Price: 100, MaxPerUser: int64ptr(2)}

	mockHost.On("LookupMember", ctx, int64(10), int64(1)).
		Return(&Member{UserID: 1, GuildID: 10}, nil)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockItemRepo.On("GetByName", ctx, int64(10), "Fishing Rod").Return(item, nil)
	mockUserRepo.On("GetByID", ctx, int64(1), int64(10)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 1000}, nil)
	mockInventoryRepo.On("Quantity", ctx, int64(1), int64(10), int64(3)).Return(int64(2), nil)

	result, err := service.Purchase(ctx, 1, 10, "Fishing Rod", 1)

	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.Nil(t, result)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestPurchase_ExpiredAndRoleChecks(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, _, mockItemRepo, _, mockHost := itemMocks()
	service := NewItemService(mockFactory, NewLevelService(mockFactory), mockHost, testConfig())

	past := time.Now().Add(-time.Hour)
	expired := &models.Item{ID: 4, GuildID: 10, Name: "Old Map", Price: 10, ExpiresAt: &past}
	gated := &models.Item{ID: 5, GuildID: 10, Name: "VIP Pass", Price: 10, RequiredRoles: []int64{42}}

	mockHost.On("LookupMember", ctx, int64(10), int64(1)).
		Return(&Member{UserID: 1, GuildID: 10}, nil)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockItemRepo.On("GetByName", ctx, int64(10), "Old Map").Return(expired, nil)
	_, err := service.Purchase(ctx, 1, 10, "Old Map", 1)
	assert.ErrorIs(t, err, ErrItemExpired)

	mockItemRepo.On("GetByName", ctx, int64(10), "VIP Pass").Return(gated, nil)
	_, err = service.Purchase(ctx, 1, 10, "VIP Pass", 1)
	assert.ErrorIs(t, err, ErrRequirementUnmet)
}

func TestUse_AppliesCashAndReportsOpaqueEffects(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo, mockItemRepo, mockInventoryRepo, mockHost := itemMocks()
	service := NewItemService(mockFactory, NewLevelService(mockFactory), mockHost, testConfig())

	item := &models.Item{
		ID:      3,
		GuildID: 10,
		Name:    "Lucky Coin",
		Usable:  true,
		Effects: models.EffectMap{"cash": float64(50), "announce": "a winner is you"},
	}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockItemRepo.On("GetByName", ctx, int64(10), "Lucky Coin").Return(item, nil)
	mockInventoryRepo.On("RemoveExact", ctx, int64(1), int64(10), int64(3), int64(2)).Return(true, nil)
	mockUserRepo.On("AdjustBalances", ctx, int64(1), int64(10), int64(100), int64(0)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 100}, nil)

	result, err := service.Use(ctx, 1, 10, "Lucky Coin", 2)

	require.NoError(t, err)
	assert.Len(t, result.Applied, 1)
	assert.Len(t, result.Reported, 1)
	assert.Equal(t, "announce", result.Reported[0].Kind())
}

func TestUse_RequiresUsableAndOwnership(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, _, mockItemRepo, mockInventoryRepo, mockHost := itemMocks()
	service := NewItemService(mockFactory, NewLevelService(mockFactory), mockHost, testConfig())

	trophy := &models.Item{ID: 6, GuildID: 10, Name: "Trophy", Usable: false}
	potion := &models.Item{ID: 7, GuildID: 10, Name: "Potion", Usable: true}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockItemRepo.On("GetByName", ctx, int64(10), "Trophy").Return(trophy, nil)
	_, err := service.Use(ctx, 1, 10, "Trophy", 1)
	assert.ErrorIs(t, err, ErrNotUsable)

	mockItemRepo.On("GetByName", ctx, int64(10), "Potion").Return(potion, nil)
	mockInventoryRepo.On("RemoveExact", ctx, int64(1), int64(10), int64(7), int64(1)).Return(false, nil)
	_, err = service.Use(ctx, 1, 10, "Potion", 1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestTake_RemovesClampedQuantity(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, _, mockItemRepo, mockInventoryRepo, mockHost := itemMocks()
	service := NewItemService(mockFactory, NewLevelService(mockFactory), mockHost, testConfig())

	potion := &models.Item{ID: 7, GuildID: 10, Name: "Potion"}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockItemRepo.On("GetByName", ctx, int64(10), "Potion").Return(potion, nil)
	mockInventoryRepo.On("Remove", ctx, int64(1), int64(10), int64(7), int64(5)).Return(nil)

	err := service.Take(ctx, 1, 10, "Potion", 5)

	require.NoError(t, err)
	mockInventoryRepo.AssertExpectations(t)
}

func TestTake_RejectsUnknownItemAndBadQuantity(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, _, mockItemRepo, mockInventoryRepo, mockHost := itemMocks()
	service := NewItemService(mockFactory, NewLevelService(mockFactory), mockHost, testConfig())

	err := service.Take(ctx, 1, 10, "Potion", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockItemRepo.On("GetByName", ctx, int64(10), "Ghost").Return(nil, nil)

	err = service.Take(ctx, 1, 10, "Ghost", 1)
	assert.ErrorIs(t, err, ErrNotFound)
	mockInventoryRepo.AssertNotCalled(t, "Remove")
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestGive_RejectsBotsAndShortInventory(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo, mockItemRepo, mockInventoryRepo, mockHost := itemMocks()
	service := NewItemService(mockFactory, NewLevelService(mockFactory), mockHost, testConfig())

	err := service.Give(ctx, 1, 1, 10, "Potion", 1)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	mockHost.On("LookupMember", ctx, int64(10), int64(3)).
		Return(&Member{UserID: 3, GuildID: 10, Bot: true}, nil)
	err = service.Give(ctx, 1, 3, 10, "Potion", 1)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	mockHost.On("LookupMember", ctx, int64(10), int64(2)).
		Return(&Member{UserID: 2, GuildID: 10}, nil)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	potion := &models.Item{ID: 7, GuildID: 10, Name: "Potion"}
	mockItemRepo.On("GetByName", ctx, int64(10), "Potion").Return(potion, nil)
	mockUserRepo.On("GetByID", ctx, int64(2), int64(10)).
		Return(&models.User{UserID: 2, GuildID: 10}, nil)
	mockInventoryRepo.On("RemoveExact", ctx, int64(1), int64(10), int64(7), int64(1)).Return(false, nil)

	err = service.Give(ctx, 1, 2, 10, "Potion", 1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	mockUoW.AssertNotCalled(t, "Commit")
}
