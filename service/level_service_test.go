package service

import (
	"context"
	"testing"

	"treasurer/events"
	"treasurer/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelCurve(t *testing.T) {
	service := NewLevelService(new(MockUnitOfWorkFactory))

	assert.Equal(t, int64(1), service.Level(0))
	assert.Equal(t, int64(1), service.Level(99))
	assert.Equal(t, int64(1), service.Level(101))
	assert.Equal(t, int64(1), service.Level(399))
	assert.Equal(t, int64(2), service.Level(400))
	assert.Equal(t, int64(2), service.Level(406))
	assert.Equal(t, int64(3), service.Level(900))

	assert.Equal(t, int64(100), service.XPRequired(1))
	assert.Equal(t, int64(400), service.XPRequired(2))
	assert.Equal(t, int64(2500), service.XPRequired(5))
}

func TestApplyXP_NoLevelUpBelowThreshold(t *testing.T) {
	ctx := context.Background()
	mockUoW := new(MockUnitOfWork)
	mockUserRepo := new(MockUserRepository)
	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil, nil, nil, nil, nil)
	service := NewLevelService(new(MockUnitOfWorkFactory))

	mockUserRepo.On("GetByID", ctx, int64(1), int64(10)).
		Return(&models.User{UserID: 1, GuildID: 10, XP: 95, Level: 1}, nil)
	mockUserRepo.On("AddXP", ctx, int64(1), int64(10), int64(6)).
		Return(&models.User{UserID: 1, GuildID: 10, XP: 101, Level: 1}, nil)

	result, err := service.ApplyXP(ctx, mockUoW, 1, 10, 6)

	require.NoError(t, err)
	assert.Nil(t, result)
	mockUserRepo.AssertNotCalled(t, "SetLevel")
}

func TestApplyXP_LevelUpAppliesFinalLevelReward(t *testing.T) {
	ctx := context.Background()
	mockUoW := new(MockUnitOfWork)
	mockUserRepo := new(MockUserRepository)
	mockItemRepo := new(MockItemRepository)
	mockInventoryRepo := new(MockInventoryRepository)
	mockRewardRepo := new(MockLevelRewardRepository)
	mockUoW.SetRepositories(mockUserRepo, mockItemRepo, mockInventoryRepo, nil, mockRewardRepo, nil, nil, nil, nil)
	service := NewLevelService(new(MockUnitOfWorkFactory))

	mockUserRepo.On("GetByID", ctx, int64(1), int64(10)).
		Return(&models.User{UserID: 1, GuildID: 10, XP: 101, Level: 1}, nil)
	mockUserRepo.On("AddXP", ctx, int64(1), int64(10), int64(305)).
		Return(&models.User{UserID: 1, GuildID: 10, XP: 406, Level: 1}, nil)
	mockUserRepo.On("SetLevel", ctx, int64(1), int64(10), int64(2)).Return(nil)

	mockRewardRepo.On("Get", ctx, int64(10), int64(2)).Return(&models.LevelReward{
		GuildID:  10,
		Level:    2,
		Money:    500,
		RolesAdd: []int64{555},
		Items:    map[string]int64{"potion": 1},
	}, nil)
	mockUserRepo.On("AdjustBalances", ctx, int64(1), int64(10), int64(500), int64(0)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 500}, nil)
	mockItemRepo.On("GetByName", ctx, int64(10), "potion").
		Return(&models.Item{ID: 3, GuildID: 10, Name: "potion"}, nil)
	mockInventoryRepo.On("Add", ctx, int64(1), int64(10), int64(3), int64(1)).Return(nil)

	result, err := service.ApplyXP(ctx, mockUoW, 1, 10, 305)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(1), result.OldLevel)
	assert.Equal(t, int64(2), result.NewLevel)
	require.NotNil(t, result.Reward)
	assert.Equal(t, int64(500), result.Reward.Money)

	published := mockUoW.PublishedEvents()
	require.Len(t, published, 1)
	levelUp, ok := published[0].(events.LevelUpEvent)
	require.True(t, ok)
	assert.Equal(t, []int64{555}, levelUp.RolesAdd)
	mockUserRepo.AssertExpectations(t)
	mockInventoryRepo.AssertExpectations(t)
}

func TestApplyXP_NoRewardConfigured(t *testing.T) {
	ctx := context.Background()
	mockUoW := new(MockUnitOfWork)
	mockUserRepo := new(MockUserRepository)
	mockRewardRepo := new(MockLevelRewardRepository)
	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, mockRewardRepo, nil, nil, nil, nil)
	service := NewLevelService(new(MockUnitOfWorkFactory))

	mockUserRepo.On("GetByID", ctx, int64(1), int64(10)).
		Return(&models.User{UserID: 1, GuildID: 10, XP: 390, Level: 1}, nil)
	mockUserRepo.On("AddXP", ctx, int64(1), int64(10), int64(20)).
		Return(&models.User{UserID: 1, GuildID: 10, XP: 410, Level: 1}, nil)
	mockUserRepo.On("SetLevel", ctx, int64(1), int64(10), int64(2)).Return(nil)
	mockRewardRepo.On("Get", ctx, int64(10), int64(2)).Return(nil, nil)

	result, err := service.ApplyXP(ctx, mockUoW, 1, 10, 20)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Nil(t, result.Reward)
	assert.Len(t, mockUoW.PublishedEvents(), 1)
}

func TestSetReward_RejectsLevelOne(t *testing.T) {
	service := NewLevelService(new(MockUnitOfWorkFactory))

	err := service.SetReward(context.Background(), &models.LevelReward{GuildID: 10, Level: 1})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
