package service

import (
	"context"
	"testing"
	"time"

	"treasurer/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fixedSpin(p models.Pocket) func() models.Pocket {
	return func() models.Pocket { return p }
}

func TestRoulette_ColumnBetPaysTwoToOne(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo := newMockUoW()
	service := NewRouletteServiceWithSpin(mockFactory, openCooldowns(), gameConfig(), fixedSpin(4))

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(1), int64(10)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 1000}, nil)
	mockUserRepo.On("AdjustBalances", ctx, int64(1), int64(10), int64(200), int64(0)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 1200}, nil)

	result, err := service.Spin(ctx, 1, 10, &models.RouletteBet{Kind: models.BetColumn1}, 100)

	require.NoError(t, err)
	assert.True(t, result.Win)
	assert.Equal(t, models.Pocket(4), result.Pocket)
	assert.Equal(t, int64(200), result.Delta)
	assert.Equal(t, int64(1200), result.NewCash)
}

func TestRoulette_ZeroLosesOutsideBets(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo := newMockUoW()
	service := NewRouletteServiceWithSpin(mockFactory, openCooldowns(), gameConfig(), fixedSpin(0))

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(1), int64(10)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 1000}, nil)
	mockUserRepo.On("AdjustBalances", ctx, int64(1), int64(10), int64(-100), int64(0)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 900}, nil)

	result, err := service.Spin(ctx, 1, 10, &models.RouletteBet{Kind: models.BetRed}, 100)

	require.NoError(t, err)
	assert.False(t, result.Win)
	assert.Equal(t, int64(-100), result.Delta)
}

func TestRoulette_StraightOnZeroWins(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo := newMockUoW()
	service := NewRouletteServiceWithSpin(mockFactory, openCooldowns(), gameConfig(), fixedSpin(0))

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(1), int64(10)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 1000}, nil)
	mockUserRepo.On("AdjustBalances", ctx, int64(1), int64(10), int64(3500), int64(0)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 4500}, nil)

	result, err := service.Spin(ctx, 1, 10, &models.RouletteBet{Kind: models.BetStraight, Number: 0}, 100)

	require.NoError(t, err)
	assert.True(t, result.Win)
	assert.Equal(t, int64(3500), result.Delta)
}

func TestRoulette_RejectsInvalidBets(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, _ := newMockUoW()
	service := NewRouletteServiceWithSpin(mockFactory, openCooldowns(), gameConfig(), fixedSpin(4))

	// 00 straight is only valid on an American wheel
	_, err := service.Spin(ctx, 1, 10, &models.RouletteBet{Kind: models.BetStraight, Number: models.PocketDoubleZero}, 100)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = service.Spin(ctx, 1, 10, &models.RouletteBet{Kind: models.BetColumn1}, 10)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = service.Spin(ctx, 1, 10, nil, 100)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRoulette_SpinBlockedByCooldown(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockUserRepo := newMockUoW()
	service := NewRouletteServiceWithSpin(mockFactory, lockedCooldowns(5*time.Second), gameConfig(), fixedSpin(4))

	_, err := service.Spin(ctx, 1, 10, &models.RouletteBet{Kind: models.BetColumn1}, 100)

	require.Error(t, err)
	cdErr, ok := IsCooldown(err)
	require.True(t, ok)
	assert.Equal(t, ActionRoulette, cdErr.Action)
	mockUserRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestRoulette_SpinStampsCooldown(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo := newMockUoW()
	cooldownRepo := new(MockCooldownRepository)
	cooldownRepo.On("Remaining", mock.Anything, int64(1), int64(10), ActionRoulette, mock.Anything).
		Return(time.Duration(0), nil)
	cooldownRepo.On("Set", mock.Anything, int64(1), int64(10), ActionRoulette, mock.Anything).
		Return(nil)
	cooldowns := NewCooldownService(cooldownRepo, gameConfig())
	service := NewRouletteServiceWithSpin(mockFactory, cooldowns, gameConfig(), fixedSpin(4))

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockUserRepo.On("GetByID", ctx, int64(1), int64(10)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 1000}, nil)
	mockUserRepo.On("AdjustBalances", ctx, int64(1), int64(10), int64(200), int64(0)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 1200}, nil)

	_, err := service.Spin(ctx, 1, 10, &models.RouletteBet{Kind: models.BetColumn1}, 100)

	require.NoError(t, err)
	cooldownRepo.AssertCalled(t, "Set", mock.Anything, int64(1), int64(10), ActionRoulette, mock.Anything)
}

func TestRoulette_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo := newMockUoW()
	service := NewRouletteServiceWithSpin(mockFactory, openCooldowns(), gameConfig(), fixedSpin(4))

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(1), int64(10)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 20}, nil)

	result, err := service.Spin(ctx, 1, 10, &models.RouletteBet{Kind: models.BetColumn1}, 100)

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Nil(t, result)
	mockUoW.AssertNotCalled(t, "Commit")
}
