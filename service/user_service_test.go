package service

import (
	"context"
	"errors"
	"testing"

	"treasurer/config"
	"treasurer/models"

	"github.com/stretchr/testify/assert"
)

func newMockUoW() (*MockUnitOfWork, *MockUnitOfWorkFactory, *MockUserRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil, nil, nil, nil, nil)
	mockFactory.On("Create").Return(mockUoW)
	return mockUoW, mockFactory, mockUserRepo
}

func testConfig() *config.Config {
	return &config.Config{
		DefaultBalance: 500,
		TransferTaxBps: 500,
	}
}

func TestTransfer_TaxDeductedFromRecipient(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo := newMockUoW()
	service := NewUserService(mockFactory, testConfig())

	sender := &models.User{UserID: 1, GuildID: 10, Cash: 1000}
	recipient := &models.User{UserID: 2, GuildID: 10, Cash: 0}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(1), int64(10)).Return(sender, nil)
	mockUserRepo.On("GetByID", ctx, int64(2), int64(10)).Return(recipient, nil)
	mockUserRepo.On("DeductCash", ctx, int64(1), int64(10), int64(200)).Return(true, nil)
	mockUserRepo.On("AdjustBalances", ctx, int64(2), int64(10), int64(190), int64(0)).
		Return(&models.User{UserID: 2, GuildID: 10, Cash: 190}, nil)

	result, err := service.Transfer(ctx, 1, 2, 10, 200)

	assert.NoError(t, err)
	assert.Equal(t, int64(10), result.Tax)
	assert.Equal(t, int64(190), result.Received)
	assert.Equal(t, int64(800), result.NewCash)
	mockUserRepo.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo := newMockUoW()
	service := NewUserService(mockFactory, testConfig())

	sender := &models.User{UserID: 1, GuildID: 10, Cash: 50}
	recipient := &models.User{UserID: 2, GuildID: 10}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(1), int64(10)).Return(sender, nil)
	mockUserRepo.On("GetByID", ctx, int64(2), int64(10)).Return(recipient, nil)
	mockUserRepo.On("DeductCash", ctx, int64(1), int64(10), int64(200)).Return(false, nil)

	result, err := service.Transfer(ctx, 1, 2, 10, 200)

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Nil(t, result)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestTransfer_RejectsSelfAndBadAmounts(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, _ := newMockUoW()
	service := NewUserService(mockFactory, testConfig())

	_, err := service.Transfer(ctx, 1, 1, 10, 200)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = service.Transfer(ctx, 1, 2, 10, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = service.Transfer(ctx, 1, 2, 10, -5)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestGetOrCreateUser_CreatesWithDefaultBalance(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo := newMockUoW()
	service := NewUserService(mockFactory, testConfig())

	created := &models.User{UserID: 7, GuildID: 10, Cash: 500, Level: 1}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(7), int64(10)).Return(nil, nil)
	mockUserRepo.On("Create", ctx, int64(7), int64(10), int64(500)).Return(created, nil)

	user, err := service.GetOrCreateUser(ctx, 7, 10)

	assert.NoError(t, err)
	assert.Equal(t, int64(500), user.Cash)
	assert.Len(t, mockUoW.PublishedEvents(), 1)
	mockUserRepo.AssertExpectations(t)
}

func TestDeposit_MovesCashToBank(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo := newMockUoW()
	service := NewUserService(mockFactory, testConfig())

	existing := &models.User{UserID: 7, GuildID: 10, Cash: 300, Bank: 100}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(7), int64(10)).Return(existing, nil)
	mockUserRepo.On("AdjustBalances", ctx, int64(7), int64(10), int64(-200), int64(200)).
		Return(&models.User{UserID: 7, GuildID: 10, Cash: 100, Bank: 300}, nil)

	user, err := service.Deposit(ctx, 7, 10, 200)

	assert.NoError(t, err)
	assert.Equal(t, int64(100), user.Cash)
	assert.Equal(t, int64(300), user.Bank)
}

func TestWithdraw_RejectsOverdraft(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo := newMockUoW()
	service := NewUserService(mockFactory, testConfig())

	existing := &models.User{UserID: 7, GuildID: 10, Cash: 0, Bank: 50}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(7), int64(10)).Return(existing, nil)

	user, err := service.Withdraw(ctx, 7, 10, 100)

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Nil(t, user)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestPurge_UnknownUser(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo := newMockUoW()
	service := NewUserService(mockFactory, testConfig())

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(7), int64(10)).Return(nil, nil)

	err := service.Purge(ctx, 7, 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetOrCreateUser_CreateFailure(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo := newMockUoW()
	service := NewUserService(mockFactory, testConfig())

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(7), int64(10)).Return(nil, nil)
	mockUserRepo.On("Create", ctx, int64(7), int64(10), int64(500)).
		Return(nil, errors.New("database error"))

	user, err := service.GetOrCreateUser(ctx, 7, 10)

	assert.Error(t, err)
	assert.Nil(t, user)
	mockUoW.AssertNotCalled(t, "Commit")
}
