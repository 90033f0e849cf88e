package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"treasurer/config"
	"treasurer/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func moderationConfig() *config.Config {
	return &config.Config{
		MaxWarnsBeforeAction: 3,
		DefaultMuteDuration:  time.Hour,
	}
}

func moderationMocks() (*MockUnitOfWork, *MockUnitOfWorkFactory, *MockWarningRepository, *MockHostActor) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockWarningRepo := new(MockWarningRepository)
	mockUoW.SetRepositories(nil, nil, nil, nil, nil, mockWarningRepo, nil, nil, nil)
	mockFactory.On("Create").Return(mockUoW)
	return mockUoW, mockFactory, mockWarningRepo, new(MockHostActor)
}

func TestWarn_BelowThresholdNoAction(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockWarningRepo, mockHost := moderationMocks()
	service := NewModerationService(mockFactory, mockHost, moderationConfig())

	mockHost.On("LookupMember", ctx, int64(10), int64(2)).
		Return(&Member{UserID: 2, GuildID: 10}, nil)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockWarningRepo.On("Append", ctx, mock.AnythingOfType("*models.Warning")).Return(nil)
	mockWarningRepo.On("CountByUser", ctx, int64(10), int64(2)).Return(1, nil)

	result, err := service.Warn(ctx, 10, 2, 99, "spamming")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.False(t, result.AutoActed)
	mockHost.AssertNotCalled(t, "Timeout")
}

func TestWarn_ThresholdTriggersTimeout(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockWarningRepo, mockHost := moderationMocks()
	service := NewModerationService(mockFactory, mockHost, moderationConfig())

	mockHost.On("LookupMember", ctx, int64(10), int64(2)).
		Return(&Member{UserID: 2, GuildID: 10}, nil)
	mockHost.On("Timeout", ctx, int64(10), int64(2), time.Hour).Return(nil)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockWarningRepo.On("Append", ctx, mock.AnythingOfType("*models.Warning")).Return(nil)
	mockWarningRepo.On("CountByUser", ctx, int64(10), int64(2)).Return(3, nil)

	result, err := service.Warn(ctx, 10, 2, 99, "again")

	require.NoError(t, err)
	assert.Equal(t, 3, result.Count)
	assert.True(t, result.AutoActed)
	assert.Len(t, mockUoW.PublishedEvents(), 1)
	mockHost.AssertExpectations(t)
}

func TestWarn_TimeoutFailureDoesNotVoidWarning(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockWarningRepo, mockHost := moderationMocks()
	service := NewModerationService(mockFactory, mockHost, moderationConfig())

	mockHost.On("LookupMember", ctx, int64(10), int64(2)).
		Return(&Member{UserID: 2, GuildID: 10}, nil)
	mockHost.On("Timeout", ctx, int64(10), int64(2), time.Hour).
		Return(errors.New("missing permissions"))

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockWarningRepo.On("Append", ctx, mock.AnythingOfType("*models.Warning")).Return(nil)
	mockWarningRepo.On("CountByUser", ctx, int64(10), int64(2)).Return(4, nil)

	result, err := service.Warn(ctx, 10, 2, 99, "still at it")

	require.NoError(t, err)
	assert.Equal(t, 4, result.Count)
	assert.False(t, result.AutoActed)
	assert.Contains(t, result.ActedError, "missing permissions")
	// The warning committed before the timeout was attempted
	mockUoW.AssertCalled(t, "Commit")
}

func TestWarn_RejectsBotsAndSelf(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, _, mockHost := moderationMocks()
	service := NewModerationService(mockFactory, mockHost, moderationConfig())

	_, err := service.Warn(ctx, 10, 99, 99, "self warn")
	assert.ErrorIs(t, err, ErrInvalidTarget)

	mockHost.On("LookupMember", ctx, int64(10), int64(2)).
		Return(&Member{UserID: 2, GuildID: 10, Bot: true}, nil)
	_, err = service.Warn(ctx, 10, 2, 99, "bot warn")
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestClearWarnings_ReportsCount(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockWarningRepo, mockHost := moderationMocks()
	service := NewModerationService(mockFactory, mockHost, moderationConfig())

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockWarningRepo.On("ClearByUser", ctx, int64(10), int64(2)).Return(int64(4), nil)

	cleared, err := service.ClearWarnings(ctx, 10, 2)

	require.NoError(t, err)
	assert.Equal(t, int64(4), cleared)
}

func TestWarnings_ListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockWarningRepo, mockHost := moderationMocks()
	service := NewModerationService(mockFactory, mockHost, moderationConfig())

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	expected := []*models.Warning{
		{ID: 2, GuildID: 10, UserID: 2, Reason: "second"},
		{ID: 1, GuildID: 10, UserID: 2, Reason: "first"},
	}
	mockWarningRepo.On("ListByUser", ctx, int64(10), int64(2)).Return(expected, nil)

	warnings, err := service.Warnings(ctx, 10, 2)

	require.NoError(t, err)
	assert.Equal(t, expected, warnings)
}
