package repository

import (
	"context"
	"testing"

	"treasurer/models"
	"treasurer/repository/testutil"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	missing, err := repo.GetByID(ctx, 1, testutil.TestGuildID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	created, err := repo.Create(ctx, 1, testutil.TestGuildID, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), created.Cash)
	assert.Equal(t, int64(0), created.Bank)
	assert.Equal(t, int64(1), created.Level)

	fetched, err := repo.GetByID(ctx, 1, testutil.TestGuildID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, created.Cash, fetched.Cash)

	// Same user ID in another guild is an independent row
	other, err := repo.GetByID(ctx, 1, testutil.TestGuildID+1)
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestUserRepository_AdjustBalancesClampsCash(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 2, testutil.TestGuildID, 100)
	require.NoError(t, err)

	// Debit past zero clamps instead of going negative
	user, err := repo.AdjustBalances(ctx, 2, testutil.TestGuildID, -250, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(0), user.Cash)
	assert.Equal(t, int64(50), user.Bank)
}

func TestUserRepository_DeductCash(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 3, testutil.TestGuildID, 100)
	require.NoError(t, err)

	ok, err := repo.DeductCash(ctx, 3, testutil.TestGuildID, 150)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.DeductCash(ctx, 3, testutil.TestGuildID, 100)
	require.NoError(t, err)
	assert.True(t, ok)

	user, err := repo.GetByID(ctx, 3, testutil.TestGuildID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), user.Cash)
}

func TestUserRepository_LeaderboardsAndStats(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	// Seed all three rows in one transaction
	balances := []int64{100, 300, 200}
	err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
		txRepo := newUserRepositoryWithTx(tx)
		for idx, cash := range balances {
			if _, err := txRepo.Create(ctx, int64(idx+10), testutil.TestGuildID, cash); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	entries, err := repo.WealthLeaderboard(ctx, testutil.TestGuildID, models.WealthKeyTotal, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(11), entries[0].UserID)
	assert.Equal(t, int64(1), entries[0].Rank)
	assert.Equal(t, int64(12), entries[1].UserID)

	stats, err := repo.EconomyStats(ctx, testutil.TestGuildID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Users)
	assert.Equal(t, int64(600), stats.TotalCash)
	assert.Equal(t, int64(11), stats.RichestID)
}

func TestUserRepository_TransactionRollsBackOnError(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	sentinel := assert.AnError
	err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
		txRepo := newUserRepositoryWithTx(tx)
		if _, err := txRepo.Create(ctx, 40, testutil.TestGuildID, 100); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	// The aborted create must leave no row behind
	gone, err := repo.GetByID(ctx, 40, testutil.TestGuildID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestUserRepository_XPAndRank(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 20, testutil.TestGuildID, 0)
	require.NoError(t, err)
	_, err = repo.Create(ctx, 21, testutil.TestGuildID, 0)
	require.NoError(t, err)

	user, err := repo.AddXP(ctx, 20, testutil.TestGuildID, 450)
	require.NoError(t, err)
	assert.Equal(t, int64(450), user.XP)

	require.NoError(t, repo.SetLevel(ctx, 20, testutil.TestGuildID, 2))

	rank, err := repo.XPRank(ctx, 20, testutil.TestGuildID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rank)

	rank, err = repo.XPRank(ctx, 21, testutil.TestGuildID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rank)
}

func TestUserRepository_DeleteCascadesInventory(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testDB := testutil.SetupTestDatabase(t)
	userRepo := NewUserRepository(testDB.DB)
	itemRepo := NewItemRepository(testDB.DB)
	invRepo := NewInventoryRepository(testDB.DB)
	ctx := context.Background()

	_, err := userRepo.Create(ctx, 30, testutil.TestGuildID, 100)
	require.NoError(t, err)
	item, err := itemRepo.Create(ctx, testutil.CreateTestItem(testutil.TestGuildID, "Widget", 50))
	require.NoError(t, err)
	require.NoError(t, invRepo.Add(ctx, 30, testutil.TestGuildID, item.ID, 2))

	require.NoError(t, userRepo.Delete(ctx, 30, testutil.TestGuildID))

	gone, err := userRepo.GetByID(ctx, 30, testutil.TestGuildID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	qty, err := invRepo.Quantity(ctx, 30, testutil.TestGuildID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), qty)
}
