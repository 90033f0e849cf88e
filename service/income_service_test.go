package service

import (
	"context"
	"testing"
	"time"

	"treasurer/config"
	"treasurer/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRand replays scripted draws
type stubRand struct {
	ints   []int64
	floats []float64
}

func (r *stubRand) Int63n(n int64) int64 {
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v
}

func (r *stubRand) Float64() float64 {
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

// stubCooldowns always reports the same remaining duration
type stubCooldowns struct {
	remaining time.Duration
}

func (s *stubCooldowns) Check(ctx context.Context, userID, guildID int64, action string) (time.Duration, error) {
	return s.remaining, nil
}
func (s *stubCooldowns) Start(ctx context.Context, userID, guildID int64, action string) error {
	return nil
}
func (s *stubCooldowns) Sweep(ctx context.Context) (int64, error) { return 0, nil }

func incomeConfig() *config.Config {
	return &config.Config{
		DefaultBalance:  500,
		WorkMinPayout:   100,
		WorkMaxPayout:   400,
		WorkBonusChance: 0.15,
		CrimeMinPayout:  250,
		CrimeMaxPayout:  700,
		CrimeSuccess:    0.3,
		CrimeMinLosePct: 0.1,
		CrimeMaxLosePct: 0.3,
		SlutMinPayout:   150,
		SlutMaxPayout:   500,
		SlutSuccess:     0.5,
		SlutMinLosePct:  0.05,
		SlutMaxLosePct:  0.2,
		RobFloor:        100,
		RobSelfFloor:    50,
		DailyBase:       1000,
	}
}

func TestWork_BonusMultipliesPayout(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo := newMockUoW()
	// Gain draw lands on 200 (100 + 100), bonus roll fires
	rng := &stubRand{ints: []int64{100}, floats: []float64{0.01}}
	service := NewIncomeService(mockFactory, &stubCooldowns{}, new(MockHostActor), incomeConfig(), rng)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(1), int64(10)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 0}, nil)
	mockUserRepo.On("AdjustBalances", ctx, int64(1), int64(10), int64(300), int64(0)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 300}, nil)

	result, err := service.Work(ctx, 1, 10)

	require.NoError(t, err)
	assert.True(t, result.Bonus)
	assert.Equal(t, int64(300), result.Gain)
	assert.Equal(t, int64(300), result.NewCash)
	mockUserRepo.AssertExpectations(t)
}

func TestWork_OnCooldown(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, _ := newMockUoW()
	service := NewIncomeService(mockFactory, &stubCooldowns{remaining: 5 * time.Minute},
		new(MockHostActor), incomeConfig(), &stubRand{})

	result, err := service.Work(ctx, 1, 10)

	assert.Nil(t, result)
	ce, ok := IsCooldown(err)
	require.True(t, ok)
	assert.Equal(t, ActionWork, ce.Action)
	assert.Equal(t, 5*time.Minute, ce.Remaining)
}

func TestCrime_FailureDebitsShareOfTotal(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo := newMockUoW()
	// Success draw 0.9 >= 0.3 fails; loss pct draw 0.5 picks the midpoint
	// of [0.1, 0.3] so 20% of total wealth
	rng := &stubRand{floats: []float64{0.9, 0.5}}
	service := NewIncomeService(mockFactory, &stubCooldowns{}, new(MockHostActor), incomeConfig(), rng)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(1), int64(10)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 400, Bank: 600}, nil)
	mockUserRepo.On("AdjustBalances", ctx, int64(1), int64(10), int64(-200), int64(0)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 200, Bank: 600}, nil)

	result, err := service.Crime(ctx, 1, 10)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, int64(200), result.Loss)
	assert.Equal(t, int64(200), result.NewCash)
}

func TestSlut_SuccessPays(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo := newMockUoW()
	// Success draw 0.2 < 0.5; gain draw lands on 150 + 50
	rng := &stubRand{ints: []int64{50}, floats: []float64{0.2}}
	service := NewIncomeService(mockFactory, &stubCooldowns{}, new(MockHostActor), incomeConfig(), rng)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(1), int64(10)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 0}, nil)
	mockUserRepo.On("AdjustBalances", ctx, int64(1), int64(10), int64(200), int64(0)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 200}, nil)

	result, err := service.Slut(ctx, 1, 10)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(200), result.Gain)
}

func TestRob_TargetBelowFloorRejected(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo := newMockUoW()
	mockHost := new(MockHostActor)
	service := NewIncomeService(mockFactory, &stubCooldowns{}, mockHost, incomeConfig(), &stubRand{})

	mockHost.On("LookupMember", ctx, int64(10), int64(2)).
		Return(&Member{UserID: 2, GuildID: 10}, nil)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(1), int64(10)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 500}, nil)
	mockUserRepo.On("GetByID", ctx, int64(2), int64(10)).
		Return(&models.User{UserID: 2, GuildID: 10, Cash: 50}, nil)

	result, err := service.Rob(ctx, 1, 2, 10)

	assert.ErrorIs(t, err, ErrInvalidTarget)
	assert.Nil(t, result)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestRob_RejectsSelfAndBots(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, _ := newMockUoW()
	mockHost := new(MockHostActor)
	service := NewIncomeService(mockFactory, &stubCooldowns{}, mockHost, incomeConfig(), &stubRand{})

	_, err := service.Rob(ctx, 1, 1, 10)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	mockHost.On("LookupMember", ctx, int64(10), int64(2)).
		Return(&Member{UserID: 2, GuildID: 10, Bot: true}, nil)
	_, err = service.Rob(ctx, 1, 2, 10)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestRob_DepartedTargetRejected(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, _ := newMockUoW()
	mockHost := new(MockHostActor)
	service := NewIncomeService(mockFactory, &stubCooldowns{}, mockHost, incomeConfig(), &stubRand{})

	// The host reports members who left the guild as absent, not as errors
	mockHost.On("LookupMember", ctx, int64(10), int64(2)).Return(nil, nil)

	_, err := service.Rob(ctx, 1, 2, 10)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestRob_SuccessMovesCashAtomically(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo := newMockUoW()
	mockHost := new(MockHostActor)
	// Success draw 0.1 is under every possible probability; stolen draw
	// picks 100 + offset 150 within [100, 400]
	rng := &stubRand{ints: []int64{150}, floats: []float64{0.1}}
	service := NewIncomeService(mockFactory, &stubCooldowns{}, mockHost, incomeConfig(), rng)

	mockHost.On("LookupMember", ctx, int64(10), int64(2)).
		Return(&Member{UserID: 2, GuildID: 10}, nil)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(1), int64(10)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 200}, nil)
	mockUserRepo.On("GetByID", ctx, int64(2), int64(10)).
		Return(&models.User{UserID: 2, GuildID: 10, Cash: 1000}, nil)
	mockUserRepo.On("AdjustBalances", ctx, int64(2), int64(10), int64(-250), int64(0)).
		Return(&models.User{UserID: 2, GuildID: 10, Cash: 750}, nil)
	mockUserRepo.On("AdjustBalances", ctx, int64(1), int64(10), int64(250), int64(0)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 450}, nil)

	result, err := service.Rob(ctx, 1, 2, 10)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(250), result.Stolen)
	assert.Equal(t, int64(450), result.ActorCash)
	assert.Equal(t, int64(750), result.TargetCash)
	mockUserRepo.AssertExpectations(t)
}

func TestDaily_PaysBasePlusDraw(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo := newMockUoW()
	rng := &stubRand{ints: []int64{50}}
	service := NewIncomeService(mockFactory, &stubCooldowns{}, new(MockHostActor), incomeConfig(), rng)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(1), int64(10)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 0}, nil)
	mockUserRepo.On("AdjustBalances", ctx, int64(1), int64(10), int64(1150), int64(0)).
		Return(&models.User{UserID: 1, GuildID: 10, Cash: 1150}, nil)

	result, err := service.Daily(ctx, 1, 10)

	require.NoError(t, err)
	assert.Equal(t, int64(1150), result.Amount)
}
