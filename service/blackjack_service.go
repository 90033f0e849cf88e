package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"treasurer/config"
	"treasurer/events"
	"treasurer/models"

	log "github.com/sirupsen/logrus"
)

// activeGame pairs a game with its own lock. Interaction handlers run
// concurrently, so every state transition and the settlement that follows
// it happen under this lock; done marks a game that has already settled or
// been abandoned so a racing action cannot settle it twice.
type activeGame struct {
	mu   sync.Mutex
	game *models.BlackjackGame
	done bool
}

type blackjackService struct {
	uowFactory UnitOfWorkFactory
	cooldowns  CooldownService
	cfg        *config.Config

	// newShoe builds the shuffled shoe for a fresh game. Tests inject a
	// pre-arranged shoe here.
	newShoe func() []Card

	// Active games, at most one per user across the process. In-memory
	// only; games are lost on restart without settling.
	mu    sync.Mutex
	games map[int64]*activeGame
}

// Card aliases the model card for shoe injection
type Card = models.Card

// NewBlackjackService creates a new blackjack service
func NewBlackjackService(uowFactory UnitOfWorkFactory, cooldowns CooldownService, cfg *config.Config) BlackjackService {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var rngMu sync.Mutex
	return &blackjackService{
		uowFactory: uowFactory,
		cooldowns:  cooldowns,
		cfg:        cfg,
		newShoe: func() []Card {
			rngMu.Lock()
			defer rngMu.Unlock()
			return models.NewShoe(models.DefaultShoeDecks, rng)
		},
		games: make(map[int64]*activeGame),
	}
}

// NewBlackjackServiceWithShoe creates a blackjack service dealing from the
// given shoe builder. Used by tests for deterministic hands.
func NewBlackjackServiceWithShoe(uowFactory UnitOfWorkFactory, cooldowns CooldownService, cfg *config.Config, newShoe func() []Card) BlackjackService {
	return &blackjackService{
		uowFactory: uowFactory,
		cooldowns:  cooldowns,
		cfg:        cfg,
		newShoe:    newShoe,
		games:      make(map[int64]*activeGame),
	}
}

func (s *blackjackService) Start(ctx context.Context, userID, guildID, bet int64) (*models.BlackjackGame, *models.BlackjackResult, error) {
	if bet < s.cfg.MinBet || bet > s.cfg.MaxBet {
		return nil, nil, fmt.Errorf("%w: bet must be between %d and %d", ErrInvalidAmount, s.cfg.MinBet, s.cfg.MaxBet)
	}
	if err := guard(ctx, s.cooldowns, userID, guildID, ActionBlackjack); err != nil {
		return nil, nil, err
	}

	// Verify the player can cover the bet before reserving the game slot
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	user, err := getOrCreate(ctx, uow, userID, guildID, s.cfg.DefaultBalance)
	if err != nil {
		uow.Rollback()
		return nil, nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	if user.Cash < bet {
		return nil, nil, ErrInsufficientFunds
	}

	// Check-and-insert must be atomic with respect to other starts
	entry := &activeGame{game: models.NewBlackjackGameFromShoe(userID, guildID, bet, s.newShoe())}
	s.mu.Lock()
	if _, exists := s.games[userID]; exists {
		s.mu.Unlock()
		return nil, nil, ErrActiveGame
	}
	s.games[userID] = entry
	s.mu.Unlock()

	if err := s.cooldowns.Start(ctx, userID, guildID, ActionBlackjack); err != nil {
		s.mu.Lock()
		delete(s.games, userID)
		s.mu.Unlock()
		return nil, nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	// A dealt blackjack on either side resolves immediately
	if entry.game.State == models.BlackjackResolved {
		result, err := s.finish(ctx, entry)
		if err != nil {
			return nil, nil, err
		}
		return entry.game, result, nil
	}
	return entry.game, nil, nil
}

// active fetches the caller's game entry, enforcing guild affinity
func (s *blackjackService) active(userID, guildID int64) (*activeGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.games[userID]
	if !ok || entry.game.GuildID != guildID {
		return nil, ErrNoActiveGame
	}
	return entry, nil
}

func (s *blackjackService) Hit(ctx context.Context, userID, guildID int64) (*models.BlackjackGame, *models.BlackjackResult, error) {
	entry, err := s.active(userID, guildID)
	if err != nil {
		return nil, nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.done {
		return nil, nil, ErrNoActiveGame
	}

	if err := entry.game.Hit(); err != nil {
		return nil, nil, err
	}
	if entry.game.State == models.BlackjackResolved {
		result, err := s.finish(ctx, entry)
		if err != nil {
			return nil, nil, err
		}
		return entry.game, result, nil
	}
	return entry.game, nil, nil
}

func (s *blackjackService) Stand(ctx context.Context, userID, guildID int64) (*models.BlackjackResult, error) {
	entry, err := s.active(userID, guildID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.done {
		return nil, ErrNoActiveGame
	}

	if err := entry.game.Stand(); err != nil {
		return nil, err
	}
	return s.finish(ctx, entry)
}

func (s *blackjackService) DoubleDown(ctx context.Context, userID, guildID int64) (*models.BlackjackResult, error) {
	entry, err := s.active(userID, guildID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.done {
		return nil, ErrNoActiveGame
	}
	if !entry.game.CanDoubleDown() {
		return nil, fmt.Errorf("%w: double down is only legal on the first two cards", ErrInvalidAmount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	user, err := uow.UserRepository().GetByID(ctx, userID, guildID)
	if err != nil {
		uow.Rollback()
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	if user == nil || user.Cash < entry.game.Bet*2 {
		return nil, ErrInsufficientFunds
	}

	if err := entry.game.DoubleDown(); err != nil {
		return nil, err
	}
	return s.finish(ctx, entry)
}

// finish marks the entry settled, frees the player's slot, and applies the
// payout. Callers hold the entry lock, so exactly one action can reach the
// settlement for any game. The slot is freed even when the payout write
// fails so the player is never wedged.
func (s *blackjackService) finish(ctx context.Context, entry *activeGame) (*models.BlackjackResult, error) {
	entry.done = true
	s.mu.Lock()
	delete(s.games, entry.game.UserID)
	s.mu.Unlock()

	return s.settle(ctx, entry.game)
}

// settle applies the payout and emits the balance event
func (s *blackjackService) settle(ctx context.Context, game *models.BlackjackGame) (*models.BlackjackResult, error) {
	delta := game.Payout()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().AdjustBalances(ctx, game.UserID, game.GuildID, delta, 0)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:     game.UserID,
		GuildID:    game.GuildID,
		Reason:     "blackjack",
		CashChange: delta,
		NewCash:    user.Cash,
		NewBank:    user.Bank,
	})
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":  game.UserID,
		"guildID": game.GuildID,
		"outcome": game.Outcome(),
		"bet":     game.Bet,
		"delta":   delta,
	}).Info("Blackjack game settled")

	return &models.BlackjackResult{
		Outcome: game.Outcome(),
		Bet:     game.Bet,
		Delta:   delta,
		NewCash: user.Cash,
		Player:  game.Player,
		Dealer:  game.Dealer,
	}, nil
}

// AbandonStale drops games older than maxAge without settling. Stale games
// never charged the player, so dropping them is loss-free.
func (s *blackjackService) AbandonStale(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	s.mu.Lock()
	var stale []*activeGame
	for userID, entry := range s.games {
		if entry.game.StartedAt.Before(cutoff) {
			delete(s.games, userID)
			stale = append(stale, entry)
		}
	}
	s.mu.Unlock()

	// Marking done waits for any in-flight action on the game to finish
	for _, entry := range stale {
		entry.mu.Lock()
		entry.done = true
		entry.mu.Unlock()
	}
	if len(stale) > 0 {
		log.WithField("count", len(stale)).Info("Abandoned stale blackjack games")
	}
	return len(stale)
}
