package models

import (
	"fmt"
	"math/rand"
	"time"
)

// Suit is a playing card suit.
type Suit string

const (
	SuitSpades   Suit = "♠"
	SuitHearts   Suit = "♥"
	SuitDiamonds Suit = "♦"
	SuitClubs    Suit = "♣"
)

// Rank is a playing card rank, 1 (ace) through 13 (king).
type Rank int

// Card is a single playing card.
type Card struct {
	Rank Rank
	Suit Suit
}

func (c Card) String() string {
	names := map[Rank]string{1: "A", 11: "J", 12: "Q", 13: "K"}
	if n, ok := names[c.Rank]; ok {
		return n + string(c.Suit)
	}
	return fmt.Sprintf("%d%s", c.Rank, c.Suit)
}

// value returns the blackjack point value of the card with aces low.
func (c Card) value() int {
	if c.Rank > 10 {
		return 10
	}
	return int(c.Rank)
}

// HandValue computes the blackjack value of a hand. Aces count as 11 while
// the total stays at or under 21; at most one ace is counted high. soft
// reports whether an ace is currently counted as 11.
func HandValue(hand []Card) (value int, soft bool) {
	aces := 0
	for _, c := range hand {
		value += c.value()
		if c.Rank == 1 {
			aces++
		}
	}
	if aces > 0 && value+10 <= 21 {
		return value + 10, true
	}
	return value, false
}

// IsBlackjack reports a two-card 21.
func IsBlackjack(hand []Card) bool {
	if len(hand) != 2 {
		return false
	}
	v, _ := HandValue(hand)
	return v == 21
}

// BlackjackState is a phase of the blackjack state machine.
type BlackjackState string

const (
	BlackjackDealing    BlackjackState = "dealing"
	BlackjackPlayerTurn BlackjackState = "player_turn"
	BlackjackDealerTurn BlackjackState = "dealer_turn"
	BlackjackResolved   BlackjackState = "resolved"
)

// BlackjackOutcome is the final result of a resolved game.
type BlackjackOutcome string

const (
	OutcomePlayerBlackjack BlackjackOutcome = "player_blackjack"
	OutcomePlayer          BlackjackOutcome = "player"
	OutcomeDealer          BlackjackOutcome = "dealer"
	OutcomePush            BlackjackOutcome = "push"
)

// DefaultShoeDecks is the number of 52-card decks shuffled into a fresh shoe.
const DefaultShoeDecks = 6

// BlackjackGame is the in-memory state of one hand of blackjack. It is not
// persisted; the owning registry guarantees at most one game per user.
type BlackjackGame struct {
	UserID  int64
	GuildID int64
	Bet     int64

	Player []Card
	Dealer []Card
	State  BlackjackState

	Doubled   bool
	StartedAt time.Time

	shoe []Card
}

// NewShoe returns decks standard decks shuffled together.
func NewShoe(decks int, rng *rand.Rand) []Card {
	suits := []Suit{SuitSpades, SuitHearts, SuitDiamonds, SuitClubs}
	shoe := make([]Card, 0, decks*52)
	for d := 0; d < decks; d++ {
		for _, s := range suits {
			for r := Rank(1); r <= 13; r++ {
				shoe = append(shoe, Card{Rank: r, Suit: s})
			}
		}
	}
	rng.Shuffle(len(shoe), func(i, j int) {
		shoe[i], shoe[j] = shoe[j], shoe[i]
	})
	return shoe
}

// NewBlackjackGame deals a fresh game from a shuffled shoe. Deal order is
// player, dealer, player, dealer. A dealt blackjack (either side) resolves
// the game immediately.
func NewBlackjackGame(userID, guildID, bet int64, rng *rand.Rand) *BlackjackGame {
	return newBlackjackGameFromShoe(userID, guildID, bet, NewShoe(DefaultShoeDecks, rng))
}

// NewBlackjackGameFromShoe deals from a pre-arranged shoe. Intended for
// deterministic play in tests.
func NewBlackjackGameFromShoe(userID, guildID, bet int64, shoe []Card) *BlackjackGame {
	return newBlackjackGameFromShoe(userID, guildID, bet, shoe)
}

func newBlackjackGameFromShoe(userID, guildID, bet int64, shoe []Card) *BlackjackGame {
	g := &BlackjackGame{
		UserID:    userID,
		GuildID:   guildID,
		Bet:       bet,
		State:     BlackjackDealing,
		StartedAt: time.Now(),
		shoe:      shoe,
	}
	g.Player = append(g.Player, g.draw())
	g.Dealer = append(g.Dealer, g.draw())
	g.Player = append(g.Player, g.draw())
	g.Dealer = append(g.Dealer, g.draw())

	if IsBlackjack(g.Player) || IsBlackjack(g.Dealer) {
		g.State = BlackjackResolved
		return g
	}
	g.State = BlackjackPlayerTurn
	return g
}

func (g *BlackjackGame) draw() Card {
	c := g.shoe[0]
	g.shoe = g.shoe[1:]
	return c
}

// CanDoubleDown reports whether a double down is legal: first two cards,
// player's turn.
func (g *BlackjackGame) CanDoubleDown() bool {
	return g.State == BlackjackPlayerTurn && len(g.Player) == 2 && !g.Doubled
}

// Hit draws one card for the player. A bust resolves the game.
func (g *BlackjackGame) Hit() error {
	if g.State != BlackjackPlayerTurn {
		return fmt.Errorf("cannot hit in state %s", g.State)
	}
	g.Player = append(g.Player, g.draw())
	if v, _ := HandValue(g.Player); v > 21 {
		g.State = BlackjackResolved
	}
	return nil
}

// Stand ends the player's turn and plays out the dealer.
func (g *BlackjackGame) Stand() error {
	if g.State != BlackjackPlayerTurn {
		return fmt.Errorf("cannot stand in state %s", g.State)
	}
	g.playDealer()
	return nil
}

// DoubleDown doubles the bet, draws exactly one card, then either resolves
// (bust) or plays out the dealer.
func (g *BlackjackGame) DoubleDown() error {
	if !g.CanDoubleDown() {
		return fmt.Errorf("double down is only legal on the first two cards")
	}
	g.Doubled = true
	g.Bet *= 2
	g.Player = append(g.Player, g.draw())
	if v, _ := HandValue(g.Player); v > 21 {
		g.State = BlackjackResolved
		return nil
	}
	g.playDealer()
	return nil
}

// playDealer draws for the dealer until 17 or more, hitting soft 17.
func (g *BlackjackGame) playDealer() {
	g.State = BlackjackDealerTurn
	for {
		v, soft := HandValue(g.Dealer)
		if v > 17 || (v == 17 && !soft) {
			break
		}
		g.Dealer = append(g.Dealer, g.draw())
	}
	g.State = BlackjackResolved
}

// Outcome evaluates the resolution matrix. Only valid once resolved.
func (g *BlackjackGame) Outcome() BlackjackOutcome {
	playerBJ := IsBlackjack(g.Player)
	dealerBJ := IsBlackjack(g.Dealer)
	pv, _ := HandValue(g.Player)
	dv, _ := HandValue(g.Dealer)

	switch {
	case playerBJ && dealerBJ:
		return OutcomePush
	case playerBJ:
		return OutcomePlayerBlackjack
	case dealerBJ:
		return OutcomeDealer
	case pv > 21:
		return OutcomeDealer
	case dv > 21:
		return OutcomePlayer
	case pv > dv:
		return OutcomePlayer
	case pv < dv:
		return OutcomeDealer
	default:
		return OutcomePush
	}
}

// Payout returns the signed cash delta for the resolved game.
func (g *BlackjackGame) Payout() int64 {
	switch g.Outcome() {
	case OutcomePlayerBlackjack:
		return g.Bet * 3 / 2
	case OutcomePlayer:
		return g.Bet
	case OutcomeDealer:
		return -g.Bet
	default:
		return 0
	}
}
