package models

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(r Rank) Card {
	return Card{Rank: r, Suit: SuitSpades}
}

func TestHandValue_TwoAcesAndKing(t *testing.T) {
	// A + A + K: both aces must count low
	value, soft := HandValue([]Card{card(1), card(1), card(13)})
	assert.Equal(t, 12, value)
	assert.False(t, soft)
}

func TestHandValue_AceKing(t *testing.T) {
	value, soft := HandValue([]Card{card(1), card(13)})
	assert.Equal(t, 21, value)
	assert.True(t, soft)
}

func TestHandValue_SoftSeventeen(t *testing.T) {
	value, soft := HandValue([]Card{card(1), card(6)})
	assert.Equal(t, 17, value)
	assert.True(t, soft)
}

func TestIsBlackjack(t *testing.T) {
	assert.True(t, IsBlackjack([]Card{card(1), card(13)}))
	assert.False(t, IsBlackjack([]Card{card(7), card(7), card(7)}))
	assert.False(t, IsBlackjack([]Card{card(10), card(5)}))
}

func TestNewShoe_Composition(t *testing.T) {
	shoe := NewShoe(6, rand.New(rand.NewSource(1)))
	require.Len(t, shoe, 6*52)

	ranks := make(map[Rank]int)
	for _, c := range shoe {
		ranks[c.Rank]++
	}
	for r := Rank(1); r <= 13; r++ {
		assert.Equal(t, 24, ranks[r], "rank %d", r)
	}
}

func TestBlackjackGame_BothBlackjacks_Push(t *testing.T) {
	// Deal order is player, dealer, player, dealer.
	shoe := []Card{
		{Rank: 1, Suit: SuitSpades},  // player A
		{Rank: 1, Suit: SuitHearts},  // dealer A
		{Rank: 13, Suit: SuitDiamonds}, // player K
		{Rank: 13, Suit: SuitClubs},  // dealer K
	}
	g := NewBlackjackGameFromShoe(1, 1, 100, shoe)

	assert.Equal(t, BlackjackResolved, g.State)
	assert.Equal(t, OutcomePush, g.Outcome())
	assert.Equal(t, int64(0), g.Payout())
}

func TestBlackjackGame_PlayerBlackjack_PaysThreeToTwo(t *testing.T) {
	shoe := []Card{
		{Rank: 1, Suit: SuitSpades},
		{Rank: 9, Suit: SuitHearts},
		{Rank: 13, Suit: SuitDiamonds},
		{Rank: 7, Suit: SuitClubs},
	}
	g := NewBlackjackGameFromShoe(1, 1, 100, shoe)

	assert.Equal(t, BlackjackResolved, g.State)
	assert.Equal(t, OutcomePlayerBlackjack, g.Outcome())
	assert.Equal(t, int64(150), g.Payout())
}

func TestBlackjackGame_HitBust_DealerWins(t *testing.T) {
	shoe := []Card{
		{Rank: 10, Suit: SuitSpades},
		{Rank: 9, Suit: SuitHearts},
		{Rank: 6, Suit: SuitDiamonds},
		{Rank: 7, Suit: SuitClubs},
		{Rank: 10, Suit: SuitHearts}, // player hits into a bust
	}
	g := NewBlackjackGameFromShoe(1, 1, 50, shoe)
	require.Equal(t, BlackjackPlayerTurn, g.State)

	require.NoError(t, g.Hit())
	assert.Equal(t, BlackjackResolved, g.State)
	assert.Equal(t, OutcomeDealer, g.Outcome())
	assert.Equal(t, int64(-50), g.Payout())
}

func TestBlackjackGame_StandDealerBusts(t *testing.T) {
	shoe := []Card{
		{Rank: 10, Suit: SuitSpades},
		{Rank: 10, Suit: SuitHearts},
		{Rank: 8, Suit: SuitDiamonds},
		{Rank: 6, Suit: SuitClubs},
		{Rank: 10, Suit: SuitClubs}, // dealer draws on 16 and busts
	}
	g := NewBlackjackGameFromShoe(1, 1, 25, shoe)
	require.Equal(t, BlackjackPlayerTurn, g.State)

	require.NoError(t, g.Stand())
	assert.Equal(t, BlackjackResolved, g.State)
	assert.Equal(t, OutcomePlayer, g.Outcome())
	assert.Equal(t, int64(25), g.Payout())
}

func TestBlackjackGame_DealerHitsSoftSeventeen(t *testing.T) {
	shoe := []Card{
		{Rank: 10, Suit: SuitSpades},
		{Rank: 1, Suit: SuitHearts}, // dealer A
		{Rank: 9, Suit: SuitDiamonds},
		{Rank: 6, Suit: SuitClubs}, // dealer soft 17, must hit
		{Rank: 4, Suit: SuitClubs}, // dealer ends on 21
	}
	g := NewBlackjackGameFromShoe(1, 1, 10, shoe)
	require.NoError(t, g.Stand())

	require.Len(t, g.Dealer, 3)
	dv, _ := HandValue(g.Dealer)
	assert.Equal(t, 21, dv)
	assert.Equal(t, OutcomeDealer, g.Outcome())
}

func TestBlackjackGame_DoubleDown(t *testing.T) {
	shoe := []Card{
		{Rank: 6, Suit: SuitSpades},
		{Rank: 10, Suit: SuitHearts},
		{Rank: 5, Suit: SuitDiamonds},
		{Rank: 9, Suit: SuitClubs}, // dealer stands on 19
		{Rank: 10, Suit: SuitClubs}, // player draws to 21
	}
	g := NewBlackjackGameFromShoe(1, 1, 100, shoe)
	require.True(t, g.CanDoubleDown())

	require.NoError(t, g.DoubleDown())
	assert.Equal(t, int64(200), g.Bet)
	assert.Len(t, g.Player, 3)
	assert.Equal(t, BlackjackResolved, g.State)
	assert.Equal(t, OutcomePlayer, g.Outcome())
	assert.Equal(t, int64(200), g.Payout())
}

func TestBlackjackGame_DoubleDownAfterHitRejected(t *testing.T) {
	shoe := []Card{
		{Rank: 2, Suit: SuitSpades},
		{Rank: 10, Suit: SuitHearts},
		{Rank: 3, Suit: SuitDiamonds},
		{Rank: 9, Suit: SuitClubs},
		{Rank: 4, Suit: SuitClubs},
	}
	g := NewBlackjackGameFromShoe(1, 1, 100, shoe)
	require.NoError(t, g.Hit())

	assert.False(t, g.CanDoubleDown())
	assert.Error(t, g.DoubleDown())
}

func TestBlackjackGame_ActionsRejectedWhenResolved(t *testing.T) {
	shoe := []Card{
		{Rank: 1, Suit: SuitSpades},
		{Rank: 9, Suit: SuitHearts},
		{Rank: 13, Suit: SuitDiamonds},
		{Rank: 7, Suit: SuitClubs},
	}
	g := NewBlackjackGameFromShoe(1, 1, 100, shoe)
	require.Equal(t, BlackjackResolved, g.State)

	assert.Error(t, g.Hit())
	assert.Error(t, g.Stand())
	assert.Error(t, g.DoubleDown())
}
