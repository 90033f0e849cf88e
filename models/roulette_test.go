package models

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPocketColor(t *testing.T) {
	assert.Equal(t, ColorGreen, Pocket(0).Color())
	assert.Equal(t, ColorGreen, PocketDoubleZero.Color())
	assert.Equal(t, ColorRed, Pocket(1).Color())
	assert.Equal(t, ColorBlack, Pocket(2).Color())
	assert.Equal(t, ColorRed, Pocket(36).Color())
	assert.Equal(t, ColorBlack, Pocket(35).Color())
}

func TestStraightBetOnZero(t *testing.T) {
	bet := RouletteBet{Kind: BetStraight, Number: 0}
	assert.True(t, bet.Wins(0))
	assert.Equal(t, int64(35), bet.PayoutRatio())
}

func TestOutsideBetsLoseOnZero(t *testing.T) {
	for _, kind := range []RouletteBetKind{
		BetRed, BetBlack, BetOdd, BetEven, BetLow, BetHigh,
		BetDozen1, BetColumn1,
	} {
		bet := RouletteBet{Kind: kind}
		assert.False(t, bet.Wins(0), "kind %s", kind)
		assert.False(t, bet.Wins(PocketDoubleZero), "kind %s on 00", kind)
	}
}

func TestColumnBets(t *testing.T) {
	first := RouletteBet{Kind: BetColumn1}
	second := RouletteBet{Kind: BetColumn2}
	third := RouletteBet{Kind: BetColumn3}

	// 4 mod 3 == 1: first column
	assert.True(t, first.Wins(4))
	assert.False(t, second.Wins(4))
	assert.False(t, third.Wins(4))

	assert.True(t, second.Wins(5))
	assert.True(t, third.Wins(6))
	assert.Equal(t, int64(2), first.PayoutRatio())
}

func TestDozenBets(t *testing.T) {
	assert.True(t, RouletteBet{Kind: BetDozen1}.Wins(12))
	assert.True(t, RouletteBet{Kind: BetDozen2}.Wins(13))
	assert.True(t, RouletteBet{Kind: BetDozen3}.Wins(36))
	assert.False(t, RouletteBet{Kind: BetDozen1}.Wins(13))
}

func TestEvenMoneyBets(t *testing.T) {
	assert.True(t, RouletteBet{Kind: BetOdd}.Wins(17))
	assert.True(t, RouletteBet{Kind: BetEven}.Wins(18))
	assert.True(t, RouletteBet{Kind: BetLow}.Wins(18))
	assert.True(t, RouletteBet{Kind: BetHigh}.Wins(19))
	assert.False(t, RouletteBet{Kind: BetLow}.Wins(19))
	assert.Equal(t, int64(1), RouletteBet{Kind: BetRed}.PayoutRatio())
}

func TestBetValidation(t *testing.T) {
	assert.True(t, RouletteBet{Kind: BetStraight, Number: 36}.Valid(false))
	assert.False(t, RouletteBet{Kind: BetStraight, Number: PocketDoubleZero}.Valid(false))
	assert.True(t, RouletteBet{Kind: BetStraight, Number: PocketDoubleZero}.Valid(true))
	assert.False(t, RouletteBet{Kind: RouletteBetKind("corner")}.Valid(false))
}

func TestSpinRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	european := RouletteWheel{}
	for i := 0; i < 200; i++ {
		p := european.Spin(rng)
		assert.GreaterOrEqual(t, int(p), 0)
		assert.LessOrEqual(t, int(p), 36)
	}

	american := RouletteWheel{American: true}
	saw00 := false
	for i := 0; i < 2000; i++ {
		if american.Spin(rng) == PocketDoubleZero {
			saw00 = true
			break
		}
	}
	assert.True(t, saw00)
}
