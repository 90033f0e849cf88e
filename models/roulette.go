package models

import (
	"fmt"
	"math/rand"
)

// Pocket is one slot on a roulette wheel: 0-36, or PocketDoubleZero on an
// American wheel.
type Pocket int

// PocketDoubleZero is the American wheel's 00 slot.
const PocketDoubleZero Pocket = 37

func (p Pocket) String() string {
	if p == PocketDoubleZero {
		return "00"
	}
	return fmt.Sprintf("%d", int(p))
}

// PocketColor is the color of a wheel slot.
type PocketColor string

const (
	ColorGreen PocketColor = "green"
	ColorRed   PocketColor = "red"
	ColorBlack PocketColor = "black"
)

var redPockets = map[Pocket]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true,
	16: true, 18: true, 19: true, 21: true, 23: true, 25: true, 27: true,
	30: true, 32: true, 34: true, 36: true,
}

// Color returns the fixed color of a pocket.
func (p Pocket) Color() PocketColor {
	switch {
	case p == 0 || p == PocketDoubleZero:
		return ColorGreen
	case redPockets[p]:
		return ColorRed
	default:
		return ColorBlack
	}
}

// RouletteWheel spins pockets. The American variant adds 00.
type RouletteWheel struct {
	American bool
}

// Spin returns a uniformly drawn pocket.
func (w RouletteWheel) Spin(rng *rand.Rand) Pocket {
	slots := 37
	if w.American {
		slots = 38
	}
	n := rng.Intn(slots)
	if n == 37 {
		return PocketDoubleZero
	}
	return Pocket(n)
}

// RouletteBetKind enumerates the supported single bets.
type RouletteBetKind string

const (
	BetStraight RouletteBetKind = "straight"
	BetRed      RouletteBetKind = "red"
	BetBlack    RouletteBetKind = "black"
	BetOdd      RouletteBetKind = "odd"
	BetEven     RouletteBetKind = "even"
	BetLow      RouletteBetKind = "low"  // 1-18
	BetHigh     RouletteBetKind = "high" // 19-36
	BetDozen1   RouletteBetKind = "dozen1"
	BetDozen2   RouletteBetKind = "dozen2"
	BetDozen3   RouletteBetKind = "dozen3"
	BetColumn1  RouletteBetKind = "column1"
	BetColumn2  RouletteBetKind = "column2"
	BetColumn3  RouletteBetKind = "column3"
)

// RouletteBet is a single wager on one spin. Number is only meaningful for
// straight bets.
type RouletteBet struct {
	Kind   RouletteBetKind
	Number Pocket
}

// Valid reports whether the bet is well-formed.
func (b RouletteBet) Valid(american bool) bool {
	switch b.Kind {
	case BetStraight:
		if b.Number == PocketDoubleZero {
			return american
		}
		return b.Number >= 0 && b.Number <= 36
	case BetRed, BetBlack, BetOdd, BetEven, BetLow, BetHigh,
		BetDozen1, BetDozen2, BetDozen3, BetColumn1, BetColumn2, BetColumn3:
		return true
	default:
		return false
	}
}

// Wins evaluates the bet predicate against a spun pocket. Zero and 00 lose
// every outside bet.
func (b RouletteBet) Wins(p Pocket) bool {
	n := int(p)
	outside := p != 0 && p != PocketDoubleZero
	switch b.Kind {
	case BetStraight:
		return p == b.Number
	case BetRed:
		return p.Color() == ColorRed
	case BetBlack:
		return p.Color() == ColorBlack
	case BetOdd:
		return outside && n%2 == 1
	case BetEven:
		return outside && n%2 == 0
	case BetLow:
		return outside && n >= 1 && n <= 18
	case BetHigh:
		return outside && n >= 19 && n <= 36
	case BetDozen1:
		return outside && n >= 1 && n <= 12
	case BetDozen2:
		return outside && n >= 13 && n <= 24
	case BetDozen3:
		return outside && n >= 25 && n <= 36
	case BetColumn1:
		return outside && n%3 == 1
	case BetColumn2:
		return outside && n%3 == 2
	case BetColumn3:
		return outside && n%3 == 0
	default:
		return false
	}
}

// PayoutRatio returns the win multiple applied to the stake.
func (b RouletteBet) PayoutRatio() int64 {
	switch b.Kind {
	case BetStraight:
		return 35
	case BetDozen1, BetDozen2, BetDozen3, BetColumn1, BetColumn2, BetColumn3:
		return 2
	default:
		return 1
	}
}
