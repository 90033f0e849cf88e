package service

import "math/rand"

// Rand is the randomness source used by income and gambling services.
// Tests substitute a deterministic implementation.
type Rand interface {
	Int63n(n int64) int64
	Float64() float64
}

type systemRand struct{}

func (systemRand) Int63n(n int64) int64 { return rand.Int63n(n) }
func (systemRand) Float64() float64     { return rand.Float64() }

// SystemRand returns a Rand backed by the shared math/rand source
func SystemRand() Rand { return systemRand{} }

// uniform picks an integer in [min, max]
func uniform(rng Rand, min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + rng.Int63n(max-min+1)
}
