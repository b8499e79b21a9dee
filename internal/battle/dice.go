package battle

import (
	"math/rand/v2"
	"time"
)

// Dice is the only source of randomness in a battle. A seeded Dice makes a
// battle fully reproducible.
type Dice interface {
	// IntN returns a value in [0, n).
	IntN(n int) int
}

// NewDice returns a PCG-backed Dice. A zero seed uses the clock.
func NewDice(seed uint64) Dice {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
}

// chance is true with probability num/den.
func chance(d Dice, num, den int) bool {
	if num <= 0 {
		return false
	}
	return d.IntN(den) < num
}

// between rolls a value in [lo, hi] weighted the way the classic tables
// are: lo plus a 0..255 draw scaled onto the range.
func between(d Dice, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + d.IntN(256)*(hi-lo+1)/256
}
