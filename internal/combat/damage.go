package combat

import "math/rand/v2"

// RollSuccess rolls a percentage in [0, 100) and succeeds below pct.
func RollSuccess(r *rand.Rand, pct float64) bool {
	if pct >= 100 {
		return true
	}
	if pct <= 0 {
		return false
	}
	return roll(r) < pct
}

// RollBetween returns an integer in [lo, hi].
func RollBetween(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	if r == nil {
		return lo + rand.IntN(hi-lo+1)
	}
	return lo + r.IntN(hi-lo+1)
}

func roll(r *rand.Rand) float64 {
	if r == nil {
		return rand.Float64() * 100
	}
	return r.Float64() * 100
}
