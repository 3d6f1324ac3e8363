/*
Package game
File: sampler.go
Description:
    Randomness for the rules engine.
    - Dice: the source every roll goes through, so tests can script it.
    - SampleWeighted: picks distinct event kinds by weight, without replacement.
*/

package game

import (
	"math/rand/v2"
	"slices"
	"sync"
	"time"
)

// Dice is the source of every random draw the engine makes.
// *rand.Rand from math/rand/v2 satisfies it; tests script their own.
type Dice interface {
	IntN(n int) int
	Float64() float64
}

// LockedDice serialises draws from one *rand.Rand so a single Dice can be
// shared by every session.
type LockedDice struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDice returns a PCG-backed Dice seeded from the clock.
func NewDice() *LockedDice {
	now := uint64(time.Now().UnixNano())
	return NewSeededDice(now, now>>1|1)
}

// NewSeededDice returns a Dice with a fixed seed, for replayable runs.
func NewSeededDice(seed1, seed2 uint64) *LockedDice {
	return &LockedDice{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

func (d *LockedDice) IntN(n int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.IntN(n)
}

func (d *LockedDice) Float64() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.Float64()
}

// Between draws a uniform integer in [r.Min, r.Max].
func Between(d Dice, r IntRange) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + d.IntN(r.Max-r.Min+1)
}

// SampleWeighted picks up to k distinct items, each draw proportional to the
// remaining weight. It stops early once the remaining weight is not positive.
func SampleWeighted[T any](d Dice, items []T, weights []float64, k int) []T {
	pool := slices.Clone(items)
	w := slices.Clone(weights)
	k = max(0, min(k, len(pool), len(w)))

	picked := make([]T, 0, k)
	for range k {
		total := 0.0
		for _, wt := range w {
			total += wt
		}
		if total <= 0 {
			break
		}

		r := d.Float64() * total
		idx := len(w) - 1 // float rounding fallback
		cumulative := 0.0
		for i, wt := range w {
			cumulative += wt
			if r < cumulative {
				idx = i
				break
			}
		}

		picked = append(picked, pool[idx])
		pool = slices.Delete(pool, idx, idx+1)
		w = slices.Delete(w, idx, idx+1)
	}
	return picked
}
