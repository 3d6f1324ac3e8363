/*
Package game
File: state.go
Description:
    Loads the static configuration of the game and creates fresh game states.
    Nothing here is global: LoadUniverse returns a value the caller owns.
*/

package game

import (
	"fmt"
	"os"
	"time"

	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

// DefaultBalance mirrors the shipped chronoquest.yaml. Fields missing from the
// YAML file keep these values.
func DefaultBalance() GameBalance {
	return GameBalance{
		HomeAirport:     "EFHK",
		StartingCredits: 1000,
		StartingEnergy:  1000,
		TravelCost:      IntRange{Min: 20, Max: 200},
		EventsPerTravel: IntRange{Min: 1, Max: 3},
		BanditCredits:   IntRange{Min: 20, Max: 100},
		BanditRange:     IntRange{Min: 10, Max: 100},
		CreditsGain:     IntRange{Min: 10, Max: 100},
		RangeGain:       IntRange{Min: 10, Max: 100},
		CoinChance:      0.5,
		CoinsToEscape:   3,
		FluxToCredits:   10,
		CreditKingAt:    5000,
		FluxMasterAt:    20,
		EventWeights: []Weight{
			{Kind: KindBandit, Weight: 1},
			{Kind: KindCredits, Weight: 1},
			{Kind: KindRange, Weight: 1},
			{Kind: KindFluxfire, Weight: 1},
			{Kind: KindParadox, Weight: 1},
			{Kind: KindShard, Weight: 1},
			{Kind: KindNothing, Weight: 1},
		},
		Fuels: []FuelRange{
			{Name: "Aetherite", Min: 8, Max: 12},
			{Name: "Lumorin", Min: 14, Max: 18},
			{Name: "Voltash", Min: 5, Max: 8},
			{Name: "Noxalite", Min: 11, Max: 15},
			{Name: "Inferno", Min: 1, Max: 5},
		},
	}
}

// catalogKinds are the only kinds allowed in the normal-mode event pool.
var catalogKinds = map[EventKind]bool{
	KindBandit:   true,
	KindCredits:  true,
	KindRange:    true,
	KindFluxfire: true,
	KindParadox:  true,
	KindShard:    true,
	KindNothing:  true,
}

// Validate checks the balance for values the engine cannot work with.
func (b *GameBalance) Validate() error {
	el := errors.NewErrorList()

	if b.HomeAirport == "" {
		el.Add(fmt.Errorf("home_airport is required"))
	}
	if b.StartingEnergy < 0 || b.StartingCredits < 0 {
		el.Add(fmt.Errorf("starting counters must not be negative"))
	}

	ranges := map[string]IntRange{
		"travel_cost":       b.TravelCost,
		"events_per_travel": b.EventsPerTravel,
		"bandit_credits":    b.BanditCredits,
		"bandit_range":      b.BanditRange,
		"credits_gain":      b.CreditsGain,
		"range_gain":        b.RangeGain,
	}
	for name, r := range ranges {
		if r.Min < 0 || r.Max < r.Min {
			el.Add(fmt.Errorf("%s: invalid range [%d,%d]", name, r.Min, r.Max))
		}
	}

	if b.CoinChance < 0 || b.CoinChance > 1 {
		el.Add(fmt.Errorf("paradox_coin_chance must be within [0,1]"))
	}
	if b.CoinsToEscape < 1 {
		el.Add(fmt.Errorf("paradox_coins_to_escape must be at least 1"))
	}
	if b.FluxToCredits < 1 {
		el.Add(fmt.Errorf("flux_to_credits must be at least 1"))
	}

	if len(b.EventWeights) == 0 {
		el.Add(fmt.Errorf("event_weights must not be empty"))
	}
	seen := map[EventKind]bool{}
	for _, w := range b.EventWeights {
		if !catalogKinds[w.Kind] {
			el.Add(fmt.Errorf("event_weights: unknown kind %q", w.Kind))
		}
		if seen[w.Kind] {
			el.Add(fmt.Errorf("event_weights: duplicate kind %q", w.Kind))
		}
		if w.Weight <= 0 {
			el.Add(fmt.Errorf("event_weights: %q weight must be positive", w.Kind))
		}
		seen[w.Kind] = true
	}

	if len(b.Fuels) == 0 {
		el.Add(fmt.Errorf("fuels must not be empty"))
	}
	for _, f := range b.Fuels {
		if f.Name == "" {
			el.Add(fmt.Errorf("fuels: name is required"))
		}
		if f.Min < 0 || f.Max < f.Min {
			el.Add(fmt.Errorf("fuels: %s has invalid range [%d,%d]", f.Name, f.Min, f.Max))
		}
	}

	return el.Err()
}

// LoadUniverse reads the YAML file at path on top of the defaults and validates it.
func LoadUniverse(path string) (*Universe, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	uni := &Universe{Balance: DefaultBalance()}
	if err := yaml.Unmarshal(f, uni); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := uni.Balance.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}

	return uni, nil
}

// NewGameState creates a fresh game for player.
// The fuel label is a uniform pick from the fuel table and RequiredFlux is drawn from its range.
func NewGameState(d Dice, b GameBalance, player string) *GameState {
	fuel := FuelRange{}
	if len(b.Fuels) > 0 {
		fuel = b.Fuels[d.IntN(len(b.Fuels))]
	}

	return &GameState{
		PlayerName:      player,
		Credits:         b.StartingCredits,
		Energy:          b.StartingEnergy,
		Shards:          ShardSet{},
		CountShards:     0,
		CurrentLocation: b.HomeAirport,
		Fluxfire:        0,
		Paradox:         Paradox{},
		FuelToMake:      fuel.Name,
		RequiredFlux:    Between(d, IntRange{Min: fuel.Min, Max: fuel.Max}),
	}
}

// nowMillis is the clock used for Paradox.StartTime.
func nowMillis(now func() time.Time) int64 {
	if now == nil {
		now = time.Now
	}
	return now().UnixMilli()
}
