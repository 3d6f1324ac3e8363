/*
Package game
File: models.go
Description:
    Defines the data structures used throughout ChronoQuest.
    This file is the "schema" of the game: the per-player GameState,
    the static Airport reference data and the YAML balance configuration.

    No game rules live here; see travel.go, events.go and economy.go.
*/

package game

import (
	"encoding/json"
	"slices"
	"strconv"
)

// ShardCount is the number of ChronoShards a player must collect.
const ShardCount = 5

// ShardSet holds the collected shard ids (1..ShardCount).
// It encodes as {"1":true,"3":true} to stay compatible with the browser client.
type ShardSet map[int]bool

// Has reports whether shard id has been collected.
func (s ShardSet) Has(id int) bool {
	return s[id]
}

// Len returns the number of collected shards.
func (s ShardSet) Len() int {
	n := 0
	for _, ok := range s {
		if ok {
			n++
		}
	}
	return n
}

// NextMissing returns the lowest uncollected shard id, or 0 when all are collected.
func (s ShardSet) NextMissing() int {
	for id := 1; id <= ShardCount; id++ {
		if !s.Has(id) {
			return id
		}
	}
	return 0
}

// IDs returns the collected shard ids in ascending order.
func (s ShardSet) IDs() []int {
	ids := make([]int, 0, len(s))
	for id, ok := range s {
		if ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func (s ShardSet) MarshalJSON() ([]byte, error) {
	out := make(map[string]bool, len(s))
	for _, id := range s.IDs() {
		out[strconv.Itoa(id)] = true
	}
	return json.Marshal(out)
}

func (s *ShardSet) UnmarshalJSON(b []byte) error {
	var raw map[string]bool
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	set := make(ShardSet, len(raw))
	for k, ok := range raw {
		id, err := strconv.Atoi(k)
		if err != nil {
			return err
		}
		if ok && id >= 1 && id <= ShardCount {
			set[id] = true
		}
	}
	*s = set
	return nil
}

// Paradox is the trap sub-state. Coins stay in [0,2] while Active and reset to 0 on escape.
type Paradox struct {
	Active    bool  `json:"active"`
	Coins     int   `json:"coins"`
	StartTime int64 `json:"startTime"` // Unix millis when the trap fired. Recorded only.
}

// GameState is the versioned record of one running game.
// It is owned by a single player session; the engine assumes exclusive access.
type GameState struct {
	PlayerName      string   `json:"playerName"`      // Immutable for the state's lifetime
	Credits         int      `json:"credits"`         // Spendable currency, >= 0
	Energy          int      `json:"energy"`          // Travel range, >= 0
	Shards          ShardSet `json:"shards"`          // Collected shard ids
	CountShards     int      `json:"countShards"`     // Cache of len(Shards), refreshed every travel
	CurrentLocation string   `json:"currentLocation"` // Airport ICAO code
	Fluxfire        int      `json:"fluxfire"`        // Secondary currency
	Paradox         Paradox  `json:"paradox"`
	FuelToMake      string   `json:"fuel_to_make"`  // Fuel label chosen at creation
	RequiredFlux    int      `json:"required_flux"` // Fluxfire needed to win
}

// Clone returns a deep copy so callers can compare before/after states.
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	c := *gs
	c.Shards = make(ShardSet, len(gs.Shards))
	for id, ok := range gs.Shards {
		c.Shards[id] = ok
	}
	return &c
}

// Airport is a static location (Node) players can travel to.
type Airport struct {
	ICAO     string  `json:"ICAO" yaml:"icao"`       // Unique ID (e.g., "EFHK")
	Name     string  `json:"name" yaml:"name"`       // Display Name
	Code     string  `json:"code" yaml:"code"`       // IATA code
	City     string  `json:"city" yaml:"city"`       // Municipality
	Country  string  `json:"country" yaml:"country"` // ISO country code
	Lat      float64 `json:"lat" yaml:"lat"`
	Lon      float64 `json:"lon" yaml:"lon"`
	Distance int     `json:"distance" yaml:"-"` // Great-circle km from home, precomputed
}

// FuelRange is the inclusive RequiredFlux range of one fuel type.
type FuelRange struct {
	Name string `yaml:"name" json:"name"`
	Min  int    `yaml:"min" json:"min"`
	Max  int    `yaml:"max" json:"max"`
}

// IntRange is an inclusive integer range used for random draws.
type IntRange struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// GameBalance stores tuning variables loaded from 'chronoquest.yaml'.
// These values control the event economy and the win threshold.
type GameBalance struct {
	HomeAirport     string      `yaml:"home_airport"`
	StartingCredits int         `yaml:"starting_credits"`
	StartingEnergy  int         `yaml:"starting_energy"`
	TravelCost      IntRange    `yaml:"travel_cost"`
	EventsPerTravel IntRange    `yaml:"events_per_travel"`
	BanditCredits   IntRange    `yaml:"bandit_credits"`
	BanditRange     IntRange    `yaml:"bandit_range"`
	CreditsGain     IntRange    `yaml:"credits_gain"`
	RangeGain       IntRange    `yaml:"range_gain"`
	CoinChance      float64     `yaml:"paradox_coin_chance"`
	CoinsToEscape   int         `yaml:"paradox_coins_to_escape"`
	FluxToCredits   int         `yaml:"flux_to_credits"`
	CreditKingAt    int         `yaml:"credit_king_at"`
	FluxMasterAt    int         `yaml:"flux_master_at"`
	EventWeights    []Weight    `yaml:"event_weights"`
	Fuels           []FuelRange `yaml:"fuels"`
}

// Weight pairs a catalog event kind with its sampling weight.
type Weight struct {
	Kind   EventKind `yaml:"kind"`
	Weight float64   `yaml:"weight"`
}

// Universe is the root configuration struct, mapping to the entire YAML file.
type Universe struct {
	Balance  GameBalance `yaml:"game_balance"`
	Airports []Airport   `yaml:"airports"` // Seed data imported into the airport table when empty
}
