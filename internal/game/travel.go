/*
Package game
File: travel.go
Description:
    The travel resolver: the rules that turn one "travel" action into a new
    game state, an ordered event log and a win/lose verdict.

    Order of a step:
    1. Reject travel with no energy.
    2. Home short-circuits: win if requirements are met, otherwise report them.
    3. Burn a random travel cost and move.
    4. Roll events (restricted pool while trapped in a paradox).
    5. Refresh the shard count and check the loss condition.

    The resolver performs no I/O. Badge unlocks are returned to the caller.
*/

package game

import "time"

// TravelResult is the outcome of one travel step.
type TravelResult struct {
	Events  EventLog
	Win     bool
	Lose    bool
	OK      bool      // False when the action was rejected and the state is untouched
	Unlocks []BadgeID // Badges earned during the step, in order
}

// Resolver applies travel actions to game states.
// It is safe for concurrent use as long as Dice is.
type Resolver struct {
	Balance GameBalance
	Dice    Dice
	Now     func() time.Time
}

// NewResolver creates a resolver over the given balance.
func NewResolver(b GameBalance, d Dice) *Resolver {
	return &Resolver{Balance: b, Dice: d, Now: time.Now}
}

// Travel resolves one trip to dest, mutating gs in place.
func (r *Resolver) Travel(gs *GameState, dest string) TravelResult {
	if gs.Energy <= 0 {
		return TravelResult{
			Events: EventLog{NoEnergyEvent{Message: "Cannot travel with 0 Energy. Must refuel."}},
		}
	}

	gs.CountShards = gs.Shards.Len()

	// Arriving home never costs energy, whatever the verdict.
	if dest == r.Balance.HomeAirport {
		if CanWin(gs) {
			return TravelResult{
				Events: EventLog{WinEvent{Fuel: gs.FuelToMake, RequiredFlux: gs.RequiredFlux}},
				Win:    true,
				OK:     true,
			}
		}
		return TravelResult{
			Events: EventLog{RequirementsUnmetEvent{RequiredFlux: gs.RequiredFlux}},
			OK:     true,
		}
	}

	res := TravelResult{OK: true}

	cost := Between(r.Dice, r.Balance.TravelCost)
	if gs.Energy < cost {
		gs.Energy = 0
		res.Events = append(res.Events, InsufficientRangeEvent{Message: "Not enough range for full travel; range set to 0."})
	} else {
		gs.Energy -= cost
	}
	gs.CurrentLocation = dest

	if gs.Paradox.Active {
		r.rollParadoxEvents(gs, &res)
	} else {
		r.rollNormalEvents(gs, &res)
	}

	gs.CountShards = gs.Shards.Len()

	if IsLost(gs) {
		res.Events = append(res.Events, LoseEvent{Message: "You have lost the game."})
		res.Lose = true
	}
	return res
}

// rollParadoxEvents replaces the normal pool while trapped: a single coin flip
// either yields a paradox coin or nothing.
func (r *Resolver) rollParadoxEvents(gs *GameState, res *TravelResult) {
	if r.Dice.Float64() >= r.Balance.CoinChance {
		res.Events = append(res.Events, NothingEvent{})
		return
	}

	coins, escaped := gs.Paradox.AddCoin(r.Balance.CoinsToEscape)
	res.Events = append(res.Events, ParadoxCoinEvent{Coins: coins})
	if escaped {
		res.Events = append(res.Events, ParadoxEscapedEvent{})
	}
}

// rollNormalEvents samples distinct catalog events and applies each in order.
func (r *Resolver) rollNormalEvents(gs *GameState, res *TravelResult) {
	kinds := make([]EventKind, len(r.Balance.EventWeights))
	weights := make([]float64, len(r.Balance.EventWeights))
	for i, w := range r.Balance.EventWeights {
		kinds[i] = w.Kind
		weights[i] = w.Weight
	}

	count := Between(r.Dice, r.Balance.EventsPerTravel)
	for _, kind := range SampleWeighted(r.Dice, kinds, weights, count) {
		r.applyEvent(gs, kind, res)
	}
}

func (r *Resolver) applyEvent(gs *GameState, kind EventKind, res *TravelResult) {
	b := r.Balance

	switch kind {
	case KindBandit:
		if r.Dice.IntN(2) == 0 {
			loss := Between(r.Dice, b.BanditCredits)
			gs.Credits = max(0, gs.Credits-loss)
			res.Events = append(res.Events, BanditEvent{Subtype: "credits", Amount: loss})
		} else {
			loss := Between(r.Dice, b.BanditRange)
			gs.Energy = max(0, gs.Energy-loss)
			res.Events = append(res.Events, BanditEvent{Subtype: "range", Amount: loss})
		}

	case KindCredits:
		gain := Between(r.Dice, b.CreditsGain)
		gs.Credits += gain
		res.Events = append(res.Events, CreditsEvent{Amount: gain})
		if gs.Credits >= b.CreditKingAt {
			res.Unlocks = append(res.Unlocks, BadgeCreditKing)
		}

	case KindRange:
		gain := Between(r.Dice, b.RangeGain)
		gs.Energy += gain
		res.Events = append(res.Events, RangeEvent{Amount: gain})

	case KindFluxfire:
		gs.Fluxfire++
		res.Events = append(res.Events, FluxfireEvent{})
		if gs.Fluxfire >= b.FluxMasterAt {
			res.Unlocks = append(res.Unlocks, BadgeFluxMaster)
		}

	case KindParadox:
		if gs.Paradox.Trap(nowMillis(r.Now)) {
			res.Events = append(res.Events, ParadoxEvent{})
		} else {
			res.Events = append(res.Events, NothingEvent{})
		}

	case KindShard:
		id := gs.Shards.NextMissing()
		if id == 0 {
			res.Events = append(res.Events, NothingEvent{})
			return
		}
		if gs.Shards == nil {
			gs.Shards = ShardSet{}
		}
		gs.Shards[id] = true
		res.Events = append(res.Events, ShardEvent{Shard: id})
		if gs.Shards.Len() == ShardCount {
			res.Unlocks = append(res.Unlocks, BadgeFullShards)
		}

	default: // KindNothing
		res.Events = append(res.Events, NothingEvent{})
	}
}
