/*
Package game
File: badges.go
Description:
    Badge catalog. Badges are one-time profile achievements; unlocking one
    that the player already owns is a no-op.
*/

package game

import (
	"fmt"
	"slices"
)

// BadgeID is the fixed key of a one-time profile achievement.
type BadgeID string

const (
	BadgeFirstWin   BadgeID = "FIRST_WIN"
	BadgeFirstLoss  BadgeID = "FIRST_LOSS"
	BadgeFluxMaster BadgeID = "FLUX_MASTER"
	BadgeCreditKing BadgeID = "CREDIT_KING"
	BadgeFullShards BadgeID = "FULL_SHARDS"
)

// Badge is the display metadata of a BadgeID.
type Badge struct {
	ID          BadgeID `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"desc"`
}

// String renders the badge the way the badge list shows it.
func (b Badge) String() string {
	return fmt.Sprintf("%s (%s)", b.Name, b.Description)
}

// BadgeCatalog lists every badge that can be unlocked.
var BadgeCatalog = map[BadgeID]Badge{
	BadgeFirstWin:   {ID: BadgeFirstWin, Name: "Time Traveler", Description: "Achieved your first ChronoQuest victory."},
	BadgeFirstLoss:  {ID: BadgeFirstLoss, Name: "Temporal Blip", Description: "Experienced your first journey ending in defeat."},
	BadgeFluxMaster: {ID: BadgeFluxMaster, Name: "Fluxfire Collector", Description: "Reached 20 Fluxfire in a single game."},
	BadgeCreditKing: {ID: BadgeCreditKing, Name: "Credit King", Description: "Reached 5000 Credits in a single game."},
	BadgeFullShards: {ID: BadgeFullShards, Name: "Shard Hoarder", Description: "Collected all 5 ChronoShards."},
}

// LookupBadge returns the catalog entry for id, falling back to a placeholder for unknown ids.
func LookupBadge(id BadgeID) Badge {
	if b, ok := BadgeCatalog[id]; ok {
		return b
	}
	return Badge{ID: id, Name: string(id), Description: "Unknown Badge"}
}

// UnlockBadge adds id to held unless it is already there.
// It returns the updated set and the newly unlocked badge, or nil when nothing changed.
// A badge is never removed.
func UnlockBadge(held []BadgeID, id BadgeID) ([]BadgeID, *Badge) {
	if slices.Contains(held, id) {
		return held, nil
	}
	b := LookupBadge(id)
	return append(held, id), &b
}
