/*
Package game
File: profile.go
Description:
    The player profile as the game sees it (counters, badges, durable save)
    and the ProfileStore interface the storage layer implements.
*/

package game

import "context"

// Stats are the lifetime counters of a player profile. They only ever grow.
type Stats struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Played int `json:"played"`
}

// User is a player profile as the profile store returns it.
type User struct {
	ID            int64
	Name          string
	PasswordHash  []byte
	Badges        []BadgeID
	Stats         Stats
	JetstreamUses int
	SavedGame     *GameState
}

// ProfileStore is the durable home of user profiles.
type ProfileStore interface {
	// FindUser returns ErrProfileNotFound if name is unknown.
	FindUser(ctx context.Context, name string) (*User, error)
	GetUserID(ctx context.Context, name string) (int64, error)
	UpdateStats(ctx context.Context, userID int64, stats Stats, clearSave bool) error
	// AwardBadge is idempotent: it returns nil metadata when the badge is already held.
	AwardBadge(ctx context.Context, userID int64, id BadgeID) (*Badge, error)
	// SaveGame stores gs as the durable save; a nil gs clears it.
	SaveGame(ctx context.Context, userID int64, gs *GameState) error
	LoadSavedGame(ctx context.Context, userID int64) (*GameState, error)
}
