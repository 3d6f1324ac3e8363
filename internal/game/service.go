/*
Package game
File: service.go
Description:
    Service glues the pure rules to the profile store.

    Key Responsibilities:
    - Validating destinations against the airport catalog
    - Persisting the state after every non-terminal action
    - Awarding badges earned during a travel step
    - Finalizing a game on win or loss (counters, first win/loss badges, save cleared)
*/

package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Service runs player actions against live game states.
// The caller must serialize actions on the same GameState.
type Service struct {
	Resolver *Resolver
	Profiles ProfileStore
	Airports *AirportCatalog

	mu sync.RWMutex // guards Resolver swaps on balance reload
}

// NewService wires a resolver, profile store and airport catalog together.
func NewService(r *Resolver, profiles ProfileStore, airports *AirportCatalog) *Service {
	return &Service{Resolver: r, Profiles: profiles, Airports: airports}
}

// SetBalance swaps in a new balance for actions that start after the call.
// In-flight games keep their fuel and flux requirement.
func (s *Service) SetBalance(b GameBalance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Resolver = &Resolver{Balance: b, Dice: s.Resolver.Dice, Now: s.Resolver.Now}
}

// Balance returns the balance currently in effect.
func (s *Service) Balance() GameBalance {
	return s.resolver().Balance
}

func (s *Service) resolver() *Resolver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Resolver
}

// Outcome is a TravelResult plus the badges the profile store actually unlocked.
type Outcome struct {
	TravelResult
	Awarded []Badge
}

// NewGame starts a fresh game for name and clears any durable save,
// so a previous in-progress game is never resumed by logging in.
func (s *Service) NewGame(ctx context.Context, name string) (*GameState, error) {
	id, err := s.Profiles.GetUserID(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", name, err)
	}
	if err := s.Profiles.SaveGame(ctx, id, nil); err != nil {
		return nil, fmt.Errorf("clearing save for %s: %w", name, err)
	}
	r := s.resolver()
	return NewGameState(r.Dice, r.Balance, name), nil
}

// ResumeOrNew is the fallback for a session that lost its live state.
// A durable save is resumed once and then cleared; otherwise a fresh game starts.
func (s *Service) ResumeOrNew(ctx context.Context, name string) (*GameState, error) {
	id, err := s.Profiles.GetUserID(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", name, err)
	}

	saved, err := s.Profiles.LoadSavedGame(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading save for %s: %w", name, err)
	}
	if err := s.Profiles.SaveGame(ctx, id, nil); err != nil {
		return nil, fmt.Errorf("clearing save for %s: %w", name, err)
	}

	if saved != nil {
		slog.Info("resumed saved game", "player", name)
		return saved, nil
	}
	r := s.resolver()
	return NewGameState(r.Dice, r.Balance, name), nil
}

// ClearSave drops the durable save of name.
func (s *Service) ClearSave(ctx context.Context, name string) error {
	return s.persist(ctx, name, nil)
}

// Quit stores gs as the durable save. It is the only path that keeps a game across logins.
func (s *Service) Quit(ctx context.Context, gs *GameState) error {
	return s.persist(ctx, gs.PlayerName, gs)
}

// Travel resolves one trip and performs the bookkeeping around it.
// A trip at zero energy returns the rejected result together with ErrInsufficientEnergy.
func (s *Service) Travel(ctx context.Context, gs *GameState, dest string) (Outcome, error) {
	// An empty tank is refused before the destination is looked at.
	if gs.Energy > 0 && s.Airports != nil && s.Airports.Get(dest) == nil {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownAirport, dest)
	}

	out := Outcome{TravelResult: s.resolver().Travel(gs, dest)}
	if !out.OK {
		return out, ErrInsufficientEnergy
	}

	id, err := s.Profiles.GetUserID(ctx, gs.PlayerName)
	if err != nil {
		return out, fmt.Errorf("looking up %s: %w", gs.PlayerName, err)
	}

	for _, badge := range out.Unlocks {
		b, err := s.Profiles.AwardBadge(ctx, id, badge)
		if err != nil {
			return out, fmt.Errorf("awarding %s: %w", badge, err)
		}
		if b != nil {
			out.Awarded = append(out.Awarded, *b)
		}
	}

	if out.Win || out.Lose {
		awarded, err := s.Finalize(ctx, gs.PlayerName, out.Win)
		if err != nil {
			return out, err
		}
		out.Awarded = append(out.Awarded, awarded...)
		return out, nil
	}

	if err := s.Profiles.SaveGame(ctx, id, gs); err != nil {
		return out, fmt.Errorf("saving game for %s: %w", gs.PlayerName, err)
	}
	return out, nil
}

// Finalize records a finished game exactly once: played and win-or-loss
// counters go up, the durable save is cleared and the first-win or
// first-loss badge is unlocked if the player does not hold it yet.
func (s *Service) Finalize(ctx context.Context, name string, win bool) ([]Badge, error) {
	user, err := s.Profiles.FindUser(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("finding %s: %w", name, err)
	}

	stats := user.Stats
	stats.Played++
	badge := BadgeFirstLoss
	if win {
		stats.Wins++
		badge = BadgeFirstWin
	} else {
		stats.Losses++
	}

	if err := s.Profiles.UpdateStats(ctx, user.ID, stats, true); err != nil {
		return nil, fmt.Errorf("updating stats for %s: %w", name, err)
	}

	b, err := s.Profiles.AwardBadge(ctx, user.ID, badge)
	if err != nil {
		return nil, fmt.Errorf("awarding %s: %w", badge, err)
	}

	slog.Info("game finished", "player", name, "win", win, "played", stats.Played)

	if b == nil {
		return nil, nil
	}
	return []Badge{*b}, nil
}

// BuyCredits exchanges fluxfire for credits and persists the result.
func (s *Service) BuyCredits(ctx context.Context, gs *GameState, fluxfire int) error {
	if err := BuyCredits(gs, fluxfire, s.Balance().FluxToCredits); err != nil {
		return err
	}
	return s.persist(ctx, gs.PlayerName, gs)
}

// BuyRange exchanges credits for energy and persists the result.
func (s *Service) BuyRange(ctx context.Context, gs *GameState, credits int) error {
	if err := BuyRange(gs, credits); err != nil {
		return err
	}
	return s.persist(ctx, gs.PlayerName, gs)
}

// Badges returns the display metadata of every badge name holds.
func (s *Service) Badges(ctx context.Context, name string) ([]Badge, error) {
	user, err := s.Profiles.FindUser(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("finding %s: %w", name, err)
	}

	badges := make([]Badge, 0, len(user.Badges))
	for _, id := range user.Badges {
		badges = append(badges, LookupBadge(id))
	}
	return badges, nil
}

func (s *Service) persist(ctx context.Context, name string, gs *GameState) error {
	id, err := s.Profiles.GetUserID(ctx, name)
	if err != nil {
		return fmt.Errorf("looking up %s: %w", name, err)
	}
	if err := s.Profiles.SaveGame(ctx, id, gs); err != nil {
		return fmt.Errorf("saving game for %s: %w", name, err)
	}
	return nil
}
