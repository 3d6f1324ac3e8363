package game

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/pixil98/go-testutil"
)

// fakeProfiles is a single-user ProfileStore.
type fakeProfiles struct {
	user  User
	saves int
}

func (f *fakeProfiles) FindUser(_ context.Context, name string) (*User, error) {
	if name != f.user.Name {
		return nil, ErrProfileNotFound
	}
	u := f.user
	u.Badges = slices.Clone(f.user.Badges)
	return &u, nil
}

func (f *fakeProfiles) GetUserID(_ context.Context, name string) (int64, error) {
	if name != f.user.Name {
		return 0, ErrProfileNotFound
	}
	return f.user.ID, nil
}

func (f *fakeProfiles) UpdateStats(_ context.Context, _ int64, stats Stats, clearSave bool) error {
	f.user.Stats = stats
	if clearSave {
		f.user.SavedGame = nil
	}
	return nil
}

func (f *fakeProfiles) AwardBadge(_ context.Context, _ int64, id BadgeID) (*Badge, error) {
	var b *Badge
	f.user.Badges, b = UnlockBadge(f.user.Badges, id)
	return b, nil
}

func (f *fakeProfiles) SaveGame(_ context.Context, _ int64, gs *GameState) error {
	f.saves++
	f.user.SavedGame = gs.Clone()
	return nil
}

func (f *fakeProfiles) LoadSavedGame(context.Context, int64) (*GameState, error) {
	return f.user.SavedGame.Clone(), nil
}

func testService(t *testing.T, d Dice) (*Service, *fakeProfiles) {
	t.Helper()
	profiles := &fakeProfiles{user: User{ID: 7, Name: "ada"}}
	catalog := NewAirportCatalog("EFHK", []Airport{
		{ICAO: "EFHK", Lat: 60.317222, Lon: 24.963333},
		{ICAO: "ENGM", Lat: 60.193917, Lon: 11.100361},
	})
	return NewService(testResolver(d), profiles, catalog), profiles
}

func winningState() *GameState {
	gs := awayState()
	gs.Shards = ShardSet{1: true, 2: true, 3: true, 4: true, 5: true}
	gs.Fluxfire = gs.RequiredFlux
	return gs
}

func TestServiceTravel_UnknownAirport(t *testing.T) {
	svc, profiles := testService(t, script(t, nil, nil))
	gs := awayState()

	_, err := svc.Travel(context.Background(), gs, "ZZZZ")

	testutil.AssertEqual(t, "error", errors.Is(err, ErrUnknownAirport), true)
	testutil.AssertEqual(t, "energy", gs.Energy, 1000)
	testutil.AssertEqual(t, "saves", profiles.saves, 0)
}

func TestServiceTravel_NoEnergy(t *testing.T) {
	svc, profiles := testService(t, script(t, nil, nil))
	gs := awayState()
	gs.Energy = 0

	out, err := svc.Travel(context.Background(), gs, "ENGM")

	testutil.AssertEqual(t, "error", errors.Is(err, ErrInsufficientEnergy), true)
	assertKinds(t, out.Events, KindNoEnergy)
	testutil.AssertEqual(t, "saves", profiles.saves, 0)
}

func TestServiceTravel_NoEnergyUnknownAirport(t *testing.T) {
	svc, _ := testService(t, script(t, nil, nil))
	gs := awayState()
	gs.Energy = 0

	out, err := svc.Travel(context.Background(), gs, "ZZZZ")

	testutil.AssertEqual(t, "error", errors.Is(err, ErrInsufficientEnergy), true)
	assertKinds(t, out.Events, KindNoEnergy)
	testutil.AssertEqual(t, "location", gs.CurrentLocation, "ESSA")
}

func TestServiceTravel_PersistsStep(t *testing.T) {
	d := script(t, []int{30, 0, 20}, []float64{pick(1, 7)})
	svc, profiles := testService(t, d)
	gs := awayState()

	out, err := svc.Travel(context.Background(), gs, "ENGM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertKinds(t, out.Events, KindCredits)
	if profiles.user.SavedGame == nil {
		t.Fatal("expected the step to be saved")
	}
	testutil.AssertEqual(t, "saved credits", profiles.user.SavedGame.Credits, 1030)
	testutil.AssertEqual(t, "played", profiles.user.Stats.Played, 0)
}

func TestServiceTravel_WinFinalizesOnce(t *testing.T) {
	svc, profiles := testService(t, script(t, nil, nil))
	profiles.user.SavedGame = awayState()

	out, err := svc.Travel(context.Background(), winningState(), "EFHK")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "win", out.Win, true)
	testutil.AssertEqual(t, "stats", profiles.user.Stats, Stats{Wins: 1, Played: 1})
	testutil.AssertEqual(t, "save cleared", profiles.user.SavedGame == nil, true)
	testutil.AssertEqual(t, "awarded", len(out.Awarded), 1)
	testutil.AssertEqual(t, "badge", out.Awarded[0].ID, BadgeFirstWin)

	out, err = svc.Travel(context.Background(), winningState(), "EFHK")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "stats", profiles.user.Stats, Stats{Wins: 2, Played: 2})
	testutil.AssertEqual(t, "no second badge", len(out.Awarded), 0)
	testutil.AssertEqual(t, "held", len(profiles.user.Badges), 1)
}

func TestServiceTravel_LossFinalizes(t *testing.T) {
	d := script(t, []int{10, 0}, []float64{pick(6, 7)})
	svc, profiles := testService(t, d)
	gs := awayState()
	gs.Credits = 0
	gs.Energy = 30

	out, err := svc.Travel(context.Background(), gs, "ENGM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "lose", out.Lose, true)
	testutil.AssertEqual(t, "stats", profiles.user.Stats, Stats{Losses: 1, Played: 1})
	testutil.AssertEqual(t, "save cleared", profiles.user.SavedGame == nil, true)
	testutil.AssertEqual(t, "badge", out.Awarded[0].ID, BadgeFirstLoss)
}

func TestServiceTravel_AwardsThresholdBadge(t *testing.T) {
	d := script(t, []int{0, 0, 90}, []float64{pick(1, 7)})
	svc, profiles := testService(t, d)
	gs := awayState()
	gs.Credits = 4900

	out, err := svc.Travel(context.Background(), gs, "ENGM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "awarded", len(out.Awarded), 1)
	testutil.AssertEqual(t, "badge", out.Awarded[0].ID, BadgeCreditKing)
	testutil.AssertEqual(t, "held", slices.Contains(profiles.user.Badges, BadgeCreditKing), true)
}

func TestServiceResumeOrNew(t *testing.T) {
	svc, profiles := testService(t, NewSeededDice(1, 1))
	saved := awayState()
	saved.Credits = 321
	profiles.user.SavedGame = saved

	gs, err := svc.ResumeOrNew(context.Background(), "ada")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "resumed", gs.Credits, 321)
	testutil.AssertEqual(t, "save consumed", profiles.user.SavedGame == nil, true)

	gs, err = svc.ResumeOrNew(context.Background(), "ada")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "fresh", gs.Credits, 1000)
	testutil.AssertEqual(t, "fresh location", gs.CurrentLocation, "EFHK")
}

func TestServiceNewGameClearsSave(t *testing.T) {
	svc, profiles := testService(t, NewSeededDice(1, 1))
	profiles.user.SavedGame = awayState()

	gs, err := svc.NewGame(context.Background(), "ada")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "player", gs.PlayerName, "ada")
	testutil.AssertEqual(t, "save cleared", profiles.user.SavedGame == nil, true)

	_, err = svc.NewGame(context.Background(), "bob")
	testutil.AssertEqual(t, "unknown player", errors.Is(err, ErrProfileNotFound), true)
}

func TestServiceBuy(t *testing.T) {
	svc, profiles := testService(t, script(t, nil, nil))
	gs := awayState()
	gs.Fluxfire = 5

	if err := svc.BuyCredits(context.Background(), gs, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "credits", gs.Credits, 1050)
	testutil.AssertEqual(t, "saves", profiles.saves, 1)

	err := svc.BuyRange(context.Background(), gs, 5000)
	testutil.AssertErrorContains(t, err, "Not enough Credits.")
	testutil.AssertEqual(t, "no save on rejection", profiles.saves, 1)
}

func TestServiceSetBalance(t *testing.T) {
	svc, _ := testService(t, script(t, nil, nil))
	gs := awayState()
	gs.Fluxfire = 2

	b := DefaultBalance()
	b.FluxToCredits = 25
	svc.SetBalance(b)

	if err := svc.BuyCredits(context.Background(), gs, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "credits", gs.Credits, 1050)
	testutil.AssertEqual(t, "rate", svc.Balance().FluxToCredits, 25)
}

func TestServiceBadges(t *testing.T) {
	svc, profiles := testService(t, script(t, nil, nil))
	profiles.user.Badges = []BadgeID{BadgeFirstLoss, "LEGACY"}

	badges, err := svc.Badges(context.Background(), "ada")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "count", len(badges), 2)
	testutil.AssertEqual(t, "first", badges[0].String(), "Temporal Blip (Experienced your first journey ending in defeat.)")
	testutil.AssertEqual(t, "legacy", badges[1].String(), "LEGACY (Unknown Badge)")
}
