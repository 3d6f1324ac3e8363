package game

import (
	"errors"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestBuyCredits(t *testing.T) {
	tests := map[string]struct {
		fluxfire    int
		amount      int
		expErr      string
		expFluxfire int
		expCredits  int
	}{
		"exchange":    {fluxfire: 5, amount: 5, expFluxfire: 0, expCredits: 1050},
		"partial":     {fluxfire: 5, amount: 2, expFluxfire: 3, expCredits: 1020},
		"zero amount": {fluxfire: 5, amount: 0, expErr: "Invalid amount of Fluxfire.", expFluxfire: 5, expCredits: 1000},
		"negative":    {fluxfire: 5, amount: -1, expErr: "Invalid amount of Fluxfire.", expFluxfire: 5, expCredits: 1000},
		"not enough":  {fluxfire: 1, amount: 2, expErr: "Not enough Fluxfire.", expFluxfire: 1, expCredits: 1000},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			gs := awayState()
			gs.Fluxfire = tt.fluxfire

			err := BuyCredits(gs, tt.amount, 10)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				testutil.AssertEqual(t, "sentinel", errors.Is(err, ErrInvalidExchangeAmount), true)
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "fluxfire", gs.Fluxfire, tt.expFluxfire)
			testutil.AssertEqual(t, "credits", gs.Credits, tt.expCredits)
		})
	}
}

func TestBuyRange(t *testing.T) {
	tests := map[string]struct {
		credits    int
		amount     int
		expErr     string
		expCredits int
		expEnergy  int
	}{
		"exchange":    {credits: 100, amount: 40, expCredits: 60, expEnergy: 1040},
		"everything":  {credits: 100, amount: 100, expCredits: 0, expEnergy: 1100},
		"zero amount": {credits: 100, amount: 0, expErr: "Invalid amount of Credits.", expCredits: 100, expEnergy: 1000},
		"not enough":  {credits: 100, amount: 101, expErr: "Not enough Credits.", expCredits: 100, expEnergy: 1000},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			gs := awayState()
			gs.Credits = tt.credits

			err := BuyRange(gs, tt.amount)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "credits", gs.Credits, tt.expCredits)
			testutil.AssertEqual(t, "energy", gs.Energy, tt.expEnergy)
		})
	}
}
