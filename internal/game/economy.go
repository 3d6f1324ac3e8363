/*
Package game
File: economy.go
Description:
    Currency exchanges a player can make between trips:
    1. Selling Fluxfire for Credits (fixed rate from the balance config).
    2. Buying Energy with Credits (1:1).

    Both are all-or-nothing: a rejected exchange leaves the state untouched.
*/

package game

// BuyCredits sells amount fluxfire for credits at rate credits per fluxfire.
func BuyCredits(gs *GameState, amount, rate int) error {
	if amount <= 0 {
		return &ExchangeError{Message: "Invalid amount of Fluxfire."}
	}
	if gs.Fluxfire < amount {
		return &ExchangeError{Message: "Not enough Fluxfire."}
	}

	gs.Fluxfire -= amount
	gs.Credits += amount * rate
	return nil
}

// BuyRange spends amount credits for the same amount of energy.
func BuyRange(gs *GameState, amount int) error {
	if amount <= 0 {
		return &ExchangeError{Message: "Invalid amount of Credits."}
	}
	if gs.Credits < amount {
		return &ExchangeError{Message: "Not enough Credits."}
	}

	gs.Credits -= amount
	gs.Energy += amount
	return nil
}
