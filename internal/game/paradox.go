/*
Package game
File: paradox.go
Description:
    The paradox trap. A player caught in it keeps travelling, but each trip
    only rolls escape coins until enough have been collected to break free.
*/

package game

// Trap moves a free player into the paradox trap with no coins.
// It returns false if the player is already trapped.
func (p *Paradox) Trap(startMillis int64) bool {
	if p.Active {
		return false
	}
	p.Active = true
	p.Coins = 0
	p.StartTime = startMillis
	return true
}

// AddCoin credits one paradox coin to a trapped player. Reaching need coins
// frees the player and resets the count, so Coins never reaches need while Active.
func (p *Paradox) AddCoin(need int) (coins int, escaped bool) {
	p.Coins++
	coins = p.Coins
	if p.Coins >= need {
		p.Active = false
		p.Coins = 0
		escaped = true
	}
	return coins, escaped
}
