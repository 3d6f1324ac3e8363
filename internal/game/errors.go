/*
Package game
File: errors.go
Description:
    Sentinel errors returned by the game service and the exchanges.
*/

package game

import "errors"

var (
	ErrInsufficientEnergy    = errors.New("insufficient energy")
	ErrInvalidExchangeAmount = errors.New("invalid exchange amount")
	ErrUnknownAirport        = errors.New("destination invalid")
	ErrProfileNotFound       = errors.New("profile not found")
	ErrUserExists            = errors.New("user already exists")
)

// ExchangeError is a rejected purchase. Message is shown to the player as-is.
type ExchangeError struct {
	Message string
}

func (e *ExchangeError) Error() string {
	return e.Message
}

func (e *ExchangeError) Unwrap() error {
	return ErrInvalidExchangeAmount
}
