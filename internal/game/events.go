/*
Package game
File: events.go
Description:
    The observable event records produced by one player action.
    Each kind is its own struct; Event is sealed so only this package
    can add cases. EventLog encodes each record with its "type" tag,
    which is the shape the browser client switches on.
*/

package game

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EventKind is the wire tag of an event record.
type EventKind string

const (
	KindNoEnergy          EventKind = "no_energy"
	KindWin               EventKind = "win"
	KindRequirementsUnmet EventKind = "efhk_requirements_not_met"
	KindInsufficientRange EventKind = "insufficient_range"
	KindBandit            EventKind = "bandit"
	KindCredits           EventKind = "credits"
	KindRange             EventKind = "range"
	KindFluxfire          EventKind = "fluxfire"
	KindParadox           EventKind = "paradox"
	KindShard             EventKind = "shard"
	KindNothing           EventKind = "nothing"
	KindParadoxCoin       EventKind = "paradox_coin"
	KindParadoxEscaped    EventKind = "paradox_escaped"
	KindLose              EventKind = "lose"
)

// Event is one record in the ordered log of a travel step.
type Event interface {
	Kind() EventKind
	event()
}

type NoEnergyEvent struct {
	Message string `json:"message"`
}

type WinEvent struct {
	Fuel         string `json:"fuel"`
	RequiredFlux int    `json:"required_flux"`
}

type RequirementsUnmetEvent struct {
	RequiredFlux int `json:"required_flux"`
}

type InsufficientRangeEvent struct {
	Message string `json:"message"`
}

// BanditEvent records a theft; Subtype is "credits" or "range".
type BanditEvent struct {
	Subtype string `json:"subtype"`
	Amount  int    `json:"amount"`
}

type CreditsEvent struct {
	Amount int `json:"amount"`
}

type RangeEvent struct {
	Amount int `json:"amount"`
}

type FluxfireEvent struct{}

type ParadoxEvent struct{}

type ShardEvent struct {
	Shard int `json:"shard"`
}

type NothingEvent struct{}

type ParadoxCoinEvent struct {
	Coins int `json:"coins"`
}

type ParadoxEscapedEvent struct{}

type LoseEvent struct {
	Message string `json:"message"`
}

func (NoEnergyEvent) Kind() EventKind          { return KindNoEnergy }
func (WinEvent) Kind() EventKind               { return KindWin }
func (RequirementsUnmetEvent) Kind() EventKind { return KindRequirementsUnmet }
func (InsufficientRangeEvent) Kind() EventKind { return KindInsufficientRange }
func (BanditEvent) Kind() EventKind            { return KindBandit }
func (CreditsEvent) Kind() EventKind           { return KindCredits }
func (RangeEvent) Kind() EventKind             { return KindRange }
func (FluxfireEvent) Kind() EventKind          { return KindFluxfire }
func (ParadoxEvent) Kind() EventKind           { return KindParadox }
func (ShardEvent) Kind() EventKind             { return KindShard }
func (NothingEvent) Kind() EventKind           { return KindNothing }
func (ParadoxCoinEvent) Kind() EventKind       { return KindParadoxCoin }
func (ParadoxEscapedEvent) Kind() EventKind    { return KindParadoxEscaped }
func (LoseEvent) Kind() EventKind              { return KindLose }

func (NoEnergyEvent) event()          {}
func (WinEvent) event()               {}
func (RequirementsUnmetEvent) event() {}
func (InsufficientRangeEvent) event() {}
func (BanditEvent) event()            {}
func (CreditsEvent) event()           {}
func (RangeEvent) event()             {}
func (FluxfireEvent) event()          {}
func (ParadoxEvent) event()           {}
func (ShardEvent) event()             {}
func (NothingEvent) event()           {}
func (ParadoxCoinEvent) event()       {}
func (ParadoxEscapedEvent) event()    {}
func (LoseEvent) event()              {}

// EventLog is the ordered list of events emitted by one action.
type EventLog []Event

// Kinds returns the tag of every event in order.
func (l EventLog) Kinds() []EventKind {
	kinds := make([]EventKind, len(l))
	for i, e := range l {
		kinds[i] = e.Kind()
	}
	return kinds
}

func (l EventLog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, e := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := marshalEvent(e)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// marshalEvent writes the event's own fields with "type" spliced in first.
func marshalEvent(e Event) ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshalling %s event: %w", e.Kind(), err)
	}
	tag, err := json.Marshal(e.Kind())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	buf.Write(tag)
	if inner := bytes.TrimSpace(body[1 : len(body)-1]); len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
