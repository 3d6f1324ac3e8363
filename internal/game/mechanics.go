/*
Package game
File: mechanics.go
Description:
    Rule helpers shared by the resolver: the loss predicate, the win
    predicate, great-circle distances and the read-only airport catalog.
*/

package game

import (
	"math"
	"sort"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371

// UnknownDistance is reported for airports without coordinates.
const UnknownDistance = 9999

// IsLost reports whether the state meets a loss condition.
// Loss occurs when credits <= 20 with no energy left, or when credits are
// exhausted and energy sits in [10,20].
func IsLost(gs *GameState) bool {
	if gs.Credits <= 20 && gs.Energy == 0 {
		return true
	}
	if gs.Credits == 0 && gs.Energy >= 10 && gs.Energy <= 20 {
		return true
	}
	return false
}

// CanWin reports whether arriving home would end the game in victory.
func CanWin(gs *GameState) bool {
	return gs.CountShards == ShardCount && gs.Fluxfire >= gs.RequiredFlux
}

// CalculateDistance returns the great-circle distance in whole km (floored).
func CalculateDistance(lat1, lon1, lat2, lon2 float64) int {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return int(earthRadiusKm * c)
}

// AirportCatalog is the read-only airport reference data.
// It is built once and shared between requests; nothing mutates it afterwards.
type AirportCatalog struct {
	home     string
	airports []Airport
	byICAO   map[string]int
}

// NewAirportCatalog indexes airports and fills in each distance from home.
// Airports whose coordinates are both zero are treated as missing coordinates.
func NewAirportCatalog(home string, airports []Airport) *AirportCatalog {
	c := &AirportCatalog{
		home:     home,
		airports: make([]Airport, len(airports)),
		byICAO:   make(map[string]int, len(airports)),
	}
	copy(c.airports, airports)
	sort.SliceStable(c.airports, func(i, j int) bool {
		return c.airports[i].ICAO < c.airports[j].ICAO
	})

	var origin *Airport
	for i := range c.airports {
		c.byICAO[c.airports[i].ICAO] = i
		if c.airports[i].ICAO == home {
			origin = &c.airports[i]
		}
	}

	for i := range c.airports {
		a := &c.airports[i]
		switch {
		case a.ICAO == home:
			a.Distance = 0
		case origin == nil || (a.Lat == 0 && a.Lon == 0):
			a.Distance = UnknownDistance
		default:
			a.Distance = CalculateDistance(origin.Lat, origin.Lon, a.Lat, a.Lon)
		}
	}
	return c
}

// Home returns the ICAO code of the home airport.
func (c *AirportCatalog) Home() string {
	return c.home
}

// List returns a copy of every airport, ordered by ICAO code.
func (c *AirportCatalog) List() []Airport {
	out := make([]Airport, len(c.airports))
	copy(out, c.airports)
	return out
}

// Get returns the airport with the given ICAO code, or nil if not found.
func (c *AirportCatalog) Get(icao string) *Airport {
	i, ok := c.byICAO[icao]
	if !ok {
		return nil
	}
	a := c.airports[i]
	return &a
}
