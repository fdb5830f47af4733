package domain

import (
	"math"
	"strings"
	"time"
)

// Route is an ordered pair of city codes priced as one unit.
type Route struct {
	From string
	To   string
}

// NewRoute normalises both city codes to upper case and rejects empty or
// same-city routes.
func NewRoute(from, to string) (Route, error) {
	r := Route{
		From: strings.ToUpper(strings.TrimSpace(from)),
		To:   strings.ToUpper(strings.TrimSpace(to)),
	}
	if r.From == "" || r.To == "" {
		return Route{}, ValidationError{Field: "route", Msg: "both departure (from) and arrival (to) cities are required"}
	}
	if r.From == r.To {
		return Route{}, ValidationError{Field: "route", Msg: "departure and arrival cities cannot be the same"}
	}
	return r, nil
}

func (r Route) Key() string {
	return r.From + "-" + r.To
}

func (r Route) String() string {
	return r.Key()
}

type SurgeState string

const (
	SurgeStateNormal SurgeState = "NORMAL"
	SurgeStateSurged SurgeState = "SURGED"
)

const (
	MinBasePrice int64 = 2000
	MaxBasePrice int64 = 3000
)

type FlightPrice struct {
	FlightID        string
	Airline         string
	Route           Route
	BasePrice       int64
	CurrentPrice    int64
	LastPriceUpdate time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (f FlightPrice) State() SurgeState {
	if f.CurrentPrice == f.BasePrice {
		return SurgeStateNormal
	}
	return SurgeStateSurged
}

// Multiplier is a surge multiplier expressed in basis points (1.10 == 11000),
// so Go and SQL compute the exact same integer price.
type Multiplier int64

const basisPoints = 10000

func NewMultiplier(f float64) Multiplier {
	return Multiplier(math.Round(f * basisPoints))
}

func (m Multiplier) Float() float64 {
	return float64(m) / basisPoints
}

// Apply returns base scaled by m, rounded half up.
func (m Multiplier) Apply(base int64) int64 {
	return (base*int64(m) + basisPoints/2) / basisPoints
}
