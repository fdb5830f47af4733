package seed

import (
	"math/rand/v2"
	"regexp"
	"testing"
	"time"

	"github.com/Domenick1991/surgefare/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFlights(t *testing.T) {
	now := time.Now()
	flights := Flights(rand.New(rand.NewPCG(1, 2)), DefaultFlightCount, now)

	assert.Len(t, flights, DefaultFlightCount)
	idPattern := regexp.MustCompile(`^[A-Z]{2}\d{4}$`)
	seen := make(map[string]bool)
	for i, f := range flights {
		assert.Regexp(t, idPattern, f.FlightID)
		assert.False(t, seen[f.FlightID], "duplicate id %s", f.FlightID)
		seen[f.FlightID] = true

		assert.GreaterOrEqual(t, f.BasePrice, domain.MinBasePrice)
		assert.LessOrEqual(t, f.BasePrice, domain.MaxBasePrice)
		assert.Equal(t, domain.SurgeStateNormal, f.State())
		assert.NotEqual(t, f.Route.From, f.Route.To)
		assert.Equal(t, now, f.LastPriceUpdate)
		assert.Contains(t, Airlines, f.Airline)
		if i == 0 {
			assert.Equal(t, domain.Route{From: "DEL", To: "BOM"}, f.Route)
		}
	}
}

func TestFlights_WrapsRoutes(t *testing.T) {
	flights := Flights(rand.New(rand.NewPCG(3, 4)), 57, time.Now())
	assert.Equal(t, flights[0].Route, flights[56].Route)
}

func TestFlightID(t *testing.T) {
	assert.Equal(t, "IN1000", FlightID("IndiGo", 0))
	assert.Equal(t, "AI1019", FlightID("Air India", 19))
	assert.Equal(t, "GO1005", FlightID("Go First", 5))
}
