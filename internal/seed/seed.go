package seed

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/Domenick1991/surgefare/internal/domain"
)

const DefaultFlightCount = 20

var Airlines = []string{
	"IndiGo",
	"Air India",
	"SpiceJet",
	"Vistara",
	"AirAsia India",
	"Go First",
}

var Cities = []string{"DEL", "BOM", "BLR", "HYD", "MAA", "CCU", "AMD", "PNQ"}

// Flights generates count flights at base price. Ordered city pairs are
// walked in a fixed order and reused once exhausted, so a large count puts
// several flights on the same route.
func Flights(rng *rand.Rand, count int, now time.Time) []domain.FlightPrice {
	routes := routes()
	flights := make([]domain.FlightPrice, 0, count)
	for i := 0; i < count; i++ {
		airline := Airlines[rng.IntN(len(Airlines))]
		base := domain.MinBasePrice + rng.Int64N(domain.MaxBasePrice-domain.MinBasePrice+1)
		flights = append(flights, domain.FlightPrice{
			FlightID:        FlightID(airline, i),
			Airline:         airline,
			Route:           routes[i%len(routes)],
			BasePrice:       base,
			CurrentPrice:    base,
			LastPriceUpdate: now,
		})
	}
	return flights
}

// FlightID is the first two letters of the airline followed by 1000+index.
func FlightID(airline string, index int) string {
	code := strings.ToUpper(strings.ReplaceAll(airline, " ", ""))
	if len(code) > 2 {
		code = code[:2]
	}
	return fmt.Sprintf("%s%04d", code, 1000+index)
}

func routes() []domain.Route {
	var out []domain.Route
	for _, from := range Cities {
		for _, to := range Cities {
			if from != to {
				out = append(out, domain.Route{From: from, To: to})
			}
		}
	}
	return out
}
