package domain

import "time"

// Booking is an immutable record of a paid ticket. FinalPrice is the price
// snapshot charged at purchase time.
type Booking struct {
	BookingID       string
	PNR             string
	UserID          string
	FlightID        string
	PassengerName   string
	FinalPrice      int64
	BookedAt        time.Time
	TicketReference string
}

// TicketFields is the snapshot handed to the ticket renderer.
type TicketFields struct {
	PNR           string
	PassengerName string
	Airline       string
	FlightID      string
	Route         Route
	FinalPrice    int64
	BookedAt      time.Time
}

func NewTicketFields(b Booking, f FlightPrice) TicketFields {
	return TicketFields{
		PNR:           b.PNR,
		PassengerName: b.PassengerName,
		Airline:       f.Airline,
		FlightID:      b.FlightID,
		Route:         f.Route,
		FinalPrice:    b.FinalPrice,
		BookedAt:      b.BookedAt,
	}
}
