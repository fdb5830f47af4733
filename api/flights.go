package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/surgefare/internal/domain"
	"github.com/Domenick1991/surgefare/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type flightResponse struct {
	FlightID        string    `json:"flight_id"`
	Airline         string    `json:"airline"`
	DepartureCity   string    `json:"departure_city"`
	ArrivalCity     string    `json:"arrival_city"`
	BasePrice       int64     `json:"base_price"`
	CurrentPrice    int64     `json:"current_price"`
	SurgeState      string    `json:"surge_state"`
	LastPriceUpdate time.Time `json:"last_price_update"`
}

type searchMeta struct {
	SearchCount  int    `json:"search_count"`
	SurgeApplied bool   `json:"surge_applied"`
	Message      string `json:"message,omitempty"`
}

type searchResponse struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Data    []flightResponse `json:"data"`
	Meta    searchMeta       `json:"meta"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/flights", h.search)
	router.GET("/flights/:id", h.get)
}

func toFlightResponse(f domain.FlightPrice) flightResponse {
	return flightResponse{
		FlightID:        f.FlightID,
		Airline:         f.Airline,
		DepartureCity:   f.Route.From,
		ArrivalCity:     f.Route.To,
		BasePrice:       f.BasePrice,
		CurrentPrice:    f.CurrentPrice,
		SurgeState:      string(f.State()),
		LastPriceUpdate: f.LastPriceUpdate,
	}
}

func (h *FlightHandler) search(c *gin.Context) {
	result, err := h.service.Search(c.Request.Context(), currentUser(c), c.Query("from"), c.Query("to"))
	if err != nil {
		writeError(c, err)
		return
	}

	data := make([]flightResponse, 0, len(result.Flights))
	for _, f := range result.Flights {
		data = append(data, toFlightResponse(f))
	}
	c.JSON(http.StatusOK, searchResponse{
		Success: true,
		Count:   len(data),
		Data:    data,
		Meta: searchMeta{
			SearchCount:  result.SearchCount,
			SurgeApplied: result.SurgeApplied,
			Message:      result.Message,
		},
	})
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": toFlightResponse(*flight)})
}
