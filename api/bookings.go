package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/surgefare/internal/domain"
	"github.com/Domenick1991/surgefare/internal/service/booking"
	"github.com/Domenick1991/surgefare/internal/ticket"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	PassengerName string `json:"passenger_name"`
	FlightID      string `json:"flight_id"`
}

type bookingResponse struct {
	BookingID      string    `json:"booking_id"`
	PNR            string    `json:"pnr"`
	PassengerName  string    `json:"passenger_name"`
	FlightID       string    `json:"flight_id"`
	FinalPrice     int64     `json:"final_price"`
	BookedAt       time.Time `json:"booked_at"`
	TicketDownload string    `json:"ticket_download"`
}

type createBookingResponse struct {
	bookingResponse
	SurgeApplied bool  `json:"surge_applied"`
	Balance      int64 `json:"balance"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/book", h.create)
	router.GET("/bookings", h.history)
	router.GET("/bookings/:pnr", h.get)
	router.GET("/download/:pnr", h.download)
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		BookingID:      b.BookingID,
		PNR:            b.PNR,
		PassengerName:  b.PassengerName,
		FlightID:       b.FlightID,
		FinalPrice:     b.FinalPrice,
		BookedAt:       b.BookedAt,
		TicketDownload: "/api/download/" + b.PNR,
	}
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, codeValidation, "invalid request body")
		return
	}

	result, err := h.service.Book(c.Request.Context(), booking.BookInput{
		UserID:        currentUser(c),
		PassengerName: req.PassengerName,
		FlightID:      req.FlightID,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Booking confirmed",
		"data": createBookingResponse{
			bookingResponse: toBookingResponse(result.Booking),
			SurgeApplied:    result.SurgeApplied,
			Balance:         result.Balance,
		},
	})
}

func (h *BookingHandler) history(c *gin.Context) {
	bookings, err := h.service.History(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}

	data := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		data = append(data, toBookingResponse(b))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(data), "data": data})
}

func (h *BookingHandler) get(c *gin.Context) {
	b, err := h.service.GetByPNR(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		writeError(c, err)
		return
	}
	if b.UserID != currentUser(c) {
		abort(c, http.StatusNotFound, codeNotFound, "booking not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": toBookingResponse(*b)})
}

func (h *BookingHandler) download(c *gin.Context) {
	pnr := c.Param("pnr")
	b, err := h.service.GetByPNR(c.Request.Context(), pnr)
	if err != nil {
		writeError(c, err)
		return
	}
	if b.UserID != currentUser(c) {
		abort(c, http.StatusNotFound, codeNotFound, "booking not found")
		return
	}

	pdf, err := h.service.Ticket(c.Request.Context(), b.PNR)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ticket.FileName(b.PNR)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
