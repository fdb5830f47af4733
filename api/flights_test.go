package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/surgefare/internal/domain"
	"github.com/Domenick1991/surgefare/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) Search(ctx context.Context, userID, from, to string) (*flights.SearchResult, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flights.SearchResult), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, flightID string) (*domain.FlightPrice, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightPrice), args.Error(1)
}

func sampleFlight() domain.FlightPrice {
	return domain.FlightPrice{
		FlightID:        "IN1000",
		Airline:         "IndiGo",
		Route:           domain.Route{From: "DEL", To: "BOM"},
		BasePrice:       2500,
		CurrentPrice:    2750,
		LastPriceUpdate: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestFlightHandler_search(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/flights?from=DEL&to=BOM", nil)
	c.Set(userIDKey, "u1")

	mockService.On("Search", c.Request.Context(), "u1", "DEL", "BOM").Return(&flights.SearchResult{
		Flights:      []domain.FlightPrice{sampleFlight()},
		SearchCount:  3,
		SurgeApplied: true,
		Message:      "Surge pricing applied! You've searched this route 3 times in 5 minutes.",
	}, nil)

	handler.search(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp searchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "SURGED", resp.Data[0].SurgeState)
	assert.Equal(t, "DEL", resp.Data[0].DepartureCity)
	assert.Equal(t, int64(2750), resp.Data[0].CurrentPrice)
	assert.Equal(t, 3, resp.Meta.SearchCount)
	assert.True(t, resp.Meta.SurgeApplied)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_searchErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domain.ValidationError{Field: "route", Msg: "departure and arrival cities cannot be the same"}, http.StatusBadRequest, codeValidation},
		{"not found", domain.NotFoundError{Resource: "flights from CCU to AMD"}, http.StatusNotFound, codeNotFound},
		{"dependency", domain.DependencyError{Dependency: "search log"}, http.StatusServiceUnavailable, codeUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &MockFlightUseCase{}
			handler := NewFlightHandler(mockService)

			gin.SetMode(gin.TestMode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/api/flights?from=CCU&to=AMD", nil)
			c.Set(userIDKey, "u1")

			mockService.On("Search", c.Request.Context(), "u1", "CCU", "AMD").Return(nil, tc.err)

			handler.search(c)

			assert.Equal(t, tc.status, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestFlightHandler_get(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/flights/IN1000", nil)
	c.Params = gin.Params{{Key: "id", Value: "IN1000"}}

	flight := sampleFlight()
	mockService.On("GetByID", c.Request.Context(), "IN1000").Return(&flight, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"flight_id":"IN1000"`)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_getNotFound(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/flights/XX0000", nil)
	c.Params = gin.Params{{Key: "id", Value: "XX0000"}}

	mockService.On("GetByID", c.Request.Context(), "XX0000").Return(nil, domain.NotFoundError{Resource: "flight", ID: "XX0000"})

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "flight XX0000 not found")
}
