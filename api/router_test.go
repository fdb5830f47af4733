package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/surgefare/config"
	"github.com/Domenick1991/surgefare/internal/domain"
	"github.com/Domenick1991/surgefare/internal/repository"
	"github.com/Domenick1991/surgefare/internal/service/booking"
	"github.com/Domenick1991/surgefare/internal/service/flights"
	"github.com/Domenick1991/surgefare/internal/service/pricing"
	"github.com/Domenick1991/surgefare/internal/service/wallet"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.HTTP.RateLimitPerMinute = 0
	cfg.HTTP.SwaggerEnabled = true

	store := repository.NewMemoryStore()
	require.NoError(t, store.Flights().Upsert(context.Background(), []domain.FlightPrice{
		{FlightID: "IN1000", Airline: "IndiGo", Route: domain.Route{From: "DEL", To: "BOM"}, BasePrice: 2500},
	}))

	log := zap.NewNop()
	tracker := pricing.NewTracker(store.Searches(), cfg.Pricing.SearchWindow(), cfg.Pricing.SearchRetention())
	engine := pricing.NewEngine(store.Flights(), tracker, pricing.SettingsFromConfig(cfg.Pricing))
	ledger := wallet.NewLedger(store.Wallets(), cfg.Wallet.StartingBalance, log)

	return NewRouter(cfg, Services{
		Flights:  flights.NewFlightService(store.Flights(), nil, tracker, engine, cfg.Booking.SearchResultLimit, log),
		Bookings: booking.NewBookingService(store.Bookings(), store.Flights(), ledger),
		Wallet:   ledger,
	}, log)
}

func doRequest(router http.Handler, method, path, user string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerUserID, user)
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_SearchSurgeBookFlow(t *testing.T) {
	router := newTestRouter(t)

	var search searchResponse
	for i := 0; i < 3; i++ {
		w := doRequest(router, "GET", "/api/flights?from=del&to=bom", "u1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &search))
	}
	assert.True(t, search.Meta.SurgeApplied)
	assert.Equal(t, int64(2750), search.Data[0].CurrentPrice)

	body, _ := json.Marshal(createBookingRequest{PassengerName: "Asha Rao", FlightID: "IN1000"})
	w := doRequest(router, "POST", "/api/book", "u1", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data struct {
			PNR          string `json:"pnr"`
			FinalPrice   int64  `json:"final_price"`
			SurgeApplied bool   `json:"surge_applied"`
			Balance      int64  `json:"balance"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, int64(2750), created.Data.FinalPrice)
	assert.True(t, created.Data.SurgeApplied)
	assert.Equal(t, int64(47250), created.Data.Balance)
	assert.Len(t, created.Data.PNR, 6)

	w = doRequest(router, "GET", "/api/wallet", "u1", nil)
	assert.Contains(t, w.Body.String(), `"balance":47250`)

	w = doRequest(router, "GET", "/api/bookings", "u1", nil)
	assert.Contains(t, w.Body.String(), created.Data.PNR)

	w = doRequest(router, "GET", "/api/download/"+created.Data.PNR, "u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	w = doRequest(router, "GET", "/api/download/"+created.Data.PNR, "u2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_SurgeIsPerUserButPriceIsShared(t *testing.T) {
	router := newTestRouter(t)

	for i := 0; i < 3; i++ {
		doRequest(router, "GET", "/api/flights?from=DEL&to=BOM", "u1", nil)
	}

	var search searchResponse
	w := doRequest(router, "GET", "/api/flights?from=DEL&to=BOM", "u2", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &search))
	assert.Equal(t, 1, search.Meta.SearchCount)
	assert.False(t, search.Meta.SurgeApplied)
	assert.Equal(t, "SURGED", search.Data[0].SurgeState)
}

func TestRouter_HealthAndDocs(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, "GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "GET", "/openapi.json", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, json.Valid(w.Body.Bytes()))
}

func TestRouter_BookUnknownFlight(t *testing.T) {
	router := newTestRouter(t)

	body, _ := json.Marshal(createBookingRequest{PassengerName: "Asha Rao", FlightID: "ZZ9999"})
	w := doRequest(router, "POST", "/api/book", "u1", body)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, "GET", "/api/wallet/transactions", "u1", nil)
	assert.Contains(t, w.Body.String(), `"count":0`)
}

func TestCorsConfig(t *testing.T) {
	open := corsConfig(nil)
	assert.True(t, open.AllowAllOrigins)
	assert.False(t, open.AllowCredentials)

	restricted := corsConfig([]string{"https://app.example.com"})
	assert.False(t, restricted.AllowAllOrigins)
	assert.Equal(t, []string{"https://app.example.com"}, restricted.AllowOrigins)
	assert.Equal(t, 12*time.Hour, restricted.MaxAge)
}
