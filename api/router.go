package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/surgefare/config"
	"github.com/Domenick1991/surgefare/internal/service/booking"
	"github.com/Domenick1991/surgefare/internal/service/flights"
	"github.com/Domenick1991/surgefare/internal/service/wallet"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services groups the use cases exposed over HTTP.
type Services struct {
	Flights  flights.FlightUseCase
	Bookings booking.BookingUseCase
	Wallet   wallet.LedgerUseCase
}

func NewRouter(cfg *config.Config, services Services, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(AccessLog(log))
	router.Use(cors.New(corsConfig(cfg.HTTP.CORSAllowedOrigins)))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.HTTP.SwaggerEnabled {
		registerDocs(router)
	}

	group := router.Group("/api")
	group.Use(Auth(cfg.Auth))
	group.Use(RateLimit(cfg.HTTP.RateLimitPerMinute, cfg.HTTP.RateLimitBurst))

	NewFlightHandler(services.Flights).Register(group)
	NewBookingHandler(services.Bookings).Register(group)
	NewWalletHandler(services.Wallet).Register(group)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", headerUserID, headerRequestID},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", headerRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
