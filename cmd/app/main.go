package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/surgefare/api"
	"github.com/Domenick1991/surgefare/config"
	"github.com/Domenick1991/surgefare/internal/bootstrap"
	"github.com/Domenick1991/surgefare/internal/kafka"
	"github.com/Domenick1991/surgefare/internal/logger"
	"github.com/Domenick1991/surgefare/internal/service/booking"
	"github.com/Domenick1991/surgefare/internal/service/flights"
	"github.com/Domenick1991/surgefare/internal/service/pricing"
	"github.com/Domenick1991/surgefare/internal/service/wallet"
	"github.com/Domenick1991/surgefare/internal/ticket"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	if cfg.Log.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.OpenStores(ctx, cfg, logg)
	if err != nil {
		logg.Fatal("open stores", zap.Error(err))
	}
	defer stores.Close()

	var producer kafka.Publisher = kafka.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		p := kafka.NewProducer(cfg.Kafka.Brokers, logg)
		defer p.Close()
		producer = p
	} else {
		logg.Info("kafka brokers not configured, events are dropped")
	}

	tracker := pricing.NewTracker(stores.Searches, cfg.Pricing.SearchWindow(), cfg.Pricing.SearchRetention())
	engine := pricing.NewEngine(stores.Flights, tracker, pricing.SettingsFromConfig(cfg.Pricing),
		pricing.WithPricePublisher(producer, cfg.Kafka.PricingTopic),
		pricing.WithLogger(logg),
	)
	ledger := wallet.NewLedger(stores.Wallets, cfg.Wallet.StartingBalance, logg)

	flightService := flights.NewFlightService(stores.Flights, stores.Cache, tracker, engine, cfg.Booking.SearchResultLimit, logg)
	bookingService := booking.NewBookingService(
		stores.Bookings,
		stores.Flights,
		ledger,
		booking.WithProducer(producer, cfg.Kafka.BookingTopic),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithRenderer(ticket.NewFileStore(cfg.Tickets.Dir)),
		booking.WithMaxAttempts(cfg.Booking.MaxIdentityAttempts),
		booking.WithLogger(logg),
	)

	router := api.NewRouter(cfg, api.Services{
		Flights:  flightService,
		Bookings: bookingService,
		Wallet:   ledger,
	}, logg)

	if err := bootstrap.Run(ctx, cfg, router, logg); err != nil {
		logg.Fatal("server error", zap.Error(err))
	}
}
