package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/surgefare/config"
	"github.com/Domenick1991/surgefare/internal/bootstrap"
	"github.com/Domenick1991/surgefare/internal/email"
	"github.com/Domenick1991/surgefare/internal/kafka"
	"github.com/Domenick1991/surgefare/internal/logger"
	"github.com/Domenick1991/surgefare/internal/service/pricing"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.OpenStores(ctx, cfg, logg)
	if err != nil {
		logg.Fatal("open stores", zap.Error(err))
	}
	defer stores.Close()

	var producer kafka.Publisher = kafka.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.NotificationsTopic != "" {
		p := kafka.NewProducer(cfg.Kafka.Brokers, logg)
		defer p.Close()
		producer = p

		consumer := kafka.NewBookingConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, logg)
		defer consumer.Close()

		emailSender := email.NewSender(logg)
		go func() {
			err := consumer.Run(ctx, emailSender.Send)
			if err != nil && !errors.Is(err, context.Canceled) {
				logg.Error("consumer stopped", zap.Error(err))
			}
		}()
	} else {
		logg.Info("notifications consumer disabled")
	}

	tracker := pricing.NewTracker(stores.Searches, cfg.Pricing.SearchWindow(), cfg.Pricing.SearchRetention())
	engine := pricing.NewEngine(stores.Flights, tracker, pricing.SettingsFromConfig(cfg.Pricing),
		pricing.WithPricePublisher(producer, cfg.Kafka.PricingTopic),
		pricing.WithLogger(logg),
	)

	pruneTicker := time.NewTicker(time.Duration(cfg.Worker.RetentionSweepMinutes) * time.Minute)
	defer pruneTicker.Stop()

	// A nil channel never fires, which disables the sweep.
	var sweepC <-chan time.Time
	if cfg.Worker.SurgeResetSweep {
		sweepTicker := time.NewTicker(time.Duration(cfg.Worker.SurgeResetSweepSeconds) * time.Second)
		defer sweepTicker.Stop()
		sweepC = sweepTicker.C
	}

	logg.Info("worker started")
	for {
		select {
		case <-pruneTicker.C:
			removed, err := tracker.Prune(ctx, time.Now().UTC())
			if err != nil {
				logg.Error("prune search log", zap.Error(err))
				continue
			}
			if removed > 0 {
				logg.Info("pruned search log", zap.Int64("removed", removed))
			}
		case <-sweepC:
			reset, err := engine.SweepExpired(ctx, time.Now().UTC())
			if err != nil {
				logg.Error("surge reset sweep", zap.Error(err))
				continue
			}
			if len(reset) > 0 {
				logg.Info("reset idle surges", zap.Strings("flight_ids", reset))
			}
		case <-ctx.Done():
			logg.Info("shutting down worker")
			return
		}
	}
}
