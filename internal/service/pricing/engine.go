package pricing

import (
	"context"
	"time"

	"github.com/Domenick1991/surgefare/config"
	"github.com/Domenick1991/surgefare/internal/domain"
	"github.com/Domenick1991/surgefare/internal/kafka"
	"github.com/Domenick1991/surgefare/internal/repository"
	"go.uber.org/zap"
)

type Settings struct {
	Threshold  int
	Multiplier domain.Multiplier
	ResetIdle  time.Duration
}

func SettingsFromConfig(cfg config.PricingConfig) Settings {
	return Settings{
		Threshold:  cfg.SurgeThreshold,
		Multiplier: domain.NewMultiplier(cfg.SurgeMultiplier),
		ResetIdle:  cfg.ResetIdle(),
	}
}

// Evaluation is the outcome of one search evaluation. SurgeApplied is true
// whenever the threshold was met, even if every flight was already surged.
type Evaluation struct {
	SurgeApplied bool
	SearchCount  int
	Escalated    []string
	Reset        []string
}

// PriceChanged reports whether this evaluation wrote any flight price.
func (e *Evaluation) PriceChanged() bool {
	return len(e.Escalated) > 0 || len(e.Reset) > 0
}

type Engine struct {
	flights   repository.FlightRepository
	tracker   *Tracker
	settings  Settings
	publisher kafka.Publisher
	topic     string
	log       *zap.Logger
}

type EngineOption func(*Engine)

func WithPricePublisher(p kafka.Publisher, topic string) EngineOption {
	return func(e *Engine) {
		e.publisher = p
		e.topic = topic
	}
}

func WithLogger(log *zap.Logger) EngineOption {
	return func(e *Engine) {
		e.log = log
	}
}

func NewEngine(flights repository.FlightRepository, tracker *Tracker, settings Settings, opts ...EngineOption) *Engine {
	e := &Engine{
		flights:   flights,
		tracker:   tracker,
		settings:  settings,
		publisher: kafka.NopPublisher{},
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Settings() Settings {
	return e.settings
}

// Evaluate resets stale surges on route, recounts the user's searches and
// escalates the route when the threshold is met. The order matters: a reset
// always happens before the count so an idle surge is cleared first.
func (e *Engine) Evaluate(ctx context.Context, route domain.Route, userID string, now time.Time) (*Evaluation, error) {
	reset, err := e.flights.ResetExpiredSurges(ctx, route, now.Add(-e.settings.ResetIdle), now)
	if err != nil {
		return nil, domain.DependencyError{Dependency: "flight store", Err: err}
	}

	count, err := e.tracker.CountSince(ctx, route, userID, e.tracker.WindowStart(now))
	if err != nil {
		return nil, err
	}

	ev := &Evaluation{SearchCount: count, Reset: reset}
	if count >= e.settings.Threshold {
		ev.SurgeApplied = true
		ev.Escalated, err = e.flights.EscalateRoute(ctx, route, e.settings.Multiplier, now)
		if err != nil {
			return nil, domain.DependencyError{Dependency: "flight store", Err: err}
		}
	}

	if len(reset) > 0 {
		e.log.Info("surge reset", zap.String("route", route.Key()), zap.Strings("flights", reset))
		e.publish(ctx, kafka.EventRouteReset, route.Key(), reset, now)
	}
	if len(ev.Escalated) > 0 {
		e.log.Info("surge applied",
			zap.String("route", route.Key()),
			zap.String("user_id", userID),
			zap.Int("search_count", count),
			zap.Strings("flights", ev.Escalated),
		)
		e.publish(ctx, kafka.EventRouteSurged, route.Key(), ev.Escalated, now)
	}
	return ev, nil
}

// SweepExpired resets idle surges on every route.
func (e *Engine) SweepExpired(ctx context.Context, now time.Time) ([]string, error) {
	reset, err := e.flights.ResetAllExpiredSurges(ctx, now.Add(-e.settings.ResetIdle), now)
	if err != nil {
		return nil, domain.DependencyError{Dependency: "flight store", Err: err}
	}
	if len(reset) > 0 {
		e.publish(ctx, kafka.EventRouteReset, "", reset, now)
	}
	return reset, nil
}

func (e *Engine) publish(ctx context.Context, eventType, routeKey string, ids []string, now time.Time) {
	if e.topic == "" {
		return
	}
	event := kafka.PriceEvent{Type: eventType, RouteKey: routeKey, FlightIDs: ids, At: now}
	if err := e.publisher.Publish(ctx, e.topic, routeKey, event); err != nil {
		e.log.Warn("failed to publish price event", zap.String("type", eventType), zap.Error(err))
	}
}
