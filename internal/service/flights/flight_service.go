package flights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/surgefare/internal/domain"
	"github.com/Domenick1991/surgefare/internal/repository"
	"github.com/Domenick1991/surgefare/internal/service/pricing"
	"go.uber.org/zap"
)

const defaultSearchLimit = 10

type FlightUseCase interface {
	Search(ctx context.Context, userID, from, to string) (*SearchResult, error)
	GetByID(ctx context.Context, flightID string) (*domain.FlightPrice, error)
}

// RouteCache is implemented by cache.RedisCache.
type RouteCache interface {
	GetRouteFlights(ctx context.Context, route domain.Route) ([]domain.FlightPrice, error)
	SetRouteFlights(ctx context.Context, route domain.Route, flights []domain.FlightPrice) error
	InvalidateRoute(ctx context.Context, route domain.Route) error
}

type SearchResult struct {
	Flights      []domain.FlightPrice
	SearchCount  int
	SurgeApplied bool
	Message      string
}

type FlightService struct {
	repo    repository.FlightRepository
	cache   RouteCache
	tracker *pricing.Tracker
	engine  *pricing.Engine
	limit   int
	log     *zap.Logger
	now     func() time.Time
}

func NewFlightService(repo repository.FlightRepository, cache RouteCache, tracker *pricing.Tracker, engine *pricing.Engine, limit int, log *zap.Logger) *FlightService {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return &FlightService{
		repo:    repo,
		cache:   cache,
		tracker: tracker,
		engine:  engine,
		limit:   limit,
		log:     log,
		now:     time.Now,
	}
}

// Search records the search, re-evaluates the route's surge state and
// returns the flights at their resulting prices.
func (s *FlightService) Search(ctx context.Context, userID, from, to string) (*SearchResult, error) {
	route, err := domain.NewRoute(from, to)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ValidationError{Field: "user_id", Msg: "user_id is required"}
	}

	now := s.now().UTC()
	if _, err := s.tracker.Record(ctx, route, userID, now); err != nil {
		return nil, err
	}
	ev, err := s.engine.Evaluate(ctx, route, userID, now)
	if err != nil {
		return nil, err
	}

	if ev.PriceChanged() && s.cache != nil {
		if err := s.cache.InvalidateRoute(ctx, route); err != nil {
			s.log.Warn("failed to invalidate route cache", zap.String("route", route.Key()), zap.Error(err))
		}
	}

	flights, err := s.list(ctx, route)
	if err != nil {
		return nil, err
	}
	if len(flights) == 0 {
		return nil, domain.NotFoundError{Resource: fmt.Sprintf("flights from %s to %s", route.From, route.To)}
	}

	return &SearchResult{
		Flights:      flights,
		SearchCount:  ev.SearchCount,
		SurgeApplied: ev.SurgeApplied,
		Message:      s.message(ev),
	}, nil
}

func (s *FlightService) list(ctx context.Context, route domain.Route) ([]domain.FlightPrice, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetRouteFlights(ctx, route); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.ListByRoute(ctx, route, s.limit)
	if err != nil {
		return nil, domain.DependencyError{Dependency: "flight store", Err: err}
	}
	if s.cache != nil && len(flights) > 0 {
		if err := s.cache.SetRouteFlights(ctx, route, flights); err != nil {
			s.log.Debug("failed to cache route flights", zap.String("route", route.Key()), zap.Error(err))
		}
	}
	return flights, nil
}

func (s *FlightService) message(ev *pricing.Evaluation) string {
	settings := s.engine.Settings()
	if ev.SurgeApplied {
		return fmt.Sprintf("Surge pricing applied! You've searched this route %d times in %s.", ev.SearchCount, humanDuration(s.tracker.Window()))
	}
	if ev.SearchCount >= settings.Threshold-1 {
		return fmt.Sprintf("%d more search(es) to trigger surge pricing", settings.Threshold-ev.SearchCount)
	}
	return ""
}

func (s *FlightService) GetByID(ctx context.Context, flightID string) (*domain.FlightPrice, error) {
	flightID = strings.ToUpper(strings.TrimSpace(flightID))
	if flightID == "" {
		return nil, domain.ValidationError{Field: "flight_id", Msg: "flight_id is required"}
	}
	f, err := s.repo.GetByID(ctx, flightID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		return nil, domain.DependencyError{Dependency: "flight store", Err: err}
	}
	return f, nil
}

func humanDuration(d time.Duration) string {
	if d%time.Minute != 0 {
		return d.String()
	}
	if m := int(d / time.Minute); m != 1 {
		return fmt.Sprintf("%d minutes", m)
	}
	return "1 minute"
}

var _ FlightUseCase = (*FlightService)(nil)
