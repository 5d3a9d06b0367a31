package weather

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/i474232898/breeze-weather/internal/observability"
)

type opKind int

const (
	opPlace opKind = iota
	opWeather
	numOpKinds
)

func (k opKind) String() string {
	switch k {
	case opPlace:
		return "place"
	case opWeather:
		return "weather"
	default:
		return "unknown"
	}
}

// Service orchestrates place resolution and weather fetching against the
// application state. Each operation kind carries its own request sequence;
// only the completion of the most recently issued request of a kind may
// update state.
type Service struct {
	store      Store
	resolver   *Resolver
	forecaster Forecaster
	logger     *slog.Logger

	mu      sync.Mutex
	seq     [numOpKinds]uint64
	pending [numOpKinds]bool

	// opID orders operations across kinds; errOwner is the opID of the
	// operation that last set or cleared the request error.
	opID     uint64
	errOwner uint64
}

// ticket identifies one issued request.
type ticket struct {
	kind opKind
	seq  uint64
	id   uint64
}

// NewService creates a new Service.
func NewService(store Store, resolver *Resolver, forecaster Forecaster, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      store,
		resolver:   resolver,
		forecaster: forecaster,
		logger:     logger,
	}
}

// State returns the current application state.
func (s *Service) State() AppState {
	return s.store.State()
}

// View renders the current application state.
func (s *Service) View() View {
	return BuildView(s.store.State())
}

// Search resolves text to a place, makes it active and fetches its weather.
func (s *Service) Search(ctx context.Context, text string) (Place, error) {
	log := s.logger.With("op", "search", "op_id", uuid.NewString(), "query", text)
	return s.resolvePlace(ctx, log, func(ctx context.Context) (Place, error) {
		return s.resolver.ResolveByName(ctx, text)
	})
}

// Locate resolves the device location, makes it active and fetches its weather.
func (s *Service) Locate(ctx context.Context) (Place, error) {
	log := s.logger.With("op", "locate", "op_id", uuid.NewString())
	return s.resolvePlace(ctx, log, s.resolver.ResolveByDeviceLocation)
}

func (s *Service) resolvePlace(ctx context.Context, log *slog.Logger, resolve func(context.Context) (Place, error)) (Place, error) {
	t, _, _ := s.begin(opPlace, nil)

	place, err := resolve(ctx)
	applied := s.finish(t, err, func(st AppState) AppState {
		return st.SetPlace(place)
	})
	if !applied {
		log.Debug("discarding stale place resolution", "seq", t.seq)
		return Place{}, ErrSuperseded
	}
	if err != nil {
		log.Warn("place resolution failed", "error", err)
		return Place{}, err
	}

	log.Info("place resolved", "place", place.Name, "lat", place.Latitude, "lon", place.Longitude)

	if _, err := s.Refresh(ctx); err != nil {
		return place, err
	}
	return place, nil
}

// Refresh fetches weather for the active place in the active unit system.
func (s *Service) Refresh(ctx context.Context) (WeatherSnapshot, error) {
	t, st, err := s.begin(opWeather, func(st AppState) error {
		if st.Place == nil {
			return ErrNoPlace
		}
		return nil
	})
	if err != nil {
		return WeatherSnapshot{}, err
	}

	place, units := *st.Place, st.Units
	log := s.logger.With("op", "fetch", "op_id", uuid.NewString(), "place", place.Name, "units", units)

	snap, err := s.forecaster.Forecast(ctx, place, units)
	if err != nil && !IsNetwork(err) {
		err = &NetworkError{Op: "forecast", Err: err}
	}

	applied := s.finish(t, err, func(st AppState) AppState {
		return st.SetSnapshot(snap)
	})
	if !applied {
		log.Debug("discarding stale weather response", "seq", t.seq)
		return WeatherSnapshot{}, ErrSuperseded
	}
	if err != nil {
		// The previous snapshot, if any, stays visible next to the error.
		log.Warn("weather fetch failed", "error", err)
		return WeatherSnapshot{}, err
	}

	log.Info("weather updated", "timezone", snap.Timezone)
	return snap, nil
}

// SetUnits selects the unit system. A change drops the current snapshot and
// re-fetches for the active place.
func (s *Service) SetUnits(ctx context.Context, units UnitSystem) error {
	_, err := s.switchUnits(ctx, func(UnitSystem) UnitSystem { return units })
	return err
}

// ToggleUnits flips between metric and imperial and re-fetches.
func (s *Service) ToggleUnits(ctx context.Context) (UnitSystem, error) {
	return s.switchUnits(ctx, UnitSystem.Toggle)
}

func (s *Service) switchUnits(ctx context.Context, next func(UnitSystem) UnitSystem) (UnitSystem, error) {
	s.mu.Lock()
	var (
		units    UnitSystem
		changed  bool
		hasPlace bool
	)
	s.store.Update(func(st AppState) AppState {
		units = next(st.Units)
		changed = units != st.Units
		hasPlace = st.Place != nil
		if changed {
			s.invalidateLocked(opWeather)
			st = st.SetUnits(units)
			st = st.SetRequestState(s.requestStateLocked(s.nextIDLocked(), nil, st.Request))
		}
		return st
	})
	s.mu.Unlock()

	if !changed || !hasPlace {
		return units, nil
	}

	s.logger.Info("unit system changed", "units", units)
	_, err := s.Refresh(ctx)
	return units, err
}

// begin issues a new request of kind and clears the error. guard, when set,
// runs against the state under the same lock and aborts the request without
// touching state.
func (s *Service) begin(kind opKind, guard func(AppState) error) (ticket, AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.store.State()
	if guard != nil {
		if err := guard(st); err != nil {
			return ticket{}, st, err
		}
	}

	s.seq[kind]++
	s.pending[kind] = true
	t := ticket{kind: kind, seq: s.seq[kind], id: s.nextIDLocked()}
	st = s.store.Update(func(st AppState) AppState {
		return st.SetRequestState(s.requestStateLocked(t.id, nil, st.Request))
	})
	return t, st, nil
}

// finish records the outcome of request t. It reports false, and leaves
// state untouched, when a newer request of the same kind has been issued.
func (s *Service) finish(t ticket, err error, apply func(AppState) AppState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq[t.kind] != t.seq {
		observability.StaleResponsesTotal.WithLabelValues(t.kind.String()).Inc()
		observability.OperationsTotal.WithLabelValues(t.kind.String(), "superseded").Inc()
		return false
	}
	s.pending[t.kind] = false
	observability.OperationsTotal.WithLabelValues(t.kind.String(), outcome(err)).Inc()

	s.store.Update(func(st AppState) AppState {
		if err == nil {
			st = apply(st)
			if t.kind == opPlace {
				// Fetches still in flight belong to the previous place.
				s.invalidateLocked(opWeather)
			}
		}
		return st.SetRequestState(s.requestStateLocked(t.id, err, st.Request))
	})
	return true
}

func (s *Service) nextIDLocked() uint64 {
	s.opID++
	return s.opID
}

func (s *Service) invalidateLocked(kind opKind) {
	s.seq[kind]++
	s.pending[kind] = false
}

// requestStateLocked recomputes loading and lets operation id set the error
// unless a later operation already owns it.
func (s *Service) requestStateLocked(id uint64, err error, cur RequestState) RequestState {
	rs := RequestState{Error: cur.Error}
	for _, p := range s.pending {
		rs.Loading = rs.Loading || p
	}
	if id >= s.errOwner {
		s.errOwner = id
		rs.Error = ""
		if err != nil {
			rs.Error = err.Error()
		}
	}
	return rs
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsNotFound(err):
		return "not_found"
	case IsLocationUnavailable(err):
		return "location_unavailable"
	case IsNetwork(err):
		return "network"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
