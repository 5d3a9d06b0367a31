package store

import (
	"sync"

	"github.com/i474232898/breeze-weather/internal/weather"
)

// MemoryStore is a concurrency-safe in-memory application-state container.
// It holds exactly one AppState; there is no history.
type MemoryStore struct {
	mu sync.RWMutex

	state weather.AppState

	// subscriber id -> channel holding at most the latest state
	subs   map[int]chan weather.AppState
	nextID int
}

// NewMemoryStore creates a MemoryStore with the given initial unit system.
// An empty units value selects metric.
func NewMemoryStore(units weather.UnitSystem) *MemoryStore {
	if units == "" {
		units = weather.UnitsMetric
	}
	return &MemoryStore{
		state: weather.AppState{Units: units},
		subs:  make(map[int]chan weather.AppState),
	}
}

// State returns a copy of the current state.
func (s *MemoryStore) State() weather.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Update replaces the state with fn(current), bumps the version and notifies
// subscribers. fn runs under the store lock and must not call back into the store.
func (s *MemoryStore) Update(fn func(weather.AppState) weather.AppState) weather.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.state)
	next.Version = s.state.Version + 1
	s.state = next

	for _, ch := range s.subs {
		// Drop a pending, older state so slow subscribers only see the latest.
		select {
		case <-ch:
		default:
		}
		ch <- next
	}
	return next
}

// Subscribe returns a channel that receives the latest state after every
// update. Intermediate states may be skipped by slow readers. The returned
// function unsubscribes and closes the channel.
func (s *MemoryStore) Subscribe() (<-chan weather.AppState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan weather.AppState, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}
