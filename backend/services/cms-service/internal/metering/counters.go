// Package metering owns the per-charger energy accumulators and the periodic
// tick loop that drives them. All state is in-process only and lost on
// restart; the booking authority holds the durable record.
package metering

import (
	"sync"
	"time"
)

// FinalReading is the captured result of a stopped session.
type FinalReading struct {
	TotalEnergy     float64
	DurationSeconds int64
}

type counter struct {
	energy    float64
	startedAt time.Time
}

// CounterStore is the concurrency-safe map of armed chargers. Ticks and stop
// requests interleave for the same charger; the single mutex guarantees a
// stop captures a monotonically non-decreasing value and that no tick applies
// after removal.
type CounterStore struct {
	mu       sync.Mutex
	counters map[int64]*counter
	now      func() time.Time
}

// NewCounterStore returns an empty store.
func NewCounterStore() *CounterStore {
	return &CounterStore{
		counters: make(map[int64]*counter),
		now:      time.Now,
	}
}

// WithClock overrides the clock, for tests.
func (s *CounterStore) WithClock(now func() time.Time) *CounterStore {
	s.now = now
	return s
}

// Arm starts metering for the charger, resetting any previous counter.
func (s *CounterStore) Arm(chargerID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[chargerID] = &counter{startedAt: s.now()}
}

// Tick adds delta to every armed counter and returns a snapshot of the new
// values for logging.
func (s *CounterStore) Tick(delta float64) map[int64]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make(map[int64]float64, len(s.counters))
	for id, c := range s.counters {
		c.energy += delta
		snapshot[id] = c.energy
	}
	return snapshot
}

// Stop atomically captures the accumulated energy and elapsed wall-clock
// seconds for the charger and removes its counter. The second return is false
// when the charger was not armed.
func (s *CounterStore) Stop(chargerID int64) (FinalReading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[chargerID]
	if !ok {
		return FinalReading{}, false
	}
	delete(s.counters, chargerID)
	return FinalReading{
		TotalEnergy:     c.energy,
		DurationSeconds: int64(s.now().Sub(c.startedAt) / time.Second),
	}, true
}

// Armed reports whether the charger is currently metered.
func (s *CounterStore) Armed(chargerID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.counters[chargerID]
	return ok
}

// Len returns the number of armed chargers.
func (s *CounterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}
