package metering

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Default metering parameters: one tick per second, 0.01 kWh per tick.
const (
	DefaultTickInterval = time.Second
	DefaultTickDelta    = 0.01
)

// Meter is the single continuously running task in the service. It owns its
// lifecycle: the app starts Run in a goroutine and cancels the context to
// stop it; all communication with request handlers goes through the store.
type Meter struct {
	store    *CounterStore
	interval time.Duration
	delta    float64
	logger   *zap.Logger
}

// NewMeter builds the tick loop.
func NewMeter(store *CounterStore, interval time.Duration, delta float64, logger *zap.Logger) *Meter {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if delta <= 0 {
		delta = DefaultTickDelta
	}
	return &Meter{
		store:    store,
		interval: interval,
		delta:    delta,
		logger:   logger,
	}
}

// Run ticks until the context is cancelled.
func (m *Meter) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("energy meter started",
		zap.Duration("interval", m.interval),
		zap.Float64("delta_kwh", m.delta))

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("energy meter stopped")
			return nil
		case <-ticker.C:
			for id, energy := range m.store.Tick(m.delta) {
				m.logger.Debug("energy tick",
					zap.Int64("charger_id", id),
					zap.Float64("energy_kwh", energy))
			}
		}
	}
}
