package service

import (
	"context"

	"go.uber.org/zap"

	"voltshare/backend/services/cms-service/internal/metering"
)

// Control command outcomes. The control surface always answers 200 with one
// of these statuses so the hardware contract stays a plain status/message
// pair.
const (
	StatusSuccess = "SUCCESS"
	StatusFail    = "FAIL"
)

// Result is the outcome of one control command.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// AuthorityClient is the outbound contract toward the booking authority.
type AuthorityClient interface {
	ConfirmUnblock(ctx context.Context, chargerID int64) error
	ConfirmBlock(ctx context.Context, chargerID int64) error
	Complete(ctx context.Context, chargerID int64, totalEnergy float64, durationSeconds int64) error
}

// ControlService simulates the hardware side of the handshake: it confirms
// state changes against the booking authority and owns arming/disarming of
// the energy counters.
type ControlService struct {
	counters  *metering.CounterStore
	authority AuthorityClient
	logger    *zap.Logger
}

// NewControlService builds service.
func NewControlService(counters *metering.CounterStore, authority AuthorityClient, logger *zap.Logger) *ControlService {
	return &ControlService{
		counters:  counters,
		authority: authority,
		logger:    logger,
	}
}

// Block physically blocks the charger and acknowledges it to the authority.
func (s *ControlService) Block(ctx context.Context, chargerID int64) Result {
	if err := s.authority.ConfirmBlock(ctx, chargerID); err != nil {
		return Result{Status: StatusFail, Message: "error calling booking authority: " + err.Error()}
	}
	return Result{Status: StatusSuccess, Message: "charger blocked successfully"}
}

// Unblock releases the hardware, confirms it to the authority and arms the
// energy counter for the charger.
func (s *ControlService) Unblock(ctx context.Context, chargerID int64) Result {
	if err := s.authority.ConfirmUnblock(ctx, chargerID); err != nil {
		return Result{Status: StatusFail, Message: "error calling booking authority: " + err.Error()}
	}

	s.counters.Arm(chargerID)
	s.logger.Info("energy counter armed", zap.Int64("charger_id", chargerID))
	return Result{Status: StatusSuccess, Message: "charger unblocked and energy counter started"}
}

// Stop disarms the counter, capturing the final energy and duration, and
// pushes them to the authority. A stop for a charger that is not armed fails:
// the counter entry is the session from this side of the protocol.
func (s *ControlService) Stop(ctx context.Context, chargerID int64) Result {
	reading, ok := s.counters.Stop(chargerID)
	if !ok {
		return Result{Status: StatusFail, Message: "no active session for this charger"}
	}

	s.logger.Info("energy counter stopped",
		zap.Int64("charger_id", chargerID),
		zap.Float64("total_energy", reading.TotalEnergy),
		zap.Int64("duration_seconds", reading.DurationSeconds))

	if err := s.authority.Complete(ctx, chargerID, reading.TotalEnergy, reading.DurationSeconds); err != nil {
		return Result{Status: StatusFail, Message: "error delivering session data: " + err.Error()}
	}
	return Result{Status: StatusSuccess, Message: "session completed and data sent to booking authority"}
}
