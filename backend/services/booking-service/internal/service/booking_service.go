package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"voltshare/backend/services/booking-service/internal/models"
	"voltshare/backend/services/booking-service/internal/repository"
)

// BookingService drives the reservation state machine and keeps it in step
// with the charger management system. Each outbound handshake call is a point
// of potential divergence; the per-operation contracts below decide which
// side of the call commits first.
type BookingService struct {
	bookings     BookingRepository
	chargers     ChargerRepository
	controller   ControllerClient
	bookingLocks *keyLocks
	chargerLocks *keyLocks
	now          func() time.Time
	logger       *zap.Logger
}

// NewBookingService builds the orchestrator.
func NewBookingService(
	bookings BookingRepository,
	chargers ChargerRepository,
	controller ControllerClient,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:     bookings,
		chargers:     chargers,
		controller:   controller,
		bookingLocks: newKeyLocks(),
		chargerLocks: newKeyLocks(),
		now:          func() time.Time { return time.Now().UTC() },
		logger:       logger,
	}
}

// WithClock overrides the clock, for tests.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// Book reserves an available charger. The hardware block is confirmed before
// any local state changes; a failed handshake leaves the charger available
// and commits nothing.
func (s *BookingService) Book(ctx context.Context, chargerID int64, userName string, durationMinutes int) (*models.Booking, error) {
	if userName == "" {
		return nil, ErrMissingUserName
	}
	if durationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	unlock := s.chargerLocks.Lock(chargerID)
	defer unlock()

	charger, err := s.chargers.GetByID(ctx, chargerID)
	if err != nil {
		return nil, err
	}
	if charger.Status != models.ChargerAvailable {
		return nil, ErrChargerUnavailable
	}

	if err := s.controller.Block(ctx, chargerID); err != nil {
		s.logger.Warn("cms block failed, booking aborted",
			zap.Int64("charger_id", chargerID), zap.Error(err))
		return nil, ErrControllerUnreachable
	}

	if err := s.chargers.UpdateStatus(ctx, chargerID, models.ChargerBooked); err != nil {
		return nil, err
	}

	booking := models.NewBooking(charger, userName, durationMinutes, s.now())
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("charger_id", chargerID),
		zap.String("user", userName),
		zap.Int("duration_minutes", durationMinutes))
	return booking, nil
}

// Start begins charging: it computes arrival lateness, unblocks the hardware
// and stamps the zero-point for the live duration timer. A failed unblock
// leaves the booking unchanged so the caller can retry. Concurrent starts on
// the same booking are serialized; only the first one past the status check
// stamps the timer, the rest observe ErrAlreadyCharging.
func (s *BookingService) Start(ctx context.Context, bookingID int64) (int, error) {
	unlock := s.bookingLocks.Lock(bookingID)
	defer unlock()

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	if booking.Status == models.BookingCharging {
		return 0, ErrAlreadyCharging
	}

	late := models.LateMinutes(booking.StartTime, s.now())

	if err := s.controller.Unblock(ctx, booking.ChargerID); err != nil {
		s.logger.Warn("cms unblock failed, start aborted",
			zap.Int64("booking_id", bookingID), zap.Error(err))
		return 0, ErrControllerUnreachable
	}

	booking.LateMinutes = late
	booking.Status = models.BookingCharging
	if booking.ChargingStartedAt.IsZero() {
		// Zero-point for all later duration math, stamped exactly once.
		booking.ChargingStartedAt = s.now()
	}
	if err := s.bookings.Update(ctx, booking); err != nil {
		return 0, err
	}

	if err := s.chargers.UpdateStatus(ctx, booking.ChargerID, models.ChargerCharging); err != nil {
		s.logger.Warn("failed to mark charger charging",
			zap.Int64("charger_id", booking.ChargerID), zap.Error(err))
	}

	s.logger.Info("charging started",
		zap.Int64("booking_id", bookingID),
		zap.Int("late_minutes", late))
	return late, nil
}

// Get returns the booking read model with the duration derived from the
// server clock while charging.
func (s *BookingService) Get(ctx context.Context, bookingID int64) (models.BookingView, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return models.BookingView{}, err
	}
	return booking.View(s.now()), nil
}

// Extend adds minutes to the requested duration and forces the booking back
// to charging, reviving sessions the automatic stop already completed. The
// hardware re-arm is best effort: booking truth lives here, the controller is
// reconciled opportunistically.
func (s *BookingService) Extend(ctx context.Context, bookingID int64, extraMinutes int) (int, error) {
	if extraMinutes <= 0 {
		return 0, ErrInvalidDuration
	}

	unlock := s.bookingLocks.Lock(bookingID)
	defer unlock()

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return 0, err
	}

	booking.Duration += extraMinutes
	booking.BookedDuration = float64(booking.Duration) / 60.0
	booking.Status = models.BookingCharging

	if err := s.controller.Unblock(ctx, booking.ChargerID); err != nil {
		s.logger.Warn("re-arm unblock failed, extending anyway",
			zap.Int64("booking_id", bookingID), zap.Error(err))
	}

	if err := s.bookings.Update(ctx, booking); err != nil {
		return 0, err
	}

	s.logger.Info("booking extended",
		zap.Int64("booking_id", bookingID),
		zap.Int("new_duration_minutes", booking.Duration))
	return booking.Duration, nil
}

// Stop sends the stop signal to the controller. When cancelledBy is set the
// cancellation commits before the network call: cancellation intent is
// authoritative even if the physical stop fails, and a failed stop is an
// operational alarm for the caller to retry, not a rollback.
func (s *BookingService) Stop(ctx context.Context, bookingID int64, cancelledBy string) error {
	unlock := s.bookingLocks.Lock(bookingID)
	defer unlock()

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if cancelledBy != "" {
		booking.CancelledBy = cancelledBy
		booking.Status = models.BookingCancelled
		if err := s.bookings.Update(ctx, booking); err != nil {
			return err
		}
		s.logger.Info("booking cancelled",
			zap.Int64("booking_id", bookingID),
			zap.String("cancelled_by", cancelledBy))
	}

	if err := s.controller.Stop(ctx, booking.ChargerID); err != nil {
		s.logger.Error("cms stop signal failed, cancellation already committed",
			zap.Int64("booking_id", bookingID),
			zap.Int64("charger_id", booking.ChargerID),
			zap.Error(err))
		return ErrControllerUnreachable
	}
	return nil
}

// Complete receives the final metering data pushed by the controller. It
// attaches the data to the most recent charging booking for the charger,
// falling back to the most recent cancelled one for the race where the user
// cancelled while the controller was already winding down. A push with no
// candidate booking signals the two services disagree on session existence.
func (s *BookingService) Complete(ctx context.Context, chargerID int64, totalEnergy float64, durationSeconds int64) error {
	unlock := s.chargerLocks.Lock(chargerID)
	defer unlock()

	booking, err := s.bookings.FindLatestByChargerAndStatus(ctx, chargerID, models.BookingCharging)
	if errors.Is(err, repository.ErrBookingNotFound) {
		booking, err = s.bookings.FindLatestByChargerAndStatus(ctx, chargerID, models.BookingCancelled)
	}
	if errors.Is(err, repository.ErrBookingNotFound) {
		s.logger.Error("completion push with no matching session",
			zap.Int64("charger_id", chargerID),
			zap.Float64("total_energy", totalEnergy))
		return ErrNoActiveSession
	}
	if err != nil {
		return err
	}

	// Mutations happen under the booking lock, like every other transition.
	// Lock order is always charger then booking; no caller takes them the
	// other way around.
	unlockBooking := s.bookingLocks.Lock(booking.ID)
	defer unlockBooking()

	// Re-read under the lock: another transition may have written the booking
	// between the lookup and the lock acquisition.
	booking, err = s.bookings.GetByID(ctx, booking.ID)
	if err != nil {
		return err
	}

	if booking.Status != models.BookingCancelled {
		booking.Status = models.BookingCompleted
	}
	booking.TotalEnergy = totalEnergy
	booking.ActualDuration = durationSeconds
	booking.EndTime = s.now()
	if err := s.bookings.Update(ctx, booking); err != nil {
		return err
	}

	if err := s.chargers.UpdateStatus(ctx, chargerID, models.ChargerAvailable); err != nil {
		s.logger.Warn("failed to free charger after completion",
			zap.Int64("charger_id", chargerID), zap.Error(err))
	}

	s.logger.Info("session completed",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("charger_id", chargerID),
		zap.Float64("total_energy", totalEnergy),
		zap.Int64("duration_seconds", durationSeconds))
	return nil
}
