package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"voltshare/backend/services/booking-service/internal/models"
)

// ErrBookingNotFound indicates an unknown booking id or an empty lookup.
var ErrBookingNotFound = errors.New("booking not found")

// BookingRepository handles persistence of bookings.
type BookingRepository struct {
	db *sql.DB
}

// NewBookingRepository returns repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, charger_id, brand, type, host_name, location, user_name, duration, status,
		start_time, charging_started_at, end_time, booked_duration, total_energy, actual_duration,
		late_minutes, idle_minutes, cancelled_by, created_at, updated_at`

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	const query = `
		INSERT INTO bookings (charger_id, brand, type, host_name, location, user_name, duration, status,
			start_time, booked_duration, late_minutes, idle_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		booking.ChargerID,
		booking.Brand,
		booking.Type,
		booking.HostName,
		booking.Location,
		booking.UserName,
		booking.Duration,
		booking.Status,
		booking.StartTime,
		booking.BookedDuration,
		booking.LateMinutes,
		booking.IdleMinutes,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

// GetByID returns one booking.
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	const query = `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1
	`
	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return booking, err
}

// Update writes the mutable booking fields back, last write wins.
func (r *BookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	const query = `
		UPDATE bookings
		SET duration = $2,
		    status = $3,
		    charging_started_at = $4,
		    end_time = $5,
		    booked_duration = $6,
		    total_energy = $7,
		    actual_duration = $8,
		    late_minutes = $9,
		    idle_minutes = $10,
		    cancelled_by = $11,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		booking.ID,
		booking.Duration,
		booking.Status,
		nullTime(booking.ChargingStartedAt),
		nullTime(booking.EndTime),
		booking.BookedDuration,
		booking.TotalEnergy,
		booking.ActualDuration,
		booking.LateMinutes,
		booking.IdleMinutes,
		nullString(booking.CancelledBy),
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// FindLatestByChargerAndStatus returns the most recent booking (by start
// time) for the charger in the given status. Completion pushes from the
// controller use this to attach final metering data to the right session.
func (r *BookingRepository) FindLatestByChargerAndStatus(ctx context.Context, chargerID int64, status models.BookingStatus) (*models.Booking, error) {
	const query = `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE charger_id = $1 AND status = $2
		ORDER BY start_time DESC, id DESC
		LIMIT 1
	`
	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, chargerID, status))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return booking, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		b                 models.Booking
		chargingStartedAt sql.NullTime
		endTime           sql.NullTime
		cancelledBy       sql.NullString
	)
	if err := row.Scan(
		&b.ID,
		&b.ChargerID,
		&b.Brand,
		&b.Type,
		&b.HostName,
		&b.Location,
		&b.UserName,
		&b.Duration,
		&b.Status,
		&b.StartTime,
		&chargingStartedAt,
		&endTime,
		&b.BookedDuration,
		&b.TotalEnergy,
		&b.ActualDuration,
		&b.LateMinutes,
		&b.IdleMinutes,
		&cancelledBy,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if chargingStartedAt.Valid {
		b.ChargingStartedAt = chargingStartedAt.Time
	}
	if endTime.Valid {
		b.EndTime = endTime.Time
	}
	if cancelledBy.Valid {
		b.CancelledBy = cancelledBy.String
	}
	return &b, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
