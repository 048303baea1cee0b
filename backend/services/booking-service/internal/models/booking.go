package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

// Booking lifecycle states. Pending is the zero-value state of a booking that
// has not been confirmed against the hardware; the documented flow creates
// bookings directly in Booked.
const (
	BookingPending   BookingStatus = "PENDING"
	BookingBooked    BookingStatus = "BOOKED"
	BookingCharging  BookingStatus = "CHARGING"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Valid reports whether the status is one of the known states.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingBooked, BookingCharging, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status ends the normal flow. Extend is the one
// back-edge: it moves a completed booking back to charging.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// lateGraceMinutes is the fixed tolerance before arrival lateness counts.
const lateGraceMinutes = 1

// LateMinutes returns the grace-adjusted whole minutes between the arrival
// time and now, clamped to zero.
func LateMinutes(arrival, now time.Time) int {
	passed := int(now.Sub(arrival).Minutes())
	if passed <= lateGraceMinutes {
		return 0
	}
	return passed - lateGraceMinutes
}

// Booking represents one reservation-to-completion attempt. Charger details
// are snapshotted at creation so later charger edits do not rewrite history.
type Booking struct {
	ID        int64 `db:"id" json:"id"`
	ChargerID int64 `db:"charger_id" json:"charger_id"`

	// Snapshot fields copied from the charger at booking time.
	Brand    string `db:"brand" json:"brand"`
	Type     string `db:"type" json:"type"`
	HostName string `db:"host_name" json:"host_name"`
	Location string `db:"location" json:"location"`

	UserName string        `db:"user_name" json:"user_name"`
	Duration int           `db:"duration" json:"duration"`
	Status   BookingStatus `db:"status" json:"status"`

	// StartTime is the moment the booking was confirmed; the arrival clock
	// for lateness starts here.
	StartTime time.Time `db:"start_time" json:"start_time"`
	// ChargingStartedAt is the exact moment the hardware unblocked. It is the
	// zero-point for the live duration timer and is never overwritten.
	ChargingStartedAt time.Time `db:"charging_started_at" json:"charging_started_at"`
	EndTime           time.Time `db:"end_time" json:"end_time"`

	BookedDuration float64 `db:"booked_duration" json:"booked_duration"`
	TotalEnergy    float64 `db:"total_energy" json:"total_energy"`
	// ActualDuration is the final charging time in seconds, synced from the
	// controller on completion. While charging, reads derive it live instead.
	ActualDuration int64 `db:"actual_duration" json:"actual_duration"`

	LateMinutes int    `db:"late_minutes" json:"late_minutes"`
	IdleMinutes int    `db:"idle_minutes" json:"idle_minutes"`
	CancelledBy string `db:"cancelled_by" json:"cancelled_by"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewBooking creates a booked reservation, snapshotting the charger details.
func NewBooking(charger *Charger, userName string, durationMinutes int, now time.Time) *Booking {
	return &Booking{
		ChargerID:      charger.ID,
		Brand:          charger.Brand,
		Type:           charger.Type,
		HostName:       charger.HostName,
		Location:       charger.Location,
		UserName:       userName,
		Duration:       durationMinutes,
		Status:         BookingBooked,
		StartTime:      now,
		BookedDuration: float64(durationMinutes) / 60.0,
	}
}

// BookingView is the read model returned to clients. ActualDuration is the
// live elapsed seconds while charging and the stored final value otherwise.
type BookingView struct {
	ID             int64         `json:"id"`
	ChargerID      int64         `json:"charger_id"`
	Brand          string        `json:"brand"`
	Type           string        `json:"type"`
	HostName       string        `json:"host_name"`
	Location       string        `json:"location"`
	UserName       string        `json:"user_name"`
	Duration       int           `json:"duration"`
	Status         BookingStatus `json:"status"`
	StartTime      time.Time     `json:"start_time"`
	BookedDuration float64       `json:"booked_duration"`
	TotalEnergy    float64       `json:"total_energy"`
	ActualDuration int64         `json:"actual_duration"`
	LateMinutes    int           `json:"late_minutes"`
	IdleMinutes    int           `json:"idle_minutes"`
	CancelledBy    string        `json:"cancelled_by"`
}

// View builds the read model, deriving ActualDuration from the server clock
// while the booking is charging. The two services' clocks stay in sync for a
// polling client because this is recomputed on every read, never cached.
func (b *Booking) View(now time.Time) BookingView {
	actual := b.ActualDuration
	if b.Status == BookingCharging && !b.ChargingStartedAt.IsZero() {
		actual = int64(now.Sub(b.ChargingStartedAt).Seconds())
	}
	return BookingView{
		ID:             b.ID,
		ChargerID:      b.ChargerID,
		Brand:          b.Brand,
		Type:           b.Type,
		HostName:       b.HostName,
		Location:       b.Location,
		UserName:       b.UserName,
		Duration:       b.Duration,
		Status:         b.Status,
		StartTime:      b.StartTime,
		BookedDuration: b.BookedDuration,
		TotalEnergy:    b.TotalEnergy,
		ActualDuration: actual,
		LateMinutes:    b.LateMinutes,
		IdleMinutes:    b.IdleMinutes,
		CancelledBy:    b.CancelledBy,
	}
}
