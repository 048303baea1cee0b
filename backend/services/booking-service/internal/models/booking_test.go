package models

import (
	"testing"
	"time"
)

func TestLateMinutes(t *testing.T) {
	arrival := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		elapsed time.Duration
		want    int
	}{
		{"immediate", 0, 0},
		{"within grace", 59 * time.Second, 0},
		{"exactly one minute", time.Minute, 0},
		{"just past grace", 2 * time.Minute, 1},
		{"five and a half minutes", 5*time.Minute + 30*time.Second, 4},
		{"an hour late", time.Hour, 59},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := LateMinutes(arrival, arrival.Add(tc.elapsed))
			if got != tc.want {
				t.Fatalf("LateMinutes(%s) = %d, want %d", tc.elapsed, got, tc.want)
			}
		})
	}
}

func TestLateMinutesNeverNegative(t *testing.T) {
	arrival := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if got := LateMinutes(arrival, arrival.Add(-10*time.Minute)); got != 0 {
		t.Fatalf("expected 0 for a start before arrival, got %d", got)
	}
}

func TestNewBookingSnapshotsCharger(t *testing.T) {
	charger := &Charger{
		ID:       7,
		HostName: "alice",
		Location: "garage 3",
		Brand:    "voltza",
		Type:     "AC",
		Status:   ChargerAvailable,
	}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	booking := NewBooking(charger, "bob", 30, now)

	if booking.Status != BookingBooked {
		t.Fatalf("expected status %s, got %s", BookingBooked, booking.Status)
	}
	if booking.ChargerID != 7 || booking.HostName != "alice" || booking.Brand != "voltza" ||
		booking.Type != "AC" || booking.Location != "garage 3" {
		t.Fatalf("charger snapshot not copied: %+v", booking)
	}
	if !booking.StartTime.Equal(now) {
		t.Fatalf("expected arrival time %s, got %s", now, booking.StartTime)
	}
	if booking.BookedDuration != 0.5 {
		t.Fatalf("expected booked duration 0.5h for 30 minutes, got %f", booking.BookedDuration)
	}
}

func TestViewDerivesLiveDurationWhileCharging(t *testing.T) {
	started := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	booking := &Booking{
		Status:            BookingCharging,
		ChargingStartedAt: started,
		ActualDuration:    999,
	}

	view := booking.View(started.Add(42 * time.Second))
	if view.ActualDuration != 42 {
		t.Fatalf("expected live duration 42s, got %d", view.ActualDuration)
	}
}

func TestViewReturnsStoredDurationWhenNotCharging(t *testing.T) {
	started := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	booking := &Booking{
		Status:            BookingCompleted,
		ChargingStartedAt: started,
		ActualDuration:    150,
	}

	view := booking.View(started.Add(time.Hour))
	if view.ActualDuration != 150 {
		t.Fatalf("expected frozen duration 150s, got %d", view.ActualDuration)
	}
}

func TestStatusValidity(t *testing.T) {
	for _, s := range []BookingStatus{BookingPending, BookingBooked, BookingCharging, BookingCompleted, BookingCancelled} {
		if !s.Valid() {
			t.Fatalf("expected %s to be valid", s)
		}
	}
	if BookingStatus("RUNNING").Valid() {
		t.Fatal("expected unknown status to be invalid")
	}

	if BookingCharging.Terminal() || BookingBooked.Terminal() {
		t.Fatal("charging and booked are not terminal")
	}
	if !BookingCompleted.Terminal() || !BookingCancelled.Terminal() {
		t.Fatal("completed and cancelled are terminal")
	}

	for _, s := range []ChargerStatus{ChargerAvailable, ChargerBooked, ChargerBlocked, ChargerCharging} {
		if !s.Valid() {
			t.Fatalf("expected %s to be valid", s)
		}
	}
	if ChargerStatus("BROKEN").Valid() {
		t.Fatal("expected unknown charger status to be invalid")
	}
}
