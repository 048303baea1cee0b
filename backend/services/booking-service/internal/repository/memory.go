package repository

import (
	"context"
	"sync"
	"time"

	"voltshare/backend/services/booking-service/internal/models"
)

// MemoryChargerRepository is a mutex-guarded in-memory charger store. It backs
// local runs without a database and the service tests.
type MemoryChargerRepository struct {
	mu       sync.Mutex
	nextID   int64
	chargers map[int64]models.Charger
}

// NewMemoryChargerRepository returns an empty store.
func NewMemoryChargerRepository() *MemoryChargerRepository {
	return &MemoryChargerRepository{
		nextID:   1,
		chargers: make(map[int64]models.Charger),
	}
}

// Create assigns an id and stores a copy.
func (r *MemoryChargerRepository) Create(_ context.Context, charger *models.Charger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	charger.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	charger.CreatedAt = now
	charger.UpdatedAt = now
	r.chargers[charger.ID] = *charger
	return nil
}

// GetByID returns a copy of the stored charger.
func (r *MemoryChargerRepository) GetByID(_ context.Context, id int64) (*models.Charger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	charger, ok := r.chargers[id]
	if !ok {
		return nil, ErrChargerNotFound
	}
	return &charger, nil
}

// GetAll returns copies of every charger ordered by id.
func (r *MemoryChargerRepository) GetAll(_ context.Context) ([]models.Charger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chargers := make([]models.Charger, 0, len(r.chargers))
	for id := int64(1); id < r.nextID; id++ {
		if charger, ok := r.chargers[id]; ok {
			chargers = append(chargers, charger)
		}
	}
	return chargers, nil
}

// GetByHost returns chargers owned by the host.
func (r *MemoryChargerRepository) GetByHost(_ context.Context, hostName string) ([]models.Charger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var chargers []models.Charger
	for id := int64(1); id < r.nextID; id++ {
		if charger, ok := r.chargers[id]; ok && charger.HostName == hostName {
			chargers = append(chargers, charger)
		}
	}
	return chargers, nil
}

// UpdateStatus transitions the charger availability state.
func (r *MemoryChargerRepository) UpdateStatus(_ context.Context, id int64, status models.ChargerStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	charger, ok := r.chargers[id]
	if !ok {
		return ErrChargerNotFound
	}
	charger.Status = status
	charger.UpdatedAt = time.Now().UTC()
	r.chargers[id] = charger
	return nil
}

// MemoryBookingRepository is a mutex-guarded in-memory booking store.
type MemoryBookingRepository struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]models.Booking
}

// NewMemoryBookingRepository returns an empty store.
func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{
		nextID:   1,
		bookings: make(map[int64]models.Booking),
	}
}

// Create assigns an id and stores a copy.
func (r *MemoryBookingRepository) Create(_ context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	r.bookings[booking.ID] = *booking
	return nil
}

// GetByID returns a copy of the stored booking.
func (r *MemoryBookingRepository) GetByID(_ context.Context, id int64) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return &booking, nil
}

// Update overwrites the stored booking, last write wins.
func (r *MemoryBookingRepository) Update(_ context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[booking.ID]; !ok {
		return ErrBookingNotFound
	}
	booking.UpdatedAt = time.Now().UTC()
	r.bookings[booking.ID] = *booking
	return nil
}

// FindLatestByChargerAndStatus returns the most recent booking by start time
// for the charger in the given status, newest id breaking ties.
func (r *MemoryBookingRepository) FindLatestByChargerAndStatus(_ context.Context, chargerID int64, status models.BookingStatus) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.Booking
	for id := int64(1); id < r.nextID; id++ {
		booking, ok := r.bookings[id]
		if !ok || booking.ChargerID != chargerID || booking.Status != status {
			continue
		}
		if latest == nil || booking.StartTime.After(latest.StartTime) ||
			(booking.StartTime.Equal(latest.StartTime) && booking.ID > latest.ID) {
			copied := booking
			latest = &copied
		}
	}
	if latest == nil {
		return nil, ErrBookingNotFound
	}
	return latest, nil
}
