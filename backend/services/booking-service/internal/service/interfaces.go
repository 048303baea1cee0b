package service

import (
	"context"

	"voltshare/backend/services/booking-service/internal/models"
)

// ChargerRepository is the persistence contract for chargers. Satisfied by
// the Postgres and the in-memory repositories.
type ChargerRepository interface {
	Create(ctx context.Context, charger *models.Charger) error
	GetByID(ctx context.Context, id int64) (*models.Charger, error)
	GetAll(ctx context.Context) ([]models.Charger, error)
	GetByHost(ctx context.Context, hostName string) ([]models.Charger, error)
	UpdateStatus(ctx context.Context, id int64, status models.ChargerStatus) error
}

// BookingRepository is the persistence contract for bookings.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id int64) (*models.Booking, error)
	Update(ctx context.Context, booking *models.Booking) error
	FindLatestByChargerAndStatus(ctx context.Context, chargerID int64, status models.BookingStatus) (*models.Booking, error)
}

// ControllerClient is the outbound half of the handshake with the charger
// management system. Every call is synchronous request/response; any
// non-success answer or transport failure surfaces as an error and the caller
// decides the rollback policy per operation.
type ControllerClient interface {
	Block(ctx context.Context, chargerID int64) error
	Unblock(ctx context.Context, chargerID int64) error
	Stop(ctx context.Context, chargerID int64) error
}
