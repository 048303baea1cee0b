package service

import (
	"context"

	"go.uber.org/zap"

	"voltshare/backend/services/booking-service/internal/models"
)

// ChargerService owns the charger registry: onboarding, queries and the
// availability-state setters used by the booking flow and by CMS pushes.
type ChargerService struct {
	chargers   ChargerRepository
	controller ControllerClient
	logger     *zap.Logger
}

// NewChargerService builds service.
func NewChargerService(chargers ChargerRepository, controller ControllerClient, logger *zap.Logger) *ChargerService {
	return &ChargerService{
		chargers:   chargers,
		controller: controller,
		logger:     logger,
	}
}

// Create onboards a charger. New chargers always start available.
func (s *ChargerService) Create(ctx context.Context, charger *models.Charger) error {
	charger.Status = models.ChargerAvailable
	return s.chargers.Create(ctx, charger)
}

// GetAll returns every charger.
func (s *ChargerService) GetAll(ctx context.Context) ([]models.Charger, error) {
	return s.chargers.GetAll(ctx)
}

// GetByID returns one charger.
func (s *ChargerService) GetByID(ctx context.Context, id int64) (*models.Charger, error) {
	return s.chargers.GetByID(ctx, id)
}

// GetByHost returns chargers owned by the host.
func (s *ChargerService) GetByHost(ctx context.Context, hostName string) ([]models.Charger, error) {
	return s.chargers.GetByHost(ctx, hostName)
}

// ManualBlock takes an available charger out of rotation. The hardware block
// happens first; a failed handshake leaves the charger untouched.
func (s *ChargerService) ManualBlock(ctx context.Context, id int64) (*models.Charger, error) {
	charger, err := s.chargers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if charger.Status != models.ChargerAvailable {
		return nil, ErrChargerUnavailable
	}

	if err := s.controller.Block(ctx, id); err != nil {
		s.logger.Warn("cms block failed", zap.Int64("charger_id", id), zap.Error(err))
		return nil, ErrControllerUnreachable
	}

	if err := s.chargers.UpdateStatus(ctx, id, models.ChargerBlocked); err != nil {
		return nil, err
	}
	charger.Status = models.ChargerBlocked
	return charger, nil
}

// MarkAvailable resets the charger for the next guest. Called on completion
// and on the CMS unblock confirmation push.
func (s *ChargerService) MarkAvailable(ctx context.Context, id int64) error {
	return s.chargers.UpdateStatus(ctx, id, models.ChargerAvailable)
}

// MarkCharging flags the charger as delivering energy.
func (s *ChargerService) MarkCharging(ctx context.Context, id int64) error {
	return s.chargers.UpdateStatus(ctx, id, models.ChargerCharging)
}
