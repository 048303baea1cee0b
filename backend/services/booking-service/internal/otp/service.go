package otp

import (
	"context"
	"fmt"
	"math/rand"
)

// Service issues and verifies 4-digit passcodes keyed by booking id.
type Service struct {
	store Store
	intn  func(n int) int
}

// NewService builds the passcode service.
func NewService(store Store) *Service {
	return &Service{
		store: store,
		intn:  rand.Intn,
	}
}

// WithIntn overrides the random source, for tests.
func (s *Service) WithIntn(intn func(n int) int) *Service {
	s.intn = intn
	return s
}

// Generate issues a fresh 4-digit code for the booking, replacing any
// previous one.
func (s *Service) Generate(ctx context.Context, bookingID int64) (string, error) {
	code := fmt.Sprintf("%04d", s.intn(10000))
	if err := s.store.Save(ctx, bookingID, code); err != nil {
		return "", err
	}
	return code, nil
}

// Verify checks the code and consumes it on success.
func (s *Service) Verify(ctx context.Context, bookingID int64, code string) (bool, error) {
	if code == "" {
		return false, nil
	}
	return s.store.Claim(ctx, bookingID, code)
}
