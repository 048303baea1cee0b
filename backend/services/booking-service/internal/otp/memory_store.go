package otp

import (
	"context"
	"sync"
)

// MemoryStore is the in-process fallback used when redis is not configured.
type MemoryStore struct {
	mu    sync.Mutex
	codes map[int64]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{codes: make(map[int64]string)}
}

// Save stores the code, replacing any previous one for the booking.
func (s *MemoryStore) Save(_ context.Context, bookingID int64, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[bookingID] = code
	return nil
}

// Claim compares and deletes the code on a match.
func (s *MemoryStore) Claim(_ context.Context, bookingID int64, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.codes[bookingID]
	if !ok || stored != code {
		return false, nil
	}
	delete(s.codes, bookingID)
	return true, nil
}
