package service

import "errors"

// Domain errors surfaced by the booking and charger services. Controller
// communication failures never propagate raw transport errors; they are
// collapsed into ErrControllerUnreachable at the client boundary.
var (
	ErrChargerUnavailable    = errors.New("charger is not available")
	ErrInvalidDuration       = errors.New("duration must be greater than zero")
	ErrMissingUserName       = errors.New("user name is required")
	ErrControllerUnreachable = errors.New("charger controller unreachable")
	ErrAlreadyCharging       = errors.New("booking is already charging")
	ErrNoActiveSession       = errors.New("no active session for charger")
)
