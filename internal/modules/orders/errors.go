package orders

import "errors"

var (
	ErrOrderNotFound               = errors.New("order not found")
	ErrOrderNotChargeable          = errors.New("order not chargeable")
	ErrConflictingInstrument       = errors.New("conflicting instrument")
	ErrCaptureWithoutAuthorization = errors.New("capture without authorization")
	ErrInvalidTransition           = errors.New("invalid order transition")
)
