package handlers

import (
	"errors"

	"leatherlane.com/app/internal/gateway"
	"leatherlane.com/app/internal/modules/orders"
	"leatherlane.com/app/internal/shared/apperr"
)

// mapDomainError translates module sentinel errors into apperr kinds so
// the HTTP layer speaks the statuses the outside world expects: integrity
// violations 409, unresolvable correlation 404, gateway trouble 502.
func mapDomainError(err error) *apperr.AppError {
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		return apperr.NotFoundErr("Order not found.")
	case errors.Is(err, orders.ErrOrderNotChargeable):
		return apperr.ConflictErr("Order cannot be charged.")
	case errors.Is(err, orders.ErrConflictingInstrument):
		return apperr.ConflictErr("Order already has a different instrument.")
	case errors.Is(err, orders.ErrCaptureWithoutAuthorization):
		return apperr.ConflictErr("Capture received before authorization.")
	case errors.Is(err, orders.ErrInvalidTransition):
		return apperr.ConflictErr("Order state does not allow this transition.")
	case errors.Is(err, gateway.ErrUnavailable):
		return apperr.UnavailableErr("Payment gateway unavailable.")
	default:
		return apperr.Wrap(err)
	}
}
