package payments

import (
	"context"
	"log/slog"
	"strconv"

	"leatherlane.com/app/internal/gateway"
	"leatherlane.com/app/internal/modules/orders"
)

// Outcome is what the browser sees after returning from the hosted
// instrument UI. There are exactly three, even when something fails
// internally.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePending Outcome = "pending"
	OutcomeFailure Outcome = "failure"
)

// ReturnService is the pull-channel reconciliation entry point. The
// browser comes back with a gateway instrument id and (via the redirect
// URL this service handed to the gateway) the merchant order key; the
// instrument itself does not say which order it belongs to.
type ReturnService struct {
	store  *orders.Store
	gw     Gateway
	logger *slog.Logger
}

func NewReturnService(store *orders.Store, gw Gateway) *ReturnService {
	return &ReturnService{store: store, gw: gw, logger: slog.Default()}
}

func (s *ReturnService) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// HandleReturn fetches the instrument's current status and, when it is
// authorized, records the authorization on the owning order. The webhook
// may already have landed (then this is an idempotent repeat) or not yet
// (then the orderKey threaded through the redirect URL resolves the
// order). A non-authorized instrument is reported but never persisted as
// a negative transition; the webhook channel owns failure finality.
func (s *ReturnService) HandleReturn(ctx context.Context, instrumentID, orderKey string) Outcome {
	inst, err := s.gw.FetchInstrument(ctx, instrumentID)
	if err != nil {
		// Instrument state unknown; let the user retry the return URL.
		s.logger.WarnContext(ctx, "failed to fetch instrument on return",
			"instrument_id", instrumentID, "err", err)
		return OutcomePending
	}

	switch inst.Status {
	case gateway.InstrumentAuthorized:
		return s.recordAuthorization(ctx, instrumentID, orderKey)
	case gateway.InstrumentPending:
		return OutcomePending
	default:
		s.logger.InfoContext(ctx, "instrument not authorized on return",
			"instrument_id", instrumentID, "status", inst.Status)
		return OutcomeFailure
	}
}

func (s *ReturnService) recordAuthorization(ctx context.Context, instrumentID, orderKey string) Outcome {
	// The webhook usually wins the race; cross-reference the recorded
	// instrument first.
	o, found, err := s.store.FindByInstrument(ctx, instrumentID)
	if err != nil {
		s.logger.ErrorContext(ctx, "instrument lookup failed", "instrument_id", instrumentID, "err", err)
		return OutcomePending
	}

	var orderID uint64
	if found {
		orderID = o.ID
	} else {
		orderID, err = strconv.ParseUint(orderKey, 10, 64)
		if err != nil || orderID == 0 {
			s.logger.ErrorContext(ctx, "return with unresolvable order correlation",
				"instrument_id", instrumentID, "order_key", orderKey)
			return OutcomeFailure
		}
	}

	if _, err := s.store.MarkAuthorized(ctx, orderID, instrumentID); err != nil {
		s.logger.ErrorContext(ctx, "failed to record authorization on return",
			"order_id", orderID, "instrument_id", instrumentID, "err", err)
		return OutcomeFailure
	}
	return OutcomeSuccess
}
