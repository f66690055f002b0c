package orders

// Lifecycle rules for an order:
//
//	created -> authorized -> captured
//	created -> failed
//	authorized -> failed
//
// captured and failed are terminal. Every transition is idempotent when
// repeated with the same evidence (instrument/payment id); repeats with
// different evidence are integrity violations, never silent overwrites.
// The apply functions mutate the order in place and report whether
// anything actually changed so the store only writes real transitions.

func applyAuthorized(o *Order, instrumentID string) (bool, error) {
	switch o.Status {
	case StatusCreated:
		id := instrumentID
		o.InstrumentID = &id
		o.Status = StatusAuthorized
		return true, nil
	case StatusAuthorized, StatusCaptured:
		if o.InstrumentID != nil && *o.InstrumentID == instrumentID {
			return false, nil
		}
		return false, ErrConflictingInstrument
	default:
		return false, ErrInvalidTransition
	}
}

// applyCaptured accepts capture from created as well: the gateway may
// deliver payment.success before instrument.authorized. The fast path is
// only legal when the capture event itself carries the instrument id,
// otherwise the instrument invariant cannot be satisfied and the caller
// must wait for redelivery after the authorization lands.
func applyCaptured(o *Order, paymentID, instrumentID string) (bool, error) {
	switch o.Status {
	case StatusCreated:
		if instrumentID == "" {
			return false, ErrCaptureWithoutAuthorization
		}
		iid := instrumentID
		pid := paymentID
		o.InstrumentID = &iid
		o.PaymentID = &pid
		o.Status = StatusCaptured
		return true, nil
	case StatusAuthorized:
		if instrumentID != "" && (o.InstrumentID == nil || *o.InstrumentID != instrumentID) {
			return false, ErrConflictingInstrument
		}
		pid := paymentID
		o.PaymentID = &pid
		o.Status = StatusCaptured
		return true, nil
	case StatusCaptured:
		if o.PaymentID != nil && *o.PaymentID == paymentID {
			if instrumentID != "" && (o.InstrumentID == nil || *o.InstrumentID != instrumentID) {
				return false, ErrConflictingInstrument
			}
			return false, nil
		}
		return false, ErrInvalidTransition
	default:
		return false, ErrInvalidTransition
	}
}

func applyFailed(o *Order, reason string) (bool, error) {
	switch o.Status {
	case StatusCreated, StatusAuthorized:
		r := reason
		o.FailureReason = &r
		o.Status = StatusFailed
		return true, nil
	case StatusFailed:
		return false, nil
	default:
		return false, ErrInvalidTransition
	}
}
