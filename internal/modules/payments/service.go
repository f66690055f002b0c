package payments

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"leatherlane.com/app/internal/gateway"
	"leatherlane.com/app/internal/modules/orders"
)

// Service initiates charges for locally created orders. The merchant order
// id travels to the gateway twice: inside the charge metadata (read back
// from webhook events) and as a query parameter on the redirect URL (read
// back when the browser returns). Both copies are the correlation key.
type Service struct {
	store   *orders.Store
	gw      Gateway
	baseURL string
	logger  *slog.Logger
}

func NewService(store *orders.Store, gw Gateway, publicBaseURL string) *Service {
	return &Service{store: store, gw: gw, baseURL: publicBaseURL, logger: slog.Default()}
}

func (s *Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

type InitiateChargeInput struct {
	OrderID    uint64
	ChargeType string
}

func (s *Service) InitiateCharge(ctx context.Context, in InitiateChargeInput) (gateway.Charge, error) {
	o, err := s.store.Get(ctx, in.OrderID)
	if err != nil {
		return gateway.Charge{}, err
	}
	if o.Status != orders.StatusCreated {
		return gateway.Charge{}, orders.ErrOrderNotChargeable
	}

	orderKey := strconv.FormatUint(o.ID, 10)
	ch, err := s.gw.CreateCharge(ctx, gateway.ChargeRequest{
		OrderID:     orderKey,
		Amount:      o.Amount,
		Currency:    o.Currency,
		ChargeType:  in.ChargeType,
		EventsURL:   s.baseURL + "/events",
		RedirectURL: s.baseURL + "/return?" + gateway.MetadataOrderKey + "=" + url.QueryEscape(orderKey),
	})
	if err != nil {
		return gateway.Charge{}, err
	}

	if _, err := s.store.RecordCharge(ctx, o.ID, ch.ID); err != nil {
		// Charge exists gateway-side but could not be recorded locally;
		// surface it so the widget retries instead of collecting on an
		// untracked charge.
		s.logger.ErrorContext(ctx, "failed to record charge on order",
			"order_id", o.ID, "charge_id", ch.ID, "err", err)
		return gateway.Charge{}, err
	}

	s.logger.InfoContext(ctx, "charge created",
		"order_id", o.ID, "charge_id", ch.ID, "charge_type", in.ChargeType, "amount", o.Amount, "currency", o.Currency)
	return ch, nil
}
