package payments

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"leatherlane.com/app/internal/gateway"
	"leatherlane.com/app/internal/modules/orders"
)

// WebhookService is the push-channel reconciliation entry point. The
// gateway notifies with an event id only; the service pulls the full event,
// records it, and drives the order state machine. Delivery is at-least-once
// and unordered, which the store's transition rules absorb.
type WebhookService struct {
	db     *gorm.DB
	store  *orders.Store
	gw     Gateway
	logger *slog.Logger
}

func NewWebhookService(db *gorm.DB, store *orders.Store, gw Gateway) *WebhookService {
	return &WebhookService{db: db, store: store, gw: gw, logger: slog.Default()}
}

func (s *WebhookService) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

func (s *WebhookService) HandleEvent(ctx context.Context, eventID string) error {
	ev, err := s.gw.FetchEvent(ctx, eventID)
	if err != nil {
		// 5xx to the gateway so its own retry/backoff redelivers.
		s.logger.ErrorContext(ctx, "failed to fetch gateway event", "event_id", eventID, "err", err)
		return err
	}

	rec := GatewayEvent{
		ID:          uuid.NewString(),
		EventID:     ev.ID,
		EventType:   ev.Type,
		PayloadJSON: datatypes.JSON(ev.Raw),
		ReceivedAt:  time.Now(),
	}
	if oid, ok := eventOrderID(ev); ok {
		rec.OrderID = &oid
	}

	// dedupe: unique(event_id). Only fully processed events short-circuit;
	// a redelivery of an event that was rejected last time (capture before
	// its authorization, say) must get another attempt.
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if !isDup(err) {
			s.logger.ErrorContext(ctx, "failed to persist gateway event", "event_id", ev.ID, "err", err)
			return err
		}
		var existing GatewayEvent
		if err := s.db.WithContext(ctx).First(&existing, "event_id = ?", ev.ID).Error; err != nil {
			return err
		}
		if existing.ProcessedAt != nil {
			s.logger.InfoContext(ctx, "gateway event deduplicated", "event_id", ev.ID, "type", ev.Type)
			return nil
		}
		rec = existing
		s.logger.InfoContext(ctx, "reprocessing redelivered gateway event", "event_id", ev.ID, "type", ev.Type)
	}

	applyErr := s.apply(ctx, ev)
	now := time.Now()

	if applyErr != nil {
		msg := truncate(applyErr.Error(), 250)
		if err := s.db.WithContext(ctx).Model(&GatewayEvent{}).
			Where("id = ?", rec.ID).
			Updates(map[string]any{"process_error": msg}).Error; err != nil {
			return err
		}
		// Rejected transitions signal a gateway anomaly or a correlation
		// bug; they must surface, never drop silently.
		s.logger.ErrorContext(ctx, "gateway event apply failed",
			"event_id", ev.ID, "type", ev.Type, "err", applyErr)
		return applyErr
	}

	if err := s.db.WithContext(ctx).Model(&GatewayEvent{}).
		Where("id = ?", rec.ID).
		Updates(map[string]any{"processed_at": &now, "process_error": nil}).Error; err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "gateway event processed", "event_id", ev.ID, "type", ev.Type)
	return nil
}

func (s *WebhookService) apply(ctx context.Context, ev gateway.Event) error {
	switch ev.Type {
	case gateway.EventInstrumentAuthorized:
		orderID, ok := eventOrderID(ev)
		if !ok {
			return errors.New("event carries no order correlation key")
		}
		if ev.Instrument == nil || ev.Instrument.ID == "" {
			return errors.New("authorization event missing instrument")
		}
		_, err := s.store.MarkAuthorized(ctx, orderID, ev.Instrument.ID)
		return err

	case gateway.EventPaymentSuccess:
		orderID, ok := eventOrderID(ev)
		if !ok {
			return errors.New("event carries no order correlation key")
		}
		if ev.Payment == nil || ev.Payment.ID == "" {
			return errors.New("capture event missing payment")
		}
		// A capture arriving before its authorization may still carry the
		// instrument; MarkCaptured needs it for the fast path.
		instrumentID := ""
		if ev.Instrument != nil {
			instrumentID = ev.Instrument.ID
		}
		_, err := s.store.MarkCaptured(ctx, orderID, ev.Payment.ID, instrumentID)
		return err

	default:
		// Unknown event types are accepted and ignored.
		s.logger.InfoContext(ctx, "ignoring gateway event", "event_id", ev.ID, "type", ev.Type)
		return nil
	}
}

func eventOrderID(ev gateway.Event) (uint64, bool) {
	id, err := strconv.ParseUint(ev.OrderID(), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// isDup matches MySQL error 1062 and SQLite's UNIQUE violation (tests).
func isDup(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
