package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"leatherlane.com/app/internal/gateway"
	"leatherlane.com/app/internal/modules/orders"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&orders.Order{}, &GatewayEvent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestOrder(t *testing.T, store *orders.Store) orders.Order {
	t.Helper()
	o, err := store.Create(context.Background(), orders.CreateOrderInput{
		ItemID: "sku42", Quantity: 2, Amount: 1100, Currency: "EUR",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

// fakeGateway implements Gateway with pluggable behavior per call.
type fakeGateway struct {
	createCharge    func(ctx context.Context, req gateway.ChargeRequest) (gateway.Charge, error)
	fetchEvent      func(ctx context.Context, eventID string) (gateway.Event, error)
	fetchInstrument func(ctx context.Context, instrumentID string) (gateway.Instrument, error)
}

func (f *fakeGateway) CreateCharge(ctx context.Context, req gateway.ChargeRequest) (gateway.Charge, error) {
	if f.createCharge == nil {
		panic("unexpected CreateCharge call")
	}
	return f.createCharge(ctx, req)
}

func (f *fakeGateway) FetchEvent(ctx context.Context, eventID string) (gateway.Event, error) {
	if f.fetchEvent == nil {
		panic("unexpected FetchEvent call")
	}
	return f.fetchEvent(ctx, eventID)
}

func (f *fakeGateway) FetchInstrument(ctx context.Context, instrumentID string) (gateway.Instrument, error) {
	if f.fetchInstrument == nil {
		panic("unexpected FetchInstrument call")
	}
	return f.fetchInstrument(ctx, instrumentID)
}

// eventDirectory serves canned events by id, the way the real gateway does.
func eventDirectory(events ...gateway.Event) func(context.Context, string) (gateway.Event, error) {
	byID := map[string]gateway.Event{}
	for _, ev := range events {
		byID[ev.ID] = ev
	}
	return func(_ context.Context, id string) (gateway.Event, error) {
		ev, ok := byID[id]
		if !ok {
			return gateway.Event{}, fmt.Errorf("%w: GET /events/%s: status 404", gateway.ErrUnavailable, id)
		}
		return ev, nil
	}
}

func authorizedEvent(eventID string, orderID uint64, instrumentID string) gateway.Event {
	ev := gateway.Event{
		ID:   eventID,
		Type: gateway.EventInstrumentAuthorized,
		Charge: gateway.EventCharge{
			ID:       "ch_1",
			Metadata: map[string]string{gateway.MetadataOrderKey: strconv.FormatUint(orderID, 10)},
		},
		Instrument: &gateway.EventObject{ID: instrumentID, Status: "authorized"},
	}
	ev.Raw, _ = json.Marshal(ev)
	return ev
}

func capturedEvent(eventID string, orderID uint64, paymentID, instrumentID string) gateway.Event {
	ev := gateway.Event{
		ID:   eventID,
		Type: gateway.EventPaymentSuccess,
		Charge: gateway.EventCharge{
			ID:       "ch_1",
			Metadata: map[string]string{gateway.MetadataOrderKey: strconv.FormatUint(orderID, 10)},
		},
		Payment: &gateway.EventObject{ID: paymentID, Status: "success"},
	}
	if instrumentID != "" {
		ev.Instrument = &gateway.EventObject{ID: instrumentID, Status: "authorized"}
	}
	ev.Raw, _ = json.Marshal(ev)
	return ev
}
