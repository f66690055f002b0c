package payments

import (
	"context"
	"errors"
	"testing"

	"leatherlane.com/app/internal/gateway"
	"leatherlane.com/app/internal/modules/orders"
)

func newWebhookFixture(t *testing.T, events ...gateway.Event) (*WebhookService, *orders.Store, orders.Order) {
	t.Helper()
	db := newTestDB(t)
	store := orders.NewStore(db)
	o := newTestOrder(t, store)
	gw := &fakeGateway{fetchEvent: eventDirectory(events...)}
	return NewWebhookService(db, store, gw), store, o
}

func TestHandleEvent_AuthorizeThenCapture(t *testing.T) {
	ctx := context.Background()
	svc, store, o := newWebhookFixture(t,
		authorizedEvent("evt_1", 1, "abc"),
		capturedEvent("evt_2", 1, "xyz", ""),
	)

	if err := svc.HandleEvent(ctx, "evt_1"); err != nil {
		t.Fatalf("authorization event: %v", err)
	}
	got, _ := store.Get(ctx, o.ID)
	if got.Status != orders.StatusAuthorized || *got.InstrumentID != "abc" {
		t.Fatalf("after authorization: %+v", got)
	}

	if err := svc.HandleEvent(ctx, "evt_2"); err != nil {
		t.Fatalf("capture event: %v", err)
	}
	got, _ = store.Get(ctx, o.ID)
	if got.Status != orders.StatusCaptured || *got.PaymentID != "xyz" || *got.InstrumentID != "abc" {
		t.Fatalf("after capture: %+v", got)
	}
}

func TestHandleEvent_DuplicateEventID(t *testing.T) {
	ctx := context.Background()
	svc, store, o := newWebhookFixture(t, authorizedEvent("evt_1", 1, "abc"))

	if err := svc.HandleEvent(ctx, "evt_1"); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := svc.HandleEvent(ctx, "evt_1"); err != nil {
		t.Fatalf("redelivery must succeed: %v", err)
	}

	got, _ := store.Get(ctx, o.ID)
	if got.Status != orders.StatusAuthorized {
		t.Fatalf("status = %s", got.Status)
	}

	var count int64
	if err := svc.db.Model(&GatewayEvent{}).Count(&count).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 1 {
		t.Fatalf("event recorded %d times, want 1", count)
	}
}

func TestHandleEvent_RedeliveryUnderFreshEventID(t *testing.T) {
	ctx := context.Background()
	svc, store, o := newWebhookFixture(t,
		authorizedEvent("evt_1", 1, "abc"),
		authorizedEvent("evt_1b", 1, "abc"),
	)

	if err := svc.HandleEvent(ctx, "evt_1"); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := svc.HandleEvent(ctx, "evt_1b"); err != nil {
		t.Fatalf("second delivery with fresh id: %v", err)
	}

	got, _ := store.Get(ctx, o.ID)
	if got.Status != orders.StatusAuthorized || *got.InstrumentID != "abc" {
		t.Fatalf("after redelivery: %+v", got)
	}
}

func TestHandleEvent_CaptureBeforeAuthorization(t *testing.T) {
	ctx := context.Background()
	svc, store, o := newWebhookFixture(t,
		capturedEvent("evt_2", 1, "xyz", "abc"),
		authorizedEvent("evt_1", 1, "abc"),
	)

	// capture lands first but carries the instrument
	if err := svc.HandleEvent(ctx, "evt_2"); err != nil {
		t.Fatalf("early capture: %v", err)
	}
	got, _ := store.Get(ctx, o.ID)
	if got.Status != orders.StatusCaptured || *got.InstrumentID != "abc" || *got.PaymentID != "xyz" {
		t.Fatalf("after early capture: %+v", got)
	}

	// the late authorization is an idempotent repeat
	if err := svc.HandleEvent(ctx, "evt_1"); err != nil {
		t.Fatalf("late authorization: %v", err)
	}
	got, _ = store.Get(ctx, o.ID)
	if got.Status != orders.StatusCaptured {
		t.Fatalf("late authorization moved status to %s", got.Status)
	}
}

func TestHandleEvent_CaptureWithoutInstrument(t *testing.T) {
	ctx := context.Background()
	svc, store, o := newWebhookFixture(t, capturedEvent("evt_2", 1, "xyz", ""))

	err := svc.HandleEvent(ctx, "evt_2")
	if !errors.Is(err, orders.ErrCaptureWithoutAuthorization) {
		t.Fatalf("got %v, want ErrCaptureWithoutAuthorization", err)
	}

	got, _ := store.Get(ctx, o.ID)
	if got.Status != orders.StatusCreated {
		t.Fatalf("rejected capture moved status to %s", got.Status)
	}
}

// A capture rejected for arriving first must still apply when the gateway
// redelivers it under the same event id after the authorization landed.
func TestHandleEvent_RejectedEventRetriesOnRedelivery(t *testing.T) {
	ctx := context.Background()
	svc, store, o := newWebhookFixture(t,
		capturedEvent("evt_2", 1, "xyz", ""),
		authorizedEvent("evt_1", 1, "abc"),
	)

	if err := svc.HandleEvent(ctx, "evt_2"); !errors.Is(err, orders.ErrCaptureWithoutAuthorization) {
		t.Fatalf("got %v, want ErrCaptureWithoutAuthorization", err)
	}
	if err := svc.HandleEvent(ctx, "evt_1"); err != nil {
		t.Fatalf("authorization: %v", err)
	}
	if err := svc.HandleEvent(ctx, "evt_2"); err != nil {
		t.Fatalf("redelivered capture: %v", err)
	}

	got, _ := store.Get(ctx, o.ID)
	if got.Status != orders.StatusCaptured || *got.InstrumentID != "abc" || *got.PaymentID != "xyz" {
		t.Fatalf("after redelivery: %+v", got)
	}
}

func TestHandleEvent_ConflictingInstrument(t *testing.T) {
	ctx := context.Background()
	svc, store, o := newWebhookFixture(t,
		authorizedEvent("evt_1", 1, "ins-Y"),
		authorizedEvent("evt_9", 1, "ins-X"),
	)

	if err := svc.HandleEvent(ctx, "evt_1"); err != nil {
		t.Fatalf("first authorization: %v", err)
	}
	if err := svc.HandleEvent(ctx, "evt_9"); !errors.Is(err, orders.ErrConflictingInstrument) {
		t.Fatalf("got %v, want ErrConflictingInstrument", err)
	}

	got, _ := store.Get(ctx, o.ID)
	if *got.InstrumentID != "ins-Y" {
		t.Fatalf("stored instrument overwritten to %s", *got.InstrumentID)
	}
}

func TestHandleEvent_UnknownTypeIgnored(t *testing.T) {
	ctx := context.Background()
	ev := gateway.Event{ID: "evt_5", Type: "instrument.pending"}
	ev.Raw = []byte(`{"id":"evt_5","type":"instrument.pending"}`)
	svc, store, o := newWebhookFixture(t, ev)

	if err := svc.HandleEvent(ctx, "evt_5"); err != nil {
		t.Fatalf("unknown type must not fail the endpoint: %v", err)
	}
	got, _ := store.Get(ctx, o.ID)
	if got.Status != orders.StatusCreated {
		t.Fatalf("unknown event mutated the order: %s", got.Status)
	}
}

func TestHandleEvent_UnknownOrderCorrelation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newWebhookFixture(t, authorizedEvent("evt_1", 42, "abc"))

	if err := svc.HandleEvent(ctx, "evt_1"); !errors.Is(err, orders.ErrOrderNotFound) {
		t.Fatalf("got %v, want ErrOrderNotFound", err)
	}
}

func TestHandleEvent_GatewayUnavailable(t *testing.T) {
	db := newTestDB(t)
	store := orders.NewStore(db)
	newTestOrder(t, store)
	gw := &fakeGateway{fetchEvent: func(context.Context, string) (gateway.Event, error) {
		return gateway.Event{}, gateway.ErrUnavailable
	}}
	svc := NewWebhookService(db, store, gw)

	if err := svc.HandleEvent(context.Background(), "evt_1"); !errors.Is(err, gateway.ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
}
