package payments

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"leatherlane.com/app/internal/gateway"
)

// Gateway is the payment API surface the reconciliation services depend
// on. internal/gateway.Client implements it; tests substitute fakes.
type Gateway interface {
	CreateCharge(ctx context.Context, req gateway.ChargeRequest) (gateway.Charge, error)
	FetchEvent(ctx context.Context, eventID string) (gateway.Event, error)
	FetchInstrument(ctx context.Context, instrumentID string) (gateway.Instrument, error)
}

// GatewayEvent is the audit record of a received webhook notification.
// The unique event id absorbs exact redelivery before dispatch; redelivery
// under a fresh event id is absorbed by the order store's idempotent
// transitions instead.
type GatewayEvent struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	EventID   string `gorm:"type:varchar(128);not null;uniqueIndex:ux_gateway_events_event_id"`
	EventType string `gorm:"type:varchar(64);not null"`
	OrderID   *uint64

	PayloadJSON datatypes.JSON `gorm:"type:json;not null"`

	ReceivedAt   time.Time  `gorm:"type:datetime(3);not null"`
	ProcessedAt  *time.Time `gorm:"type:datetime(3)"`
	ProcessError *string    `gorm:"type:varchar(255)"`
}

func (GatewayEvent) TableName() string { return "gateway_events" }
