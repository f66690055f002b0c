package gateway

import "encoding/json"

// Event types and instrument statuses the reconciliation paths care about.
// Anything else is forward-compatibility territory and gets ignored.
const (
	EventInstrumentAuthorized = "instrument.authorized"
	EventPaymentSuccess       = "payment.success"

	InstrumentAuthorized = "authorized"
	InstrumentPending    = "pending"
)

// MetadataOrderKey is the charge metadata field carrying the merchant
// order id, the correlation key for webhook events.
const MetadataOrderKey = "orderId"

type ChargeRequest struct {
	OrderID     string
	Amount      int
	Currency    string
	ChargeType  string
	EventsURL   string
	RedirectURL string
}

// Charge is the gateway's charge object. Raw keeps the undecoded response
// body so the hosted forms widget receives exactly what the gateway sent.
type Charge struct {
	ID         string `json:"id"`
	ChargeType string `json:"charge_type"`
	Amount     int    `json:"amount"`
	Currency   string `json:"currency"`

	Raw json.RawMessage `json:"-"`
}

type EventObject struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type EventCharge struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
}

// Event is a gateway notification envelope, read-only to this system.
type Event struct {
	ID         string       `json:"id"`
	Type       string       `json:"type"`
	Charge     EventCharge  `json:"charge"`
	Instrument *EventObject `json:"instrument"`
	Payment    *EventObject `json:"payment"`

	Raw json.RawMessage `json:"-"`
}

// OrderID extracts the merchant order id threaded through the charge
// metadata, empty when the charge was not created by this service.
func (e Event) OrderID() string {
	return e.Charge.Metadata[MetadataOrderKey]
}

type Instrument struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
