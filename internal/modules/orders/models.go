package orders

import "time"

const (
	StatusCreated    = "created"
	StatusAuthorized = "authorized"
	StatusCaptured   = "captured"
	StatusFailed     = "failed"
)

// Order is the merchant-side record of a purchase. Status, InstrumentID,
// PaymentID and FailureReason change only through the Store's transition
// operations; the remaining fields are immutable after Create.
type Order struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemID   string `gorm:"type:varchar(64);not null" json:"itemId"`
	Quantity int    `gorm:"not null" json:"quantity"`
	Amount   int    `gorm:"not null" json:"amount"`
	Currency string `gorm:"type:char(3);not null" json:"currency"`

	Status        string  `gorm:"type:varchar(32);not null;index:ix_orders_status" json:"status"`
	ChargeID      *string `gorm:"type:varchar(128)" json:"chargeId,omitempty"`
	InstrumentID  *string `gorm:"type:varchar(128);index:ix_orders_instrument_id" json:"instrumentId,omitempty"`
	PaymentID     *string `gorm:"type:varchar(128)" json:"paymentId,omitempty"`
	FailureReason *string `gorm:"type:varchar(255)" json:"failureReason,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null" json:"updatedAt"`
}

func (Order) TableName() string { return "orders" }

// Terminal reports whether no further lifecycle progress is possible.
func (o Order) Terminal() bool {
	return o.Status == StatusCaptured || o.Status == StatusFailed
}
