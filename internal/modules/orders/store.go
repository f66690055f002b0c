package orders

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Store owns all order records. Mutations for a single order are mutually
// exclusive: the webhook and redirect handlers can race for the same order,
// so every transition runs under that order's mutex plus a DB transaction.
// Orders with different ids proceed independently. Reads don't take the
// per-order lock.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger

	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, logger: slog.Default(), locks: map[uint64]*sync.Mutex{}}
}

func (s *Store) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

type CreateOrderInput struct {
	ItemID   string
	Quantity int
	Amount   int
	Currency string
}

func (s *Store) Create(ctx context.Context, in CreateOrderInput) (Order, error) {
	now := time.Now()
	o := Order{
		ItemID:    in.ItemID,
		Quantity:  in.Quantity,
		Amount:    in.Amount,
		Currency:  in.Currency,
		Status:    StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&o).Error; err != nil {
		return Order{}, err
	}
	return o, nil
}

func (s *Store) Get(ctx context.Context, id uint64) (Order, error) {
	var o Order
	if err := s.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, err
	}
	return o, nil
}

// FindByInstrument resolves the order that previously recorded the given
// gateway instrument id. Used by the return path, where the instrument
// payload does not self-report its order.
func (s *Store) FindByInstrument(ctx context.Context, instrumentID string) (Order, bool, error) {
	var o Order
	err := s.db.WithContext(ctx).First(&o, "instrument_id = ?", instrumentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Order{}, false, nil
	}
	if err != nil {
		return Order{}, false, err
	}
	return o, true, nil
}

func (s *Store) List(ctx context.Context) ([]Order, error) {
	var out []Order
	if err := s.db.WithContext(ctx).Order("id asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// RecordCharge notes the gateway charge id on the order. Only orders still
// in created take a charge; the payer may abandon a charge and start a new
// one, so the latest attempt wins.
func (s *Store) RecordCharge(ctx context.Context, id uint64, chargeID string) (Order, error) {
	return s.mutate(ctx, id, func(o *Order) (bool, error) {
		if o.ChargeID != nil && *o.ChargeID == chargeID {
			return false, nil
		}
		if o.Status != StatusCreated {
			return false, ErrOrderNotChargeable
		}
		cid := chargeID
		o.ChargeID = &cid
		return true, nil
	})
}

func (s *Store) MarkAuthorized(ctx context.Context, id uint64, instrumentID string) (Order, error) {
	return s.mutate(ctx, id, func(o *Order) (bool, error) {
		return applyAuthorized(o, instrumentID)
	})
}

// MarkCaptured records funds capture. instrumentID may be empty when the
// capture event carried no instrument payload; it is then only legal from
// authorized.
func (s *Store) MarkCaptured(ctx context.Context, id uint64, paymentID, instrumentID string) (Order, error) {
	return s.mutate(ctx, id, func(o *Order) (bool, error) {
		return applyCaptured(o, paymentID, instrumentID)
	})
}

func (s *Store) MarkFailed(ctx context.Context, id uint64, reason string) (Order, error) {
	return s.mutate(ctx, id, func(o *Order) (bool, error) {
		return applyFailed(o, reason)
	})
}

// mutate runs fn against the current row inside the order's critical
// section. A rejected transition leaves the row untouched; the tx only
// writes when fn reports a change.
func (s *Store) mutate(ctx context.Context, id uint64, fn func(*Order) (bool, error)) (Order, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	var out Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o Order
		if err := tx.First(&o, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		changed, err := fn(&o)
		if err != nil {
			s.logger.ErrorContext(ctx, "order transition rejected",
				"order_id", id, "status", o.Status, "err", err)
			return err
		}
		if changed {
			o.UpdatedAt = time.Now()
			if err := tx.Model(&Order{}).Where("id = ?", o.ID).Updates(map[string]any{
				"status":         o.Status,
				"charge_id":      o.ChargeID,
				"instrument_id":  o.InstrumentID,
				"payment_id":     o.PaymentID,
				"failure_reason": o.FailureReason,
				"updated_at":     o.UpdatedAt,
			}).Error; err != nil {
				return err
			}
		}
		out = o
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return out, nil
}

func (s *Store) lockFor(id uint64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.locks[id]
	if !ok {
		m = &sync.Mutex{}
		s.locks[id] = m
	}
	return m
}
