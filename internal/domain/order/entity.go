package order

import (
	"time"

	"gin-checkout-core/internal/domain/payment"
	"gin-checkout-core/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is one line of the ledger. Everything except the payment status is fixed
// at creation; the status moves at most once, out of pending.
type Order struct {
	id        int64
	buyerID   uuid.UUID
	productID int64
	quantity  int
	unitPrice decimal.Decimal
	total     decimal.Decimal
	method    PaymentMethod
	status    PaymentStatus
	deferred  *DeferredCharge
	card      *payment.CardSummary
	createdAt time.Time
	updatedAt time.Time
}

func ReconstructOrder(
	id int64,
	buyerID uuid.UUID,
	productID int64,
	quantity int,
	unitPrice, total decimal.Decimal,
	method PaymentMethod,
	status PaymentStatus,
	deferred *DeferredCharge,
	card *payment.CardSummary,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		id:        id,
		buyerID:   buyerID,
		productID: productID,
		quantity:  quantity,
		unitPrice: unitPrice,
		total:     total,
		method:    method,
		status:    status,
		deferred:  deferred,
		card:      card,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (o *Order) ID() int64                  { return o.id }
func (o *Order) BuyerID() uuid.UUID         { return o.buyerID }
func (o *Order) ProductID() int64           { return o.productID }
func (o *Order) Quantity() int              { return o.quantity }
func (o *Order) UnitPrice() decimal.Decimal { return o.unitPrice }
func (o *Order) Total() decimal.Decimal     { return o.total }
func (o *Order) Method() PaymentMethod      { return o.method }
func (o *Order) Status() PaymentStatus      { return o.status }
func (o *Order) Deferred() *DeferredCharge  { return o.deferred }
func (o *Order) Card() *payment.CardSummary { return o.card }
func (o *Order) CreatedAt() time.Time       { return o.createdAt }
func (o *Order) UpdatedAt() time.Time       { return o.updatedAt }

func (o *Order) IsTerminal() bool {
	return o.status.IsTerminal()
}

// IsOverdue reports whether a pending deferred order has outlived its token.
func (o *Order) IsOverdue(now time.Time) bool {
	return o.status == StatusPending && o.deferred != nil && o.deferred.IsExpiredAt(now)
}

// Transition applies a status change in memory. Persistence must still use a
// conditional write so concurrent callers cannot both succeed.
func (o *Order) Transition(next PaymentStatus, now time.Time) error {
	if !o.status.CanTransitionTo(next) {
		return errs.Wrapf(errs.ErrStatusConflict, "order %d: %s -> %s", o.id, o.status, next)
	}
	o.status = next
	o.updatedAt = now
	return nil
}
