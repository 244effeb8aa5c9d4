package commands

import (
	"time"

	"gin-checkout-core/internal/domain/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CardInput struct {
	Number     string
	CVV        string
	HolderName string
	Expiry     string
}

func (c CardInput) toDomain() payment.Card {
	return payment.Card{
		Number:     c.Number,
		CVV:        c.CVV,
		HolderName: c.HolderName,
		Expiry:     c.Expiry,
	}
}

type PurchaseImmediateInput struct {
	BuyerID   uuid.UUID
	ProductID int64
	// Quantity defaults to 1 when nil.
	Quantity       *int
	Method         string
	Card           *CardInput
	IdempotencyKey string
}

type InitiateDeferredInput struct {
	BuyerID   uuid.UUID
	ProductID int64
	Quantity  *int
}

// DeferredCharge is returned once, when a deferred payment is opened. It is the
// only place the token leaves the service.
type DeferredCharge struct {
	OrderID         int64
	Token           string
	ConfirmationRef uuid.UUID
	ExpiresAt       time.Time
	Total           decimal.Decimal
}

type DeferredStatus struct {
	OrderID     int64
	Status      string
	OrderStatus string
	ExpiresAt   time.Time
	Total       decimal.Decimal
}

type LoginInput struct {
	Email    string
	Password string
}
