package request

import (
	"gin-checkout-core/internal/usecase/commands"

	"github.com/google/uuid"
)

type CardRequest struct {
	Number     string `json:"number" binding:"required"`
	CVV        string `json:"cvv" binding:"required"`
	HolderName string `json:"holderName" binding:"required"`
	Expiry     string `json:"expiry" binding:"required"`
}

// Quantity is a pointer so an omitted value can default to 1 while an
// explicit 0 is still rejected.
type PurchaseImmediateRequest struct {
	ProductID     int64        `json:"productId" binding:"required,min=1"`
	Quantity      *int         `json:"quantity"`
	PaymentMethod string       `json:"paymentMethod" binding:"required"`
	Card          *CardRequest `json:"card"`
}

func (r *PurchaseImmediateRequest) ToInput(buyerID uuid.UUID, idempotencyKey string) commands.PurchaseImmediateInput {
	in := commands.PurchaseImmediateInput{
		BuyerID:        buyerID,
		ProductID:      r.ProductID,
		Quantity:       r.Quantity,
		Method:         r.PaymentMethod,
		IdempotencyKey: idempotencyKey,
	}
	if r.Card != nil {
		in.Card = &commands.CardInput{
			Number:     r.Card.Number,
			CVV:        r.Card.CVV,
			HolderName: r.Card.HolderName,
			Expiry:     r.Card.Expiry,
		}
	}
	return in
}

type InitiateDeferredRequest struct {
	ProductID int64 `json:"productId" binding:"required,min=1"`
	Quantity  *int  `json:"quantity"`
}

func (r *InitiateDeferredRequest) ToInput(buyerID uuid.UUID) commands.InitiateDeferredInput {
	return commands.InitiateDeferredInput{
		BuyerID:   buyerID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
	}
}

type ListOrdersQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}
