package queries

import (
	"time"

	"gin-checkout-core/internal/domain/order"
	"gin-checkout-core/internal/domain/user"
	"gin-checkout-core/internal/pkg/ptr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BuyerView is the buyer identity as exposed to clients: no credentials, no role.
type BuyerView struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// OrderView represents read-optimized order data. The deferred token is never
// part of it; clients only see it once, when the charge is created.
type OrderView struct {
	ID                int64           `json:"id"`
	Buyer             BuyerView       `json:"buyer"`
	ProductID         int64           `json:"product_id"`
	ProductName       string          `json:"product_name"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Total             decimal.Decimal `json:"total"`
	PaymentMethod     string          `json:"payment_method"`
	PaymentStatus     string          `json:"payment_status"`
	OrderStatus       string          `json:"order_status"`
	CardLast4         *string         `json:"card_last4,omitempty"`
	CardBrand         *string         `json:"card_brand,omitempty"`
	ConfirmationRef   *uuid.UUID      `json:"confirmation_ref,omitempty"`
	DeferredExpiresAt *time.Time      `json:"deferred_expires_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// AuthorizedUserView represents read-optimized user data with authorization info
type AuthorizedUserView struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	IsActive bool      `json:"is_active"`
}

func NewOrderView(o *order.Order, buyer user.Buyer, productName string) *OrderView {
	v := &OrderView{
		ID: o.ID(),
		Buyer: BuyerView{
			ID:    buyer.ID,
			Name:  buyer.Name,
			Email: buyer.Email,
		},
		ProductID:     o.ProductID(),
		ProductName:   productName,
		Quantity:      o.Quantity(),
		UnitPrice:     o.UnitPrice(),
		Total:         o.Total(),
		PaymentMethod: o.Method().String(),
		PaymentStatus: o.Status().String(),
		OrderStatus:   o.Status().DisplayStatus(),
		CreatedAt:     o.CreatedAt(),
		UpdatedAt:     o.UpdatedAt(),
	}
	if c := o.Card(); c != nil {
		v.CardLast4 = ptr.To(c.Last4)
		v.CardBrand = ptr.To(c.Brand)
	}
	if d := o.Deferred(); d != nil {
		v.ConfirmationRef = ptr.To(d.ConfirmationRef())
		v.DeferredExpiresAt = ptr.To(d.ExpiresAt())
	}
	return v
}
