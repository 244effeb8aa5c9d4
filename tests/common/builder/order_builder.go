//go:build unit || e2e

package builder

import (
	"strings"
	"time"

	"gin-checkout-core/internal/domain/order"
	"gin-checkout-core/internal/domain/payment"
	"gin-checkout-core/internal/domain/product"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var DefaultNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type OrderBuilder struct {
	ID        int64
	BuyerID   uuid.UUID
	ProductID int64
	Quantity  int
	UnitPrice string
	Total     string
	Method    order.PaymentMethod
	Status    order.PaymentStatus
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func NewOrderBuilder() *OrderBuilder {
	return &OrderBuilder{
		ID:        1,
		BuyerID:   uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		ProductID: 1,
		Quantity:  2,
		UnitPrice: "90.00",
		Total:     "180.00",
		Method:    order.MethodCard,
		Status:    order.StatusApproved,
		CreatedAt: DefaultNow,
	}
}

func (b *OrderBuilder) With(mutate func(*OrderBuilder)) *OrderBuilder {
	mutate(b)
	return b
}

func (b *OrderBuilder) BuildDomain() *order.Order {
	var (
		deferred *order.DeferredCharge
		card     *payment.CardSummary
	)
	switch b.Method {
	case order.MethodDeferredCode:
		token := b.Token
		if token == "" {
			token = strings.Repeat("t", order.TokenLength)
		}
		expiresAt := b.ExpiresAt
		if expiresAt.IsZero() {
			expiresAt = b.CreatedAt.Add(order.DefaultDeferredTTL)
		}
		d := order.NewDeferredCharge(token, uuid.MustParse("22222222-2222-2222-2222-222222222222"), expiresAt)
		deferred = &d
	case order.MethodCard:
		card = &payment.CardSummary{Last4: "1111", Brand: "visa"}
	}
	return order.ReconstructOrder(
		b.ID, b.BuyerID, b.ProductID, b.Quantity,
		decimal.RequireFromString(b.UnitPrice), decimal.RequireFromString(b.Total),
		b.Method, b.Status, deferred, card,
		b.CreatedAt, b.CreatedAt,
	)
}

func (b *OrderBuilder) AsDeferred() *OrderBuilder {
	b.Method = order.MethodDeferredCode
	b.Status = order.StatusPending
	return b
}

func (b *OrderBuilder) WithStatus(status order.PaymentStatus) *OrderBuilder {
	b.Status = status
	return b
}

func (b *OrderBuilder) WithToken(token string) *OrderBuilder {
	b.Token = token
	return b
}

type ProductBuilder struct {
	ID       int64
	Name     string
	Price    string
	Discount string
	Stock    int
	Version  int64
}

func NewProductBuilder() *ProductBuilder {
	return &ProductBuilder{
		ID:       1,
		Name:     "Fone Bluetooth",
		Price:    "100.00",
		Discount: "10",
		Stock:    10,
		Version:  1,
	}
}

func (b *ProductBuilder) BuildDomain() *product.Product {
	return product.ReconstructProduct(
		b.ID, b.Name,
		decimal.RequireFromString(b.Price), decimal.RequireFromString(b.Discount),
		b.Stock, b.Version,
	)
}

func (b *ProductBuilder) WithStock(stock int) *ProductBuilder {
	b.Stock = stock
	return b
}

func (b *ProductBuilder) WithPrice(price, discount string) *ProductBuilder {
	b.Price, b.Discount = price, discount
	return b
}
