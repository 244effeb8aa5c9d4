package response

import (
	"time"

	"gin-checkout-core/internal/usecase/commands"
	"gin-checkout-core/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

// BuyerResponse is the reduced buyer identity. Credentials and role never
// leave the service.
type BuyerResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type OrderResponse struct {
	ID                int64           `json:"id"`
	Buyer             BuyerResponse   `json:"buyer"`
	ProductID         int64           `json:"productId"`
	ProductName       string          `json:"productName"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	Total             decimal.Decimal `json:"total"`
	PaymentMethod     string          `json:"paymentMethod"`
	PaymentStatus     string          `json:"paymentStatus"`
	OrderStatus       string          `json:"orderStatus"`
	CardLast4         *string         `json:"cardLast4,omitempty"`
	CardBrand         *string         `json:"cardBrand,omitempty"`
	ConfirmationRef   *uuid.UUID      `json:"confirmationRef,omitempty"`
	DeferredExpiresAt *time.Time      `json:"expiresAt,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func FromOrderView(v *queries.OrderView) *OrderResponse {
	res := &OrderResponse{}
	// field names match one to one; the nested buyer struct is copied field by field
	_ = copier.Copy(res, v)
	return res
}

func FromOrderViews(views []*queries.OrderView) []*OrderResponse {
	res := make([]*OrderResponse, len(views))
	for i, v := range views {
		res[i] = FromOrderView(v)
	}
	return res
}

type OrderListResponse struct {
	Orders []*OrderResponse `json:"orders"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

type DeferredChargeResponse struct {
	OrderID         int64           `json:"orderId"`
	Token           string          `json:"token"`
	ConfirmationRef uuid.UUID       `json:"confirmationRef"`
	ExpiresAt       time.Time       `json:"expiresAt"`
	Total           decimal.Decimal `json:"total"`
}

func FromDeferredCharge(c *commands.DeferredCharge) *DeferredChargeResponse {
	return &DeferredChargeResponse{
		OrderID:         c.OrderID,
		Token:           c.Token,
		ConfirmationRef: c.ConfirmationRef,
		ExpiresAt:       c.ExpiresAt,
		Total:           c.Total,
	}
}

type DeferredStatusResponse struct {
	OrderID     int64           `json:"orderId"`
	Status      string          `json:"status"`
	OrderStatus string          `json:"orderStatus"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	Total       decimal.Decimal `json:"total"`
}

func FromDeferredStatus(s *commands.DeferredStatus) *DeferredStatusResponse {
	return &DeferredStatusResponse{
		OrderID:     s.OrderID,
		Status:      s.Status,
		OrderStatus: s.OrderStatus,
		ExpiresAt:   s.ExpiresAt,
		Total:       s.Total,
	}
}
