package order

import (
	"time"

	"gin-checkout-core/internal/domain/payment"
	"gin-checkout-core/internal/domain/product"
	"gin-checkout-core/internal/pkg/clock"
	"gin-checkout-core/internal/pkg/errs"

	"github.com/google/uuid"
)

const DefaultDeferredTTL = 5 * time.Minute

type Factory struct {
	Clock           clock.Clock
	PriceCalculator PriceCalculator
	Tokens          TokenGenerator
	DeferredTTL     time.Duration
}

func NewFactory(clk clock.Clock, priceCalculator PriceCalculator, tokens TokenGenerator, deferredTTL time.Duration) *Factory {
	if deferredTTL <= 0 {
		deferredTTL = DefaultDeferredTTL
	}
	return &Factory{
		Clock:           clk,
		PriceCalculator: priceCalculator,
		Tokens:          tokens,
		DeferredTTL:     deferredTTL,
	}
}

// NewImmediateOrder builds an order that is approved on creation. The caller must
// persist it in the same unit of work as the stock reservation.
func (f *Factory) NewImmediateOrder(buyerID uuid.UUID, p *product.Product, quantity int, method PaymentMethod, card *payment.CardSummary) (*Order, error) {
	if !method.SettlesImmediately() {
		return nil, errs.Wrapf(errs.ErrInvalidPaymentMethod, "%s does not settle immediately", method)
	}
	if method == MethodCard && card == nil {
		return nil, errs.Wrap(errs.ErrInvalidCard, "card details are required")
	}
	if method != MethodCard {
		card = nil
	}

	quote, err := f.PriceCalculator.Quote(p, quantity)
	if err != nil {
		return nil, err
	}

	now := f.Clock.Now()
	return &Order{
		buyerID:   buyerID,
		productID: p.ID(),
		quantity:  quote.Quantity,
		unitPrice: quote.UnitPrice,
		total:     quote.Total,
		method:    method,
		status:    StatusApproved,
		card:      card,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// NewDeferredOrder prices the product now and holds that price for the token
// lifetime. No stock is reserved.
func (f *Factory) NewDeferredOrder(buyerID uuid.UUID, p *product.Product, quantity int) (*Order, error) {
	quote, err := f.PriceCalculator.Quote(p, quantity)
	if err != nil {
		return nil, err
	}

	now := f.Clock.Now()
	charge, err := f.Tokens.NewCharge(now, f.DeferredTTL)
	if err != nil {
		return nil, err
	}

	return &Order{
		buyerID:   buyerID,
		productID: p.ID(),
		quantity:  quote.Quantity,
		unitPrice: quote.UnitPrice,
		total:     quote.Total,
		method:    MethodDeferredCode,
		status:    StatusPending,
		deferred:  &charge,
		createdAt: now,
		updatedAt: now,
	}, nil
}
