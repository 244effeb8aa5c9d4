package order

import (
	"gin-checkout-core/internal/domain/product"
	"gin-checkout-core/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	hundred    = decimal.NewFromInt(100)
	moneyScale = int32(2)
	// MaxTotal is the largest amount NUMERIC(14,2) stores.
	MaxTotal = decimal.RequireFromString("999999999999.99")
)

type Quote struct {
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
	Quantity  int
}

type PriceCalculator interface {
	Quote(p *product.Product, quantity int) (Quote, error)
}

type DefaultPriceCalculator struct{}

func NewDefaultPriceCalculator() *DefaultPriceCalculator {
	return &DefaultPriceCalculator{}
}

// EffectiveUnitPrice returns price * (1 - discount/100) without rounding.
func EffectiveUnitPrice(price, discount decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(1).Sub(discount.Div(hundred)))
}

// Total rounds once, after multiplying the unrounded unit price.
func Total(price, discount decimal.Decimal, quantity int) decimal.Decimal {
	return EffectiveUnitPrice(price, discount).Mul(decimal.NewFromInt(int64(quantity))).Round(moneyScale)
}

func (DefaultPriceCalculator) Quote(p *product.Product, quantity int) (Quote, error) {
	if p == nil {
		return Quote{}, errs.Wrap(errs.ErrInvalidPricingInput, "missing product snapshot")
	}
	if quantity < 1 || quantity > MaxQuantity {
		return Quote{}, errs.Wrapf(errs.ErrInvalidQuantity, "got %d", quantity)
	}
	price, discount := p.Price(), p.Discount()
	if price.IsNegative() {
		return Quote{}, errs.Wrapf(errs.ErrInvalidPricingInput, "product %d has negative price %s", p.ID(), price)
	}
	if discount.IsNegative() || discount.GreaterThan(hundred) {
		return Quote{}, errs.Wrapf(errs.ErrInvalidPricingInput, "product %d has discount %s outside [0,100]", p.ID(), discount)
	}

	total := Total(price, discount, quantity)
	if !total.IsPositive() {
		return Quote{}, errs.Wrapf(errs.ErrInvalidPricingInput, "product %d priced at non-positive total %s", p.ID(), total)
	}
	if total.GreaterThan(MaxTotal) {
		return Quote{}, errs.Wrapf(errs.ErrInvalidPricingInput, "product %d total %s exceeds %s", p.ID(), total, MaxTotal)
	}

	return Quote{
		UnitPrice: EffectiveUnitPrice(price, discount).Round(moneyScale),
		Total:     total,
		Quantity:  quantity,
	}, nil
}
