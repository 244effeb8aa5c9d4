package product

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativePrice   = errors.New("price cannot be negative")
	ErrInvalidDiscount = errors.New("discount must be between 0 and 100 percent")
	ErrNegativeStock   = errors.New("stock cannot be negative")
)

var hundred = decimal.NewFromInt(100)

// Product is a catalog snapshot taken at a single instant. Stock and version are
// only meaningful for that instant; writes go through the reservation engine.
type Product struct {
	id       int64
	name     string
	price    decimal.Decimal
	discount decimal.Decimal
	stock    int
	version  int64
}

func NewProduct(name string, price, discount decimal.Decimal, stock int) (*Product, error) {
	if price.IsNegative() {
		return nil, ErrNegativePrice
	}
	if discount.IsNegative() || discount.GreaterThan(hundred) {
		return nil, ErrInvalidDiscount
	}
	if stock < 0 {
		return nil, ErrNegativeStock
	}
	return &Product{
		name:     name,
		price:    price,
		discount: discount,
		stock:    stock,
	}, nil
}

// ReconstructProduct rebuilds a snapshot from storage without validation so
// corrupt catalog rows still reach the pricing guard.
func ReconstructProduct(id int64, name string, price, discount decimal.Decimal, stock int, version int64) *Product {
	return &Product{
		id:       id,
		name:     name,
		price:    price,
		discount: discount,
		stock:    stock,
		version:  version,
	}
}

func (p *Product) ID() int64                 { return p.id }
func (p *Product) Name() string              { return p.name }
func (p *Product) Price() decimal.Decimal    { return p.price }
func (p *Product) Discount() decimal.Decimal { return p.discount }
func (p *Product) Stock() int                { return p.stock }
func (p *Product) Version() int64            { return p.version }

func (p *Product) HasStock(quantity int) bool {
	return p.stock >= quantity
}
