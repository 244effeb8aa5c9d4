//go:build unit

package product_test

import (
	"testing"

	"gin-checkout-core/internal/domain/product"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		discount string
		stock    int
		errIs    error
	}{
		{name: "正常OK", price: "100.00", discount: "10", stock: 5},
		{name: "割引100%OK", price: "100.00", discount: "100", stock: 0},
		{name: "負の価格NG", price: "-0.01", discount: "0", stock: 1, errIs: product.ErrNegativePrice},
		{name: "割引100%超NG", price: "1", discount: "100.5", stock: 1, errIs: product.ErrInvalidDiscount},
		{name: "負の割引NG", price: "1", discount: "-1", stock: 1, errIs: product.ErrInvalidDiscount},
		{name: "負の在庫NG", price: "1", discount: "0", stock: -1, errIs: product.ErrNegativeStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := product.NewProduct("Camiseta", decimal.RequireFromString(tt.price), decimal.RequireFromString(tt.discount), tt.stock)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.stock, p.Stock())
			assert.True(t, p.HasStock(tt.stock))
			assert.False(t, p.HasStock(tt.stock+1))
		})
	}
}
