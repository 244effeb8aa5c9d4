//go:build unit

package order_test

import (
	"testing"

	"gin-checkout-core/internal/domain/order"
	"gin-checkout-core/internal/pkg/errs"
	"gin-checkout-core/tests/common/builder"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEffectiveUnitPrice(t *testing.T) {
	assert.True(t, order.EffectiveUnitPrice(d("100"), d("10")).Equal(d("90.00")))
	assert.True(t, order.EffectiveUnitPrice(d("19.99"), d("0")).Equal(d("19.99")))
	assert.True(t, order.EffectiveUnitPrice(d("50"), d("100")).IsZero())
}

func TestTotal(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		discount string
		qty      int
		want     string
	}{
		{name: "割引10%で3個", price: "100", discount: "10", qty: 3, want: "270.00"},
		{name: "割引なし", price: "19.99", discount: "0", qty: 2, want: "39.98"},
		{name: "丸めは合計で一度だけ", price: "10.005", discount: "0", qty: 3, want: "30.02"},
		{name: "半端な割引率", price: "9.99", discount: "12.5", qty: 1, want: "8.74"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := order.Total(d(tt.price), d(tt.discount), tt.qty)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestDefaultPriceCalculator_Quote(t *testing.T) {
	calc := order.NewDefaultPriceCalculator()

	t.Run("正常系", func(t *testing.T) {
		p := builder.NewProductBuilder().WithPrice("100", "10").BuildDomain()
		q, err := calc.Quote(p, 3)
		require.NoError(t, err)
		assert.Equal(t, "90.00", q.UnitPrice.StringFixed(2))
		assert.Equal(t, "270.00", q.Total.StringFixed(2))
		assert.Equal(t, 3, q.Quantity)
	})

	t.Run("同じ入力なら同じ結果", func(t *testing.T) {
		p := builder.NewProductBuilder().WithPrice("33.33", "7").BuildDomain()
		first, err := calc.Quote(p, 4)
		require.NoError(t, err)
		second, err := calc.Quote(p, 4)
		require.NoError(t, err)
		assert.True(t, first.Total.Equal(second.Total))
	})

	invalid := []struct {
		name     string
		price    string
		discount string
		qty      int
		errIs    error
	}{
		{name: "負の価格NG", price: "-1", discount: "0", qty: 1, errIs: errs.ErrInvalidPricingInput},
		{name: "割引100%超NG", price: "10", discount: "101", qty: 1, errIs: errs.ErrInvalidPricingInput},
		{name: "合計ゼロNG", price: "10", discount: "100", qty: 1, errIs: errs.ErrInvalidPricingInput},
		{name: "価格ゼロNG", price: "0", discount: "0", qty: 2, errIs: errs.ErrInvalidPricingInput},
		{name: "丸めてゼロNG", price: "0.001", discount: "0", qty: 1, errIs: errs.ErrInvalidPricingInput},
		{name: "数量ゼロNG", price: "10", discount: "0", qty: 0, errIs: errs.ErrInvalidQuantity},
		{name: "数量上限超NG", price: "1", discount: "0", qty: order.MaxQuantity + 1, errIs: errs.ErrInvalidQuantity},
		{name: "合計が桁数上限超NG", price: "1000000", discount: "0", qty: 1_000_000, errIs: errs.ErrInvalidPricingInput},
		{name: "最大価格で101個NG", price: "9999999999.99", discount: "0", qty: 101, errIs: errs.ErrInvalidPricingInput},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			p := builder.NewProductBuilder().WithPrice(tt.price, tt.discount).WithStock(1).BuildDomain()
			_, err := calc.Quote(p, tt.qty)
			require.Error(t, err)
			assert.True(t, errs.Is(err, tt.errIs))
		})
	}

	t.Run("合計が桁数上限以内ならOK", func(t *testing.T) {
		p := builder.NewProductBuilder().WithPrice("9999999999.99", "0").BuildDomain()
		q, err := calc.Quote(p, 100)
		require.NoError(t, err)
		assert.Equal(t, "999999999999.00", q.Total.StringFixed(2))
		assert.False(t, q.Total.GreaterThan(order.MaxTotal))
	})

	t.Run("スナップショットなしNG", func(t *testing.T) {
		_, err := calc.Quote(nil, 1)
		assert.True(t, errs.Is(err, errs.ErrInvalidPricingInput))
	})
}
