package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/iho/marketledger/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPercentageOf(t *testing.T) {
	tests := []struct {
		name string
		base string
		pct  string
		want string
	}{
		{"ten percent", "1000", "10", "100"},
		{"zero percent", "1000", "0", "0"},
		{"full", "250.50", "100", "250.5"},
		{"fractional", "99.99", "5", "4.9995"},
		{"zero base", "0", "10", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.PercentageOf(dec(tt.base), dec(tt.pct))
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestApplyLineDiscount(t *testing.T) {
	bulk := &domain.Discount{ID: "d1", MinQuantity: 2, PercentageOff: dec("10")}

	tests := []struct {
		name        string
		discount    *domain.Discount
		lineQty     int
		scope       int
		want        string
		wantApplied bool
	}{
		{"no discount", nil, 5, 5, "1000", false},
		{"scope reaches threshold", bulk, 1, 3, "900", true},
		{"line quantity reaches threshold", bulk, 2, 1, "900", true},
		{"below threshold", bulk, 1, 1, "1000", false},
		{"exact threshold on scope", bulk, 1, 2, "900", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, applied := domain.ApplyLineDiscount(dec("1000"), tt.lineQty, tt.scope, tt.discount)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
			assert.Equal(t, tt.wantApplied, applied)
		})
	}
}

func TestSplitProceeds(t *testing.T) {
	platform, seller := domain.SplitProceeds(dec("1000"), dec("10"))
	assert.True(t, platform.Equal(dec("100")))
	assert.True(t, seller.Equal(dec("900")))
	assert.True(t, platform.Add(seller).Equal(dec("1000")))

	platform, seller = domain.SplitProceeds(dec("333.33"), dec("12.5"))
	assert.True(t, platform.Add(seller).Equal(dec("333.33")), "cuts must add back to total")
}

func TestSplitProceedsRoundsToCents(t *testing.T) {
	tests := []struct {
		name, total, pct, platform, seller string
	}{
		{"rounds platform cut", "333.33", "10", "33.33", "300"},
		{"half cent rounds up", "0.05", "10", "0.01", "0.04"},
		{"zero percent", "333.33", "0", "0", "333.33"},
		{"hundred percent", "333.33", "100", "333.33", "0"},
		{"zero total", "0", "10", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform, seller := domain.SplitProceeds(dec(tt.total), dec(tt.pct))
			assert.True(t, platform.Equal(dec(tt.platform)), "platform %s want %s", platform, tt.platform)
			assert.True(t, seller.Equal(dec(tt.seller)), "seller %s want %s", seller, tt.seller)
			assert.True(t, platform.Add(seller).Equal(dec(tt.total)))
			assert.True(t, domain.HasMoneyScale(platform) && domain.HasMoneyScale(seller))
		})
	}
}

func TestDiscountLabel(t *testing.T) {
	assert.Equal(t, " (-5% off)", domain.DiscountLabel(dec("5")))
	assert.Equal(t, " (-12.5% off)", domain.DiscountLabel(dec("12.5")))
}
