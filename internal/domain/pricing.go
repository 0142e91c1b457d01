package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PercentageOf returns base * p / 100.
func PercentageOf(base, p decimal.Decimal) decimal.Decimal {
	return base.Mul(p).Div(hundred)
}

// ApplyLineDiscount reduces linePrice by the discount's percentage when either the
// number of lines in scope or the line's own quantity reaches the discount threshold.
// A nil discount leaves the price unchanged.
func ApplyLineDiscount(linePrice decimal.Decimal, lineQty, scopeCount int, d *Discount) (decimal.Decimal, bool) {
	if d == nil {
		return linePrice, false
	}
	if scopeCount >= d.MinQuantity || lineQty >= d.MinQuantity {
		return linePrice.Sub(PercentageOf(linePrice, d.PercentageOff)), true
	}
	return linePrice, false
}

// SplitProceeds divides total into the platform's cut and the seller's cut. The
// platform cut is rounded to MoneyScale and the seller keeps the remainder, so the
// two always add back to total.
func SplitProceeds(total, platformPct decimal.Decimal) (platformCut, sellerCut decimal.Decimal) {
	platformCut = RoundMoney(PercentageOf(total, platformPct))
	return platformCut, total.Sub(platformCut)
}

// DiscountLabel renders the applied discount the way it appears on receipts.
func DiscountLabel(pct decimal.Decimal) string {
	return fmt.Sprintf(" (-%s%% off)", pct.String())
}
