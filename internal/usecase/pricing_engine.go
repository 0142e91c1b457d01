package usecase

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iho/marketledger/internal/domain"
)

// PricedLine is a cart line priced within one discount scope.
type PricedLine struct {
	Item     *domain.Item
	Discount *domain.Discount
	Line     domain.CartLine
	Gross    decimal.Decimal
	Net      decimal.Decimal
	Applied  bool
}

// DiscountLabel renders the discount applied to the line, or a zero-percent label.
func (l PricedLine) DiscountLabel() string {
	if !l.Applied {
		return domain.DiscountLabel(decimal.Zero)
	}
	return domain.DiscountLabel(l.Discount.PercentageOff)
}

// PricingEngine prices cart lines and splits proceeds between seller and platform.
// The platform fee percentage is fixed at construction.
type PricingEngine struct {
	discountRepo DiscountRepository
	platformPct  decimal.Decimal
}

// NewPricingEngine creates a PricingEngine charging platformPct percent.
func NewPricingEngine(discountRepo DiscountRepository, platformPct decimal.Decimal) (*PricingEngine, error) {
	if err := domain.ValidatePercentage(platformPct); err != nil {
		return nil, err
	}
	return &PricingEngine{discountRepo: discountRepo, platformPct: platformPct}, nil
}

// PlatformPercentage returns the configured platform fee percentage.
func (p *PricingEngine) PlatformPercentage() decimal.Decimal {
	return p.platformPct
}

// ResolveDiscount looks a discount up by reference. An empty or unknown reference yields nil.
func (p *PricingEngine) ResolveDiscount(ctx context.Context, ref string) (*domain.Discount, error) {
	if ref == "" {
		return nil, nil
	}
	d, err := p.discountRepo.GetByID(ctx, ref)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistence("get discount", err)
	}
	return d, nil
}

// ApplyLineDiscount prices one line of qty units of item. scopeCount is the number
// of lines in the scope the discount threshold is evaluated against. Net is rounded
// to the money scale.
func (p *PricingEngine) ApplyLineDiscount(item *domain.Item, line domain.CartLine, discount *domain.Discount, scopeCount int) PricedLine {
	gross := item.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
	net, applied := domain.ApplyLineDiscount(gross, line.Quantity, scopeCount, discount)
	return PricedLine{
		Item:     item,
		Discount: discount,
		Line:     line,
		Gross:    gross,
		Net:      domain.RoundMoney(net),
		Applied:  applied,
	}
}

// PriceScope prices every line against the same scope, which is the number of lines given.
func (p *PricingEngine) PriceScope(items map[string]*domain.Item, discounts map[string]*domain.Discount, lines []domain.CartLine) ([]PricedLine, decimal.Decimal) {
	priced := make([]PricedLine, 0, len(lines))
	total := decimal.Zero
	for _, l := range lines {
		pl := p.ApplyLineDiscount(items[l.ItemID], l, discounts[l.DiscountID], len(lines))
		priced = append(priced, pl)
		total = total.Add(pl.Net)
	}
	return priced, total
}

// Breakdown derives the buyer-facing price breakdown from the item total.
func (p *PricingEngine) Breakdown(itemsTotal, deliveryFee decimal.Decimal) domain.PriceBreakdown {
	return domain.PriceBreakdown{
		TotalItemsPrice:       itemsTotal,
		PlatformPercentage:    p.platformPct,
		PlatformFee:           domain.RoundMoney(domain.PercentageOf(itemsTotal, p.platformPct)),
		DeliveryFee:           deliveryFee,
		TotalAccumulatedPrice: itemsTotal.Add(deliveryFee),
	}
}

// SplitProceeds returns the platform's and the seller's share of total.
func (p *PricingEngine) SplitProceeds(total decimal.Decimal) (platformCut, sellerCut decimal.Decimal) {
	return domain.SplitProceeds(total, p.platformPct)
}
