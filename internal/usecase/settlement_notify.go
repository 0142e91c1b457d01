package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/iho/marketledger/internal/domain"
)

const notificationDateLayout = "Monday, January 2, 2006"

type moneyFormatter struct {
	printer  *message.Printer
	currency string
}

func newMoneyFormatter(currency string) moneyFormatter {
	if currency == "" {
		currency = "NGN"
	}
	return moneyFormatter{printer: message.NewPrinter(language.English), currency: currency}
}

// format renders amount with grouping and two decimals, prefixed by the currency code.
func (f moneyFormatter) format(amount decimal.Decimal) string {
	v, _ := amount.Round(2).Float64()
	return f.currency + " " + f.printer.Sprint(number.Decimal(v, number.Scale(2)))
}

// notify sends the buyer confirmation and one message per seller. Failures are
// logged and counted but never fail the settlement.
func (uc *SettlementUseCase) notify(ctx context.Context, sc *SettlementContext) {
	if uc.deps.Notifier == nil {
		return
	}

	uc.send(ctx, uc.buyerNotification(sc))
	for _, g := range sc.Groups {
		uc.send(ctx, uc.sellerNotification(sc, g))
	}
}

func (uc *SettlementUseCase) send(ctx context.Context, n domain.Notification) {
	if err := uc.deps.Notifier.Notify(ctx, n); err != nil {
		if uc.deps.Metrics != nil {
			uc.deps.Metrics.NotificationFailures.WithLabelValues(n.Template).Inc()
		}
		uc.logger.Warn().Err(err).
			Str("order_id", n.OrderID).
			Str("template", n.Template).
			Str("recipient", n.Recipient).
			Msg("notification failed")
	}
}

func (uc *SettlementUseCase) buyerNotification(sc *SettlementContext) domain.Notification {
	b := sc.Breakdown
	return domain.Notification{
		EventType: domain.EventTypeOrderConfirmed,
		Template:  domain.TemplateOrderConfirmed,
		OrderID:   sc.OrderID,
		Recipient: sc.Buyer.ID,
		Email:     sc.Buyer.Email,
		Data: domain.OrderConfirmedData{
			Name:              sc.Buyer.DisplayName(),
			TrackingToken:     sc.TrackingToken,
			EstimatedDelivery: uc.estimate(uc.cfg.DeliveryEstimate),
			Address:           sc.Input.Delivery.AddressLines(),
			Lines:             uc.notificationLines(sc.BuyerLines),
			Subtotal:          uc.money.format(b.TotalItemsPrice),
			PlatformFee:       uc.money.format(b.PlatformFee),
			DeliveryFee:       uc.money.format(b.DeliveryFee),
			Total:             uc.money.format(b.TotalAccumulatedPrice),
		},
	}
}

func (uc *SettlementUseCase) sellerNotification(sc *SettlementContext, g *SellerGroup) domain.Notification {
	subtotal := decimal.Zero
	for _, l := range g.Lines {
		subtotal = subtotal.Add(l.Gross)
	}

	return domain.Notification{
		EventType: domain.EventTypeOrderSentForSeller,
		Template:  domain.TemplateOrderSentForSeller,
		OrderID:   sc.OrderID,
		Recipient: g.SellerID,
		Email:     g.Seller.Email,
		Data: domain.SellerOrderData{
			Name:               g.Seller.DisplayName(),
			EstimatedDropoff:   uc.estimate(uc.cfg.DropoffEstimate),
			Lines:              uc.notificationLines(g.Lines),
			PlatformFee:        uc.money.format(g.PlatformCut.Neg()),
			PlatformPercentage: uc.deps.Pricing.PlatformPercentage().String() + "%",
			SellerCut:          uc.money.format(g.SellerCut),
			Subtotal:           uc.money.format(subtotal),
			Total:              uc.money.format(g.Total),
		},
	}
}

func (uc *SettlementUseCase) notificationLines(lines []PricedLine) []domain.NotificationLine {
	out := make([]domain.NotificationLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, domain.NotificationLine{
			Name:     l.Item.Name,
			Quantity: l.Line.Quantity,
			Price:    uc.money.format(l.Net),
			Discount: l.DiscountLabel(),
		})
	}
	return out
}

func (uc *SettlementUseCase) estimate(d time.Duration) string {
	return uc.now().Add(d).Format(notificationDateLayout)
}
