package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/iho/marketledger/internal/domain"
	"github.com/iho/marketledger/internal/infrastructure/metrics"
)

// compensationTimeout bounds the whole compensation pass of one failed settlement.
const compensationTimeout = 30 * time.Second

// LedgerWriter appends ledger entries.
type LedgerWriter interface {
	Credit(ctx context.Context, draft domain.EntryDraft) (*domain.Entry, error)
	Debit(ctx context.Context, draft domain.EntryDraft) (*domain.Entry, error)
}

// TokenIssuer reserves and releases tracking tokens.
type TokenIssuer interface {
	Generate(ctx context.Context, orderID string) (string, error)
	Release(ctx context.Context, token string) error
}

// SettlementConfig holds settlement policy.
type SettlementConfig struct {
	PlatformAccountID string
	Currency          string
	FundBuyerWallet   bool
	DeliveryEstimate  time.Duration
	DropoffEstimate   time.Duration
}

// SettlementDependencies groups the collaborators of SettlementUseCase.
type SettlementDependencies struct {
	Ledger    LedgerWriter
	Pricing   *PricingEngine
	Tracking  TokenIssuer
	Orders    OrderRepository
	Items     ItemRepository
	Users     UserRepository
	Notifier  Notifier
	IDGen     IDGenerator
	Metrics   *metrics.Metrics
	Verifiers map[string]PaymentVerifier
}

// SettlementUseCase turns a paid cart into an order, stock movements and ledger entries.
type SettlementUseCase struct {
	deps   SettlementDependencies
	cfg    SettlementConfig
	money  moneyFormatter
	logger zerolog.Logger
	now    func() time.Time
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(deps SettlementDependencies, cfg SettlementConfig, logger zerolog.Logger) *SettlementUseCase {
	if cfg.DeliveryEstimate == 0 {
		cfg.DeliveryEstimate = DefaultDeliveryEstimate
	}
	if cfg.DropoffEstimate == 0 {
		cfg.DropoffEstimate = DefaultDropoffEstimate
	}
	return &SettlementUseCase{
		deps:   deps,
		cfg:    cfg,
		money:  newMoneyFormatter(cfg.Currency),
		logger: logger.With().Str("component", "settlement").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type settlementStep struct {
	run  func(ctx context.Context, sc *SettlementContext) error
	name string
}

func (uc *SettlementUseCase) steps() []settlementStep {
	return []settlementStep{
		{name: "verify_payment", run: uc.verifyPayment},
		{name: "reserve_stock", run: uc.reserveStock},
		{name: "decrement_stock", run: uc.decrementStock},
		{name: "compute_breakdown", run: uc.computeBreakdown},
		{name: "group_by_seller", run: uc.groupBySeller},
		{name: "create_order", run: uc.createOrder},
		{name: "debit_buyer", run: uc.debitBuyer},
		{name: "credit_sellers", run: uc.creditSellers},
		{name: "credit_platform", run: uc.creditPlatform},
	}
}

// SettleOrder settles a checkout. On failure the returned error is a
// *domain.SettlementError whose Outcome tells whether anything was written.
func (uc *SettlementUseCase) SettleOrder(ctx context.Context, input SettleOrderInput) (*domain.Order, error) {
	start := time.Now()
	sc := newSettlementContext(input)

	for i, step := range uc.steps() {
		if err := step.run(ctx, sc); err != nil {
			return nil, uc.fail(ctx, sc, i+1, step.name, err)
		}
		sc.completed = i + 1
	}

	uc.notify(ctx, sc)

	if uc.deps.Metrics != nil {
		uc.deps.Metrics.Settlements.WithLabelValues(metrics.OutcomeSettled).Inc()
		uc.deps.Metrics.SettlementDuration.Observe(time.Since(start).Seconds())
		amount, _ := sc.GrandTotal().Float64()
		uc.deps.Metrics.SettlementAmount.Observe(amount)
	}

	uc.logger.Info().
		Str("order_id", sc.Order.ID).
		Str("buyer_id", sc.Buyer.ID).
		Strs("sellers", sc.SellerIDs()).
		Str("total", sc.GrandTotal().String()).
		Str("tracking_token", sc.TrackingToken).
		Msg("order settled")

	return sc.Order, nil
}

// Step 1.
func (uc *SettlementUseCase) verifyPayment(ctx context.Context, sc *SettlementContext) error {
	in := sc.Input

	if in.BuyerID == "" {
		return fmt.Errorf("%w: buyer id is required", domain.ErrValidation)
	}
	if len(in.Lines) == 0 {
		return domain.ErrEmptyCart
	}
	if len(in.Lines) > domain.MaxCartLines {
		return fmt.Errorf("%w: at most %d lines per order", domain.ErrValidation, domain.MaxCartLines)
	}

	seen := make(map[string]bool, len(in.Lines))
	for _, l := range in.Lines {
		if l.ItemID == "" {
			return fmt.Errorf("%w: item id is required", domain.ErrValidation)
		}
		if l.Quantity < 1 {
			return fmt.Errorf("%w: item %s", domain.ErrInvalidQuantity, l.ItemID)
		}
		if seen[l.ItemID] {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateCartItem, l.ItemID)
		}
		seen[l.ItemID] = true
	}

	if in.DeliveryFee.IsNegative() {
		return domain.ErrInvalidDeliveryFee
	}
	if !domain.HasMoneyScale(in.DeliveryFee) {
		return fmt.Errorf("%w: delivery fee %s", domain.ErrInvalidMoneyScale, in.DeliveryFee)
	}
	if err := in.Delivery.Validate(); err != nil {
		return err
	}

	method, err := domain.NormalizePaymentMethod(in.PaymentMethod)
	if err != nil {
		return err
	}
	sc.Method = method

	if err := domain.ValidatePaymentRef(in.PaymentRef); err != nil {
		return err
	}

	existing, err := uc.deps.Orders.GetByPaymentRef(ctx, in.PaymentRef)
	if err != nil {
		return persistence("find order by payment ref", err)
	}
	if existing != nil {
		return fmt.Errorf("%w: order %s", domain.ErrDuplicatePaymentRef, existing.ID)
	}

	buyer, err := uc.deps.Users.GetByID(ctx, in.BuyerID)
	if err != nil {
		return persistence("get buyer", err)
	}
	sc.Buyer = buyer

	verifier, ok := uc.deps.Verifiers[method]
	if !ok {
		return fmt.Errorf("%w: %s payments cannot be verified", domain.ErrPaymentUnverified, method)
	}

	verification, err := verifier.Verify(ctx, in.PaymentRef)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPaymentVerifierFailed, err)
	}
	if verification == nil || !verification.Verified {
		return domain.ErrPaymentUnverified
	}
	sc.Verification = verification

	return nil
}

// Step 2. Every check happens before the first write.
func (uc *SettlementUseCase) reserveStock(ctx context.Context, sc *SettlementContext) error {
	ids := make([]string, 0, len(sc.Input.Lines))
	for _, l := range sc.Input.Lines {
		ids = append(ids, l.ItemID)
	}

	items, err := uc.deps.Items.GetByIDs(ctx, ids)
	if err != nil {
		return persistence("get items", err)
	}
	for _, it := range items {
		sc.Items[it.ID] = it
	}

	for _, l := range sc.Input.Lines {
		it, ok := sc.Items[l.ItemID]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrItemNotFound, l.ItemID)
		}
		if !it.CanCover(l.Quantity) {
			if uc.deps.Metrics != nil {
				uc.deps.Metrics.StockRejections.Inc()
			}
			return &domain.InsufficientStockError{
				ItemID:    it.ID,
				ItemName:  it.Name,
				Requested: l.Quantity,
				Available: it.QuantityInStock,
			}
		}
	}

	for _, l := range sc.Input.Lines {
		if l.DiscountID == "" {
			continue
		}
		if _, done := sc.Discounts[l.DiscountID]; done {
			continue
		}
		d, err := uc.deps.Pricing.ResolveDiscount(ctx, l.DiscountID)
		if err != nil {
			return err
		}
		sc.Discounts[l.DiscountID] = d
	}

	return nil
}

// Step 3.
func (uc *SettlementUseCase) decrementStock(ctx context.Context, sc *SettlementContext) error {
	for _, l := range sc.Input.Lines {
		if err := uc.deps.Items.DecrementStock(ctx, l.ItemID, l.Quantity); err != nil {
			return persistence("decrement stock", err)
		}

		itemID, qty := l.ItemID, l.Quantity
		sc.onFailure("decrement_stock", fmt.Sprintf("restore %d units of item %s", qty, itemID), func(ctx context.Context) error {
			return uc.deps.Items.RestoreStock(ctx, itemID, qty)
		})
	}
	return nil
}

// Step 4. Discounts are evaluated against the whole cart.
func (uc *SettlementUseCase) computeBreakdown(_ context.Context, sc *SettlementContext) error {
	lines, total := uc.deps.Pricing.PriceScope(sc.Items, sc.Discounts, sc.Input.Lines)
	sc.BuyerLines = lines
	sc.Breakdown = uc.deps.Pricing.Breakdown(total, sc.Input.DeliveryFee)
	return nil
}

// Step 5. Discounts are evaluated again, this time against each seller's lines only,
// so a seller's total can differ from the buyer-facing price of the same lines.
func (uc *SettlementUseCase) groupBySeller(ctx context.Context, sc *SettlementContext) error {
	byID := make(map[string][]domain.CartLine)
	var order []string
	for _, l := range sc.Input.Lines {
		owner := sc.Items[l.ItemID].OwnerID
		if _, ok := byID[owner]; !ok {
			order = append(order, owner)
		}
		byID[owner] = append(byID[owner], l)
	}

	for _, sellerID := range order {
		seller, err := uc.deps.Users.GetByID(ctx, sellerID)
		if err != nil {
			return persistence("get seller", err)
		}

		lines, total := uc.deps.Pricing.PriceScope(sc.Items, sc.Discounts, byID[sellerID])
		platformCut, sellerCut := uc.deps.Pricing.SplitProceeds(total)

		sc.Groups = append(sc.Groups, &SellerGroup{
			Seller:      seller,
			SellerID:    sellerID,
			Lines:       lines,
			Total:       total,
			PlatformCut: platformCut,
			SellerCut:   sellerCut,
		})
	}
	return nil
}

// Step 6.
func (uc *SettlementUseCase) createOrder(ctx context.Context, sc *SettlementContext) error {
	sc.OrderID = uc.deps.IDGen.Generate()

	token, err := uc.deps.Tracking.Generate(ctx, sc.OrderID)
	if err != nil {
		return err
	}
	sc.TrackingToken = token
	sc.onFailure("create_order", "release tracking token "+token, func(ctx context.Context) error {
		return uc.deps.Tracking.Release(ctx, token)
	})

	now := uc.now()
	order := &domain.Order{
		ID:             sc.OrderID,
		OwnerID:        sc.Buyer.ID,
		Lines:          sc.Input.Lines,
		Sellers:        sc.SellerIDs(),
		PriceBreakdown: sc.Breakdown,
		TotalPricePaid: sc.GrandTotal(),
		Delivery:       sc.Input.Delivery,
		PaymentMethod:  sc.Method,
		PaymentRef:     sc.Input.PaymentRef,
		PaymentData:    sc.Input.PaymentData,
		PriceUsed:      priceUsed(sc.Groups),
		TrackingToken:  token,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.deps.Orders.Create(ctx, order); err != nil {
		return persistence("create order", err)
	}
	sc.Order = order

	sc.onFailure("create_order", "mark order "+order.ID+" rejected", func(ctx context.Context) error {
		if err := order.MarkRejected("settlement failed", uc.now()); err != nil {
			return err
		}
		return uc.deps.Orders.UpdateProgress(ctx, order)
	})
	return nil
}

// Step 7. When the wallet is funded first, the funding credit is not compensated:
// the gateway payment was received and stays on the buyer's available balance.
func (uc *SettlementUseCase) debitBuyer(ctx context.Context, sc *SettlementContext) error {
	total := sc.GrandTotal()
	if !total.IsPositive() {
		uc.logger.Debug().Str("order_id", sc.OrderID).Msg("nothing to charge, skipping buyer debit")
		return nil
	}
	uc.checkPaidAmount(sc, total)

	if uc.cfg.FundBuyerWallet {
		funding, err := uc.deps.Ledger.Credit(ctx, domain.EntryDraft{
			AccountID:     sc.Buyer.ID,
			Bucket:        domain.BucketAvailable,
			Status:        domain.EntryStatusSettled,
			ReferenceID:   sc.Input.PaymentRef,
			Transaction:   fmt.Sprintf("Wallet (Funding from %s)", sc.Method),
			PaymentMethod: sc.Method,
			OrderID:       sc.OrderID,
			Amount:        total,
		})
		if err != nil {
			return err
		}
		sc.recordEntry(funding)
	}

	debit, err := uc.deps.Ledger.Debit(ctx, domain.EntryDraft{
		AccountID:     sc.Buyer.ID,
		Bucket:        domain.BucketAvailable,
		Status:        domain.EntryStatusSettled,
		ReferenceID:   sc.OrderID,
		ReferenceType: domain.ReferenceTypeOrder,
		Transaction:   domain.LabelPurchase,
		PaymentMethod: domain.PaymentMethodWallet,
		OrderID:       sc.OrderID,
		Amount:        total,
	})
	if err != nil {
		return err
	}
	sc.BuyerDebit = debit
	sc.recordEntry(debit)

	sc.onFailure("debit_buyer", "refund "+total.String()+" to buyer "+sc.Buyer.ID, func(ctx context.Context) error {
		_, err := uc.deps.Ledger.Credit(ctx, reversalOf(debit, domain.LabelPaymentReversal))
		return err
	})
	return nil
}

// checkPaidAmount flags a gateway-reported amount that differs from the charge.
// Gateways that report no amount are not checked.
func (uc *SettlementUseCase) checkPaidAmount(sc *SettlementContext, total decimal.Decimal) {
	if sc.Verification == nil || sc.Verification.Amount.IsZero() || sc.Verification.Amount.Equal(total) {
		return
	}
	uc.logger.Warn().
		Str("order_id", sc.OrderID).
		Str("payment_ref", sc.Input.PaymentRef).
		Str("payment_method", sc.Method).
		Str("paid", sc.Verification.Amount.String()).
		Str("expected", total.String()).
		Msg("verified payment amount does not match order total")
}

// Step 8.
func (uc *SettlementUseCase) creditSellers(ctx context.Context, sc *SettlementContext) error {
	for _, g := range sc.Groups {
		if err := uc.creditPending(ctx, sc, "credit_sellers", g.SellerID, g.SellerCut, domain.LabelSaleIncome, domain.PaymentMethodSales, g); err != nil {
			return err
		}
	}
	return nil
}

// Step 9. The platform is credited once per seller group.
func (uc *SettlementUseCase) creditPlatform(ctx context.Context, sc *SettlementContext) error {
	label := fmt.Sprintf("Wallet (platform fee %s%%)", uc.deps.Pricing.PlatformPercentage().String())
	for _, g := range sc.Groups {
		if err := uc.creditPending(ctx, sc, "credit_platform", uc.cfg.PlatformAccountID, g.PlatformCut, label, domain.PaymentMethodSales, g); err != nil {
			return err
		}
	}
	return nil
}

func (uc *SettlementUseCase) creditPending(
	ctx context.Context,
	sc *SettlementContext,
	step, accountID string,
	amount decimal.Decimal,
	label, method string,
	g *SellerGroup,
) error {
	if !amount.IsPositive() {
		uc.logger.Debug().Str("order_id", sc.OrderID).Str("account_id", accountID).Msg("zero share, skipping credit")
		return nil
	}

	draft := domain.EntryDraft{
		AccountID:     accountID,
		Bucket:        domain.BucketPending,
		Status:        domain.EntryStatusProvisional,
		ReferenceType: domain.ReferenceTypeEntry,
		Transaction:   label,
		PaymentMethod: method,
		Details:       groupDiscountLabel(g),
		OrderID:       sc.OrderID,
		Amount:        amount,
	}
	if sc.BuyerDebit != nil {
		draft.ReferenceID = sc.BuyerDebit.ID
	}

	entry, err := uc.deps.Ledger.Credit(ctx, draft)
	if err != nil {
		return err
	}
	sc.recordEntry(entry)

	sc.onFailure(step, "reverse "+amount.String()+" pending credit of "+accountID, func(ctx context.Context) error {
		_, err := uc.deps.Ledger.Debit(ctx, reversalOf(entry, domain.LabelSettlementReversal))
		return err
	})
	return nil
}

// fail classifies a step failure, runs compensations and logs what happened.
func (uc *SettlementUseCase) fail(ctx context.Context, sc *SettlementContext, index int, step string, cause error) error {
	serr := &domain.SettlementError{
		Err:       cause,
		Outcome:   domain.OutcomeRejected,
		Step:      step,
		StepIndex: index,
		OrderID:   sc.OrderID,
	}

	if len(sc.compensations) == 0 {
		uc.record(serr.Outcome)
		uc.logger.Warn().Err(cause).Str("step", step).Int("step_index", index).Str("buyer_id", sc.Input.BuyerID).Msg("settlement rejected")
		return serr
	}

	compErr := uc.compensate(ctx, sc)
	serr.AffectedAccounts = sc.AffectedAccounts()
	serr.Outcome = domain.OutcomeRolledBack
	if compErr != nil {
		serr.Outcome = domain.OutcomePartiallyApplied
	}
	uc.record(serr.Outcome)

	event := uc.logger.Error()
	if compErr == nil {
		event = uc.logger.Warn()
	}
	event.Err(cause).
		AnErr("compensation_error", compErr).
		Str("outcome", string(serr.Outcome)).
		Str("order_id", sc.OrderID).
		Str("step", step).
		Int("step_index", index).
		Int("completed_step", sc.CompletedStep()).
		Strs("affected_accounts", serr.AffectedAccounts).
		Msg("settlement failed after writes")

	return serr
}

// compensate runs registered compensations newest first and collects every failure.
func (uc *SettlementUseCase) compensate(ctx context.Context, sc *SettlementContext) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	var errs error
	for i := len(sc.compensations) - 1; i >= 0; i-- {
		c := sc.compensations[i]
		if err := c.undo(cctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %s: %w", c.step, c.description, err))
			if uc.deps.Metrics != nil {
				uc.deps.Metrics.CompensationFailures.Inc()
			}
			uc.logger.Error().Err(err).Str("order_id", sc.OrderID).Str("step", c.step).Str("action", c.description).Msg("compensation failed")
			continue
		}
		uc.logger.Info().Str("order_id", sc.OrderID).Str("step", c.step).Str("action", c.description).Msg("compensation applied")
	}
	return errs
}

func (uc *SettlementUseCase) record(outcome domain.SettlementOutcome) {
	if uc.deps.Metrics != nil {
		uc.deps.Metrics.Settlements.WithLabelValues(string(outcome)).Inc()
	}
}

// reversalOf drafts the entry that cancels e on the same bucket.
func reversalOf(e *domain.Entry, label string) domain.EntryDraft {
	return domain.EntryDraft{
		AccountID:     e.AccountID,
		Bucket:        e.Bucket,
		Status:        domain.EntryStatusSettled,
		ReferenceID:   e.ID,
		ReferenceType: domain.ReferenceTypeEntry,
		Transaction:   label,
		PaymentMethod: e.PaymentMethod,
		OrderID:       e.OrderID,
		Amount:        e.Amount.Abs(),
	}
}

func priceUsed(groups []*SellerGroup) []domain.PriceUsed {
	var out []domain.PriceUsed
	for _, g := range groups {
		for _, l := range g.Lines {
			pu := domain.PriceUsed{
				ItemID:             l.Item.ID,
				SellerID:           g.SellerID,
				AgreedPricePerItem: l.Item.Price,
				Quantity:           l.Line.Quantity,
				Total:              l.Net,
				PercentageOff:      decimal.Zero,
			}
			if l.Discount != nil {
				pu.DiscountID = l.Discount.ID
			}
			if l.Applied {
				pu.PercentageOff = l.Discount.PercentageOff
			}
			out = append(out, pu)
		}
	}
	return out
}

func groupDiscountLabel(g *SellerGroup) string {
	var labels []string
	for _, l := range g.Lines {
		if l.Applied {
			labels = append(labels, strings.TrimSpace(l.DiscountLabel()))
		}
	}
	return strings.Join(labels, " ")
}

// IsRejected reports whether err is a settlement failure that wrote nothing.
func IsRejected(err error) bool {
	var serr *domain.SettlementError
	return errors.As(err, &serr) && !serr.Mutated()
}
