package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType is the direction of a ledger entry.
type EntryType string

const (
	EntryTypeCredit EntryType = "credit"
	EntryTypeDebit  EntryType = "debit"
)

// Bucket selects which of an account's two balances an entry moves.
type Bucket string

const (
	BucketPending   Bucket = "pending"
	BucketAvailable Bucket = "available"
)

// Valid reports whether b is a known bucket.
func (b Bucket) Valid() bool {
	return b == BucketPending || b == BucketAvailable
}

// EntryStatus marks whether an entry is final or still provisional.
type EntryStatus string

const (
	EntryStatusProvisional EntryStatus = "provisional"
	EntryStatusSettled     EntryStatus = "settled"
)

// ReferenceType names what an entry's reference points at.
type ReferenceType string

const (
	ReferenceTypeOrder ReferenceType = "order"
	ReferenceTypeEntry ReferenceType = "transaction"
)

// Entry labels written by settlement.
const (
	DefaultTransactionLabel = "Wallet"
	LabelPurchase           = "Purchase of Item(s)"
	LabelSaleIncome         = "Income for sales of item(s)"
	LabelPaymentReversal    = "Payment Reversal"
	LabelSettlementReversal = "Settlement Reversal"

	PaymentMethodWallet = "Wallet"
	PaymentMethodSales  = "Sales"
)

// Balances is the pair of balances an account holds at a point in time.
type Balances struct {
	Pending   decimal.Decimal
	Available decimal.Decimal
}

// Apply returns the balances after moving signedAmount into bucket.
func (b Balances) Apply(bucket Bucket, signedAmount decimal.Decimal) Balances {
	switch bucket {
	case BucketPending:
		b.Pending = b.Pending.Add(signedAmount)
	case BucketAvailable:
		b.Available = b.Available.Add(signedAmount)
	}
	return b
}

// Entry is an immutable ledger record. Amount is signed: debits are stored negated.
// PendingBalance and AvailableBalance are the account's balances after the entry.
type Entry struct {
	CreatedAt        time.Time
	ID               string
	AccountID        string
	Type             EntryType
	Bucket           Bucket
	Status           EntryStatus
	ReferenceID      string
	ReferenceType    ReferenceType
	Transaction      string
	PaymentMethod    string
	Details          string
	OrderID          string
	Amount           decimal.Decimal
	PendingBalance   decimal.Decimal
	AvailableBalance decimal.Decimal
	Sequence         int64
}

// Balances returns the snapshot carried by the entry. A nil entry yields zero balances.
func (e *Entry) Balances() Balances {
	if e == nil {
		return Balances{Pending: decimal.Zero, Available: decimal.Zero}
	}
	return Balances{Pending: e.PendingBalance, Available: e.AvailableBalance}
}

// EntryDraft describes an entry before balances are resolved.
type EntryDraft struct {
	AccountID     string
	Bucket        Bucket
	Status        EntryStatus
	ReferenceID   string
	ReferenceType ReferenceType
	Transaction   string
	PaymentMethod string
	Details       string
	OrderID       string
	Amount        decimal.Decimal
}

// Validate checks the fields common to credits and debits.
func (d EntryDraft) Validate() error {
	if d.AccountID == "" {
		return ErrInvalidAccountID
	}
	if !d.Bucket.Valid() {
		return ErrInvalidBucket
	}
	return ValidateAmount(d.Amount)
}

// NewEntry builds the entry that applies draft on top of previous.
// previous may be nil when the account has no history.
func NewEntry(id string, typ EntryType, draft EntryDraft, previous *Entry, now time.Time) *Entry {
	signed := draft.Amount
	if typ == EntryTypeDebit {
		signed = signed.Neg()
	}
	next := previous.Balances().Apply(draft.Bucket, signed)

	status := draft.Status
	if status == "" {
		status = EntryStatusSettled
	}
	label := draft.Transaction
	if label == "" {
		label = DefaultTransactionLabel
	}

	return &Entry{
		ID:               id,
		AccountID:        draft.AccountID,
		Type:             typ,
		Bucket:           draft.Bucket,
		Status:           status,
		ReferenceID:      draft.ReferenceID,
		ReferenceType:    draft.ReferenceType,
		Transaction:      label,
		PaymentMethod:    draft.PaymentMethod,
		Details:          draft.Details,
		OrderID:          draft.OrderID,
		Amount:           signed,
		PendingBalance:   next.Pending,
		AvailableBalance: next.Available,
		CreatedAt:        now,
	}
}
