package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/marketledger/internal/domain"
	"github.com/iho/marketledger/internal/infrastructure/metrics"
)

// WalletUseCase resolves balances and appends ledger entries.
// Appends to one account are serialized twice: by an in-process lock and by
// EntryRepository.LockAccount inside the append transaction.
type WalletUseCase struct {
	txManager TransactionManager
	entryRepo EntryRepository
	idGen     IDGenerator
	retrier   Retrier
	metrics   *metrics.Metrics
	locks     *accountLocks
	logger    zerolog.Logger
	now       func() time.Time
}

// NewWalletUseCase creates a new WalletUseCase. retrier and m may be nil.
func NewWalletUseCase(
	txManager TransactionManager,
	entryRepo EntryRepository,
	idGen IDGenerator,
	retrier Retrier,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *WalletUseCase {
	return &WalletUseCase{
		txManager: txManager,
		entryRepo: entryRepo,
		idGen:     idGen,
		retrier:   retrier,
		metrics:   m,
		locks:     newAccountLocks(),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetBalances returns the pending and available balances of an account.
// An account without entries has zero balances.
func (uc *WalletUseCase) GetBalances(ctx context.Context, accountID string) (domain.Balances, error) {
	if accountID == "" {
		return domain.Balances{}, domain.ErrInvalidAccountID
	}

	entries, err := uc.entryRepo.ListByAccount(ctx, accountID, 1, 0)
	if err != nil {
		return domain.Balances{}, persistence("get balances", err)
	}

	if len(entries) == 0 {
		return (*domain.Entry)(nil).Balances(), nil
	}

	return entries[0].Balances(), nil
}

// GetHistoryInput represents input for listing entries.
type GetHistoryInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// GetHistory lists an account's entries newest first.
func (uc *WalletUseCase) GetHistory(ctx context.Context, input GetHistoryInput) ([]*domain.Entry, error) {
	if input.AccountID == "" {
		return nil, domain.ErrInvalidAccountID
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	entries, err := uc.entryRepo.ListByAccount(ctx, input.AccountID, limit, offset)
	if err != nil {
		return nil, persistence("get history", err)
	}

	return entries, nil
}

// Credit appends a credit entry moving draft.Amount into draft.Bucket.
func (uc *WalletUseCase) Credit(ctx context.Context, draft domain.EntryDraft) (*domain.Entry, error) {
	return uc.append(ctx, domain.EntryTypeCredit, draft)
}

// Debit appends a debit entry. Balances may go negative.
func (uc *WalletUseCase) Debit(ctx context.Context, draft domain.EntryDraft) (*domain.Entry, error) {
	return uc.append(ctx, domain.EntryTypeDebit, draft)
}

func (uc *WalletUseCase) append(ctx context.Context, typ domain.EntryType, draft domain.EntryDraft) (*domain.Entry, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	unlock := uc.locks.lock(draft.AccountID)
	defer unlock()

	var entry *domain.Entry
	op := func() error {
		e, err := uc.appendTx(ctx, typ, draft)
		if err != nil {
			return err
		}
		entry = e
		return nil
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, op)
	} else {
		err = op()
	}
	if err != nil {
		return nil, persistence("append "+string(typ), err)
	}

	if uc.metrics != nil {
		uc.metrics.LedgerEntries.WithLabelValues(string(typ), string(draft.Bucket)).Inc()
		uc.metrics.LedgerAppendDuration.Observe(time.Since(start).Seconds())
	}

	uc.logger.Debug().
		Str("entry_id", entry.ID).
		Str("account_id", entry.AccountID).
		Str("type", string(typ)).
		Str("bucket", string(entry.Bucket)).
		Str("amount", entry.Amount.String()).
		Msg("ledger entry appended")

	return entry, nil
}

// appendTx reads the latest snapshot and writes the next entry in one transaction.
func (uc *WalletUseCase) appendTx(ctx context.Context, typ domain.EntryType, draft domain.EntryDraft) (*domain.Entry, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(txCtx)

	if err := uc.entryRepo.LockAccount(txCtx, tx, draft.AccountID); err != nil {
		return nil, err
	}

	latest, err := uc.entryRepo.GetLatest(txCtx, tx, draft.AccountID)
	if err != nil {
		return nil, err
	}

	entry := domain.NewEntry(uc.idGen.Generate(), typ, draft, latest, uc.now())

	if err := uc.entryRepo.Create(txCtx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return entry, nil
}

// persistence wraps store failures as ErrPersistence, leaving domain errors intact.
func persistence(op string, err error) error {
	if isDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}

func isDomainError(err error) bool {
	for _, kind := range []error{
		domain.ErrValidation,
		domain.ErrNotFound,
		domain.ErrInsufficientStock,
		domain.ErrPaymentUnverified,
		domain.ErrPersistence,
		domain.ErrConflict,
		domain.ErrDuplicateToken,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
