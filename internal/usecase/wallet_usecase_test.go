package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/marketledger/internal/domain"
	"github.com/iho/marketledger/internal/usecase"
	"github.com/iho/marketledger/internal/usecase/mocks"
)

func newWallet(entryRepo *mocks.MockEntryRepository, txMgr *mocks.MockTransactionManager) *usecase.WalletUseCase {
	return usecase.NewWalletUseCase(txMgr, entryRepo, mocks.NewMockIDGenerator(), nil, nil, zerolog.Nop())
}

func TestWalletUseCase_GetBalancesWithoutHistory(t *testing.T) {
	uc := newWallet(mocks.NewMockEntryRepository(), mocks.NewMockTransactionManager())

	b, err := uc.GetBalances(context.Background(), "new-user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.Pending.IsZero() || !b.Available.IsZero() {
		t.Fatalf("expected zero balances, got %+v", b)
	}
}

func TestWalletUseCase_GetBalancesIsReadOnly(t *testing.T) {
	ctx := context.Background()
	entryRepo := mocks.NewMockEntryRepository()
	uc := newWallet(entryRepo, mocks.NewMockTransactionManager())

	if _, err := uc.Credit(ctx, domain.EntryDraft{AccountID: "u2", Bucket: domain.BucketPending, Amount: decimal.RequireFromString("120.50")}); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := uc.Credit(ctx, domain.EntryDraft{AccountID: "u2", Bucket: domain.BucketAvailable, Amount: decimal.NewFromInt(75)}); err != nil {
		t.Fatalf("credit: %v", err)
	}

	first, err := uc.GetBalances(ctx, "u2")
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	second, err := uc.GetBalances(ctx, "u2")
	if err != nil {
		t.Fatalf("second read: %v", err)
	}

	if !first.Pending.Equal(second.Pending) || !first.Available.Equal(second.Available) {
		t.Fatalf("balances changed between reads: %+v then %+v", first, second)
	}
	if !second.Pending.Equal(decimal.RequireFromString("120.50")) || !second.Available.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("unexpected balances %+v", second)
	}
	if n := entryRepo.Count(); n != 2 {
		t.Fatalf("reads must not append entries, got %d", n)
	}
}

func TestWalletUseCase_CreditThenDebit(t *testing.T) {
	ctx := context.Background()
	entryRepo := mocks.NewMockEntryRepository()
	uc := newWallet(entryRepo, mocks.NewMockTransactionManager())

	if _, err := uc.Credit(ctx, domain.EntryDraft{AccountID: "u1", Bucket: domain.BucketAvailable, Amount: decimal.NewFromInt(500)}); err != nil {
		t.Fatalf("credit: %v", err)
	}

	debit, err := uc.Debit(ctx, domain.EntryDraft{AccountID: "u1", Bucket: domain.BucketAvailable, Amount: decimal.NewFromInt(200)})
	if err != nil {
		t.Fatalf("debit: %v", err)
	}

	if !debit.Amount.Equal(decimal.NewFromInt(-200)) {
		t.Fatalf("expected stored amount -200, got %s", debit.Amount)
	}

	b, err := uc.GetBalances(ctx, "u1")
	if err != nil {
		t.Fatalf("get balances: %v", err)
	}
	if !b.Available.Equal(decimal.NewFromInt(300)) || !b.Pending.IsZero() {
		t.Fatalf("expected available 300 pending 0, got %+v", b)
	}

	if n := len(entryRepo.Entries("u1")); n != 2 {
		t.Fatalf("expected 2 entries, got %d", n)
	}
}

func TestWalletUseCase_DebitBelowZeroIsAllowed(t *testing.T) {
	ctx := context.Background()
	uc := newWallet(mocks.NewMockEntryRepository(), mocks.NewMockTransactionManager())

	e, err := uc.Debit(ctx, domain.EntryDraft{AccountID: "u1", Bucket: domain.BucketPending, Amount: decimal.NewFromInt(50)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !e.PendingBalance.Equal(decimal.NewFromInt(-50)) {
		t.Fatalf("expected pending -50, got %s", e.PendingBalance)
	}
}

func TestWalletUseCase_RejectsInvalidAmounts(t *testing.T) {
	ctx := context.Background()
	entryRepo := mocks.NewMockEntryRepository()
	uc := newWallet(entryRepo, mocks.NewMockTransactionManager())

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-10)} {
		_, err := uc.Credit(ctx, domain.EntryDraft{AccountID: "u1", Bucket: domain.BucketAvailable, Amount: amount})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("amount %s: expected validation error, got %v", amount, err)
		}
	}

	if entryRepo.Count() != 0 {
		t.Fatalf("expected no entries written, got %d", entryRepo.Count())
	}
}

func TestWalletUseCase_StoreFailureIsPersistenceError(t *testing.T) {
	entryRepo := mocks.NewMockEntryRepository()
	entryRepo.CreateFunc = func(context.Context, usecase.Transaction, *domain.Entry) error {
		return errors.New("connection reset")
	}
	uc := newWallet(entryRepo, mocks.NewMockTransactionManager())

	_, err := uc.Credit(context.Background(), domain.EntryDraft{AccountID: "u1", Bucket: domain.BucketAvailable, Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestWalletUseCase_BeginFailureIsPersistenceError(t *testing.T) {
	txMgr := mocks.NewMockTransactionManager()
	txMgr.BeginFunc = func(context.Context) (usecase.Transaction, error) {
		return nil, errors.New("pool closed")
	}
	uc := newWallet(mocks.NewMockEntryRepository(), txMgr)

	_, err := uc.Debit(context.Background(), domain.EntryDraft{AccountID: "u1", Bucket: domain.BucketAvailable, Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestWalletUseCase_ConcurrentCreditsSerializePerAccount(t *testing.T) {
	ctx := context.Background()
	entryRepo := mocks.NewMockEntryRepository()
	uc := newWallet(entryRepo, mocks.NewMockTransactionManager())

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.Credit(ctx, domain.EntryDraft{AccountID: "hot", Bucket: domain.BucketAvailable, Amount: decimal.NewFromInt(1)}); err != nil {
				t.Errorf("credit: %v", err)
			}
		}()
	}
	wg.Wait()

	b, err := uc.GetBalances(ctx, "hot")
	if err != nil {
		t.Fatalf("get balances: %v", err)
	}
	if !b.Available.Equal(decimal.NewFromInt(workers)) {
		t.Fatalf("expected available %d, got %s", workers, b.Available)
	}

	// Every snapshot must equal its predecessor plus its own amount.
	prev := decimal.Zero
	for _, e := range entryRepo.Entries("hot") {
		if !e.AvailableBalance.Equal(prev.Add(e.Amount)) {
			t.Fatalf("broken snapshot chain at %s: prev=%s amount=%s got=%s", e.ID, prev, e.Amount, e.AvailableBalance)
		}
		prev = e.AvailableBalance
	}
}

func TestWalletUseCase_GetHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	uc := newWallet(mocks.NewMockEntryRepository(), mocks.NewMockTransactionManager())

	for i := 1; i <= 3; i++ {
		if _, err := uc.Credit(ctx, domain.EntryDraft{AccountID: "u1", Bucket: domain.BucketAvailable, Amount: decimal.NewFromInt(int64(i))}); err != nil {
			t.Fatalf("credit: %v", err)
		}
	}

	history, err := uc.GetHistory(ctx, usecase.GetHistoryInput{AccountID: "u1", Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if !history[0].Amount.Equal(decimal.NewFromInt(3)) || !history[1].Amount.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected newest first, got %s then %s", history[0].Amount, history[1].Amount)
	}

	if _, err := uc.GetHistory(ctx, usecase.GetHistoryInput{}); !errors.Is(err, domain.ErrInvalidAccountID) {
		t.Fatalf("expected ErrInvalidAccountID, got %v", err)
	}
}
