package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/marketledger/internal/domain"
	"github.com/iho/marketledger/internal/usecase"
	"github.com/iho/marketledger/internal/usecase/mocks"
)

func seedWallet(t *testing.T, repo *mocks.MockEntryRepository, accountID string) {
	t.Helper()

	wallet := usecase.NewWalletUseCase(mocks.NewMockTransactionManager(), repo, mocks.NewMockIDGenerator(), nil, nil, zerolog.Nop())
	ctx := context.Background()

	steps := []struct {
		credit bool
		bucket domain.Bucket
		amount int64
	}{
		{true, domain.BucketAvailable, 300},
		{true, domain.BucketPending, 120},
		{false, domain.BucketAvailable, 50},
	}
	for _, s := range steps {
		draft := domain.EntryDraft{AccountID: accountID, Bucket: s.bucket, Amount: decimal.NewFromInt(s.amount)}
		var err error
		if s.credit {
			_, err = wallet.Credit(ctx, draft)
		} else {
			_, err = wallet.Debit(ctx, draft)
		}
		if err != nil {
			t.Fatalf("seed %s: %v", accountID, err)
		}
	}
}

func TestReconcileAccount(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockEntryRepository()
	seedWallet(t, repo, "acc-1")

	uc := usecase.NewReconciliationUseCase(repo, zerolog.Nop())

	result, err := uc.ReconcileAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.IsReconciled {
		t.Fatalf("expected account to reconcile, broken entry %q", result.BrokenEntry)
	}
	if result.EntryCount != 3 {
		t.Fatalf("expected 3 entries, got %d", result.EntryCount)
	}
	if !result.Recorded.Available.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected available 250, got %s", result.Recorded.Available)
	}
	if !result.Calculated.Pending.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected pending 120, got %s", result.Calculated.Pending)
	}
	if result.LastChecked.IsZero() {
		t.Fatal("expected LastChecked timestamp to be set")
	}
}

func TestReconcileAccount_EmptyAccount(t *testing.T) {
	t.Parallel()

	uc := usecase.NewReconciliationUseCase(mocks.NewMockEntryRepository(), zerolog.Nop())

	result, err := uc.ReconcileAccount(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsReconciled || result.EntryCount != 0 {
		t.Fatalf("expected empty account to reconcile, got %+v", result)
	}
	if !result.Recorded.Available.IsZero() || !result.Recorded.Pending.IsZero() {
		t.Fatalf("expected zero balances, got %+v", result.Recorded)
	}
}

func TestReconcileAccount_DetectsBrokenChain(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockEntryRepository()
	seedWallet(t, repo, "acc-1")

	// A snapshot that skips the previous balance.
	repo.Append(&domain.Entry{
		ID:               "tampered",
		AccountID:        "acc-1",
		Type:             domain.EntryTypeCredit,
		Bucket:           domain.BucketAvailable,
		Amount:           decimal.NewFromInt(10),
		PendingBalance:   decimal.NewFromInt(120),
		AvailableBalance: decimal.NewFromInt(1000),
	})

	uc := usecase.NewReconciliationUseCase(repo, zerolog.Nop())

	result, err := uc.ReconcileAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsReconciled {
		t.Fatal("expected reconciliation to fail")
	}
	if result.BrokenEntry != "tampered" {
		t.Fatalf("expected broken entry tampered, got %q", result.BrokenEntry)
	}
	if !result.Difference.Available.Equal(decimal.NewFromInt(740)) {
		t.Fatalf("expected available difference 740, got %s", result.Difference.Available)
	}
}

func TestReconcileAccount_PropagatesError(t *testing.T) {
	t.Parallel()

	uc := usecase.NewReconciliationUseCase(&failingEntryRepository{MockEntryRepository: mocks.NewMockEntryRepository()}, zerolog.Nop())

	_, err := uc.ReconcileAccount(context.Background(), "acc-1")
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}

	if _, err := uc.ReconcileAccount(context.Background(), ""); !errors.Is(err, domain.ErrInvalidAccountID) {
		t.Fatalf("expected invalid account id, got %v", err)
	}
}

func TestGenerateReconciliationReport(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockEntryRepository()
	seedWallet(t, repo, "r1")
	seedWallet(t, repo, "r2")
	repo.Append(&domain.Entry{
		ID:               "r2-bad",
		AccountID:        "r2",
		Bucket:           domain.BucketPending,
		Amount:           decimal.NewFromInt(5),
		PendingBalance:   decimal.NewFromInt(5),
		AvailableBalance: decimal.NewFromInt(250),
	})

	uc := usecase.NewReconciliationUseCase(repo, zerolog.Nop())

	report, err := uc.GenerateReconciliationReport(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TotalAccounts != 2 {
		t.Fatalf("expected total accounts 2, got %d", report.TotalAccounts)
	}
	if report.ReconciledAccounts != 1 {
		t.Fatalf("expected 1 reconciled account, got %d", report.ReconciledAccounts)
	}
	if len(report.Discrepancies) != 1 || report.Discrepancies[0].AccountID != "r2" {
		t.Fatalf("expected r2 as the only discrepancy, got %+v", report.Discrepancies)
	}
	if report.CheckedAt.IsZero() {
		t.Fatal("expected CheckedAt timestamp")
	}
}

type failingEntryRepository struct {
	*mocks.MockEntryRepository
}

func (f *failingEntryRepository) ListAllByAccount(context.Context, string) ([]*domain.Entry, error) {
	return nil, errors.New("connection reset")
}
