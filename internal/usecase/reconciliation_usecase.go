package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/marketledger/internal/domain"
)

// ReconciliationUseCase replays account histories and checks them against
// the balances recorded on the latest entry.
type ReconciliationUseCase struct {
	entryRepo EntryRepository
	logger    zerolog.Logger
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(entryRepo EntryRepository, logger zerolog.Logger) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		entryRepo: entryRepo,
		logger:    logger.With().Str("component", "reconciliation").Logger(),
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	LastChecked  time.Time
	AccountID    string
	Recorded     domain.Balances
	Calculated   domain.Balances
	Difference   domain.Balances
	BrokenEntry  string
	EntryCount   int
	IsReconciled bool
}

// ReconcileAccount folds every entry of the account and compares the sum with
// the latest snapshot. It also checks that each snapshot follows from the one
// before it and records the first entry where the chain breaks.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	if accountID == "" {
		return nil, domain.ErrInvalidAccountID
	}

	entries, err := uc.entryRepo.ListAllByAccount(ctx, accountID)
	if err != nil {
		return nil, persistence("list entries", err)
	}

	result := &ReconciliationResult{
		AccountID:   accountID,
		EntryCount:  len(entries),
		LastChecked: time.Now().UTC(),
	}

	var (
		calculated domain.Balances
		previous   *domain.Entry
	)
	for _, e := range entries {
		calculated = calculated.Apply(e.Bucket, e.Amount)

		expected := previous.Balances().Apply(e.Bucket, e.Amount)
		if result.BrokenEntry == "" && !sameBalances(expected, e.Balances()) {
			result.BrokenEntry = e.ID
		}
		previous = e
	}

	result.Calculated = calculated
	result.Recorded = previous.Balances()
	result.Difference = domain.Balances{
		Pending:   result.Recorded.Pending.Sub(calculated.Pending),
		Available: result.Recorded.Available.Sub(calculated.Available),
	}
	result.IsReconciled = result.BrokenEntry == "" && sameBalances(result.Recorded, calculated)

	if !result.IsReconciled {
		uc.logger.Warn().
			Str("account_id", accountID).
			Str("broken_entry", result.BrokenEntry).
			Str("pending_diff", result.Difference.Pending.String()).
			Str("available_diff", result.Difference.Available.String()).
			Msg("account does not reconcile")
	}

	return result, nil
}

// ReconcileAllAccounts reconciles every account that has entries.
func (uc *ReconciliationUseCase) ReconcileAllAccounts(ctx context.Context) ([]*ReconciliationResult, error) {
	ids, err := uc.entryRepo.ListAccountIDs(ctx)
	if err != nil {
		return nil, persistence("list accounts", err)
	}

	results := make([]*ReconciliationResult, 0, len(ids))
	for _, id := range ids {
		result, err := uc.ReconcileAccount(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile account %s: %w", id, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// ReconciliationReport summarizes a reconciliation run over all accounts.
type ReconciliationReport struct {
	CheckedAt          time.Time
	Discrepancies      []*ReconciliationResult
	TotalAccounts      int
	ReconciledAccounts int
}

// GenerateReconciliationReport generates a comprehensive reconciliation report
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalAccounts: len(results),
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}

func sameBalances(a, b domain.Balances) bool {
	return a.Pending.Equal(b.Pending) && a.Available.Equal(b.Available)
}
