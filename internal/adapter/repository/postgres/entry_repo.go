package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/marketledger/internal/domain"
	"github.com/iho/marketledger/internal/infrastructure/postgres/generated"
	"github.com/iho/marketledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return newEntryRepository(pool)
}

func newEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{queries: generated.New(db)}
}

// LockAccount takes a transaction-scoped advisory lock keyed by the account id.
func (r *EntryRepository) LockAccount(ctx context.Context, tx usecase.Transaction, accountID string) error {
	t, err := pgxTxOf(tx)
	if err != nil {
		return err
	}
	return r.queries.WithTx(t.PgxTx()).LockLedgerAccount(ctx, accountID)
}

// GetLatest returns the account's entry with the highest sequence number, or nil
// when it has none. Sequence numbers are drawn under the account lock, so they
// order entries regardless of the writer's clock.
func (r *EntryRepository) GetLatest(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.Entry, error) {
	t, err := pgxTxOf(tx)
	if err != nil {
		return nil, err
	}

	row, err := r.queries.WithTx(t.PgxTx()).GetLatestLedgerEntry(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return rowToEntry(row), nil
}

// Create inserts entry and sets its sequence number.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	t, err := pgxTxOf(tx)
	if err != nil {
		return err
	}

	seq, err := r.queries.WithTx(t.PgxTx()).CreateLedgerEntry(ctx, generated.CreateLedgerEntryParams{
		ID:               entry.ID,
		AccountID:        entry.AccountID,
		EntryType:        string(entry.Type),
		Bucket:           string(entry.Bucket),
		Status:           string(entry.Status),
		ReferenceID:      entry.ReferenceID,
		ReferenceType:    string(entry.ReferenceType),
		Label:            entry.Transaction,
		PaymentMethod:    entry.PaymentMethod,
		Details:          entry.Details,
		OrderID:          entry.OrderID,
		Amount:           decimalToNumeric(entry.Amount),
		PendingBalance:   decimalToNumeric(entry.PendingBalance),
		AvailableBalance: decimalToNumeric(entry.AvailableBalance),
		CreatedAt:        timeToPgTimestamptz(entry.CreatedAt),
	})
	if err != nil {
		return err
	}

	entry.Sequence = seq
	return nil
}

// ListByAccount retrieves entries newest first by sequence.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	rows, err := r.queries.ListLedgerEntriesByAccount(ctx, generated.ListLedgerEntriesByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// ListAllByAccount retrieves the whole history in sequence order.
func (r *EntryRepository) ListAllByAccount(ctx context.Context, accountID string) ([]*domain.Entry, error) {
	rows, err := r.queries.ListAllLedgerEntriesByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// ListAccountIDs returns every account with at least one entry.
func (r *EntryRepository) ListAccountIDs(ctx context.Context) ([]string, error) {
	ids, err := r.queries.ListLedgerAccountIDs(ctx)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func rowsToEntries(rows []generated.LedgerEntry) []*domain.Entry {
	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}
	return entries
}

func rowToEntry(row generated.LedgerEntry) *domain.Entry {
	return &domain.Entry{
		ID:               row.ID,
		AccountID:        row.AccountID,
		Type:             domain.EntryType(row.EntryType),
		Bucket:           domain.Bucket(row.Bucket),
		Status:           domain.EntryStatus(row.Status),
		ReferenceID:      row.ReferenceID,
		ReferenceType:    domain.ReferenceType(row.ReferenceType),
		Transaction:      row.Label,
		PaymentMethod:    row.PaymentMethod,
		Details:          row.Details,
		OrderID:          row.OrderID,
		Amount:           numericToDecimal(row.Amount),
		PendingBalance:   numericToDecimal(row.PendingBalance),
		AvailableBalance: numericToDecimal(row.AvailableBalance),
		Sequence:         row.Seq,
		CreatedAt:        row.CreatedAt.Time,
	}
}
