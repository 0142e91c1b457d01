package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/marketledger/internal/adapter/http/dto"
	"github.com/iho/marketledger/internal/domain"
	"github.com/iho/marketledger/internal/usecase"
)

// WalletService defines the behavior needed by WalletHandler.
type WalletService interface {
	GetBalances(ctx context.Context, accountID string) (domain.Balances, error)
	GetHistory(ctx context.Context, input usecase.GetHistoryInput) ([]*domain.Entry, error)
	Credit(ctx context.Context, draft domain.EntryDraft) (*domain.Entry, error)
	Debit(ctx context.Context, draft domain.EntryDraft) (*domain.Entry, error)
}

// Reconciler checks an account's entry chain.
type Reconciler interface {
	ReconcileAccount(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// WalletHandler handles wallet HTTP requests.
type WalletHandler struct {
	wallet     WalletService
	reconciler Reconciler
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(wallet WalletService, reconciler Reconciler) *WalletHandler {
	return &WalletHandler{wallet: wallet, reconciler: reconciler}
}

// Balance returns the pending and available balances of an account.
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	balances, err := h.wallet.GetBalances(r.Context(), accountID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "balance retrieved", dto.BalanceFromDomain(accountID, balances))
}

// History lists an account's entries newest first.
func (h *WalletHandler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.wallet.GetHistory(r.Context(), usecase.GetHistoryInput{
		AccountID: chi.URLParam(r, "accountID"),
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "history retrieved", dto.EntriesFromDomain(entries))
}

// Credit appends a credit entry.
func (h *WalletHandler) Credit(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.wallet.Credit, "wallet credited")
}

// Debit appends a debit entry.
func (h *WalletHandler) Debit(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.wallet.Debit, "wallet debited")
}

func (h *WalletHandler) move(
	w http.ResponseWriter,
	r *http.Request,
	apply func(context.Context, domain.EntryDraft) (*domain.Entry, error),
	message string,
) {
	var req dto.WalletMovementRequest
	if err := dto.Decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	draft, err := req.ToDraft(chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	entry, err := apply(r.Context(), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, message, dto.EntryFromDomain(entry))
}

// Reconcile folds an account's history and compares it with its latest snapshot.
func (h *WalletHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconciler.ReconcileAccount(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "account reconciled", dto.ReconciliationFromResult(result))
}

// ReconcileAll checks every account with entries and lists the ones that diverge.
func (h *WalletHandler) ReconcileAll(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciler.GenerateReconciliationReport(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "ledger reconciled", dto.ReconciliationReportFromUsecase(report))
}
