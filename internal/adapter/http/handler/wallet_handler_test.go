package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/marketledger/internal/adapter/http/dto"
	"github.com/iho/marketledger/internal/domain"
	"github.com/iho/marketledger/internal/usecase"
	"github.com/iho/marketledger/internal/usecase/mocks"
)

func newWalletHandler(t *testing.T) (*WalletHandler, *mocks.MockEntryRepository) {
	t.Helper()

	entries := mocks.NewMockEntryRepository()
	wallet := usecase.NewWalletUseCase(mocks.NewMockTransactionManager(), entries, mocks.NewMockIDGenerator(), nil, nil, zerolog.Nop())
	recon := usecase.NewReconciliationUseCase(entries, zerolog.Nop())
	return NewWalletHandler(wallet, recon), entries
}

func postMovement(h http.HandlerFunc, accountID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallets/"+accountID+"/credit", strings.NewReader(body))
	req = withURLParams(req, "accountID", accountID)
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestWalletHandler_CreditThenBalance(t *testing.T) {
	h, _ := newWalletHandler(t)

	rr := postMovement(h.Credit, "seller-1", `{"amount":"450","bucket":"pending","transaction":"Income for sales of item(s)","provisional":true}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var entry dto.EntryResponse
	decodeEnvelope(t, rr, &entry)
	if entry.Type != "credit" || !entry.PendingBalance.Equal(decimal.NewFromInt(450)) || entry.Status != "provisional" {
		t.Fatalf("unexpected entry %+v", entry)
	}

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/v1/wallets/seller-1/balance", nil), "accountID", "seller-1")
	rr = httptest.NewRecorder()
	h.Balance(rr, req)

	var bal dto.BalanceResponse
	env := decodeEnvelope(t, rr, &bal)
	if !env.Success || !bal.Pending.Equal(decimal.NewFromInt(450)) || !bal.Available.IsZero() {
		t.Fatalf("unexpected balance %+v (%+v)", bal, env)
	}
}

func TestWalletHandler_DebitMayGoNegative(t *testing.T) {
	h, _ := newWalletHandler(t)

	rr := postMovement(h.Debit, "buyer-1", `{"amount":"700","bucket":"available","transaction":"Purchase of Item(s)"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var entry dto.EntryResponse
	decodeEnvelope(t, rr, &entry)
	if !entry.Amount.Equal(decimal.NewFromInt(-700)) || !entry.AvailableBalance.Equal(decimal.NewFromInt(-700)) {
		t.Fatalf("unexpected debit entry %+v", entry)
	}
}

func TestWalletHandler_MovementValidation(t *testing.T) {
	h, entries := newWalletHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"zero amount", `{"amount":"0","bucket":"available","transaction":"x"}`},
		{"negative amount", `{"amount":"-5","bucket":"available","transaction":"x"}`},
		{"unknown bucket", `{"amount":"5","bucket":"savings","transaction":"x"}`},
		{"missing transaction", `{"amount":"5","bucket":"available"}`},
		{"malformed", `{"amount":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postMovement(h.Credit, "acct-1", tt.body)
			env := decodeEnvelope(t, rr, nil)
			if rr.Code != http.StatusBadRequest || env.ErrorCode != CodeValidation {
				t.Fatalf("expected 400 validation error, got %d %+v", rr.Code, env)
			}
		})
	}

	if entries.Count() != 0 {
		t.Fatalf("expected no entries to be written, got %d", entries.Count())
	}
}

func TestWalletHandler_HistoryNewestFirst(t *testing.T) {
	h, _ := newWalletHandler(t)

	for _, amount := range []string{"10", "20", "30"} {
		rr := postMovement(h.Credit, "acct-1", `{"amount":"`+amount+`","bucket":"available","transaction":"Top up"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("credit %s failed: %s", amount, rr.Body.String())
		}
	}

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/v1/wallets/acct-1/history?limit=2", nil), "accountID", "acct-1")
	rr := httptest.NewRecorder()
	h.History(rr, req)

	var entries []dto.EntryResponse
	decodeEnvelope(t, rr, &entries)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if !entries[0].Amount.Equal(decimal.NewFromInt(30)) || !entries[0].AvailableBalance.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected newest entry first, got %+v", entries[0])
	}
}

func TestWalletHandler_Reconcile(t *testing.T) {
	h, _ := newWalletHandler(t)

	postMovement(h.Credit, "acct-1", `{"amount":"100","bucket":"available","transaction":"Top up"}`)
	postMovement(h.Debit, "acct-1", `{"amount":"40","bucket":"available","transaction":"Purchase of Item(s)"}`)

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/v1/wallets/acct-1/reconciliation", nil), "accountID", "acct-1")
	rr := httptest.NewRecorder()
	h.Reconcile(rr, req)

	var res dto.ReconciliationResponse
	decodeEnvelope(t, rr, &res)
	if !res.IsReconciled || res.EntryCount != 2 || !res.Recorded.Available.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("unexpected reconciliation %+v", res)
	}
}

func TestWalletHandler_ReconcileAllReportsBrokenChains(t *testing.T) {
	h, entries := newWalletHandler(t)

	postMovement(h.Credit, "acct-1", `{"amount":"100","bucket":"available","transaction":"Top up"}`)
	postMovement(h.Credit, "acct-2", `{"amount":"50","bucket":"available","transaction":"Top up"}`)
	entries.Append(&domain.Entry{
		ID:               "acct-2-bad",
		AccountID:        "acct-2",
		Bucket:           domain.BucketPending,
		Amount:           decimal.NewFromInt(5),
		PendingBalance:   decimal.NewFromInt(5),
		AvailableBalance: decimal.NewFromInt(999),
	})

	rr := httptest.NewRecorder()
	h.ReconcileAll(rr, httptest.NewRequest(http.MethodGet, "/api/v1/reconciliation", nil))

	var res dto.ReconciliationReportResponse
	decodeEnvelope(t, rr, &res)
	if res.TotalAccounts != 2 || res.ReconciledAccounts != 1 {
		t.Fatalf("unexpected report %+v", res)
	}
	if len(res.Discrepancies) != 1 || res.Discrepancies[0].AccountID != "acct-2" {
		t.Fatalf("expected acct-2 to diverge, got %+v", res.Discrepancies)
	}
}
