package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/iho/marketledger/internal/adapter/http/dto"
	"github.com/iho/marketledger/internal/domain"
)

// withURLParams attaches chi route parameters given as key, value pairs.
func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, data any) dto.Envelope {
	t.Helper()

	var raw struct {
		Data      json.RawMessage `json:"data"`
		Message   string          `json:"message"`
		ErrorCode string          `json:"error_code"`
		Code      int             `json:"code"`
		Success   bool            `json:"success"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rr.Body.String())
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return dto.Envelope{Code: raw.Code, Success: raw.Success, Message: raw.Message, ErrorCode: raw.ErrorCode}
}

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/history?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/history?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		wantCode string
	}{
		{"validation", domain.ErrEmptyCart, http.StatusBadRequest, CodeValidation},
		{"not found", domain.ErrOrderNotFound, http.StatusNotFound, CodeNotFound},
		{"insufficient stock", &domain.InsufficientStockError{ItemID: "i"}, http.StatusConflict, CodeInsufficientStock},
		{"payment unverified", domain.ErrPaymentUnverified, http.StatusPaymentRequired, CodePaymentUnverified},
		{"verifier down", domain.ErrPaymentVerifierFailed, http.StatusBadGateway, CodePaymentUnverified},
		{"conflict", domain.ErrOrderAlreadySettled, http.StatusConflict, CodeConflict},
		{"persistence", fmt.Errorf("%w: db", domain.ErrPersistence), http.StatusInternalServerError, CodePersistence},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := mapDomainError(tt.err)
			if status != tt.status || code != tt.wantCode {
				t.Fatalf("expected %d/%s, got %d/%s", tt.status, tt.wantCode, status, code)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	writeJSON(rr, http.StatusCreated, "created", map[string]string{"status": "ok"})

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %s", ct)
	}

	var data map[string]string
	env := decodeEnvelope(t, rr, &data)
	if !env.Success || env.Code != http.StatusCreated || env.Message != "created" || data["status"] != "ok" {
		t.Fatalf("unexpected envelope %+v data=%v", env, data)
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	writeError(rr, req, fmt.Errorf("%w: dial tcp 10.0.0.1:5432", domain.ErrPersistence))

	env := decodeEnvelope(t, rr, nil)
	if env.Success || env.Code != http.StatusInternalServerError || env.ErrorCode != CodePersistence {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if env.Message != http.StatusText(http.StatusInternalServerError) {
		t.Fatalf("expected generic message, got %q", env.Message)
	}
}

func TestWriteErrorSettlementFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      *domain.SettlementError
		status   int
		wantCode string
	}{
		{
			name:     "rejected keeps the kind of the cause",
			err:      &domain.SettlementError{Outcome: domain.OutcomeRejected, Step: "reserve_stock", StepIndex: 2, Err: &domain.InsufficientStockError{ItemID: "i"}},
			status:   http.StatusConflict,
			wantCode: CodeInsufficientStock,
		},
		{
			name:     "partially applied is a server error",
			err:      &domain.SettlementError{Outcome: domain.OutcomePartiallyApplied, Step: "credit_platform", StepIndex: 9, Err: fmt.Errorf("%w: x", domain.ErrPersistence)},
			status:   http.StatusInternalServerError,
			wantCode: CodePartiallyApplied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeError(rr, httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil), tt.err)

			var failure dto.SettlementFailure
			env := decodeEnvelope(t, rr, &failure)
			if rr.Code != tt.status || env.ErrorCode != tt.wantCode {
				t.Fatalf("expected %d/%s, got %d/%s", tt.status, tt.wantCode, rr.Code, env.ErrorCode)
			}
			if failure.Step != tt.err.Step || failure.StepIndex != tt.err.StepIndex || failure.Outcome != string(tt.err.Outcome) {
				t.Fatalf("unexpected failure data %+v", failure)
			}
		})
	}
}
