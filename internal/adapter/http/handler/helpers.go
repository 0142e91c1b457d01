package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/iho/marketledger/internal/adapter/http/dto"
	"github.com/iho/marketledger/internal/domain"
	"github.com/iho/marketledger/internal/infrastructure/logger"
)

// Error codes carried in the response envelope.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeInsufficientStock  = "INSUFFICIENT_STOCK"
	CodePaymentUnverified  = "PAYMENT_UNVERIFIED"
	CodeConflict           = "CONFLICT"
	CodePersistence        = "PERSISTENCE_ERROR"
	CodePartiallyApplied   = "SETTLEMENT_PARTIALLY_APPLIED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// writeJSON writes a successful envelope.
func writeJSON(w http.ResponseWriter, status int, message string, data any) {
	writeEnvelope(w, dto.Envelope{
		Code:    status,
		Success: true,
		Message: message,
		Data:    data,
	})
}

// writeError writes a failure envelope for err.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := mapDomainError(err)

	var data any
	var se *domain.SettlementError
	if errors.As(err, &se) {
		data = dto.SettlementFailureFromError(se)
		if se.Outcome == domain.OutcomePartiallyApplied {
			status, code = http.StatusInternalServerError, CodePartiallyApplied
		}
	}

	message := err.Error()
	if status >= http.StatusInternalServerError {
		l := logger.FromContext(r.Context(), zerolog.Nop())
		l.Error().Err(err).Str("path", r.URL.Path).Str("error_code", code).Msg("request failed")
		if code != CodePartiallyApplied {
			message = http.StatusText(status)
		}
	}

	writeEnvelope(w, dto.Envelope{
		Code:      status,
		Success:   false,
		Message:   message,
		ErrorCode: code,
		Data:      data,
	})
}

func writeEnvelope(w http.ResponseWriter, env dto.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.Code)
	_ = json.NewEncoder(w).Encode(env)
}

// mapDomainError maps domain error kinds to an HTTP status and error code.
func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict, CodeInsufficientStock
	case errors.Is(err, domain.ErrPaymentVerifierFailed):
		return http.StatusBadGateway, CodePaymentUnverified
	case errors.Is(err, domain.ErrPaymentUnverified):
		return http.StatusPaymentRequired, CodePaymentUnverified
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusInternalServerError, CodePersistence
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
