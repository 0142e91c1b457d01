package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/marketledger/internal/infrastructure/logger"
)

func TestLoggingMiddleware_LogsRequestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	mw := NewLoggingMiddleware(base)

	var handlerSawID bool
	handler := chimiddleware.RequestID(mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := logger.FromContext(r.Context(), zerolog.Nop())
		l.Info().Msg("inside")
		handlerSawID = true
		w.WriteHeader(http.StatusAccepted)
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "req-42")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.True(t, handlerSawID)
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var inner, summary map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inner))
	require.NoError(t, json.Unmarshal(lines[1], &summary))

	assert.Equal(t, "req-42", inner["request_id"])
	assert.Equal(t, "req-42", summary["request_id"])
	assert.Equal(t, "request completed", summary["message"])
	assert.Equal(t, float64(http.StatusAccepted), summary["status"])
	assert.Equal(t, "info", summary["level"])
}

func TestLoggingMiddleware_ServerErrorsLogAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	mw := NewLoggingMiddleware(zerolog.New(&buf))

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, float64(http.StatusBadGateway), entry["status"])
}
