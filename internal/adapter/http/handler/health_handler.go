package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/marketledger/internal/adapter/http/dto"
)

// Probe checks one dependency.
type Probe func(ctx context.Context) error

// HealthHandler handles health check requests.
type HealthHandler struct {
	probes map[string]Probe
	order  []string
}

// NewHealthHandler creates a HealthHandler. Probes are checked in the order given.
func NewHealthHandler(names []string, probes map[string]Probe) *HealthHandler {
	return &HealthHandler{probes: probes, order: names}
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, "alive", map[string]string{"status": "ok"})
}

// Readiness returns 200 if every dependency answers.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := map[string]string{"status": "ready"}
	for _, name := range h.order {
		probe, ok := h.probes[name]
		if !ok {
			continue
		}
		if err := probe(ctx); err != nil {
			status["status"] = "unavailable"
			status[name] = err.Error()
			writeEnvelope(w, dto.Envelope{
				Code:      http.StatusServiceUnavailable,
				Message:   name + " unhealthy",
				ErrorCode: CodeServiceUnavailable,
				Data:      status,
			})
			return
		}
		status[name] = "ok"
	}

	writeJSON(w, http.StatusOK, "ready", status)
}
