package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)

	if m.Settlements == nil || m.LedgerEntries == nil || m.HTTPRequests == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.Settlements.WithLabelValues(OutcomeSettled).Inc()
	m.LedgerEntries.WithLabelValues("credit", "pending").Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}

	if got := testutil.ToFloat64(m.Settlements.WithLabelValues(OutcomeSettled)); got != 1 {
		t.Fatalf("expected settled counter 1, got %v", got)
	}
}

func TestNewOnSeparateRegistries(t *testing.T) {
	// Each registry gets its own collectors, so building twice must not panic.
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
