package catalogmetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersAllCollectorsOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Opens.WithLabelValues("array").Inc()
	m.Closes.WithLabelValues("array").Inc()
	m.EntriesLive.Inc()
	m.FirstOpenFailures.WithLabelValues("metadata").Inc()
	m.FilelockWait.WithLabelValues("shared").Observe(0.01)
	m.ConsolidateDur.WithLabelValues("array").Observe(1.5)
	m.ConsolidateErrors.WithLabelValues("array").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

func TestNoopIsSafeToUseWithoutAProcessWideRegistry(t *testing.T) {
	m := Noop()
	require.NotPanics(t, func() {
		m.Opens.WithLabelValues("array").Inc()
		m.EntriesLive.Dec()
	})
}
