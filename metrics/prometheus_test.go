package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestPrometheusProvider_CounterAccumulates(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusProvider(reg)

	c := p.Counter("tasks_completed")
	c.Add(3)
	c.Add(2)

	got := counterValue(t, reg, "tasks_completed")
	require.Equal(t, 5.0, got)
}

func TestPrometheusProvider_CounterReusedForSameName(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusProvider(reg)

	p.Counter("x").Add(1)
	p.Counter("x").Add(1)

	require.Equal(t, 2.0, counterValue(t, reg, "x"))
}

func TestPrometheusProvider_HistogramRecordsObservations(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusProvider(reg)

	h := p.Histogram("exec_seconds")
	h.Record(0.1)
	h.Record(0.2)

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if f.GetName() == "exec_seconds" {
			found = true
			require.Equal(t, uint64(2), f.Metric[0].GetHistogram().GetSampleCount())
		}
	}
	require.True(t, found)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return sumCounters(f.Metric)
		}
	}
	t.Fatalf("metric %q not found", name)
	return 0
}

func sumCounters(metrics []*dto.Metric) float64 {
	var total float64
	for _, m := range metrics {
		total += m.GetCounter().GetValue()
	}
	return total
}
