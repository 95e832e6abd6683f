package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_RegistersAndCounts(t *testing.T) {
	manager, registry := NewTestManagerAndRegistry()
	require.NotNil(t, manager)

	manager.CounterPredictions.Inc()
	manager.CounterPredictions.Inc()
	manager.CounterLogbookEntries.Inc()
	manager.GaugeLifeSignal.Set(1)

	metricFamilies, err := registry.Gather()
	require.NoError(t, err)

	found := make(map[string]*dto.MetricFamily)
	for _, mf := range metricFamilies {
		found[mf.GetName()] = mf
	}

	predictions, ok := found["backend_test_server_predictions"]
	require.True(t, ok)
	require.Len(t, predictions.GetMetric(), 1)
	assert.Equal(t, float64(2), predictions.GetMetric()[0].GetCounter().GetValue())

	entries, ok := found["backend_test_server_logbook_entries"]
	require.True(t, ok)
	assert.Equal(t, float64(1), entries.GetMetric()[0].GetCounter().GetValue())

	lifeSignal, ok := found["backend_test_server_life_signal"]
	require.True(t, ok)
	assert.Equal(t, float64(1), lifeSignal.GetMetric()[0].GetGauge().GetValue())
}

func TestSetupPrometheus(t *testing.T) {
	registry := SetupPrometheus()
	require.NotNil(t, registry)

	metricFamilies, err := registry.Gather()
	require.NoError(t, err)
	// go runtime + process collectors registered
	assert.NotEmpty(t, metricFamilies)
}
