package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestObserveRecordsCountAndDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.Observe("GET", "/project/draft", "200", 120*time.Millisecond)
	m.Observe("GET", "/project/draft", "200", 80*time.Millisecond)
	m.Observe("PUT", "/project/associating-vehicles/{id}", "422", 10*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := map[string]*dto.MetricFamily{}
	for _, fam := range families {
		byName[fam.GetName()] = fam
	}

	counter := byName["http_requests_total"]
	require.NotNil(t, counter)
	require.Len(t, counter.GetMetric(), 2)

	histogram := byName["http_request_duration_seconds"]
	require.NotNil(t, histogram)

	var draftSamples uint64
	for _, metric := range histogram.GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetName() == "route" && label.GetValue() == "/project/draft" {
				draftSamples = metric.GetHistogram().GetSampleCount()
			}
		}
	}
	require.Equal(t, uint64(2), draftSamples)
}

func TestObserveOnNilMetricsIsSafe(t *testing.T) {
	var m *HTTPMetrics
	m.Observe("GET", "/", "200", time.Millisecond)

	empty := NewHTTPMetrics(nil)
	empty.Observe("GET", "/", "200", time.Millisecond)
}
