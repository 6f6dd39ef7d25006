package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.Observe("checkIn", 200, 15*time.Millisecond)
	r.Observe("checkIn", 200, 5*time.Millisecond)
	r.Observe("checkIn", 400, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.requests.WithLabelValues("checkIn", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues("checkIn", "400")))

	count, err := testutil.GatherAndCount(reg, "motel_api_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() { r.Observe("bootstrap", 200, time.Second) })
}
