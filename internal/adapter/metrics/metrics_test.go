package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/V4T54L/lead-intake/internal/domain"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("update: %w", domain.ErrNotFound), "not_found"},
		{domain.ErrInvalidStatus, "invalid"},
		{domain.ErrInvalidFilterArgs, "invalid"},
		{domain.NewStoreError("load", errors.New("eof")), "store_unavailable"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err))
	}
}

func TestLeadMetrics_ObserveOperation(t *testing.T) {
	m := NewLeadMetrics(prometheus.NewRegistry())

	m.ObserveOperation("create", time.Millisecond, nil)
	m.ObserveOperation("create", time.Millisecond, nil)
	m.ObserveOperation("update_status", time.Millisecond, domain.ErrNotFound)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("update_status", "not_found")))
}

func TestLeadMetrics_NilIsNoop(t *testing.T) {
	var m *LeadMetrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("create", time.Second, nil)
		m.RecordEvent("lead.created", "published")
		m.ObserveHTTP("GET", "/api/leads", "200", time.Second)
		m.RecordRateLimited()
	})
}
