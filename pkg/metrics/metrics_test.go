package metrics

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewWithRegistry("appointments", prometheus.NewRegistry())

	m.ObserveHTTPRequest("GET", "/api/v1/services", 200, 15*time.Millisecond)
	m.ObserveHTTPRequest("GET", "/api/v1/services", 200, 5*time.Millisecond)
	m.IncVerdict("free")
	m.IncBookingConflict("occupied")
	m.IncEventPublished("booking.created", errors.New("broker down"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("appointments", "GET", "/api/v1/services", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AvailabilityVerdicts.WithLabelValues("appointments", "free")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingConflicts.WithLabelValues("appointments", "occupied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("appointments", "booking.created", "error")))
}

func TestMetrics_PoolStats(t *testing.T) {
	m := NewWithRegistry("appointments", prometheus.NewRegistry())

	m.SetDBPoolStats(sql.DBStats{OpenConnections: 7, InUse: 3, Idle: 4, WaitCount: 2})

	assert.Equal(t, 7.0, testutil.ToFloat64(m.DBOpenConnections.WithLabelValues("appointments")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.DBInUseConnections.WithLabelValues("appointments")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.DBIdleConnections.WithLabelValues("appointments")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DBWaitCount.WithLabelValues("appointments")))
}
