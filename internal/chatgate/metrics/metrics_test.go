package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()

	c.RecordAdmission()
	c.RecordAdmission()
	c.RecordDenial("user")
	c.RecordDenial("user")
	c.RecordDenial("global")
	c.RecordExchange()
	c.RecordAuthFailure()
	c.RecordRegistration()

	require.Equal(t, float64(2), testutil.ToFloat64(c.admissions))
	require.Equal(t, float64(2), testutil.ToFloat64(c.denials.WithLabelValues("user")))
	require.Equal(t, float64(1), testutil.ToFloat64(c.denials.WithLabelValues("global")))
	require.Equal(t, float64(1), testutil.ToFloat64(c.exchanges))
	require.Equal(t, float64(1), testutil.ToFloat64(c.authFailures))
	require.Equal(t, float64(1), testutil.ToFloat64(c.registrations))
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector

	require.NotPanics(t, func() {
		c.RecordAdmission()
		c.RecordDenial("user")
		c.RecordExchange()
		c.RecordAuthFailure()
		c.RecordRegistration()
	})
}

func TestHandlerExposesCounters(t *testing.T) {
	c := NewCollector()
	c.RecordAdmission()
	c.RecordDenial("global")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "chatgate_admissions_total 1")
	require.Contains(t, body, `chatgate_denials_total{scope="global"} 1`)
}
