package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCascade_IgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(cascadeRefs.WithLabelValues("tag"))
	ObserveCascade("tag", 0)
	ObserveCascade("tag", 3)
	assert.Equal(t, before+3, testutil.ToFloat64(cascadeRefs.WithLabelValues("tag")))
}

func TestObserveHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/notes", "200"))
	ObserveHTTPRequest("GET", "/api/notes", "200", 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/notes", "200")))
}

func TestObserveLogin(t *testing.T) {
	before := testutil.ToFloat64(loginAttempts.WithLabelValues("unauthorized"))
	ObserveLogin("unauthorized")
	assert.Equal(t, before+1, testutil.ToFloat64(loginAttempts.WithLabelValues("unauthorized")))
}
