package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistration(t *testing.T) {
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, EntityOperations)
	assert.NotNil(t, RateLimitRejections)
	assert.NotNil(t, DBPoolOpenConnections)
	assert.NotNil(t, DBPoolWaitCount)
}

func TestEntityOperations_Increment(t *testing.T) {
	counter := EntityOperations.WithLabelValues("caseDefinition", "create", "success")
	before := testutil.ToFloat64(counter)
	counter.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
