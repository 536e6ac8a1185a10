package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOperations(t *testing.T) {
	before := testutil.ToFloat64(NotaryOperationsTotal.WithLabelValues("notarizeComponent", ResultOK))
	RecordNotaryOperation("notarizeComponent", nil)
	after := testutil.ToFloat64(NotaryOperationsTotal.WithLabelValues("notarizeComponent", ResultOK))
	assert.Equal(t, before+1, after)

	before = testutil.ToFloat64(SSMOperationsTotal.WithLabelValues("signBytes", ResultError))
	RecordSSMOperation("signBytes", errors.New("boom"))
	after = testutil.ToFloat64(SSMOperationsTotal.WithLabelValues("signBytes", ResultError))
	assert.Equal(t, before+1, after)
}

func TestMetricsHandler(t *testing.T) {
	RecordNotaryOperation("generateKey", nil)

	server := httptest.NewServer(Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthHandler(t *testing.T) {
	RegisterComponent("notary", true, "")

	recorder := httptest.NewRecorder()
	HealthHandler()(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	RegisterComponent("ssm", false, "configuration missing")
	recorder = httptest.NewRecorder()
	HealthHandler()(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)

	// Recovery flips it back.
	RegisterComponent("ssm", true, "")
	recorder = httptest.NewRecorder()
	HealthHandler()(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
}
