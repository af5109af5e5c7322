package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAuth(t *testing.T) {
	success := AuthAttemptsTotal.WithLabelValues("login", ResultSuccess)
	failure := AuthAttemptsTotal.WithLabelValues("login", ResultFailure)
	beforeSuccess := testutil.ToFloat64(success)
	beforeFailure := testutil.ToFloat64(failure)

	ObserveAuth("login", nil)
	ObserveAuth("login", errors.New("bad password"))
	ObserveAuth("login", errors.New("bad password"))

	assert.Equal(t, beforeSuccess+1, testutil.ToFloat64(success))
	assert.Equal(t, beforeFailure+2, testutil.ToFloat64(failure))
}

func TestHandlerExposesCollectors(t *testing.T) {
	MessagesTotal.WithLabelValues(MessageSent).Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "messenger_messages_total"))
}
