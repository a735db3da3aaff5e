package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ExposesSyncCounters(t *testing.T) {
	Register()
	Register()
	SyncOutcomes.WithLabelValues("assigned", "assigned", "").Inc()
	StorefrontCalls.WithLabelValues("CustomerByEmail", "ok").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "sales_rep_sync_total")
	assert.Contains(t, body, "storefront_calls_total")
	assert.Contains(t, body, "go_goroutines")
}
