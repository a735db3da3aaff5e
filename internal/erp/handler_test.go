package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "salesrep_sync/internal/http"
	"salesrep_sync/internal/salesrep"
	"salesrep_sync/platform/apperr"
	"salesrep_sync/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpdater struct {
	calls []salesrep.Assignment
	err   error
}

func (f *fakeUpdater) UpdateSalesRep(_ context.Context, customerEmail, repIdentifier string) (*salesrep.UpdateResult, error) {
	f.calls = append(f.calls, salesrep.Assignment{CustomerEmail: customerEmail, SalesRep: repIdentifier})
	if f.err != nil {
		return &salesrep.UpdateResult{State: salesrep.StateFailed, FailedAt: salesrep.StateCustomerLookup}, f.err
	}
	return &salesrep.UpdateResult{State: salesrep.StateSucceeded}, nil
}

func newERPEngine(t *testing.T, cfg erpConfig, dir DirectorySource, updater Updater) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	module, err := NewModule(dir, updater, testSigner(), cfg, validator.New(), nil)
	require.NoError(t, err)

	engine := gin.New()
	module.RegisterRoutes(&apphttp.RouterContext{Engine: engine, V1: engine.Group("/api/v1")})
	return engine
}

func postEvent(engine *gin.Engine, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/erp/customer-events", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var env map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestHandleCustomerChange_DirectoryForwardsEmail(t *testing.T) {
	updater := &fakeUpdater{}
	engine := newERPEngine(t, erpConfig{source: "directory"}, testDirectory(), updater)

	rec, env := postEvent(engine, `{"customerEmail":"a@b.com","oldValue":"101","newValue":"102"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 200, env["statusCode"])
	require.Len(t, updater.calls, 1)
	assert.Equal(t, salesrep.Assignment{CustomerEmail: "a@b.com", SalesRep: "nick@example.com"}, updater.calls[0])
}

func TestHandleCustomerChange_SkipDoesNotUpdate(t *testing.T) {
	updater := &fakeUpdater{}
	engine := newERPEngine(t, erpConfig{source: "text"}, nil, updater)

	rec, env := postEvent(engine, `{"customerEmail":"a@b.com","oldValue":"Jane Doe","newValue":"Jane Doe"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"skipped": true}, env["body"])
	assert.Empty(t, updater.calls)
}

func TestHandleCustomerChange_FailureUsesStatusPolicy(t *testing.T) {
	updater := &fakeUpdater{err: apperr.NotFound("customer not found")}
	engine := newERPEngine(t, erpConfig{source: "text"}, nil, updater)

	rec, env := postEvent(engine, `{"customerEmail":"a@b.com","oldValue":"Jane","newValue":"Nick"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := env["body"].(map[string]any)
	assert.Equal(t, "customer not found", body["error"])
	assert.Equal(t, string(salesrep.StateCustomerLookup), body["failedAt"])
}

func TestHandleCustomerChange_InvalidEmail(t *testing.T) {
	updater := &fakeUpdater{}
	engine := newERPEngine(t, erpConfig{source: "text"}, nil, updater)

	// restlet policy reports validation failures inside a 200 envelope
	rec, env := postEvent(engine, `{"customerEmail":"not-an-email","newValue":"Nick"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 200, env["statusCode"])
	assert.Empty(t, updater.calls)
}

func TestNewModule_DirectoryWithoutDatabase(t *testing.T) {
	_, err := NewModule(nil, &fakeUpdater{}, testSigner(), erpConfig{source: "directory"}, validator.New(), nil)
	assert.True(t, apperr.Is(err, apperr.KindConfiguration))
}
