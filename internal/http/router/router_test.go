package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"salesrep_sync/internal/events"
	apphttp "salesrep_sync/internal/http"
	"salesrep_sync/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type routerConfig struct{}

func (routerConfig) GetHTTPAddr() string        { return ":0" }
func (routerConfig) GetCORSAllowAll() bool      { return false }
func (routerConfig) GetCORSOrigins() []string   { return []string{"https://admin.example.com"} }
func (routerConfig) GetRateLimitRPS() float64   { return 0 }
func (routerConfig) GetRateLimitBurst() int     { return 0 }
func (routerConfig) GetJWTAccessSecret() string { return "secret" }

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type echoModule struct{}

func (echoModule) Name() string { return "echo" }

func (echoModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/echo", func(c *gin.Context) { c.String(http.StatusOK, "echo") })
	if ctx.Admin != nil {
		ctx.Admin.GET("/echo", func(c *gin.Context) { c.String(http.StatusOK, "admin") })
	}
}

func newApp(health apphttp.HealthChecker) *apphttp.App {
	gin.SetMode(gin.TestMode)
	return &apphttp.App{
		Config:       routerConfig{},
		Logger:       logger.Discard(),
		Health:       health,
		AdminEnabled: true,
		Modules:      []apphttp.Module{echoModule{}},
	}
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestNew_Health(t *testing.T) {
	rec := get(New(newApp(pinger{})), "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(New(newApp(pinger{err: errors.New("redis down")})), "/api/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis down")
}

func TestNew_ModulesAndAdmin(t *testing.T) {
	engine := New(newApp(nil))

	rec := get(engine, "/api/v1/echo")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = get(engine, "/api/v1/admin/echo")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNew_Metrics(t *testing.T) {
	engine := New(newApp(nil))
	get(engine, "/api/v1/echo")

	rec := get(engine, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "http_requests_total"), "request counter exported")
}

func TestCORSConfig(t *testing.T) {
	conf := corsConfig(routerConfig{})
	assert.False(t, conf.AllowAllOrigins)
	assert.Equal(t, []string{"https://admin.example.com"}, conf.AllowOrigins)
}

type subscribingModule struct {
	echoModule
	subscribed bool
}

func (m *subscribingModule) RegisterHandlers(events.Bus) { m.subscribed = true }

func TestNew_RegistersSubscribers(t *testing.T) {
	app := newApp(nil)
	mod := &subscribingModule{}
	app.Modules = []apphttp.Module{mod}
	app.EventBus = events.NewInMemoryBus(nil)

	New(app)
	assert.True(t, mod.subscribed)
}
