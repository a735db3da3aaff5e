package audit

import (
	"salesrep_sync/internal/events"
	apphttp "salesrep_sync/internal/http"
	"salesrep_sync/platform/logger"
)

// Module is the audit module implementing http.Module.
type Module struct {
	recorder *Recorder
	handler  *Handler
}

// NewModule creates the audit module over store.
func NewModule(store Store, log *logger.Logger) *Module {
	return &Module{
		recorder: NewRecorder(store, log),
		handler:  NewHandler(store),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "audit"
}

// RegisterHandlers subscribes the recorder to bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	m.recorder.RegisterHandlers(bus)
}

// RegisterRoutes mounts the admin listing.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	if ctx.Admin == nil {
		return
	}
	ctx.Admin.GET("/sales-rep-audit", m.handler.List)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
