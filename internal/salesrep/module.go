package salesrep

import (
	"salesrep_sync/internal/events"
	apphttp "salesrep_sync/internal/http"
	"salesrep_sync/internal/signer"
	"salesrep_sync/platform/config"
	"salesrep_sync/platform/logger"
	"salesrep_sync/platform/validator"
)

// ModuleConfig is the configuration the sales rep module reads.
type ModuleConfig interface {
	config.SyncConfig
	config.SigningConfig
}

// Module is the sales rep bounded context module implementing http.Module.
type Module struct {
	service    *Service
	handler    *Handler
	signer     *signer.Signer
	sigHeader  string
	requireSig bool
	log        *logger.Logger
}

// NewModule creates and initializes the sales rep module with all its
// dependencies. bus may be nil.
func NewModule(gateway Gateway, sig *signer.Signer, cfg ModuleConfig, val *validator.Validator, bus events.Bus, log *logger.Logger) (*Module, error) {
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	opts.Bus = bus
	policy, err := ParseStatusPolicy(cfg.GetStatusPolicy())
	if err != nil {
		return nil, err
	}

	service := NewService(gateway, opts, log)
	return &Module{
		service:    service,
		handler:    NewHandler(service, policy, val),
		signer:     sig,
		sigHeader:  cfg.GetSignatureHeader(),
		requireSig: cfg.GetRequireSignature(),
		log:        log,
	}, nil
}

// Service returns the update service for the async worker.
func (m *Module) Service() *Service {
	return m.service
}

// SetEnqueuer enables the async update route.
func (m *Module) SetEnqueuer(enqueuer Enqueuer) {
	m.handler.enqueuer = enqueuer
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "salesrep"
}

// RegisterRoutes mounts sales rep routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// ERP notifications (optional HMAC auth, no JWT)
	group := ctx.V1.Group("/sales-rep")
	if m.requireSig {
		group.Use(SignatureAuthMiddleware(m.signer, m.sigHeader, m.log))
	}
	group.POST("", m.handler.HandleUpdate)
	if m.handler.enqueuer != nil {
		group.POST("/async", m.handler.HandleEnqueue)
	}

	if ctx.Admin == nil {
		return
	}
	admin := ctx.Admin.Group("/sales-reps")
	admin.GET("", m.handler.HandleListReps)
	admin.POST("/resolve", m.handler.HandleResolve)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
