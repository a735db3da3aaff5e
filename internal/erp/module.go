package erp

import (
	apphttp "salesrep_sync/internal/http"
	"salesrep_sync/internal/salesrep"
	"salesrep_sync/internal/signer"
	"salesrep_sync/platform/config"
	"salesrep_sync/platform/logger"
	"salesrep_sync/platform/validator"
)

// ModuleConfig is the configuration the ERP module reads.
type ModuleConfig interface {
	config.ERPConfig
	config.SyncConfig
}

// Module is the ERP change-event module implementing http.Module.
type Module struct {
	handler    *Handler
	signer     *signer.Signer
	sigHeader  string
	requireSig bool
	log        *logger.Logger
}

// NewModule creates the ERP module. directory may be nil for the text source.
func NewModule(directory DirectorySource, updater Updater, sig *signer.Signer, cfg ModuleConfig, val *validator.Validator, log *logger.Logger) (*Module, error) {
	source, err := NewSource(cfg, directory, log)
	if err != nil {
		return nil, err
	}
	policy, err := salesrep.ParseStatusPolicy(cfg.GetStatusPolicy())
	if err != nil {
		return nil, err
	}

	return &Module{
		handler:    NewHandler(source, updater, policy, val),
		signer:     sig,
		sigHeader:  cfg.GetSignatureHeader(),
		requireSig: cfg.GetRequireSignature(),
		log:        log,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "erp"
}

// RegisterRoutes mounts the ERP hook route.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/erp")
	if m.requireSig {
		group.Use(salesrep.SignatureAuthMiddleware(m.signer, m.sigHeader, m.log))
	}
	group.POST("/customer-events", m.handler.HandleCustomerChange)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
