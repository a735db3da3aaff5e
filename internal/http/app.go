// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"salesrep_sync/internal/events"
	"salesrep_sync/platform/config"
	"salesrep_sync/platform/logger"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	Config RouterConfig
	Logger *logger.Logger
	// Health backs /api/health (database and Redis pings). Optional.
	Health HealthChecker
	// EventBus receives the subscriptions of modules implementing Subscriber.
	EventBus events.Bus
	// AdminEnabled mounts the JWT-protected admin group.
	AdminEnabled bool
	Modules      []Module
}
