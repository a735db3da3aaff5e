// Package events defines the domain events published by the sync service.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"salesrep_sync/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Sales Rep Domain Events
// =============================================================================

// SalesRepAssigned is published after a customer's rep metafield and tags
// were written.
type SalesRepAssigned struct {
	BaseEvent
	CustomerID    string   `json:"customerId"`
	CustomerEmail string   `json:"customerEmail"`
	Identifier    string   `json:"identifier"`
	RepID         string   `json:"repId"`
	RepHandle     string   `json:"repHandle"`
	Fallback      bool     `json:"fallback"`
	RemovedTags   []string `json:"removedTags"`
	AddedTags     []string `json:"addedTags"`
}

func (e SalesRepAssigned) EventName() string { return "salesrep.assigned" }

// SalesRepSyncFailed is published when an update stops before completing.
type SalesRepSyncFailed struct {
	BaseEvent
	CustomerEmail string `json:"customerEmail"`
	Identifier    string `json:"identifier"`
	FailedAt      string `json:"failedAt"`
	Kind          string `json:"kind"`
	Message       string `json:"message"`
}

func (e SalesRepSyncFailed) EventName() string { return "salesrep.sync_failed" }
