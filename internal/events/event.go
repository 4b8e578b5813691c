// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"prmhub_backend/platform/events"
	"prmhub_backend/platform/logger"

	"github.com/google/uuid"
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
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is created.
type LeadCreated struct {
	BaseEvent
	LeadID         uuid.UUID  `json:"leadId"`
	OrganizationID uuid.UUID  `json:"organizationId"`
	PartnerID      *uuid.UUID `json:"partnerId,omitempty"`
	Status         string     `json:"status"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStatusChanged is published when a lead's status changes.
type LeadStatusChanged struct {
	BaseEvent
	LeadID         uuid.UUID  `json:"leadId"`
	OrganizationID uuid.UUID  `json:"organizationId"`
	PartnerID      *uuid.UUID `json:"partnerId,omitempty"`
	OldStatus      *string    `json:"oldStatus,omitempty"`
	NewStatus      string     `json:"newStatus"`
	ChangedBy      *uuid.UUID `json:"changedBy,omitempty"`
}

func (e LeadStatusChanged) EventName() string { return "leads.status.changed" }

// =============================================================================
// Partners Domain Events
// =============================================================================

// PartnerPerformanceUpdated is published after a scoring update lands on a
// partner's performance record.
type PartnerPerformanceUpdated struct {
	BaseEvent
	PartnerID uuid.UUID `json:"partnerId"`
	LeadID    uuid.UUID `json:"leadId"`
	Points    int       `json:"points"`
}

func (e PartnerPerformanceUpdated) EventName() string { return "partners.performance.updated" }

// =============================================================================
// Notification Domain Events
// =============================================================================

// NotificationOutboxDue is published when an outbox record is due for dispatch.
type NotificationOutboxDue struct {
	BaseEvent
	OutboxID       uuid.UUID `json:"outboxId"`
	OrganizationID uuid.UUID `json:"organizationId"`
}

func (e NotificationOutboxDue) EventName() string { return "notification.outbox.due" }
