// Package notification turns domain events into user-facing notifications.
// Delivery targets beyond structured logs (email, chat) plug in here.
package notification

import (
	"context"
	"encoding/json"

	"prmhub_backend/internal/events"
	"prmhub_backend/internal/notification/outbox"
	"prmhub_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module subscribes to domain events and delivers notifications.
type Module struct {
	outbox *outbox.Repository
	log    *logger.Logger
}

// New creates the notification module.
func New(pool *pgxpool.Pool, log *logger.Logger) *Module {
	return &Module{outbox: outbox.New(pool), log: log}
}

// RegisterHandlers subscribes the module to the events it delivers.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.NotificationOutboxDue{}.EventName(), events.HandlerFunc(m.handleOutboxDue))
	bus.Subscribe(events.PartnerPerformanceUpdated{}.EventName(), events.HandlerFunc(m.handlePerformanceUpdated))
}

func (m *Module) handleOutboxDue(ctx context.Context, event events.Event) error {
	due, ok := event.(events.NotificationOutboxDue)
	if !ok {
		return nil
	}

	rec, err := m.outbox.GetByID(ctx, due.OutboxID)
	if err != nil {
		return err
	}

	switch rec.Kind {
	case outbox.KindLeadStalledReminder:
		var payload struct {
			LeadID    string `json:"leadId"`
			FirstName string `json:"firstName"`
			LastName  string `json:"lastName"`
		}
		if err := json.Unmarshal(rec.Payload, &payload); err != nil {
			return err
		}
		m.log.Info("stalled lead reminder",
			"organizationId", rec.OrganizationID,
			"leadId", payload.LeadID,
			"name", payload.FirstName+" "+payload.LastName,
		)
	default:
		m.log.Warn("unknown outbox kind", "kind", rec.Kind, "outboxId", rec.ID)
	}
	return nil
}

func (m *Module) handlePerformanceUpdated(_ context.Context, event events.Event) error {
	updated, ok := event.(events.PartnerPerformanceUpdated)
	if !ok {
		return nil
	}
	m.log.Info("partner performance updated",
		"partnerId", updated.PartnerID,
		"leadId", updated.LeadID,
		"points", updated.Points,
	)
	return nil
}
