package scheduler

import (
	"context"
	"fmt"
	"time"

	leadsrepo "prmhub_backend/internal/leads/repository"
	"prmhub_backend/internal/notification/outbox"
	"prmhub_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const stalledAfter = 7 * 24 * time.Hour

// StalledLeadSweep periodically finds leads still in New after the stall
// threshold and queues a reminder through the notification outbox. It only
// writes outbox rows; the stalled counter on partner performance is driven
// by status transitions, not by this sweep.
type StalledLeadSweep struct {
	leads    *leadsrepo.Repository
	outbox   *outbox.Repository
	log      *logger.Logger
	interval time.Duration
}

func NewStalledLeadSweep(pool *pgxpool.Pool, log *logger.Logger, interval time.Duration) *StalledLeadSweep {
	if interval <= 0 {
		interval = time.Hour
	}
	return &StalledLeadSweep{
		leads:    leadsrepo.New(pool),
		outbox:   outbox.New(pool),
		log:      log,
		interval: interval,
	}
}

func (s *StalledLeadSweep) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if err := s.sweep(ctx); err != nil {
			s.log.Warn("stalled lead sweep failed", "error", err)
		}
	}
}

func (s *StalledLeadSweep) sweep(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-stalledAfter)
	stalled, err := s.leads.ListStalledNew(ctx, cutoff, 500)
	if err != nil {
		return err
	}

	queued := 0
	for _, lead := range stalled {
		dedupe := fmt.Sprintf("%s:%s", outbox.KindLeadStalledReminder, lead.ID)
		id, err := s.outbox.Insert(ctx, outbox.InsertParams{
			OrganizationID: lead.OrganizationID,
			Kind:           outbox.KindLeadStalledReminder,
			Payload: map[string]string{
				"leadId":    lead.ID.String(),
				"firstName": lead.FirstName,
				"lastName":  lead.LastName,
			},
			DedupeKey: &dedupe,
		})
		if err != nil {
			s.log.Warn("stalled reminder insert failed", "leadId", lead.ID, "error", err)
			continue
		}
		if id != uuid.Nil {
			queued++
		}
	}

	if queued > 0 {
		s.log.Info("stalled lead sweep queued reminders", "count", queued)
	}
	return nil
}
