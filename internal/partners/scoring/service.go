package scoring

import (
	"context"
	"time"

	"prmhub_backend/internal/events"
	"prmhub_backend/internal/leads/domain"
	"prmhub_backend/platform/apperr"
	"prmhub_backend/platform/logger"

	"github.com/google/uuid"
)

// Performance is one partner's cumulative scoring record. Counters are
// monotonically non-decreasing; Score may go negative.
type Performance struct {
	PartnerID      uuid.UUID
	Score          int
	LeadsAssigned  int
	LeadsContacted int
	LeadsQualified int
	LeadsConverted int
	LeadsLost      int
	LeadsStalled   int
	UpdatedAt      time.Time
}

// Delta is the increment applied by a single scoring update. It is applied
// atomically in one statement so concurrent updates to the same partner
// cannot lose increments.
type Delta struct {
	Points         int
	LeadsAssigned  int
	LeadsContacted int
	LeadsQualified int
	LeadsConverted int
	LeadsLost      int
	LeadsStalled   int
	UpdatedAt      time.Time
}

// LeadReader supplies the lead fields the scoring policy needs.
type LeadReader interface {
	FindLeadCreatedAt(ctx context.Context, leadID uuid.UUID) (time.Time, error)
}

// PerformanceStore persists partner performance records.
type PerformanceStore interface {
	ApplyDelta(ctx context.Context, partnerID uuid.UUID, delta Delta) error
	GetPerformance(ctx context.Context, partnerID uuid.UUID) (Performance, error)
}

// Invalidator drops any cached percentage for a partner after an update.
type Invalidator interface {
	Invalidate(ctx context.Context, partnerID uuid.UUID)
}

// Service is the stateless scoring engine. It holds no per-partner state of
// its own; all state lives in the PerformanceStore.
type Service struct {
	leads LeadReader
	perf  PerformanceStore
	log   *logger.Logger
	cache Invalidator
	bus   events.Bus
	now   func() time.Time
}

// New creates the scoring engine over the given repositories.
func New(leads LeadReader, perf PerformanceStore, log *logger.Logger) *Service {
	return &Service{
		leads: leads,
		perf:  perf,
		log:   log,
		now:   time.Now,
	}
}

// SetCacheInvalidator wires an optional cache to invalidate on updates.
func (s *Service) SetCacheInvalidator(inv Invalidator) {
	s.cache = inv
}

// SetEventBus wires an optional bus for PartnerPerformanceUpdated events.
func (s *Service) SetEventBus(bus events.Bus) {
	s.bus = bus
}

// UpdatePartnerPerformance applies one lead status transition to the
// partner's performance record. A missing lead is a true no-op: no points,
// no counters, and no record creation. oldStatus is nil on the lead's first
// scored event, which is the one and only time leadsAssigned increments for
// that lead.
func (s *Service) UpdatePartnerPerformance(ctx context.Context, partnerID, leadID uuid.UUID, oldStatus *domain.Status, newStatus domain.Status) error {
	createdAt, err := s.leads.FindLeadCreatedAt(ctx, leadID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.log.Debug("scoring skipped, lead not found", "lead_id", leadID.String())
			return nil
		}
		return err
	}

	now := s.now()
	points := ScoreTransition(createdAt, oldStatus, newStatus, now)

	delta := Delta{Points: points, UpdatedAt: now}
	if oldStatus == nil {
		delta.LeadsAssigned = 1
	}
	switch newStatus {
	case domain.StatusContacted:
		delta.LeadsContacted = 1
	case domain.StatusQualified:
		delta.LeadsQualified = 1
	case domain.StatusConverted:
		delta.LeadsConverted = 1
	case domain.StatusLost:
		delta.LeadsLost = 1
	}
	if oldStatus != nil && *oldStatus == domain.StatusNew && daysSince(createdAt, now) > stallThresholdDays {
		delta.LeadsStalled = 1
	}

	if err := s.perf.ApplyDelta(ctx, partnerID, delta); err != nil {
		return err
	}
	s.log.ScoringEvent(partnerID.String(), leadID.String(), points)

	if s.cache != nil {
		s.cache.Invalidate(ctx, partnerID)
	}
	if s.bus != nil {
		s.bus.Publish(ctx, events.PartnerPerformanceUpdated{
			BaseEvent: events.NewBaseEvent(),
			PartnerID: partnerID,
			LeadID:    leadID,
			Points:    points,
		})
	}
	return nil
}

// CalculatePerformanceScore returns the partner's normalized 0-100
// percentage. A partner with no performance record or no assigned leads
// scores 0.
func (s *Service) CalculatePerformanceScore(ctx context.Context, partnerID uuid.UUID) (int, error) {
	perf, err := s.perf.GetPerformance(ctx, partnerID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if perf.LeadsAssigned == 0 {
		return 0, nil
	}

	avg := float64(perf.Score) / float64(perf.LeadsAssigned)
	return normalizeScore(avg), nil
}

// GetPerformance exposes the raw counters for the partner detail view.
func (s *Service) GetPerformance(ctx context.Context, partnerID uuid.UUID) (Performance, error) {
	return s.perf.GetPerformance(ctx, partnerID)
}
