package scoring

import (
	"context"
	"testing"
	"time"

	"prmhub_backend/internal/leads/domain"
	"prmhub_backend/platform/apperr"
	"prmhub_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeLeadReader struct {
	createdAt map[uuid.UUID]time.Time
}

func (f *fakeLeadReader) FindLeadCreatedAt(_ context.Context, leadID uuid.UUID) (time.Time, error) {
	createdAt, ok := f.createdAt[leadID]
	if !ok {
		return time.Time{}, apperr.NotFound("lead not found")
	}
	return createdAt, nil
}

type fakePerformanceStore struct {
	records map[uuid.UUID]Performance
	applied int
}

func (f *fakePerformanceStore) ApplyDelta(_ context.Context, partnerID uuid.UUID, delta Delta) error {
	f.applied++
	perf := f.records[partnerID]
	perf.PartnerID = partnerID
	perf.Score += delta.Points
	perf.LeadsAssigned += delta.LeadsAssigned
	perf.LeadsContacted += delta.LeadsContacted
	perf.LeadsQualified += delta.LeadsQualified
	perf.LeadsConverted += delta.LeadsConverted
	perf.LeadsLost += delta.LeadsLost
	perf.LeadsStalled += delta.LeadsStalled
	perf.UpdatedAt = delta.UpdatedAt
	f.records[partnerID] = perf
	return nil
}

func (f *fakePerformanceStore) GetPerformance(_ context.Context, partnerID uuid.UUID) (Performance, error) {
	perf, ok := f.records[partnerID]
	if !ok {
		return Performance{}, apperr.NotFound("partner performance not found")
	}
	return perf, nil
}

func newTestEngine(t *testing.T) (*Service, *fakeLeadReader, *fakePerformanceStore) {
	t.Helper()
	leads := &fakeLeadReader{createdAt: map[uuid.UUID]time.Time{}}
	perf := &fakePerformanceStore{records: map[uuid.UUID]Performance{}}
	svc := New(leads, perf, logger.New("development"))
	svc.now = func() time.Time { return scoringNow }
	return svc, leads, perf
}

func TestUpdatePartnerPerformance_InitialAssignment(t *testing.T) {
	svc, leads, perf := newTestEngine(t)
	partnerID := uuid.New()
	leadID := uuid.New()
	leads.createdAt[leadID] = scoringNow

	if err := svc.UpdatePartnerPerformance(context.Background(), partnerID, leadID, nil, domain.StatusNew); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := perf.records[partnerID]
	if got.LeadsAssigned != 1 {
		t.Fatalf("expected leadsAssigned 1, got %d", got.LeadsAssigned)
	}
	if got.Score != 0 {
		t.Fatalf("expected score 0, got %d", got.Score)
	}
	if !got.UpdatedAt.Equal(scoringNow) {
		t.Fatalf("expected updatedAt %v, got %v", scoringNow, got.UpdatedAt)
	}
}

func TestUpdatePartnerPerformance_LeadsAssignedIncrementsOnce(t *testing.T) {
	svc, leads, perf := newTestEngine(t)
	partnerID := uuid.New()
	leadID := uuid.New()
	leads.createdAt[leadID] = scoringNow.Add(-24 * time.Hour)

	if err := svc.UpdatePartnerPerformance(context.Background(), partnerID, leadID, nil, domain.StatusNew); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	transitions := []struct {
		old domain.Status
		new domain.Status
	}{
		{domain.StatusNew, domain.StatusContacted},
		{domain.StatusContacted, domain.StatusQualified},
		{domain.StatusQualified, domain.StatusConverted},
	}
	for _, tr := range transitions {
		old := tr.old
		if err := svc.UpdatePartnerPerformance(context.Background(), partnerID, leadID, &old, tr.new); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got := perf.records[partnerID]
	if got.LeadsAssigned != 1 {
		t.Fatalf("expected leadsAssigned to stay 1, got %d", got.LeadsAssigned)
	}
	if got.LeadsContacted != 1 || got.LeadsQualified != 1 || got.LeadsConverted != 1 {
		t.Fatalf("expected each status counter at 1, got %+v", got)
	}
	// +2 per step up the ladder, three steps
	if got.Score != 6 {
		t.Fatalf("expected cumulative score 6, got %d", got.Score)
	}
}

func TestUpdatePartnerPerformance_StallCountsEvent(t *testing.T) {
	svc, leads, perf := newTestEngine(t)
	partnerID := uuid.New()
	leadID := uuid.New()
	leads.createdAt[leadID] = scoringNow.Add(-10 * 24 * time.Hour)

	old := domain.StatusNew
	if err := svc.UpdatePartnerPerformance(context.Background(), partnerID, leadID, &old, domain.StatusLost); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := perf.records[partnerID]
	if got.LeadsStalled != 1 {
		t.Fatalf("expected leadsStalled 1, got %d", got.LeadsStalled)
	}
	if got.LeadsLost != 1 {
		t.Fatalf("expected leadsLost 1, got %d", got.LeadsLost)
	}
	if got.Score != -8 {
		t.Fatalf("expected score -8, got %d", got.Score)
	}
}

func TestUpdatePartnerPerformance_MissingLeadIsNoOp(t *testing.T) {
	svc, _, perf := newTestEngine(t)
	partnerID := uuid.New()

	if err := svc.UpdatePartnerPerformance(context.Background(), partnerID, uuid.New(), nil, domain.StatusNew); err != nil {
		t.Fatalf("expected silent no-op, got error: %v", err)
	}
	if perf.applied != 0 {
		t.Fatalf("expected no store write, got %d", perf.applied)
	}
	if _, ok := perf.records[partnerID]; ok {
		t.Fatal("expected no performance record to be created")
	}
}

func TestCalculatePerformanceScore_NoRecord(t *testing.T) {
	svc, _, _ := newTestEngine(t)

	got, err := svc.CalculatePerformanceScore(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected 0 for unknown partner, got %d", got)
	}
}

func TestCalculatePerformanceScore_ZeroLeadsAssigned(t *testing.T) {
	svc, _, perf := newTestEngine(t)
	partnerID := uuid.New()
	perf.records[partnerID] = Performance{PartnerID: partnerID, Score: 40}

	got, err := svc.CalculatePerformanceScore(context.Background(), partnerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected 0 with no assigned leads, got %d", got)
	}
}

func TestCalculatePerformanceScore_MidpointCalibration(t *testing.T) {
	svc, _, perf := newTestEngine(t)
	partnerID := uuid.New()
	perf.records[partnerID] = Performance{PartnerID: partnerID, Score: 300, LeadsAssigned: 100}

	got, err := svc.CalculatePerformanceScore(context.Background(), partnerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 50 {
		t.Fatalf("expected 50 at avg 3, got %d", got)
	}
}

func TestCalculatePerformanceScore_MonotonicInScore(t *testing.T) {
	svc, _, perf := newTestEngine(t)
	partnerID := uuid.New()

	prev := -1
	for score := -100; score <= 200; score += 10 {
		perf.records[partnerID] = Performance{PartnerID: partnerID, Score: score, LeadsAssigned: 10}
		got, err := svc.CalculatePerformanceScore(context.Background(), partnerID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got < prev {
			t.Fatalf("percentage decreased at score %d: %d < %d", score, got, prev)
		}
		if got < 0 || got > 100 {
			t.Fatalf("percentage out of range at score %d: %d", score, got)
		}
		prev = got
	}
}

func TestCalculatePerformanceScore_NegativeAverage(t *testing.T) {
	svc, _, perf := newTestEngine(t)
	partnerID := uuid.New()
	perf.records[partnerID] = Performance{PartnerID: partnerID, Score: -80, LeadsAssigned: 10}

	got, err := svc.CalculatePerformanceScore(context.Background(), partnerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// avg -8 is far below the midpoint; the curve saturates near 0
	if got != 1 {
		t.Fatalf("expected 1 at avg -8, got %d", got)
	}
}
