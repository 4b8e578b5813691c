package service

import (
	"context"
	"errors"
	"testing"

	"prmhub_backend/internal/events"
	"prmhub_backend/internal/leads/domain"
	"prmhub_backend/internal/leads/repository"
	"prmhub_backend/internal/leads/transport"
	"prmhub_backend/platform/apperr"
	"prmhub_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeLeadStore struct {
	leads     map[uuid.UUID]repository.Lead
	history   []repository.StatusHistoryEntry
	appendErr error
}

func newFakeLeadStore() *fakeLeadStore {
	return &fakeLeadStore{leads: make(map[uuid.UUID]repository.Lead)}
}

func (f *fakeLeadStore) Create(_ context.Context, lead repository.Lead) (repository.Lead, error) {
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeLeadStore) GetByID(_ context.Context, id, organizationID uuid.UUID) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok || lead.OrganizationID != organizationID {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, nil
}

func (f *fakeLeadStore) List(_ context.Context, params repository.ListParams) (repository.ListResult, error) {
	var items []repository.Lead
	for _, lead := range f.leads {
		if lead.OrganizationID != params.OrganizationID {
			continue
		}
		if params.Status != nil && lead.Status != *params.Status {
			continue
		}
		items = append(items, lead)
	}
	return repository.ListResult{Items: items, Total: len(items), Page: 1, PageSize: 25, TotalPages: 1}, nil
}

func (f *fakeLeadStore) UpdateStatus(_ context.Context, id, organizationID uuid.UUID, status domain.Status) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok || lead.OrganizationID != organizationID {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	lead.Status = status
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeLeadStore) AppendStatusHistory(_ context.Context, params repository.AppendStatusHistoryParams) (repository.StatusHistoryEntry, error) {
	if f.appendErr != nil {
		return repository.StatusHistoryEntry{}, f.appendErr
	}
	entry := repository.StatusHistoryEntry{
		ID:        uuid.New(),
		LeadID:    params.LeadID,
		OldStatus: params.OldStatus,
		NewStatus: params.NewStatus,
		ChangedBy: params.ChangedBy,
		ChangedAt: params.ChangedAt,
	}
	f.history = append(f.history, entry)
	return entry, nil
}

func (f *fakeLeadStore) ListStatusHistory(_ context.Context, leadID uuid.UUID) ([]repository.StatusHistoryEntry, error) {
	var out []repository.StatusHistoryEntry
	for _, entry := range f.history {
		if entry.LeadID == leadID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type scoringCall struct {
	partnerID uuid.UUID
	leadID    uuid.UUID
	oldStatus *domain.Status
	newStatus domain.Status
}

type fakeScorer struct {
	calls []scoringCall
}

func (f *fakeScorer) UpdatePartnerPerformance(_ context.Context, partnerID, leadID uuid.UUID, oldStatus *domain.Status, newStatus domain.Status) error {
	f.calls = append(f.calls, scoringCall{partnerID: partnerID, leadID: leadID, oldStatus: oldStatus, newStatus: newStatus})
	return nil
}

func newTestService(store *fakeLeadStore, scorer *fakeScorer) *Service {
	log := logger.New("test")
	return New(store, scorer, events.NewInMemoryBus(log), log)
}

func TestCreateAppendsLedgerEntryWithNilOldStatus(t *testing.T) {
	store := newFakeLeadStore()
	scorer := &fakeScorer{}
	svc := newTestService(store, scorer)
	orgID, actorID := uuid.New(), uuid.New()

	lead, err := svc.Create(context.Background(), orgID, actorID, transport.CreateLeadRequest{
		FirstName: "Eva",
		LastName:  "Jansen",
		Email:     "eva@example.com",
		Phone:     "+31612345678",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if lead.Status != string(domain.StatusNew) {
		t.Fatalf("Status = %q, want %q", lead.Status, domain.StatusNew)
	}

	if len(store.history) != 1 {
		t.Fatalf("history entries = %d, want 1", len(store.history))
	}
	entry := store.history[0]
	if entry.OldStatus != nil {
		t.Fatalf("OldStatus = %v, want nil", *entry.OldStatus)
	}
	if entry.NewStatus != domain.StatusNew {
		t.Fatalf("NewStatus = %q, want %q", entry.NewStatus, domain.StatusNew)
	}
	if entry.ChangedBy == nil || *entry.ChangedBy != actorID {
		t.Fatalf("ChangedBy = %v, want %s", entry.ChangedBy, actorID)
	}
}

func TestCreateWithoutPartnerSkipsScoring(t *testing.T) {
	store := newFakeLeadStore()
	scorer := &fakeScorer{}
	svc := newTestService(store, scorer)

	_, err := svc.Create(context.Background(), uuid.New(), uuid.New(), transport.CreateLeadRequest{
		FirstName: "Eva",
		LastName:  "Jansen",
		Email:     "eva@example.com",
		Phone:     "+31612345678",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(scorer.calls) != 0 {
		t.Fatalf("scoring calls = %d, want 0", len(scorer.calls))
	}
}

func TestCreateWithPartnerTriggersInitialScoring(t *testing.T) {
	store := newFakeLeadStore()
	scorer := &fakeScorer{}
	svc := newTestService(store, scorer)
	partnerID := uuid.New()
	status := string(domain.StatusQualified)

	lead, err := svc.Create(context.Background(), uuid.New(), uuid.New(), transport.CreateLeadRequest{
		FirstName: "Eva",
		LastName:  "Jansen",
		Email:     "eva@example.com",
		Phone:     "+31612345678",
		PartnerID: &partnerID,
		Status:    &status,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if len(scorer.calls) != 1 {
		t.Fatalf("scoring calls = %d, want 1", len(scorer.calls))
	}
	call := scorer.calls[0]
	if call.partnerID != partnerID {
		t.Fatalf("partnerID = %s, want %s", call.partnerID, partnerID)
	}
	if call.leadID != lead.ID {
		t.Fatalf("leadID = %s, want %s", call.leadID, lead.ID)
	}
	if call.oldStatus != nil {
		t.Fatalf("oldStatus = %v, want nil", *call.oldStatus)
	}
	if call.newStatus != domain.StatusQualified {
		t.Fatalf("newStatus = %q, want %q", call.newStatus, domain.StatusQualified)
	}
}

func TestChangeStatusRecordsTransition(t *testing.T) {
	store := newFakeLeadStore()
	scorer := &fakeScorer{}
	svc := newTestService(store, scorer)
	orgID, actorID, partnerID := uuid.New(), uuid.New(), uuid.New()

	lead, err := svc.Create(context.Background(), orgID, actorID, transport.CreateLeadRequest{
		FirstName: "Eva",
		LastName:  "Jansen",
		Email:     "eva@example.com",
		Phone:     "+31612345678",
		PartnerID: &partnerID,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := svc.ChangeStatus(context.Background(), orgID, lead.ID, actorID, transport.ChangeStatusRequest{
		Status: string(domain.StatusContacted),
	})
	if err != nil {
		t.Fatalf("ChangeStatus() error = %v", err)
	}
	if updated.Status != string(domain.StatusContacted) {
		t.Fatalf("Status = %q, want %q", updated.Status, domain.StatusContacted)
	}

	if len(store.history) != 2 {
		t.Fatalf("history entries = %d, want 2", len(store.history))
	}
	entry := store.history[1]
	if entry.OldStatus == nil || *entry.OldStatus != domain.StatusNew {
		t.Fatalf("OldStatus = %v, want %q", entry.OldStatus, domain.StatusNew)
	}
	if entry.NewStatus != domain.StatusContacted {
		t.Fatalf("NewStatus = %q, want %q", entry.NewStatus, domain.StatusContacted)
	}

	if len(scorer.calls) != 2 {
		t.Fatalf("scoring calls = %d, want 2", len(scorer.calls))
	}
	call := scorer.calls[1]
	if call.oldStatus == nil || *call.oldStatus != domain.StatusNew {
		t.Fatalf("scoring oldStatus = %v, want %q", call.oldStatus, domain.StatusNew)
	}
}

func TestChangeStatusRejectsUnchangedStatus(t *testing.T) {
	store := newFakeLeadStore()
	scorer := &fakeScorer{}
	svc := newTestService(store, scorer)
	orgID, actorID := uuid.New(), uuid.New()

	lead, err := svc.Create(context.Background(), orgID, actorID, transport.CreateLeadRequest{
		FirstName: "Eva",
		LastName:  "Jansen",
		Email:     "eva@example.com",
		Phone:     "+31612345678",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.ChangeStatus(context.Background(), orgID, lead.ID, actorID, transport.ChangeStatusRequest{
		Status: string(domain.StatusNew),
	})
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("error kind = %v, want conflict", apperr.GetKind(err))
	}
	if len(store.history) != 1 {
		t.Fatalf("history entries = %d, want 1", len(store.history))
	}
}

func TestChangeStatusRejectsUnknownStatus(t *testing.T) {
	store := newFakeLeadStore()
	svc := newTestService(store, &fakeScorer{})

	_, err := svc.ChangeStatus(context.Background(), uuid.New(), uuid.New(), uuid.New(), transport.ChangeStatusRequest{
		Status: "Frozen",
	})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("error kind = %v, want validation", apperr.GetKind(err))
	}
}

func TestChangeStatusScoresEvenWhenLedgerAppendFails(t *testing.T) {
	store := newFakeLeadStore()
	scorer := &fakeScorer{}
	svc := newTestService(store, scorer)
	orgID, actorID, partnerID := uuid.New(), uuid.New(), uuid.New()

	lead, err := svc.Create(context.Background(), orgID, actorID, transport.CreateLeadRequest{
		FirstName: "Eva",
		LastName:  "Jansen",
		Email:     "eva@example.com",
		Phone:     "+31612345678",
		PartnerID: &partnerID,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	store.appendErr = errors.New("ledger unavailable")
	_, err = svc.ChangeStatus(context.Background(), orgID, lead.ID, actorID, transport.ChangeStatusRequest{
		Status: string(domain.StatusLost),
	})
	if err == nil {
		t.Fatal("ChangeStatus() error = nil, want ledger error surfaced")
	}

	// The status write and scoring update both landed despite the append failure.
	if store.leads[lead.ID].Status != domain.StatusLost {
		t.Fatalf("stored status = %q, want %q", store.leads[lead.ID].Status, domain.StatusLost)
	}
	if len(scorer.calls) != 2 {
		t.Fatalf("scoring calls = %d, want 2", len(scorer.calls))
	}
}

func TestHistoryReturnsEntriesInAppendOrder(t *testing.T) {
	store := newFakeLeadStore()
	svc := newTestService(store, &fakeScorer{})
	orgID, actorID := uuid.New(), uuid.New()

	lead, err := svc.Create(context.Background(), orgID, actorID, transport.CreateLeadRequest{
		FirstName: "Eva",
		LastName:  "Jansen",
		Email:     "eva@example.com",
		Phone:     "+31612345678",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for _, status := range []domain.Status{domain.StatusContacted, domain.StatusQualified, domain.StatusConverted} {
		if _, err := svc.ChangeStatus(context.Background(), orgID, lead.ID, actorID, transport.ChangeStatusRequest{Status: string(status)}); err != nil {
			t.Fatalf("ChangeStatus(%s) error = %v", status, err)
		}
	}

	history, err := svc.History(context.Background(), orgID, lead.ID)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("history entries = %d, want 4", len(history))
	}
	if history[0].OldStatus != nil {
		t.Fatalf("first entry OldStatus = %v, want nil", *history[0].OldStatus)
	}
	want := []string{"New", "Contacted", "Qualified", "Converted"}
	for i, entry := range history {
		if entry.NewStatus != want[i] {
			t.Fatalf("entry %d NewStatus = %q, want %q", i, entry.NewStatus, want[i])
		}
	}
}

func TestHistoryScopedToOrganization(t *testing.T) {
	store := newFakeLeadStore()
	svc := newTestService(store, &fakeScorer{})
	orgID, actorID := uuid.New(), uuid.New()

	lead, err := svc.Create(context.Background(), orgID, actorID, transport.CreateLeadRequest{
		FirstName: "Eva",
		LastName:  "Jansen",
		Email:     "eva@example.com",
		Phone:     "+31612345678",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.History(context.Background(), uuid.New(), lead.ID)
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("error kind = %v, want not found", apperr.GetKind(err))
	}
}
