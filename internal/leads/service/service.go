package service

import (
	"context"
	"time"

	"prmhub_backend/internal/events"
	"prmhub_backend/internal/leads/domain"
	"prmhub_backend/internal/leads/repository"
	"prmhub_backend/internal/leads/transport"
	"prmhub_backend/platform/apperr"
	"prmhub_backend/platform/logger"
	"prmhub_backend/platform/phone"

	"github.com/google/uuid"
)

// LeadStore is the repository surface for the lead lifecycle, including the
// append-only status history ledger.
type LeadStore interface {
	Create(ctx context.Context, lead repository.Lead) (repository.Lead, error)
	GetByID(ctx context.Context, id, organizationID uuid.UUID) (repository.Lead, error)
	List(ctx context.Context, params repository.ListParams) (repository.ListResult, error)
	UpdateStatus(ctx context.Context, id, organizationID uuid.UUID, status domain.Status) (repository.Lead, error)
	AppendStatusHistory(ctx context.Context, params repository.AppendStatusHistoryParams) (repository.StatusHistoryEntry, error)
	ListStatusHistory(ctx context.Context, leadID uuid.UUID) ([]repository.StatusHistoryEntry, error)
}

// PerformanceScorer is the partner scoring engine as seen from the lead
// lifecycle.
type PerformanceScorer interface {
	UpdatePartnerPerformance(ctx context.Context, partnerID, leadID uuid.UUID, oldStatus *domain.Status, newStatus domain.Status) error
}

// Service drives the lead lifecycle: every created lead and every status
// change lands one ledger entry, and leads with an assigned partner feed the
// scoring engine.
type Service struct {
	repo   LeadStore
	scorer PerformanceScorer
	bus    events.Bus
	log    *logger.Logger
}

// New creates a new leads service.
func New(repo LeadStore, scorer PerformanceScorer, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, scorer: scorer, bus: bus, log: log}
}

func (s *Service) Create(ctx context.Context, orgID, actorID uuid.UUID, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	status := domain.StatusNew
	if req.Status != nil {
		status = domain.Status(*req.Status)
		if !status.IsValid() {
			return transport.LeadResponse{}, apperr.Validation("unknown lead status")
		}
	}

	now := time.Now()
	lead, err := s.repo.Create(ctx, repository.Lead{
		ID:             uuid.New(),
		OrganizationID: orgID,
		PartnerID:      req.PartnerID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          phone.NormalizeE164(req.Phone),
		Source:         req.Source,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}

	// Ledger first, scoring second. The two writes are independent: a
	// ledger failure must not prevent the scoring update, and vice versa.
	appendErr := s.appendHistory(ctx, lead.ID, nil, status, &actorID, now)

	if lead.PartnerID != nil {
		if err := s.scorer.UpdatePartnerPerformance(ctx, *lead.PartnerID, lead.ID, nil, status); err != nil {
			return transport.LeadResponse{}, err
		}
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         lead.ID,
		OrganizationID: orgID,
		PartnerID:      lead.PartnerID,
		Status:         string(status),
	})

	if appendErr != nil {
		return transport.LeadResponse{}, appendErr
	}
	return mapLead(lead), nil
}

func (s *Service) GetByID(ctx context.Context, orgID, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id, orgID)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return mapLead(lead), nil
}

func (s *Service) List(ctx context.Context, orgID uuid.UUID, req transport.ListLeadsRequest) (transport.ListLeadsResponse, error) {
	params := repository.ListParams{
		OrganizationID: orgID,
		PartnerID:      req.PartnerID,
		Page:           req.Page,
		PageSize:       req.PageSize,
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		params.Status = &status
	}

	result, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.ListLeadsResponse{}, err
	}

	items := make([]transport.LeadResponse, 0, len(result.Items))
	for _, lead := range result.Items {
		items = append(items, mapLead(lead))
	}
	return transport.ListLeadsResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// ChangeStatus moves a lead through the funnel: update the row, append the
// ledger entry, feed the scoring engine when a partner is assigned.
func (s *Service) ChangeStatus(ctx context.Context, orgID, leadID, actorID uuid.UUID, req transport.ChangeStatusRequest) (transport.LeadResponse, error) {
	newStatus := domain.Status(req.Status)
	if !newStatus.IsValid() {
		return transport.LeadResponse{}, apperr.Validation("unknown lead status")
	}

	lead, err := s.repo.GetByID(ctx, leadID, orgID)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if lead.Status == newStatus {
		return transport.LeadResponse{}, apperr.Conflict("lead already has this status")
	}
	oldStatus := lead.Status

	updated, err := s.repo.UpdateStatus(ctx, leadID, orgID, newStatus)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	now := time.Now()
	appendErr := s.appendHistory(ctx, leadID, &oldStatus, newStatus, &actorID, now)

	if updated.PartnerID != nil {
		if err := s.scorer.UpdatePartnerPerformance(ctx, *updated.PartnerID, leadID, &oldStatus, newStatus); err != nil {
			return transport.LeadResponse{}, err
		}
	}

	oldStr := string(oldStatus)
	s.bus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         leadID,
		OrganizationID: orgID,
		PartnerID:      updated.PartnerID,
		OldStatus:      &oldStr,
		NewStatus:      string(newStatus),
		ChangedBy:      &actorID,
	})

	if appendErr != nil {
		return transport.LeadResponse{}, appendErr
	}
	return mapLead(updated), nil
}

// History returns the lead's full status audit trail in append order.
func (s *Service) History(ctx context.Context, orgID, leadID uuid.UUID) ([]transport.StatusHistoryEntryResponse, error) {
	if _, err := s.repo.GetByID(ctx, leadID, orgID); err != nil {
		return nil, err
	}

	entries, err := s.repo.ListStatusHistory(ctx, leadID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.StatusHistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		item := transport.StatusHistoryEntryResponse{
			ID:        entry.ID,
			LeadID:    entry.LeadID,
			NewStatus: string(entry.NewStatus),
			ChangedBy: entry.ChangedBy,
			ChangedAt: entry.ChangedAt,
		}
		if entry.OldStatus != nil {
			old := string(*entry.OldStatus)
			item.OldStatus = &old
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *Service) appendHistory(ctx context.Context, leadID uuid.UUID, oldStatus *domain.Status, newStatus domain.Status, changedBy *uuid.UUID, changedAt time.Time) error {
	_, err := s.repo.AppendStatusHistory(ctx, repository.AppendStatusHistoryParams{
		LeadID:    leadID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		ChangedBy: changedBy,
		ChangedAt: changedAt,
	})
	if err != nil {
		s.log.DatabaseError("append lead status history", err)
	}
	return err
}

func mapLead(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:        lead.ID,
		PartnerID: lead.PartnerID,
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Source:    lead.Source,
		Status:    string(lead.Status),
		CreatedAt: lead.CreatedAt,
		UpdatedAt: lead.UpdatedAt,
	}
}
