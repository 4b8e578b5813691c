package service

import (
	"context"
	"strings"
	"time"

	"prmhub_backend/internal/partners/repository"
	"prmhub_backend/internal/partners/scoring"
	"prmhub_backend/internal/partners/transport"
	"prmhub_backend/platform/apperr"
	"prmhub_backend/platform/phone"

	"github.com/google/uuid"
)

// PercentageCache is the read-through cache for computed percentages.
// Implemented by perfcache.Cache; nil-able for deployments without Redis.
type PercentageCache interface {
	Get(ctx context.Context, partnerID uuid.UUID) (int, bool)
	Set(ctx context.Context, partnerID uuid.UUID, pct int)
}

// PartnerStore is the repository surface the service needs.
type PartnerStore interface {
	Create(ctx context.Context, partner repository.Partner) (repository.Partner, error)
	GetByID(ctx context.Context, id, organizationID uuid.UUID) (repository.Partner, error)
	List(ctx context.Context, params repository.ListParams) (repository.ListResult, error)
	Update(ctx context.Context, update repository.PartnerUpdate) (repository.Partner, error)
	Delete(ctx context.Context, id, organizationID uuid.UUID) error
}

// Service provides business logic for partners.
type Service struct {
	repo   PartnerStore
	engine *scoring.Service
	cache  PercentageCache
}

// New creates a new partners service.
func New(repo PartnerStore, engine *scoring.Service) *Service {
	return &Service{repo: repo, engine: engine}
}

// SetPercentageCache wires the optional read-through cache.
func (s *Service) SetPercentageCache(cache PercentageCache) {
	s.cache = cache
}

// Engine exposes the scoring engine to the leads lifecycle.
func (s *Service) Engine() *scoring.Service {
	return s.engine
}

func (s *Service) Create(ctx context.Context, orgID uuid.UUID, req transport.CreatePartnerRequest) (transport.PartnerResponse, error) {
	partner := repository.Partner{
		ID:             uuid.New(),
		OrganizationID: orgID,
		CompanyName:    strings.TrimSpace(req.CompanyName),
		ContactName:    strings.TrimSpace(req.ContactName),
		ContactEmail:   normalizeEmail(req.ContactEmail),
		ContactPhone:   phone.NormalizeE164(req.ContactPhone),
		Notes:          req.Notes,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	created, err := s.repo.Create(ctx, partner)
	if err != nil {
		return transport.PartnerResponse{}, err
	}

	// New partner, no scoring events yet: percentage is 0 by definition.
	return mapPartnerResponse(created, 0), nil
}

func (s *Service) GetByID(ctx context.Context, orgID, id uuid.UUID) (transport.PartnerResponse, error) {
	partner, err := s.repo.GetByID(ctx, id, orgID)
	if err != nil {
		return transport.PartnerResponse{}, err
	}
	pct, err := s.PerformanceScore(ctx, partner.ID)
	if err != nil {
		return transport.PartnerResponse{}, err
	}
	return mapPartnerResponse(partner, pct), nil
}

func (s *Service) List(ctx context.Context, orgID uuid.UUID, req transport.ListPartnersRequest) (transport.ListPartnersResponse, error) {
	result, err := s.repo.List(ctx, repository.ListParams{
		OrganizationID: orgID,
		Search:         strings.TrimSpace(req.Search),
		Page:           req.Page,
		PageSize:       req.PageSize,
	})
	if err != nil {
		return transport.ListPartnersResponse{}, err
	}

	items := make([]transport.PartnerResponse, 0, len(result.Items))
	for _, partner := range result.Items {
		pct, err := s.PerformanceScore(ctx, partner.ID)
		if err != nil {
			return transport.ListPartnersResponse{}, err
		}
		items = append(items, mapPartnerResponse(partner, pct))
	}

	return transport.ListPartnersResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

func (s *Service) Update(ctx context.Context, orgID, id uuid.UUID, req transport.UpdatePartnerRequest) (transport.PartnerResponse, error) {
	update := repository.PartnerUpdate{
		ID:             id,
		OrganizationID: orgID,
		CompanyName:    trimOptional(req.CompanyName),
		ContactName:    trimOptional(req.ContactName),
		ContactEmail:   normalizeOptional(req.ContactEmail, normalizeEmail),
		ContactPhone:   normalizeOptional(req.ContactPhone, phone.NormalizeE164),
		Notes:          req.Notes,
	}

	partner, err := s.repo.Update(ctx, update)
	if err != nil {
		return transport.PartnerResponse{}, err
	}
	pct, err := s.PerformanceScore(ctx, partner.ID)
	if err != nil {
		return transport.PartnerResponse{}, err
	}
	return mapPartnerResponse(partner, pct), nil
}

func (s *Service) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return s.repo.Delete(ctx, id, orgID)
}

// PerformanceScore returns the partner's percentage, reading through the
// cache when configured.
func (s *Service) PerformanceScore(ctx context.Context, partnerID uuid.UUID) (int, error) {
	if s.cache != nil {
		if pct, ok := s.cache.Get(ctx, partnerID); ok {
			return pct, nil
		}
	}

	pct, err := s.engine.CalculatePerformanceScore(ctx, partnerID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, partnerID, pct)
	}
	return pct, nil
}

// PerformanceDetail returns the raw counters plus the computed percentage.
// A partner that exists but has never been scored gets a zeroed record.
func (s *Service) PerformanceDetail(ctx context.Context, orgID, partnerID uuid.UUID) (transport.PerformanceResponse, error) {
	if _, err := s.repo.GetByID(ctx, partnerID, orgID); err != nil {
		return transport.PerformanceResponse{}, err
	}

	perf, err := s.engine.GetPerformance(ctx, partnerID)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return transport.PerformanceResponse{}, err
	}
	pct, err := s.PerformanceScore(ctx, partnerID)
	if err != nil {
		return transport.PerformanceResponse{}, err
	}

	return transport.PerformanceResponse{
		PartnerID:        partnerID,
		Score:            perf.Score,
		LeadsAssigned:    perf.LeadsAssigned,
		LeadsContacted:   perf.LeadsContacted,
		LeadsQualified:   perf.LeadsQualified,
		LeadsConverted:   perf.LeadsConverted,
		LeadsLost:        perf.LeadsLost,
		LeadsStalled:     perf.LeadsStalled,
		PerformanceScore: pct,
		UpdatedAt:        perf.UpdatedAt,
	}, nil
}

func mapPartnerResponse(p repository.Partner, pct int) transport.PartnerResponse {
	return transport.PartnerResponse{
		ID:               p.ID,
		CompanyName:      p.CompanyName,
		ContactName:      p.ContactName,
		ContactEmail:     p.ContactEmail,
		ContactPhone:     p.ContactPhone,
		Notes:            p.Notes,
		PerformanceScore: pct,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimOptional(value *string) *string {
	return normalizeOptional(value, strings.TrimSpace)
}

func normalizeOptional(value *string, fn func(string) string) *string {
	if value == nil {
		return nil
	}
	normalized := fn(*value)
	return &normalized
}
