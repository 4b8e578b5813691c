package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prmhub_backend/internal/leads/domain"
	"prmhub_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadNotFoundMsg = "lead not found"

// Repository provides database operations for leads.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	PartnerID      *uuid.UUID
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Source         *string
	Status         domain.Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ListParams struct {
	OrganizationID uuid.UUID
	PartnerID      *uuid.UUID
	Status         *domain.Status
	Page           int
	PageSize       int
}

type ListResult struct {
	Items      []Lead
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

const leadSelectCols = `
	id, organization_id, partner_id, first_name, last_name, email, phone, source, status, created_at, updated_at`

type leadRowScanner interface {
	Scan(dest ...any) error
}

func scanLead(s leadRowScanner) (Lead, error) {
	var lead Lead
	var status string
	if err := s.Scan(
		&lead.ID,
		&lead.OrganizationID,
		&lead.PartnerID,
		&lead.FirstName,
		&lead.LastName,
		&lead.Email,
		&lead.Phone,
		&lead.Source,
		&status,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		return Lead{}, err
	}
	lead.Status = domain.Status(status)
	return lead, nil
}

func (r *Repository) Create(ctx context.Context, lead Lead) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			id, organization_id, partner_id, first_name, last_name, email, phone, source, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING`+leadSelectCols+`
	`, lead.ID, lead.OrganizationID, lead.PartnerID, lead.FirstName, lead.LastName, lead.Email, lead.Phone, lead.Source, string(lead.Status), lead.CreatedAt, lead.UpdatedAt)
	return scanLead(row)
}

func (r *Repository) GetByID(ctx context.Context, id, organizationID uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+leadSelectCols+`
		FROM leads
		WHERE id = $1 AND organization_id = $2
	`, id, organizationID)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMsg)
		}
		return Lead{}, err
	}
	return lead, nil
}

// FindLeadCreatedAt fetches a lead's creation timestamp without tenant
// scoping. The scoring engine uses this: it is invoked from the lead
// lifecycle path which has already resolved the lead within its organization.
func (r *Repository) FindLeadCreatedAt(ctx context.Context, id uuid.UUID) (time.Time, error) {
	var createdAt time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT created_at FROM leads WHERE id = $1
	`, id).Scan(&createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, apperr.NotFound(leadNotFoundMsg)
		}
		return time.Time{}, err
	}
	return createdAt, nil
}

func (r *Repository) List(ctx context.Context, params ListParams) (ListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 25
	}

	where := "WHERE organization_id = $1"
	args := []any{params.OrganizationID}
	if params.PartnerID != nil {
		args = append(args, *params.PartnerID)
		where += fmt.Sprintf(" AND partner_id = $%d", len(args))
	}
	if params.Status != nil {
		args = append(args, string(*params.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads `+where, args...).Scan(&total); err != nil {
		return ListResult{}, err
	}

	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT`+leadSelectCols+`
		FROM leads
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return ListResult{}, err
	}
	defer rows.Close()

	items := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return ListResult{}, err
		}
		items = append(items, lead)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, err
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	return ListResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

// UpdateStatus sets the lead's status and returns the updated row.
func (r *Repository) UpdateStatus(ctx context.Context, id, organizationID uuid.UUID, status domain.Status) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads
		SET status = $3, updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING`+leadSelectCols+`
	`, id, organizationID, string(status))
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMsg)
		}
		return Lead{}, err
	}
	return lead, nil
}

// ListStalledNew returns leads still in New created before the cutoff.
// Used by the scheduler sweep to enqueue reminders; it never feeds the
// scoring counters.
func (r *Repository) ListStalledNew(ctx context.Context, cutoff time.Time, limit int) ([]Lead, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT`+leadSelectCols+`
		FROM leads
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at ASC
		LIMIT $3
	`, string(domain.StatusNew), cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, lead)
	}
	return items, rows.Err()
}
