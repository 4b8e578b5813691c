package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prmhub_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const partnerNotFoundMsg = "partner not found"

// Repository provides database operations for partners.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new partners repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Partner struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	CompanyName    string
	ContactName    string
	ContactEmail   string
	ContactPhone   string
	Notes          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type PartnerUpdate struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	CompanyName    *string
	ContactName    *string
	ContactEmail   *string
	ContactPhone   *string
	Notes          *string
}

type ListParams struct {
	OrganizationID uuid.UUID
	Search         string
	Page           int
	PageSize       int
}

type ListResult struct {
	Items      []Partner
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

const partnerSelectCols = `
	id, organization_id, company_name, contact_name, contact_email, contact_phone, notes, created_at, updated_at`

type partnerRowScanner interface {
	Scan(dest ...any) error
}

func scanPartner(s partnerRowScanner) (Partner, error) {
	var p Partner
	if err := s.Scan(
		&p.ID,
		&p.OrganizationID,
		&p.CompanyName,
		&p.ContactName,
		&p.ContactEmail,
		&p.ContactPhone,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return Partner{}, err
	}
	return p, nil
}

func (r *Repository) Create(ctx context.Context, partner Partner) (Partner, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO partners (id, organization_id, company_name, contact_name, contact_email, contact_phone, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING`+partnerSelectCols+`
	`, partner.ID, partner.OrganizationID, partner.CompanyName, partner.ContactName, partner.ContactEmail, partner.ContactPhone, partner.Notes, partner.CreatedAt, partner.UpdatedAt)
	return scanPartner(row)
}

func (r *Repository) GetByID(ctx context.Context, id, organizationID uuid.UUID) (Partner, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+partnerSelectCols+`
		FROM partners
		WHERE id = $1 AND organization_id = $2
	`, id, organizationID)
	partner, err := scanPartner(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Partner{}, apperr.NotFound(partnerNotFoundMsg)
		}
		return Partner{}, err
	}
	return partner, nil
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
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where += fmt.Sprintf(" AND (company_name ILIKE $%d OR contact_name ILIKE $%d)", len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM partners `+where, args...).Scan(&total); err != nil {
		return ListResult{}, err
	}

	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT`+partnerSelectCols+`
		FROM partners
		%s
		ORDER BY company_name ASC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return ListResult{}, err
	}
	defer rows.Close()

	items := make([]Partner, 0)
	for rows.Next() {
		partner, err := scanPartner(rows)
		if err != nil {
			return ListResult{}, err
		}
		items = append(items, partner)
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

func (r *Repository) Update(ctx context.Context, update PartnerUpdate) (Partner, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE partners SET
			company_name  = COALESCE($3, company_name),
			contact_name  = COALESCE($4, contact_name),
			contact_email = COALESCE($5, contact_email),
			contact_phone = COALESCE($6, contact_phone),
			notes         = COALESCE($7, notes),
			updated_at    = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING`+partnerSelectCols+`
	`, update.ID, update.OrganizationID, update.CompanyName, update.ContactName, update.ContactEmail, update.ContactPhone, update.Notes)
	partner, err := scanPartner(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Partner{}, apperr.NotFound(partnerNotFoundMsg)
		}
		return Partner{}, err
	}
	return partner, nil
}

func (r *Repository) Delete(ctx context.Context, id, organizationID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM partners WHERE id = $1 AND organization_id = $2
	`, id, organizationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(partnerNotFoundMsg)
	}
	return nil
}
