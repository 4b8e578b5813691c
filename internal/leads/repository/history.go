package repository

import (
	"context"
	"time"

	"prmhub_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// StatusHistoryEntry is one immutable row of the lead status audit trail.
// OldStatus is nil only for the lead's very first entry (initial assignment).
type StatusHistoryEntry struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	OldStatus *domain.Status
	NewStatus domain.Status
	ChangedBy *uuid.UUID
	ChangedAt time.Time
}

type AppendStatusHistoryParams struct {
	LeadID    uuid.UUID
	OldStatus *domain.Status
	NewStatus domain.Status
	ChangedBy *uuid.UUID
	ChangedAt time.Time
}

const historySelectCols = `
	id, lead_id, old_status, new_status, changed_by, changed_at`

// AppendStatusHistory inserts a new ledger entry. Entries are append-only:
// no update or delete operation exists on this table. Status values are not
// validated here; that is the caller's responsibility.
func (r *Repository) AppendStatusHistory(ctx context.Context, params AppendStatusHistoryParams) (StatusHistoryEntry, error) {
	var oldStatus *string
	if params.OldStatus != nil {
		s := string(*params.OldStatus)
		oldStatus = &s
	}
	if params.ChangedAt.IsZero() {
		params.ChangedAt = time.Now().UTC()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO lead_status_history (lead_id, old_status, new_status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING`+historySelectCols+`
	`, params.LeadID, oldStatus, string(params.NewStatus), params.ChangedBy, params.ChangedAt)
	return scanHistoryEntry(row)
}

// ListStatusHistory returns every ledger entry for a lead in append order.
func (r *Repository) ListStatusHistory(ctx context.Context, leadID uuid.UUID) ([]StatusHistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+historySelectCols+`
		FROM lead_status_history
		WHERE lead_id = $1
		ORDER BY changed_at ASC, id ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]StatusHistoryEntry, 0)
	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, entry)
	}
	return items, rows.Err()
}

func scanHistoryEntry(s leadRowScanner) (StatusHistoryEntry, error) {
	var entry StatusHistoryEntry
	var oldStatus *string
	var newStatus string
	if err := s.Scan(
		&entry.ID,
		&entry.LeadID,
		&oldStatus,
		&newStatus,
		&entry.ChangedBy,
		&entry.ChangedAt,
	); err != nil {
		return StatusHistoryEntry{}, err
	}
	if oldStatus != nil {
		status := domain.Status(*oldStatus)
		entry.OldStatus = &status
	}
	entry.NewStatus = domain.Status(newStatus)
	return entry, nil
}
