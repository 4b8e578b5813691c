package repository

import (
	"context"
	"errors"
	"time"

	"prmhub_backend/internal/partners/scoring"
	"prmhub_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const performanceNotFoundMsg = "partner performance not found"

// ApplyDelta applies one scoring increment to the partner's performance row
// as a single upsert. Running the whole increment inside one statement keeps
// concurrent scoring updates for the same partner from losing counts; there
// is no read-modify-write window.
func (r *Repository) ApplyDelta(ctx context.Context, partnerID uuid.UUID, delta scoring.Delta) error {
	updatedAt := delta.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO partner_performance (
			partner_id, score, leads_assigned, leads_contacted, leads_qualified, leads_converted, leads_lost, leads_stalled, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (partner_id) DO UPDATE SET
			score           = partner_performance.score + EXCLUDED.score,
			leads_assigned  = partner_performance.leads_assigned + EXCLUDED.leads_assigned,
			leads_contacted = partner_performance.leads_contacted + EXCLUDED.leads_contacted,
			leads_qualified = partner_performance.leads_qualified + EXCLUDED.leads_qualified,
			leads_converted = partner_performance.leads_converted + EXCLUDED.leads_converted,
			leads_lost      = partner_performance.leads_lost + EXCLUDED.leads_lost,
			leads_stalled   = partner_performance.leads_stalled + EXCLUDED.leads_stalled,
			updated_at      = EXCLUDED.updated_at
	`, partnerID, delta.Points, delta.LeadsAssigned, delta.LeadsContacted, delta.LeadsQualified, delta.LeadsConverted, delta.LeadsLost, delta.LeadsStalled, updatedAt)
	return err
}

// GetPerformance returns the partner's performance record, or a NotFound
// error when no scoring event has ever landed for the partner.
func (r *Repository) GetPerformance(ctx context.Context, partnerID uuid.UUID) (scoring.Performance, error) {
	var perf scoring.Performance
	err := r.pool.QueryRow(ctx, `
		SELECT partner_id, score, leads_assigned, leads_contacted, leads_qualified, leads_converted, leads_lost, leads_stalled, updated_at
		FROM partner_performance
		WHERE partner_id = $1
	`, partnerID).Scan(
		&perf.PartnerID,
		&perf.Score,
		&perf.LeadsAssigned,
		&perf.LeadsContacted,
		&perf.LeadsQualified,
		&perf.LeadsConverted,
		&perf.LeadsLost,
		&perf.LeadsStalled,
		&perf.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return scoring.Performance{}, apperr.NotFound(performanceNotFoundMsg)
		}
		return scoring.Performance{}, err
	}
	return perf, nil
}

// Compile-time check that the repository satisfies the scoring engine's store.
var _ scoring.PerformanceStore = (*Repository)(nil)
