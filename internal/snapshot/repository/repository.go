// Package repository persists daily per-account metrics snapshots so the
// dashboard can chart trends without recomputing full history.
package repository

import (
	"context"
	"fmt"
	"time"

	"salesops_backend/internal/attribution/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides database operations for metrics snapshots.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new snapshot repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertSetterSnapshots writes one day's setter metrics for an account.
// Re-running the snapshot for the same day overwrites the previous rows.
func (r *Repository) UpsertSetterSnapshots(ctx context.Context, accountID uuid.UUID, day time.Time, metrics []domain.SetterMetrics) error {
	if len(metrics) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `INSERT INTO metrics_snapshots (
			account_id, snapshot_date, setter_id, unique_contacts, dials, discoveries_set,
			appointments_booked, appointments_showed, appointments_closed, attributed_revenue_cents
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (account_id, snapshot_date, setter_id) DO UPDATE SET
			unique_contacts = EXCLUDED.unique_contacts,
			dials = EXCLUDED.dials,
			discoveries_set = EXCLUDED.discoveries_set,
			appointments_booked = EXCLUDED.appointments_booked,
			appointments_showed = EXCLUDED.appointments_showed,
			appointments_closed = EXCLUDED.appointments_closed,
			attributed_revenue_cents = EXCLUDED.attributed_revenue_cents`

	for _, m := range metrics {
		batch.Queue(query,
			accountID, day, m.SetterID, m.UniqueContacts, m.Dials, m.DiscoveriesSet,
			m.AppointmentsBooked, m.AppointmentsShowed, m.AppointmentsClosed, m.AttributedRevenueCents,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range metrics {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert metrics snapshot: %w", err)
		}
	}

	return nil
}
