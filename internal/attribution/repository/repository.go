// Package repository provides read access to the three independent event
// stores the attribution engine computes over.
package repository

import (
	"context"
	"fmt"
	"time"

	"salesops_backend/internal/attribution/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides database operations for the attribution event sources.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new attribution repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListDials retrieves dial rows for an account within a date range.
func (r *Repository) ListDials(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]domain.RawDial, error) {
	query := `SELECT id, contact_id, setter_id, rep_id, COALESCE(correlation_key, ''), occurred_at
		FROM dials
		WHERE account_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
		ORDER BY occurred_at ASC`

	rows, err := r.pool.Query(ctx, query, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list dials: %w", err)
	}
	defer rows.Close()

	var items []domain.RawDial
	for rows.Next() {
		var row domain.RawDial
		if err := rows.Scan(
			&row.ID, &row.ContactID, &row.SetterID, &row.RepID,
			&row.CorrelationKey, &row.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan dial: %w", err)
		}
		items = append(items, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dials: %w", err)
	}

	return items, nil
}

// ListDiscoveries retrieves discovery-call rows for an account within a date range.
func (r *Repository) ListDiscoveries(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]domain.RawDiscovery, error) {
	query := `SELECT id, contact_id, setter_id, COALESCE(correlation_key, ''), occurred_at
		FROM discoveries
		WHERE account_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
		ORDER BY occurred_at ASC`

	rows, err := r.pool.Query(ctx, query, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list discoveries: %w", err)
	}
	defer rows.Close()

	var items []domain.RawDiscovery
	for rows.Next() {
		var row domain.RawDiscovery
		if err := rows.Scan(
			&row.ID, &row.ContactID, &row.SetterID,
			&row.CorrelationKey, &row.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan discovery: %w", err)
		}
		items = append(items, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate discoveries: %w", err)
	}

	return items, nil
}

// ListAppointments retrieves appointment rows, with outcome fields, for an
// account within a date range.
func (r *Repository) ListAppointments(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]domain.RawAppointment, error) {
	query := `SELECT id, contact_id, setter_id, rep_id, COALESCE(correlation_key, ''), occurred_at,
		revenue_cents, cash_collected_cents, showed, closed, closed_at
		FROM appointments
		WHERE account_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
		ORDER BY occurred_at ASC`

	rows, err := r.pool.Query(ctx, query, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	var items []domain.RawAppointment
	for rows.Next() {
		var row domain.RawAppointment
		if err := rows.Scan(
			&row.ID, &row.ContactID, &row.SetterID, &row.RepID,
			&row.CorrelationKey, &row.Timestamp,
			&row.RevenueCents, &row.CashCollectedCents,
			&row.Showed, &row.Closed, &row.CloseTimestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		items = append(items, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate appointments: %w", err)
	}

	return items, nil
}

// ListAccountIDs returns every account with any recorded activity, used by
// the snapshot scheduler to enumerate its work.
func (r *Repository) ListAccountIDs(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT account_id FROM dials
		UNION SELECT DISTINCT account_id FROM discoveries
		UNION SELECT DISTINCT account_id FROM appointments`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list account ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan account id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account ids: %w", err)
	}

	return ids, nil
}
