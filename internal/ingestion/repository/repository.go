// Package repository provides data access for conversion ingestion: contact
// resolution, conversion inserts, and the atomic dial claim.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salesops_backend/internal/attribution/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides database operations for the ingestion path.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new ingestion repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Contact is a stored customer identity.
type Contact struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Email     string
	PhoneE164 string
	CreatedAt time.Time
}

// FindContactByEmail looks up a contact by exact (case-insensitive) email.
// Returns nil when no contact matches.
func (r *Repository) FindContactByEmail(ctx context.Context, accountID uuid.UUID, email string) (*Contact, error) {
	var contact Contact
	query := `SELECT id, account_id, COALESCE(email, ''), COALESCE(phone_e164, ''), created_at
		FROM contacts WHERE account_id = $1 AND lower(email) = lower($2)
		ORDER BY created_at ASC LIMIT 1`

	err := r.pool.QueryRow(ctx, query, accountID, email).Scan(
		&contact.ID, &contact.AccountID, &contact.Email, &contact.PhoneE164, &contact.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find contact by email: %w", err)
	}

	return &contact, nil
}

// FindContactByPhone looks up a contact by E.164 phone number.
// Returns nil when no contact matches.
func (r *Repository) FindContactByPhone(ctx context.Context, accountID uuid.UUID, phoneE164 string) (*Contact, error) {
	var contact Contact
	query := `SELECT id, account_id, COALESCE(email, ''), COALESCE(phone_e164, ''), created_at
		FROM contacts WHERE account_id = $1 AND phone_e164 = $2
		ORDER BY created_at ASC LIMIT 1`

	err := r.pool.QueryRow(ctx, query, accountID, phoneE164).Scan(
		&contact.ID, &contact.AccountID, &contact.Email, &contact.PhoneE164, &contact.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find contact by phone: %w", err)
	}

	return &contact, nil
}

// CreateContact inserts a new contact.
func (r *Repository) CreateContact(ctx context.Context, contact *Contact) error {
	query := `INSERT INTO contacts (id, account_id, email, phone_e164, created_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)`

	_, err := r.pool.Exec(ctx, query,
		contact.ID, contact.AccountID, contact.Email, contact.PhoneE164, contact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	return nil
}

// ListUnclaimedDials returns the contact's dials that no conversion has
// claimed yet, with timestamps at or after since, as canonical dial events.
func (r *Repository) ListUnclaimedDials(ctx context.Context, accountID, contactID uuid.UUID, since time.Time) ([]domain.Event, error) {
	query := `SELECT id, contact_id, setter_id, rep_id, COALESCE(correlation_key, ''), occurred_at
		FROM dials
		WHERE account_id = $1 AND contact_id = $2 AND claimed_by IS NULL AND occurred_at >= $3
		ORDER BY occurred_at DESC`

	rows, err := r.pool.Query(ctx, query, accountID, contactID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list unclaimed dials: %w", err)
	}
	defer rows.Close()

	var items []domain.Event
	for rows.Next() {
		ev := domain.Event{Kind: domain.KindDial}
		if err := rows.Scan(
			&ev.ID, &ev.ContactID, &ev.SetterID, &ev.RepID,
			&ev.CorrelationKey, &ev.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan dial: %w", err)
		}
		items = append(items, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dials: %w", err)
	}

	return items, nil
}

// ClaimDial records the conversion on the dial, only if the dial is still
// unclaimed. The affected-row count makes the check-then-act atomic: a lost
// race returns false, never an error. A dial moves unclaimed -> claimed
// exactly once.
func (r *Repository) ClaimDial(ctx context.Context, dialID, conversionID uuid.UUID) (bool, error) {
	query := `UPDATE dials SET claimed_by = $2, claimed_at = $3
		WHERE id = $1 AND claimed_by IS NULL`

	result, err := r.pool.Exec(ctx, query, dialID, conversionID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to claim dial: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// SetConversionSetter copies a setter identity onto a conversion record that
// arrived without one.
func (r *Repository) SetConversionSetter(ctx context.Context, kind domain.EventKind, conversionID, setterID uuid.UUID) error {
	table, err := conversionTable(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET setter_id = $2 WHERE id = $1 AND setter_id IS NULL`, table)
	if _, err := r.pool.Exec(ctx, query, conversionID, setterID); err != nil {
		return fmt.Errorf("failed to set conversion setter: %w", err)
	}

	return nil
}

// InsertDiscovery persists a webhook-delivered discovery call.
func (r *Repository) InsertDiscovery(ctx context.Context, row domain.RawDiscovery, accountID uuid.UUID) error {
	query := `INSERT INTO discoveries (id, account_id, contact_id, setter_id, correlation_key, occurred_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)`

	_, err := r.pool.Exec(ctx, query,
		row.ID, accountID, row.ContactID, row.SetterID, row.CorrelationKey, row.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert discovery: %w", err)
	}

	return nil
}

// InsertAppointment persists a webhook-delivered appointment with its
// outcome fields.
func (r *Repository) InsertAppointment(ctx context.Context, row domain.RawAppointment, accountID uuid.UUID) error {
	query := `INSERT INTO appointments (id, account_id, contact_id, setter_id, rep_id, correlation_key,
			occurred_at, revenue_cents, cash_collected_cents, showed, closed, closed_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		row.ID, accountID, row.ContactID, row.SetterID, row.RepID, row.CorrelationKey,
		row.Timestamp, row.RevenueCents, row.CashCollectedCents, row.Showed, row.Closed, row.CloseTimestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert appointment: %w", err)
	}

	return nil
}

func conversionTable(kind domain.EventKind) (string, error) {
	switch kind {
	case domain.KindDiscovery:
		return "discoveries", nil
	case domain.KindAppointment:
		return "appointments", nil
	default:
		return "", fmt.Errorf("kind %q is not a conversion", kind)
	}
}
