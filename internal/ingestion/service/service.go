// Package service implements conversion ingestion: persisting
// webhook-delivered discoveries and appointments, and the real-time claim
// linker that ties a new conversion back to the dial that produced it.
package service

import (
	"context"
	"strings"
	"time"

	"salesops_backend/internal/attribution/domain"
	"salesops_backend/internal/attribution/engine"
	"salesops_backend/internal/ingestion/dedup"
	"salesops_backend/internal/ingestion/repository"
	"salesops_backend/platform/apperr"
	"salesops_backend/platform/events"
	"salesops_backend/platform/logger"
	"salesops_backend/platform/phone"

	"github.com/google/uuid"
)

// claimWindow is the fixed trailing window for the real-time path. The batch
// linker's look-back is policy-configurable; this one is not.
const claimWindow = 24 * time.Hour

// ConversionStore is the persistence boundary of the ingestion path.
// Satisfied by the ingestion repository.
type ConversionStore interface {
	FindContactByEmail(ctx context.Context, accountID uuid.UUID, email string) (*repository.Contact, error)
	FindContactByPhone(ctx context.Context, accountID uuid.UUID, phoneE164 string) (*repository.Contact, error)
	CreateContact(ctx context.Context, contact *repository.Contact) error
	ListUnclaimedDials(ctx context.Context, accountID, contactID uuid.UUID, since time.Time) ([]domain.Event, error)
	ClaimDial(ctx context.Context, dialID, conversionID uuid.UUID) (bool, error)
	SetConversionSetter(ctx context.Context, kind domain.EventKind, conversionID, setterID uuid.UUID) error
	InsertDiscovery(ctx context.Context, row domain.RawDiscovery, accountID uuid.UUID) error
	InsertAppointment(ctx context.Context, row domain.RawAppointment, accountID uuid.UUID) error
}

// Conversion is one inbound appointment or discovery record.
type Conversion struct {
	ID             uuid.UUID
	Kind           domain.EventKind
	Email          string
	Phone          string
	SetterID       *uuid.UUID
	RepID          *uuid.UUID
	CorrelationKey string
	OccurredAt     time.Time

	RevenueCents       int64
	CashCollectedCents int64
	Showed             bool
	Closed             bool
	CloseTimestamp     *time.Time
}

// IngestResult reports what happened to one webhook delivery.
type IngestResult struct {
	ConversionID  uuid.UUID
	ContactID     uuid.UUID
	ClaimedDialID *uuid.UUID
	Duplicate     bool
}

// Service handles conversion ingestion and real-time dial claiming.
type Service struct {
	repo   ConversionStore
	replay dedup.Store
	bus    events.Bus
	log    *logger.Logger
	clock  func() time.Time
}

// New creates a new ingestion service.
func New(repo ConversionStore, replay dedup.Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		replay: replay,
		bus:    bus,
		log:    log,
		clock:  time.Now,
	}
}

// ProcessConversion persists one webhook-delivered conversion and runs the
// claim linker for it. Replayed deliveries are acknowledged without effect.
func (s *Service) ProcessConversion(ctx context.Context, accountID uuid.UUID, conv Conversion, deliveryID string) (IngestResult, error) {
	if !conv.Kind.IsConversion() {
		return IngestResult{}, apperr.Validation("conversion kind must be discovery or appointment")
	}

	if deliveryID != "" && s.replay != nil {
		replayed, err := s.replay.AlreadyDelivered(ctx, deliveryID)
		if err != nil {
			// Degraded replay protection: better a duplicate record than a
			// lost conversion.
			s.log.Warn("replay protection unavailable", "error", err, "delivery_id", deliveryID)
		} else if replayed {
			s.log.Info("duplicate webhook delivery ignored", "delivery_id", deliveryID)
			return IngestResult{Duplicate: true}, nil
		}
	}

	conv.Phone = phone.NormalizeE164(conv.Phone)
	contact, err := s.resolveContact(ctx, accountID, conv.Email, conv.Phone)
	if err != nil {
		return IngestResult{}, err
	}

	if conv.ID == uuid.Nil {
		conv.ID = uuid.New()
	}
	if err := s.insertConversion(ctx, accountID, contact.ID, conv); err != nil {
		return IngestResult{}, err
	}

	claimedDialID, err := s.LinkNewConversion(ctx, accountID, contact.ID, conv)
	if err != nil {
		// The conversion is stored; a failed link must not fail ingestion.
		s.log.Error("claim linking failed", "error", err, "conversion_id", conv.ID)
		claimedDialID = nil
	}

	return IngestResult{
		ConversionID:  conv.ID,
		ContactID:     contact.ID,
		ClaimedDialID: claimedDialID,
	}, nil
}

// LinkNewConversion finds the contact's most recent unclaimed dial within
// the trailing 24 hours and atomically claims it for the conversion. A
// missing candidate or a lost claim race returns (nil, nil): "no dial
// linked" is an expected outcome, not an error.
func (s *Service) LinkNewConversion(ctx context.Context, accountID, contactID uuid.UUID, conv Conversion) (*uuid.UUID, error) {
	now := s.clock()

	candidates, err := s.repo.ListUnclaimedDials(ctx, accountID, contactID, now.Add(-claimWindow))
	if err != nil {
		return nil, err
	}

	match, ok := engine.NearestPrior(candidates, engine.MatchQuery{
		ContactID: contactID,
		Before:    now,
		Window:    claimWindow,
		Kinds:     []domain.EventKind{domain.KindDial},
	})
	if !ok {
		return nil, nil
	}

	claimed, err := s.repo.ClaimDial(ctx, match.ID, conv.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		s.log.Info("dial claim lost race", "dial_id", match.ID, "conversion_id", conv.ID)
		return nil, nil
	}

	if conv.SetterID == nil && match.SetterID != nil {
		if err := s.repo.SetConversionSetter(ctx, conv.Kind, conv.ID, *match.SetterID); err != nil {
			s.log.Error("failed to inherit dial setter", "error", err, "conversion_id", conv.ID)
		}
	}

	s.log.DialClaimed(accountID.String(), match.ID.String(), conv.ID.String())
	if s.bus != nil {
		s.bus.Publish(ctx, NewDialClaimedEvent(accountID, match.ID, conv.ID, conv.Kind))
	}

	dialID := match.ID
	return &dialID, nil
}

// resolveContact identifies the customer by email, falling back to phone,
// creating a new contact when neither matches.
func (s *Service) resolveContact(ctx context.Context, accountID uuid.UUID, email, phoneE164 string) (*repository.Contact, error) {
	email = strings.TrimSpace(email)
	if email == "" && phoneE164 == "" {
		return nil, apperr.Validation("conversion requires an email or phone")
	}

	if email != "" {
		contact, err := s.repo.FindContactByEmail(ctx, accountID, email)
		if err != nil {
			return nil, err
		}
		if contact != nil {
			return contact, nil
		}
	}

	if phoneE164 != "" {
		contact, err := s.repo.FindContactByPhone(ctx, accountID, phoneE164)
		if err != nil {
			return nil, err
		}
		if contact != nil {
			return contact, nil
		}
	}

	contact := &repository.Contact{
		ID:        uuid.New(),
		AccountID: accountID,
		Email:     email,
		PhoneE164: phoneE164,
		CreatedAt: s.clock().UTC(),
	}
	if err := s.repo.CreateContact(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *Service) insertConversion(ctx context.Context, accountID, contactID uuid.UUID, conv Conversion) error {
	switch conv.Kind {
	case domain.KindDiscovery:
		return s.repo.InsertDiscovery(ctx, domain.RawDiscovery{
			ID:             conv.ID,
			ContactID:      contactID,
			SetterID:       conv.SetterID,
			CorrelationKey: conv.CorrelationKey,
			Timestamp:      conv.OccurredAt,
		}, accountID)
	case domain.KindAppointment:
		return s.repo.InsertAppointment(ctx, domain.RawAppointment{
			ID:                 conv.ID,
			ContactID:          contactID,
			SetterID:           conv.SetterID,
			RepID:              conv.RepID,
			CorrelationKey:     conv.CorrelationKey,
			Timestamp:          conv.OccurredAt,
			RevenueCents:       conv.RevenueCents,
			CashCollectedCents: conv.CashCollectedCents,
			Showed:             conv.Showed,
			Closed:             conv.Closed,
			CloseTimestamp:     conv.CloseTimestamp,
		}, accountID)
	default:
		return apperr.Validation("conversion kind must be discovery or appointment")
	}
}
