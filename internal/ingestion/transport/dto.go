// Package transport defines the DTOs of the conversion-ingestion surface.
package transport

import (
	"time"

	"salesops_backend/internal/attribution/domain"
	"salesops_backend/internal/ingestion/service"

	"github.com/google/uuid"
)

// ConversionWebhookRequest is one inbound conversion delivery from an
// external source system.
type ConversionWebhookRequest struct {
	// DeliveryID is the source system's unique delivery identifier, used
	// for replay protection. Optional but strongly recommended.
	DeliveryID string `json:"deliveryId" validate:"max=255"`
	Kind       string `json:"kind" binding:"required,oneof=discovery appointment"`

	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`

	SetterID       *string   `json:"setterId" binding:"omitempty,uuid"`
	RepID          *string   `json:"repId" binding:"omitempty,uuid"`
	CorrelationKey string    `json:"correlationKey"`
	OccurredAt     time.Time `json:"occurredAt" binding:"required"`

	RevenueCents       int64      `json:"revenueCents" binding:"omitempty,min=0"`
	CashCollectedCents int64      `json:"cashCollectedCents" binding:"omitempty,min=0"`
	Showed             bool       `json:"showed"`
	Closed             bool       `json:"closed"`
	ClosedAt           *time.Time `json:"closedAt" validate:"omitempty,gtefield=OccurredAt"`
}

// ToConversion converts the request into the service's conversion shape.
func (r ConversionWebhookRequest) ToConversion() service.Conversion {
	return service.Conversion{
		Kind:               domain.EventKind(r.Kind),
		Email:              r.Email,
		Phone:              r.Phone,
		SetterID:           parseOptionalUUID(r.SetterID),
		RepID:              parseOptionalUUID(r.RepID),
		CorrelationKey:     r.CorrelationKey,
		OccurredAt:         r.OccurredAt,
		RevenueCents:       r.RevenueCents,
		CashCollectedCents: r.CashCollectedCents,
		Showed:             r.Showed,
		Closed:             r.Closed,
		CloseTimestamp:     r.ClosedAt,
	}
}

// ConversionWebhookResponse acknowledges one delivery.
type ConversionWebhookResponse struct {
	ConversionID  *uuid.UUID `json:"conversionId,omitempty"`
	ClaimedDialID *uuid.UUID `json:"claimedDialId,omitempty"`
	Duplicate     bool       `json:"duplicate"`
}

// CreateAPIKeyRequest creates a webhook API key for the caller's account.
type CreateAPIKeyRequest struct {
	Name string `json:"name" binding:"required,min=1,max=120"`
}

// APIKeyResponse returns a created key. Key carries the plaintext exactly
// once; only the hash is stored.
type APIKeyResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	KeyPrefix string    `json:"keyPrefix"`
	Key       string    `json:"key,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func parseOptionalUUID(value *string) *uuid.UUID {
	if value == nil {
		return nil
	}
	parsed, err := uuid.Parse(*value)
	if err != nil {
		return nil
	}
	return &parsed
}
