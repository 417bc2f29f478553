package domain

import (
	"time"

	"github.com/google/uuid"
)

// Raw rows as read from the three independent event stores. The normalizer
// converts these into the canonical Event shape; repositories only scan.

// RawDial is a stored outbound call record.
type RawDial struct {
	ID             uuid.UUID
	ContactID      uuid.UUID
	SetterID       *uuid.UUID
	RepID          *uuid.UUID
	CorrelationKey string
	Timestamp      time.Time
}

// RawDiscovery is a stored discovery-call record.
type RawDiscovery struct {
	ID             uuid.UUID
	ContactID      uuid.UUID
	SetterID       *uuid.UUID
	CorrelationKey string
	Timestamp      time.Time
}

// RawAppointment is a stored sales-appointment record with its outcome fields.
type RawAppointment struct {
	ID                 uuid.UUID
	ContactID          uuid.UUID
	SetterID           *uuid.UUID
	RepID              *uuid.UUID
	CorrelationKey     string
	Timestamp          time.Time
	RevenueCents       int64
	CashCollectedCents int64
	Showed             bool
	Closed             bool
	CloseTimestamp     *time.Time
}
