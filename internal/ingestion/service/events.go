package service

import (
	"salesops_backend/internal/attribution/domain"
	"salesops_backend/platform/events"

	"github.com/google/uuid"
)

// DialClaimedEventName identifies the dial-claimed domain event.
const DialClaimedEventName = "ingestion.dial_claimed"

// DialClaimedEvent is published after a conversion successfully claims a dial.
type DialClaimedEvent struct {
	events.BaseEvent
	AccountID      uuid.UUID        `json:"accountId"`
	DialID         uuid.UUID        `json:"dialId"`
	ConversionID   uuid.UUID        `json:"conversionId"`
	ConversionKind domain.EventKind `json:"conversionKind"`
}

// NewDialClaimedEvent creates a dial-claimed event stamped with the current time.
func NewDialClaimedEvent(accountID, dialID, conversionID uuid.UUID, kind domain.EventKind) DialClaimedEvent {
	return DialClaimedEvent{
		BaseEvent:      events.NewBaseEvent(),
		AccountID:      accountID,
		DialID:         dialID,
		ConversionID:   conversionID,
		ConversionKind: kind,
	}
}

// EventName returns the event's unique identifier.
func (e DialClaimedEvent) EventName() string {
	return DialClaimedEventName
}
