// Package domain holds the canonical types of the attribution engine:
// events, sessions, and the session-linking policy.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventKind identifies the type of recorded interaction.
type EventKind string

const (
	KindDial        EventKind = "dial"
	KindDiscovery   EventKind = "discovery"
	KindAppointment EventKind = "appointment"
)

// Rank orders event kinds by conversion significance.
// Appointments outrank discoveries, which outrank dials.
func (k EventKind) Rank() int {
	switch k {
	case KindAppointment:
		return 3
	case KindDiscovery:
		return 2
	case KindDial:
		return 1
	default:
		return 0
	}
}

// IsConversion reports whether this kind can anchor an inferred session.
func (k EventKind) IsConversion() bool {
	return k == KindDiscovery || k == KindAppointment
}

// InboundSetter is the sentinel setter identity used when no human setter
// can be credited for a session.
const InboundSetter = "INBOUND"

// Event is one observed interaction, normalized from any of the three
// event sources.
type Event struct {
	ID        uuid.UUID
	Kind      EventKind
	ContactID uuid.UUID
	SetterID  *uuid.UUID
	RepID     *uuid.UUID
	// CorrelationKey is an explicit same-phone-call identifier (e.g. a
	// telephony call id) when the source system supplies one.
	CorrelationKey string
	Timestamp      time.Time

	// Outcome fields, populated for appointments only.
	RevenueCents       int64
	CashCollectedCents int64
	Showed             bool
	Closed             bool
	CloseTimestamp     *time.Time
}

// SetterKey returns the attribution key for this event's setter:
// the setter's id, or InboundSetter when none is recorded.
func (e Event) SetterKey() string {
	if e.SetterID == nil {
		return InboundSetter
	}
	return e.SetterID.String()
}

// HasSetter reports whether a real (non-inbound) setter is recorded.
func (e Event) HasSetter() bool {
	return e.SetterID != nil
}

// Session is a reconstructed customer-interaction unit: the set of events
// believed to represent one continuous interaction.
type Session struct {
	SessionID uuid.UUID
	// Events is the time-ordered member list. Never empty.
	Events []Event
	// Primary is the single event that determines the session's conversion
	// significance, ranked appointment > discovery > dial.
	Primary Event
	// IsInferred is true when membership was reconstructed heuristically
	// rather than via a correlation key.
	IsInferred bool
	// AttributedSetterID is resolved by the attributor. It is never empty:
	// absent real setter means InboundSetter.
	AttributedSetterID string
	// AttributedRepID is the rep recorded on the session's events, if any.
	AttributedRepID *uuid.UUID
}

// FirstTimestamp returns the timestamp of the earliest member event.
func (s Session) FirstTimestamp() time.Time {
	return s.Events[0].Timestamp
}

// HeldAppointment returns the session's appointment event, if it has one.
func (s Session) HeldAppointment() (Event, bool) {
	for _, ev := range s.Events {
		if ev.Kind == KindAppointment {
			return ev, true
		}
	}
	return Event{}, false
}
