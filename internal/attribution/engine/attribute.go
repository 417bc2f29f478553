package engine

import (
	"salesops_backend/internal/attribution/domain"

	"github.com/google/uuid"
)

// Attribute resolves setter and rep credit for every session under the
// policy's attribution mode.
//
// Setter credit:
//   - primary: the primary event's setter; a setterless conversion inherits
//     credit from the latest prior setter-bearing touch in its session, and
//     only a session with no setter anywhere resolves to INBOUND;
//   - last-touch: the setter of the latest setter-bearing event strictly
//     before the primary conversion, or INBOUND when none exists;
//   - assist: resolves identically to primary. Multi-touch credit splitting
//     is a recognized extension point that is deliberately not implemented.
//
// Rep credit is not reassigned: it is read directly from the events that
// carry a rep id, since attribution ambiguity exists only on the setter side.
func Attribute(sessions []domain.Session, policy domain.SessionLinkingPolicy) []domain.Session {
	policy = policy.Normalized()

	result := make([]domain.Session, len(sessions))
	for i, session := range sessions {
		session.AttributedSetterID = resolveSetter(session, policy.AttributionMode)
		session.AttributedRepID = resolveRep(session)
		result[i] = session
	}
	return result
}

func resolveSetter(session domain.Session, mode domain.AttributionMode) string {
	switch mode {
	case domain.ModeLastTouch:
		return lastTouchSetter(session)
	default: // primary and assist
		if session.Primary.HasSetter() {
			return session.Primary.SetterKey()
		}
		// A conversion carrying no setter inherits credit from the prior
		// touch that booked it.
		return lastTouchSetter(session)
	}
}

// lastTouchSetter picks the setter of the latest setter-bearing event
// strictly before the primary conversion's timestamp.
func lastTouchSetter(session domain.Session) string {
	var best domain.Event
	found := false
	for _, ev := range session.Events {
		if !ev.HasSetter() {
			continue
		}
		if !ev.Timestamp.Before(session.Primary.Timestamp) {
			continue
		}
		if !found || laterEvent(ev, best) {
			best = ev
			found = true
		}
	}
	if !found {
		return domain.InboundSetter
	}
	return best.SetterKey()
}

// resolveRep reads the rep recorded on the session's events: the held
// appointment's rep when present, otherwise the earliest rep-bearing event.
func resolveRep(session domain.Session) *uuid.UUID {
	if appt, ok := session.HeldAppointment(); ok && appt.RepID != nil {
		return appt.RepID
	}
	for _, ev := range session.Events {
		if ev.RepID != nil {
			return ev.RepID
		}
	}
	return nil
}
