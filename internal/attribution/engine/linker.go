package engine

import (
	"sort"

	"salesops_backend/internal/attribution/domain"

	"github.com/google/uuid"
)

// sessionNamespace seeds deterministic session ids derived from the primary
// event, so identical inputs produce identical sessions.
var sessionNamespace = uuid.MustParse("7b9e1c52-44dd-4a31-9f0a-2c8f6e5d1a90")

// BuildSessions reconstructs sessions from a flat event list.
//
// Three passes:
//  1. events carrying a correlation key are partitioned by key, one session
//     per key;
//  2. each remaining conversion-capable event searches the still-ungrouped
//     events for its nearest prior touch on the same contact, and merges
//     with it when the gap is within the same-call window;
//  3. whatever is left becomes a single-event session.
//
// Every input event lands in exactly one session, and the result is
// deterministic for identical (events, policy).
func BuildSessions(events []domain.Event, policy domain.SessionLinkingPolicy) []domain.Session {
	policy = policy.Normalized()

	var sessions []domain.Session
	grouped := make(map[uuid.UUID]bool, len(events))

	// Pass 1: explicit grouping by correlation key.
	byKey := make(map[string][]domain.Event)
	var keyOrder []string
	for _, ev := range events {
		if ev.CorrelationKey == "" {
			continue
		}
		if _, seen := byKey[ev.CorrelationKey]; !seen {
			keyOrder = append(keyOrder, ev.CorrelationKey)
		}
		byKey[ev.CorrelationKey] = append(byKey[ev.CorrelationKey], ev)
		grouped[ev.ID] = true
	}
	sort.Strings(keyOrder)
	for _, key := range keyOrder {
		members := byKey[key]
		sortEvents(members)
		sessions = append(sessions, newSession(members, false))
	}

	// Pass 2: heuristic grouping of conversion-capable events, in time order.
	ungrouped := make([]domain.Event, 0, len(events))
	for _, ev := range events {
		if !grouped[ev.ID] {
			ungrouped = append(ungrouped, ev)
		}
	}
	sortEvents(ungrouped)

	for _, conv := range ungrouped {
		if !conv.Kind.IsConversion() || grouped[conv.ID] {
			continue
		}

		candidates := make([]domain.Event, 0, len(ungrouped))
		for _, ev := range ungrouped {
			if !grouped[ev.ID] && ev.ID != conv.ID {
				candidates = append(candidates, ev)
			}
		}

		match, ok := NearestPrior(candidates, MatchQuery{
			ContactID: conv.ContactID,
			Before:    conv.Timestamp,
			Window:    policy.TimeWindow(),
			Kinds:     candidateKinds(conv.Kind),
		})
		if !ok {
			continue
		}
		if conv.Timestamp.Sub(match.Timestamp) > policy.SameCallWindow() {
			// A prior touch exists but too far back to be the same call.
			continue
		}

		members := []domain.Event{match, conv}
		sortEvents(members)
		sessions = append(sessions, newSession(members, true))
		grouped[match.ID] = true
		grouped[conv.ID] = true
	}

	// Pass 3: standalone fallback.
	for _, ev := range ungrouped {
		if !grouped[ev.ID] {
			sessions = append(sessions, newSession([]domain.Event{ev}, false))
		}
	}

	return sessions
}

// candidateKinds returns the event kinds a conversion may link back to:
// discoveries link to dials; appointments link to dials or discoveries.
func candidateKinds(conversion domain.EventKind) []domain.EventKind {
	if conversion == domain.KindAppointment {
		return []domain.EventKind{domain.KindDial, domain.KindDiscovery}
	}
	return []domain.EventKind{domain.KindDial}
}

func newSession(members []domain.Event, inferred bool) domain.Session {
	primary := pickPrimary(members)
	return domain.Session{
		SessionID:  uuid.NewSHA1(sessionNamespace, []byte(primary.ID.String())),
		Events:     members,
		Primary:    primary,
		IsInferred: inferred,
	}
}

// pickPrimary selects the earliest event of the highest rank
// (appointment > discovery > dial). Members must be non-empty.
func pickPrimary(members []domain.Event) domain.Event {
	best := members[0]
	for _, ev := range members[1:] {
		if ev.Kind.Rank() > best.Kind.Rank() {
			best = ev
			continue
		}
		if ev.Kind.Rank() == best.Kind.Rank() && earlierEvent(ev, best) {
			best = ev
		}
	}
	return best
}

func earlierEvent(a, b domain.Event) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.ID.String() < b.ID.String()
}
