package engine

import "salesops_backend/internal/attribution/domain"

// Deduplicate applies the policy's exclusion rules to every session and
// recomputes each session's primary event. Sessions left with no events are
// dropped entirely. The input is not mutated, and the operation is
// idempotent: re-applying the same rules produces no further change.
func Deduplicate(sessions []domain.Session, policy domain.SessionLinkingPolicy) []domain.Session {
	if !policy.ExcludeInCallDials && !policy.ExcludeRepDials {
		return sessions
	}

	result := make([]domain.Session, 0, len(sessions))
	for _, session := range sessions {
		filtered := filterSessionEvents(session, policy)
		if len(filtered.Events) == 0 {
			continue
		}
		result = append(result, filtered)
	}
	return result
}

func filterSessionEvents(session domain.Session, policy domain.SessionLinkingPolicy) domain.Session {
	dropInCall := policy.ExcludeInCallDials && sessionHasConversion(session)

	kept := make([]domain.Event, 0, len(session.Events))
	for _, ev := range session.Events {
		if ev.Kind == domain.KindDial {
			if dropInCall {
				continue
			}
			if policy.ExcludeRepDials && ev.RepID != nil {
				continue
			}
		}
		kept = append(kept, ev)
	}

	session.Events = kept
	if len(kept) > 0 {
		session.Primary = pickPrimary(kept)
	}
	return session
}

func sessionHasConversion(session domain.Session) bool {
	for _, ev := range session.Events {
		if ev.Kind.IsConversion() {
			return true
		}
	}
	return false
}
