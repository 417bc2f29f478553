// Package engine implements the event-correlation and attribution pipeline:
// normalization, session linking, deduplication, attribution, and the
// metric folds. Everything in this package is a pure function of its inputs.
package engine

import (
	"time"

	"salesops_backend/internal/attribution/domain"

	"github.com/google/uuid"
)

// MatchQuery describes one nearest-prior-event search. The batch session
// linker and the real-time claim linker both resolve "the proximate prior
// event for this contact" through this query; they differ only in window
// size and candidate kinds.
type MatchQuery struct {
	// ContactID restricts candidates to one contact. uuid.Nil skips the
	// check, for callers whose candidate set is already contact-scoped.
	ContactID uuid.UUID
	// Before is the instant candidates must strictly precede.
	Before time.Time
	// Window is the maximum look-back from Before.
	Window time.Duration
	// Kinds restricts candidate event kinds. Empty allows all.
	Kinds []domain.EventKind
}

func (q MatchQuery) allowsKind(kind domain.EventKind) bool {
	if len(q.Kinds) == 0 {
		return true
	}
	for _, k := range q.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (q MatchQuery) matches(ev domain.Event) bool {
	if q.ContactID != uuid.Nil && ev.ContactID != q.ContactID {
		return false
	}
	if !q.allowsKind(ev.Kind) {
		return false
	}
	if !ev.Timestamp.Before(q.Before) {
		return false
	}
	return q.Before.Sub(ev.Timestamp) <= q.Window
}

// NearestPrior selects the candidate with the latest timestamp not after
// q.Before, within the window. Timestamp ties break on event id so the
// result is deterministic for any candidate ordering.
func NearestPrior(candidates []domain.Event, q MatchQuery) (domain.Event, bool) {
	var best domain.Event
	found := false

	for _, ev := range candidates {
		if !q.matches(ev) {
			continue
		}
		if !found || laterEvent(ev, best) {
			best = ev
			found = true
		}
	}

	return best, found
}

// laterEvent reports whether a sorts after b: later timestamp first,
// event id as the unique secondary key.
func laterEvent(a, b domain.Event) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return a.ID.String() > b.ID.String()
}
