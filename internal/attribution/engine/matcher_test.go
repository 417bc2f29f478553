package engine

import (
	"fmt"
	"testing"
	"time"

	"salesops_backend/internal/attribution/domain"

	"github.com/google/uuid"
)

var testBase = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// uid returns a stable uuid for test fixtures; equal inputs give equal ids.
func uid(n int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("test-event-%d", n)))
}

func dialAt(n int, contact uuid.UUID, ts time.Time) domain.Event {
	return domain.Event{ID: uid(n), Kind: domain.KindDial, ContactID: contact, Timestamp: ts}
}

func TestNearestPrior_PicksLatestWithinWindow(t *testing.T) {
	contact := uid(100)
	candidates := []domain.Event{
		dialAt(1, contact, testBase.Add(-3*time.Hour)),
		dialAt(2, contact, testBase.Add(-10*time.Minute)),
		dialAt(3, contact, testBase.Add(-1*time.Hour)),
	}

	match, ok := NearestPrior(candidates, MatchQuery{
		ContactID: contact,
		Before:    testBase,
		Window:    24 * time.Hour,
		Kinds:     []domain.EventKind{domain.KindDial},
	})
	if !ok {
		t.Fatalf("expected a match")
	}
	if match.ID != uid(2) {
		t.Fatalf("expected nearest prior dial %s, got %s", uid(2), match.ID)
	}
}

func TestNearestPrior_ExcludesOutsideWindow(t *testing.T) {
	contact := uid(100)
	candidates := []domain.Event{
		dialAt(1, contact, testBase.Add(-25*time.Hour)),
	}

	_, ok := NearestPrior(candidates, MatchQuery{
		ContactID: contact,
		Before:    testBase,
		Window:    24 * time.Hour,
	})
	if ok {
		t.Fatalf("expected no match for candidate outside the window")
	}
}

func TestNearestPrior_ExcludesEventsAtOrAfterBefore(t *testing.T) {
	contact := uid(100)
	candidates := []domain.Event{
		dialAt(1, contact, testBase),                    // not strictly prior
		dialAt(2, contact, testBase.Add(5*time.Minute)), // after
	}

	_, ok := NearestPrior(candidates, MatchQuery{
		ContactID: contact,
		Before:    testBase,
		Window:    24 * time.Hour,
	})
	if ok {
		t.Fatalf("expected no match; candidates are not strictly prior")
	}
}

func TestNearestPrior_FiltersByContact(t *testing.T) {
	candidates := []domain.Event{
		dialAt(1, uid(200), testBase.Add(-time.Minute)),
	}

	_, ok := NearestPrior(candidates, MatchQuery{
		ContactID: uid(100),
		Before:    testBase,
		Window:    24 * time.Hour,
	})
	if ok {
		t.Fatalf("expected no match for a different contact")
	}
}

func TestNearestPrior_FiltersByKind(t *testing.T) {
	contact := uid(100)
	discovery := domain.Event{ID: uid(1), Kind: domain.KindDiscovery, ContactID: contact, Timestamp: testBase.Add(-time.Minute)}

	_, ok := NearestPrior([]domain.Event{discovery}, MatchQuery{
		ContactID: contact,
		Before:    testBase,
		Window:    24 * time.Hour,
		Kinds:     []domain.EventKind{domain.KindDial},
	})
	if ok {
		t.Fatalf("expected kind filter to exclude the discovery")
	}
}

func TestNearestPrior_TimestampTieBreaksOnEventID(t *testing.T) {
	contact := uid(100)
	ts := testBase.Add(-time.Minute)
	a := dialAt(1, contact, ts)
	b := dialAt(2, contact, ts)

	want := a.ID
	if b.ID.String() > a.ID.String() {
		want = b.ID
	}

	for _, candidates := range [][]domain.Event{{a, b}, {b, a}} {
		match, ok := NearestPrior(candidates, MatchQuery{
			ContactID: contact,
			Before:    testBase,
			Window:    24 * time.Hour,
		})
		if !ok {
			t.Fatalf("expected a match")
		}
		if match.ID != want {
			t.Fatalf("expected deterministic tie-break winner %s, got %s", want, match.ID)
		}
	}
}
