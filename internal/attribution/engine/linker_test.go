package engine

import (
	"testing"
	"time"

	"salesops_backend/internal/attribution/domain"

	"github.com/google/uuid"
)

func discoveryAt(n int, contact uuid.UUID, ts time.Time) domain.Event {
	return domain.Event{ID: uid(n), Kind: domain.KindDiscovery, ContactID: contact, Timestamp: ts}
}

func appointmentAt(n int, contact uuid.UUID, ts time.Time) domain.Event {
	return domain.Event{ID: uid(n), Kind: domain.KindAppointment, ContactID: contact, Timestamp: ts}
}

func countEvents(sessions []domain.Session) int {
	total := 0
	for _, s := range sessions {
		total += len(s.Events)
	}
	return total
}

func TestBuildSessions_CorrelationKeyGroupsIntoOneSession(t *testing.T) {
	contact := uid(100)
	dial := dialAt(1, contact, testBase)
	dial.CorrelationKey = "call-abc"
	disc := discoveryAt(2, contact, testBase.Add(5*time.Minute))
	disc.CorrelationKey = "call-abc"

	sessions := BuildSessions([]domain.Event{dial, disc}, domain.DefaultPolicy())

	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if len(sessions[0].Events) != 2 {
		t.Fatalf("expected 2 events in session, got %d", len(sessions[0].Events))
	}
	if sessions[0].IsInferred {
		t.Fatalf("correlation-key session must not be marked inferred")
	}
	if sessions[0].Primary.ID != disc.ID {
		t.Fatalf("expected discovery as primary, got %s", sessions[0].Primary.Kind)
	}
}

func TestBuildSessions_HeuristicLinksDialToDiscovery(t *testing.T) {
	contact := uid(100)
	dial := dialAt(1, contact, testBase)
	disc := discoveryAt(2, contact, testBase.Add(10*time.Minute))

	sessions := BuildSessions([]domain.Event{dial, disc}, domain.DefaultPolicy())

	if len(sessions) != 1 {
		t.Fatalf("expected 1 inferred session, got %d", len(sessions))
	}
	if !sessions[0].IsInferred {
		t.Fatalf("heuristic session must be marked inferred")
	}
	if sessions[0].Primary.ID != disc.ID {
		t.Fatalf("expected discovery as primary")
	}
}

func TestBuildSessions_GapBeyondSameCallWindowStaysSeparate(t *testing.T) {
	contact := uid(100)
	dial := dialAt(1, contact, testBase)
	disc := discoveryAt(2, contact, testBase.Add(45*time.Minute)) // beyond 30m default

	sessions := BuildSessions([]domain.Event{dial, disc}, domain.DefaultPolicy())

	if len(sessions) != 2 {
		t.Fatalf("expected 2 standalone sessions, got %d", len(sessions))
	}
}

func TestBuildSessions_AppointmentMayLinkToDiscovery(t *testing.T) {
	contact := uid(100)
	disc := discoveryAt(1, contact, testBase)
	appt := appointmentAt(2, contact, testBase.Add(15*time.Minute))

	sessions := BuildSessions([]domain.Event{disc, appt}, domain.DefaultPolicy())

	if len(sessions) != 1 {
		t.Fatalf("expected appointment to link to prior discovery, got %d sessions", len(sessions))
	}
	if sessions[0].Primary.ID != appt.ID {
		t.Fatalf("expected appointment as primary")
	}
}

func TestBuildSessions_DiscoveryNeverLinksToDiscovery(t *testing.T) {
	contact := uid(100)
	first := discoveryAt(1, contact, testBase)
	second := discoveryAt(2, contact, testBase.Add(5*time.Minute))

	sessions := BuildSessions([]domain.Event{first, second}, domain.DefaultPolicy())

	if len(sessions) != 2 {
		t.Fatalf("expected discoveries to stay separate, got %d sessions", len(sessions))
	}
}

func TestBuildSessions_EveryEventInExactlyOneSession(t *testing.T) {
	contactA := uid(100)
	contactB := uid(101)
	events := []domain.Event{
		dialAt(1, contactA, testBase),
		discoveryAt(2, contactA, testBase.Add(10*time.Minute)),
		dialAt(3, contactB, testBase.Add(time.Hour)),
		appointmentAt(4, contactB, testBase.Add(time.Hour+20*time.Minute)),
		dialAt(5, contactA, testBase.Add(3*time.Hour)),
	}

	sessions := BuildSessions(events, domain.DefaultPolicy())

	if countEvents(sessions) != len(events) {
		t.Fatalf("expected %d events across sessions, got %d", len(events), countEvents(sessions))
	}
	seen := make(map[uuid.UUID]int)
	for _, s := range sessions {
		for _, ev := range s.Events {
			seen[ev.ID]++
		}
	}
	for _, ev := range events {
		if seen[ev.ID] != 1 {
			t.Fatalf("event %s appears %d times, expected exactly once", ev.ID, seen[ev.ID])
		}
	}
}

func TestBuildSessions_DeterministicAcrossInputOrder(t *testing.T) {
	contact := uid(100)
	events := []domain.Event{
		dialAt(1, contact, testBase),
		discoveryAt(2, contact, testBase.Add(10*time.Minute)),
		dialAt(3, contact, testBase.Add(2*time.Hour)),
		appointmentAt(4, contact, testBase.Add(2*time.Hour+5*time.Minute)),
	}
	reversed := []domain.Event{events[3], events[2], events[1], events[0]}

	a := BuildSessions(events, domain.DefaultPolicy())
	b := BuildSessions(reversed, domain.DefaultPolicy())

	if len(a) != len(b) {
		t.Fatalf("session counts differ: %d vs %d", len(a), len(b))
	}
	ids := func(sessions []domain.Session) map[uuid.UUID]int {
		m := make(map[uuid.UUID]int)
		for _, s := range sessions {
			m[s.SessionID] = len(s.Events)
		}
		return m
	}
	ma, mb := ids(a), ids(b)
	for id, n := range ma {
		if mb[id] != n {
			t.Fatalf("session %s differs between orderings: %d vs %d events", id, n, mb[id])
		}
	}
}

func TestBuildSessions_SessionIDDeterministicFromPrimary(t *testing.T) {
	contact := uid(100)
	events := []domain.Event{
		dialAt(1, contact, testBase),
		discoveryAt(2, contact, testBase.Add(10*time.Minute)),
	}

	a := BuildSessions(events, domain.DefaultPolicy())
	b := BuildSessions(events, domain.DefaultPolicy())

	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("expected 1 session per run")
	}
	if a[0].SessionID != b[0].SessionID {
		t.Fatalf("session id not stable: %s vs %s", a[0].SessionID, b[0].SessionID)
	}
	if a[0].SessionID == uuid.Nil {
		t.Fatalf("session id must not be nil")
	}
}

func TestBuildSessions_StandaloneFallback(t *testing.T) {
	contact := uid(100)
	dial := dialAt(1, contact, testBase)

	sessions := BuildSessions([]domain.Event{dial}, domain.DefaultPolicy())

	if len(sessions) != 1 {
		t.Fatalf("expected 1 standalone session, got %d", len(sessions))
	}
	if sessions[0].IsInferred {
		t.Fatalf("standalone session must not be marked inferred")
	}
	if sessions[0].Primary.ID != dial.ID {
		t.Fatalf("expected the lone dial as primary")
	}
}
