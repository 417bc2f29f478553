package engine

import (
	"testing"
	"time"

	"salesops_backend/internal/attribution/domain"

	"github.com/google/uuid"
)

func TestNormalize_MergesAndSortsSources(t *testing.T) {
	contact := uid(100)
	dials := []domain.RawDial{
		{ID: uid(1), ContactID: contact, Timestamp: testBase.Add(time.Hour)},
	}
	discoveries := []domain.RawDiscovery{
		{ID: uid(2), ContactID: contact, Timestamp: testBase},
	}
	appointments := []domain.RawAppointment{
		{ID: uid(3), ContactID: contact, Timestamp: testBase.Add(2 * time.Hour)},
	}

	events := Normalize(dials, discoveries, appointments, domain.EventFilters{}, nil)

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.Before(events[i-1].Timestamp) {
			t.Fatalf("events not sorted by timestamp")
		}
	}
	if events[0].Kind != domain.KindDiscovery {
		t.Fatalf("expected discovery first, got %s", events[0].Kind)
	}
}

func TestNormalize_DropsMalformedRows(t *testing.T) {
	contact := uid(100)
	dials := []domain.RawDial{
		{ID: uid(1), ContactID: uuid.Nil, Timestamp: testBase}, // no contact
		{ID: uid(2), ContactID: contact},                       // no timestamp
		{ID: uid(3), ContactID: contact, Timestamp: testBase},
	}

	events := Normalize(dials, nil, nil, domain.EventFilters{}, nil)

	if len(events) != 1 {
		t.Fatalf("expected 1 valid event, got %d", len(events))
	}
	if events[0].ID != uid(3) {
		t.Fatalf("wrong event survived")
	}
}

func TestNormalize_SetterFilterExcludesOnlyExplicitMismatch(t *testing.T) {
	contact := uid(100)
	wanted := uid(200)
	other := uid(201)

	dials := []domain.RawDial{
		{ID: uid(1), ContactID: contact, SetterID: &wanted, Timestamp: testBase},
		{ID: uid(2), ContactID: contact, SetterID: &other, Timestamp: testBase.Add(time.Minute)},
		{ID: uid(3), ContactID: contact, Timestamp: testBase.Add(2 * time.Minute)}, // no setter: passes
	}

	events := Normalize(dials, nil, nil, domain.EventFilters{SetterIDs: []string{wanted.String()}}, nil)

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	for _, ev := range events {
		if ev.SetterID != nil && *ev.SetterID == other {
			t.Fatalf("mismatched setter was not excluded")
		}
	}
}

func TestNormalize_CarriesAppointmentOutcomeFields(t *testing.T) {
	contact := uid(100)
	closedAt := testBase.Add(72 * time.Hour)
	appointments := []domain.RawAppointment{
		{
			ID:                 uid(1),
			ContactID:          contact,
			Timestamp:          testBase,
			RevenueCents:       500000,
			CashCollectedCents: 100000,
			Showed:             true,
			Closed:             true,
			CloseTimestamp:     &closedAt,
		},
	}

	events := Normalize(nil, nil, appointments, domain.EventFilters{}, nil)

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.RevenueCents != 500000 || ev.CashCollectedCents != 100000 {
		t.Fatalf("money fields not carried: %d / %d", ev.RevenueCents, ev.CashCollectedCents)
	}
	if !ev.Showed || !ev.Closed || ev.CloseTimestamp == nil {
		t.Fatalf("outcome flags not carried")
	}
}
