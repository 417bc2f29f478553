package engine

import (
	"testing"
	"time"

	"salesops_backend/internal/attribution/domain"
)

func closedAppointment(n int, contact, setter, rep int, ts time.Time, revenueCents int64) domain.Event {
	setterID := uid(setter)
	repID := uid(rep)
	closedAt := ts.Add(48 * time.Hour)
	return domain.Event{
		ID:             uid(n),
		Kind:           domain.KindAppointment,
		ContactID:      uid(contact),
		SetterID:       &setterID,
		RepID:          &repID,
		Timestamp:      ts,
		RevenueCents:   revenueCents,
		Showed:         true,
		Closed:         true,
		CloseTimestamp: &closedAt,
	}
}

func attributedSessions(t *testing.T, events []domain.Event) []domain.Session {
	t.Helper()
	policy := domain.DefaultPolicy()
	sessions := BuildSessions(events, policy)
	return Attribute(sessions, policy)
}

func TestAggregate_SetterFold(t *testing.T) {
	setter := uid(200)
	appt := closedAppointment(1, 100, 200, 300, testBase, 250000)
	noShow := appointmentAt(2, uid(101), testBase.Add(time.Hour))
	noShow.SetterID = &setter

	report := Aggregate(attributedSessions(t, []domain.Event{appt, noShow}))

	if len(report.Setters) != 1 {
		t.Fatalf("expected 1 setter row, got %d", len(report.Setters))
	}
	row := report.Setters[0]
	if row.SetterID != setter.String() {
		t.Fatalf("unexpected setter id %s", row.SetterID)
	}
	if row.AppointmentsBooked != 2 {
		t.Fatalf("expected 2 booked, got %d", row.AppointmentsBooked)
	}
	if row.AppointmentsShowed != 1 || row.AppointmentsClosed != 1 {
		t.Fatalf("expected 1 showed / 1 closed, got %d / %d", row.AppointmentsShowed, row.AppointmentsClosed)
	}
	if row.ShowRate != 0.5 {
		t.Fatalf("expected show rate 0.5, got %f", row.ShowRate)
	}
	if row.SetterWinRate != 1.0 {
		t.Fatalf("expected win rate 1.0, got %f", row.SetterWinRate)
	}
	if row.AttributedRevenueCents != 250000 {
		t.Fatalf("expected revenue 250000, got %d", row.AttributedRevenueCents)
	}
	if row.UniqueContacts != 2 {
		t.Fatalf("expected 2 unique contacts, got %d", row.UniqueContacts)
	}
}

func TestAggregate_ClosedWithoutShowedFlagKeepsRatesBounded(t *testing.T) {
	shown := closedAppointment(1, 100, 200, 300, testBase, 100000)
	ghost := closedAppointment(2, 101, 200, 300, testBase.Add(time.Hour), 50000)
	ghost.Showed = false

	report := Aggregate(attributedSessions(t, []domain.Event{shown, ghost}))

	setter := report.Setters[0]
	if setter.AppointmentsShowed != 2 || setter.AppointmentsClosed != 2 {
		t.Fatalf("expected 2 showed / 2 closed, got %d / %d", setter.AppointmentsShowed, setter.AppointmentsClosed)
	}
	if setter.SetterWinRate < 0 || setter.SetterWinRate > 1 {
		t.Fatalf("setter win rate out of [0,1]: %f", setter.SetterWinRate)
	}

	rep := report.Reps[0]
	if rep.SalesCallsHeld != 2 || rep.Closed != 2 {
		t.Fatalf("expected 2 held / 2 closed, got %d / %d", rep.SalesCallsHeld, rep.Closed)
	}
	if rep.WinRate != 1.0 {
		t.Fatalf("expected rep win rate 1.0, got %f", rep.WinRate)
	}

	pair := report.Pairs[0]
	if pair.ShowRate < 0 || pair.ShowRate > 1 || pair.WinRate < 0 || pair.WinRate > 1 {
		t.Fatalf("pair rates out of [0,1]: show %f win %f", pair.ShowRate, pair.WinRate)
	}
}

func TestAggregate_ZeroDenominatorsYieldZeroNotNaN(t *testing.T) {
	contact := uid(100)
	report := Aggregate(attributedSessions(t, []domain.Event{dialAt(1, contact, testBase)}))

	if len(report.Setters) != 1 {
		t.Fatalf("expected 1 setter row, got %d", len(report.Setters))
	}
	row := report.Setters[0]
	if row.ShowRate != 0 || row.SetterWinRate != 0 {
		t.Fatalf("expected zero rates with zero denominators, got %f / %f", row.ShowRate, row.SetterWinRate)
	}
}

func TestAggregate_RepFold(t *testing.T) {
	rep := uid(300)
	appt := closedAppointment(1, 100, 200, 300, testBase, 100000)
	appt.CashCollectedCents = 40000

	report := Aggregate(attributedSessions(t, []domain.Event{appt}))

	if len(report.Reps) != 1 {
		t.Fatalf("expected 1 rep row, got %d", len(report.Reps))
	}
	row := report.Reps[0]
	if row.RepID != rep.String() {
		t.Fatalf("unexpected rep id %s", row.RepID)
	}
	if row.SalesCallsHeld != 1 || row.Closed != 1 {
		t.Fatalf("expected 1 held / 1 closed, got %d / %d", row.SalesCallsHeld, row.Closed)
	}
	if row.WinRate != 1.0 {
		t.Fatalf("expected win rate 1.0, got %f", row.WinRate)
	}
	if row.RevenueCents != 100000 || row.CashCollectedCents != 40000 {
		t.Fatalf("unexpected money: revenue %d, cash %d", row.RevenueCents, row.CashCollectedCents)
	}
	if row.AvgOrderValueCents != 100000 {
		t.Fatalf("expected avg order 100000, got %d", row.AvgOrderValueCents)
	}
	if row.AvgSalesCycleDays != 2.0 {
		t.Fatalf("expected 2-day sales cycle, got %f", row.AvgSalesCycleDays)
	}
}

func TestAggregate_PairFold(t *testing.T) {
	setter := uid(200)
	rep := uid(300)
	appt := closedAppointment(1, 100, 200, 300, testBase, 100000)

	report := Aggregate(attributedSessions(t, []domain.Event{appt}))

	if len(report.Pairs) != 1 {
		t.Fatalf("expected 1 pair row, got %d", len(report.Pairs))
	}
	row := report.Pairs[0]
	if row.SetterID != setter.String() || row.RepID != rep.String() {
		t.Fatalf("unexpected pair %s x %s", row.SetterID, row.RepID)
	}
	if row.AppointmentsBooked != 1 || row.Showed != 1 || row.Closed != 1 {
		t.Fatalf("unexpected pair counts %d/%d/%d", row.AppointmentsBooked, row.Showed, row.Closed)
	}
	if row.RevenueCents != 100000 {
		t.Fatalf("expected pair revenue 100000, got %d", row.RevenueCents)
	}
}

func TestAggregate_InboundSessionsGroupUnderSentinel(t *testing.T) {
	report := Aggregate(attributedSessions(t, []domain.Event{
		dialAt(1, uid(100), testBase),
		dialAt(2, uid(101), testBase.Add(2*time.Hour)),
	}))

	if len(report.Setters) != 1 {
		t.Fatalf("expected a single INBOUND row, got %d", len(report.Setters))
	}
	if report.Setters[0].SetterID != domain.InboundSetter {
		t.Fatalf("expected INBOUND, got %s", report.Setters[0].SetterID)
	}
	if report.Setters[0].Dials != 2 {
		t.Fatalf("expected 2 dials, got %d", report.Setters[0].Dials)
	}
}

func TestAggregate_SessionsComputed(t *testing.T) {
	report := Aggregate(attributedSessions(t, []domain.Event{
		dialAt(1, uid(100), testBase),
		dialAt(2, uid(101), testBase.Add(2*time.Hour)),
	}))

	if report.SessionsComputed != 2 {
		t.Fatalf("expected 2 sessions computed, got %d", report.SessionsComputed)
	}
}
