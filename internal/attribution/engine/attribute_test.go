package engine

import (
	"testing"
	"time"

	"salesops_backend/internal/attribution/domain"
)

func TestAttribute_PrimaryModeCreditsPrimarySetter(t *testing.T) {
	contact := uid(100)
	setter := uid(200)

	disc := discoveryAt(2, contact, testBase.Add(5*time.Minute))
	disc.SetterID = &setter

	sessions := BuildSessions([]domain.Event{dialAt(1, contact, testBase), disc}, domain.DefaultPolicy())
	result := Attribute(sessions, domain.DefaultPolicy())

	if len(result) != 1 {
		t.Fatalf("expected 1 session, got %d", len(result))
	}
	if result[0].AttributedSetterID != setter.String() {
		t.Fatalf("expected setter %s, got %s", setter, result[0].AttributedSetterID)
	}
}

func TestAttribute_PrimaryModeInheritsSetterFromLinkedDial(t *testing.T) {
	contact := uid(100)
	setter := uid(200)

	dial := dialAt(1, contact, testBase)
	dial.SetterID = &setter
	disc := discoveryAt(2, contact, testBase.Add(10*time.Minute))

	sessions := BuildSessions([]domain.Event{dial, disc}, domain.DefaultPolicy())
	result := Attribute(sessions, domain.DefaultPolicy())

	if len(result) != 1 {
		t.Fatalf("expected 1 session, got %d", len(result))
	}
	if result[0].AttributedSetterID != setter.String() {
		t.Fatalf("expected setter %s, got %s", setter, result[0].AttributedSetterID)
	}
}

func TestAttribute_PrimaryModeFallsBackToInbound(t *testing.T) {
	contact := uid(100)
	sessions := BuildSessions([]domain.Event{discoveryAt(1, contact, testBase)}, domain.DefaultPolicy())

	result := Attribute(sessions, domain.DefaultPolicy())

	if result[0].AttributedSetterID != domain.InboundSetter {
		t.Fatalf("expected INBOUND, got %s", result[0].AttributedSetterID)
	}
}

func TestAttribute_LastTouchCreditsLatestPriorSetter(t *testing.T) {
	contact := uid(100)
	earlySetter := uid(200)
	lateSetter := uid(201)

	earlyDial := dialAt(1, contact, testBase)
	earlyDial.SetterID = &earlySetter
	earlyDial.CorrelationKey = "call-1"

	lateDial := dialAt(2, contact, testBase.Add(10*time.Minute))
	lateDial.SetterID = &lateSetter
	lateDial.CorrelationKey = "call-1"

	appt := appointmentAt(3, contact, testBase.Add(20*time.Minute))
	appt.CorrelationKey = "call-1"

	policy := domain.DefaultPolicy()
	policy.AttributionMode = domain.ModeLastTouch

	sessions := BuildSessions([]domain.Event{earlyDial, lateDial, appt}, policy)
	result := Attribute(sessions, policy)

	if result[0].AttributedSetterID != lateSetter.String() {
		t.Fatalf("expected last-touch setter %s, got %s", lateSetter, result[0].AttributedSetterID)
	}
}

func TestAttribute_LastTouchIgnoresTouchesAtOrAfterPrimary(t *testing.T) {
	contact := uid(100)
	setter := uid(200)

	appt := appointmentAt(1, contact, testBase)
	appt.CorrelationKey = "call-1"

	laterDial := dialAt(2, contact, testBase.Add(5*time.Minute))
	laterDial.SetterID = &setter
	laterDial.CorrelationKey = "call-1"

	policy := domain.DefaultPolicy()
	policy.AttributionMode = domain.ModeLastTouch

	sessions := BuildSessions([]domain.Event{appt, laterDial}, policy)
	result := Attribute(sessions, policy)

	if result[0].AttributedSetterID != domain.InboundSetter {
		t.Fatalf("touches after the primary must not receive credit, got %s", result[0].AttributedSetterID)
	}
}

func TestAttribute_AssistResolvesLikePrimary(t *testing.T) {
	contact := uid(100)
	setter := uid(200)

	disc := discoveryAt(2, contact, testBase.Add(5*time.Minute))
	disc.SetterID = &setter

	events := []domain.Event{dialAt(1, contact, testBase), disc}

	primaryPolicy := domain.DefaultPolicy()
	assistPolicy := domain.DefaultPolicy()
	assistPolicy.AttributionMode = domain.ModeAssist

	a := Attribute(BuildSessions(events, primaryPolicy), primaryPolicy)
	b := Attribute(BuildSessions(events, assistPolicy), assistPolicy)

	if a[0].AttributedSetterID != b[0].AttributedSetterID {
		t.Fatalf("assist mode must resolve like primary: %s vs %s", a[0].AttributedSetterID, b[0].AttributedSetterID)
	}
}

func TestAttribute_RepFromHeldAppointment(t *testing.T) {
	contact := uid(100)
	dialRep := uid(200)
	apptRep := uid(201)

	dial := dialAt(1, contact, testBase)
	dial.RepID = &dialRep
	dial.CorrelationKey = "call-1"

	appt := appointmentAt(2, contact, testBase.Add(10*time.Minute))
	appt.RepID = &apptRep
	appt.Showed = true
	appt.CorrelationKey = "call-1"

	sessions := BuildSessions([]domain.Event{dial, appt}, domain.DefaultPolicy())
	result := Attribute(sessions, domain.DefaultPolicy())

	if result[0].AttributedRepID == nil || *result[0].AttributedRepID != apptRep {
		t.Fatalf("expected appointment rep %s, got %v", apptRep, result[0].AttributedRepID)
	}
}

func TestAttribute_RepNilWhenNoneRecorded(t *testing.T) {
	contact := uid(100)
	sessions := BuildSessions([]domain.Event{dialAt(1, contact, testBase)}, domain.DefaultPolicy())

	result := Attribute(sessions, domain.DefaultPolicy())

	if result[0].AttributedRepID != nil {
		t.Fatalf("expected nil rep, got %v", result[0].AttributedRepID)
	}
}
