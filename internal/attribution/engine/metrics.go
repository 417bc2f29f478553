package engine

import (
	"sort"

	"salesops_backend/internal/attribution/domain"

	"github.com/google/uuid"
)

// Aggregate folds attributed, deduplicated sessions into the three metric
// views consumed by reporting: per-setter, per-rep, and per setter x rep pair.
// Every ratio uses a zero-denominator-yields-zero contract; no result is
// ever NaN.
func Aggregate(sessions []domain.Session) domain.MetricsReport {
	setters := foldSetters(sessions)
	reps := foldReps(sessions)
	pairs := foldPairs(sessions)

	return domain.MetricsReport{
		Setters:          setters,
		Reps:             reps,
		Pairs:            pairs,
		SessionsComputed: len(sessions),
	}
}

type setterAccumulator struct {
	contacts     map[uuid.UUID]struct{}
	dials        int
	discoveries  int
	booked       int
	showed       int
	closed       int
	revenueCents int64
}

func foldSetters(sessions []domain.Session) []domain.SetterMetrics {
	acc := make(map[string]*setterAccumulator)

	for _, session := range sessions {
		a := acc[session.AttributedSetterID]
		if a == nil {
			a = &setterAccumulator{contacts: make(map[uuid.UUID]struct{})}
			acc[session.AttributedSetterID] = a
		}

		for _, ev := range session.Events {
			a.contacts[ev.ContactID] = struct{}{}
			switch ev.Kind {
			case domain.KindDial:
				a.dials++
			case domain.KindDiscovery:
				a.discoveries++
			case domain.KindAppointment:
				a.booked++
				// A closed deal implies the call happened even when the
				// showed flag was never recorded; closed stays a subset of
				// showed so the rates hold in [0,1].
				if ev.Showed || ev.Closed {
					a.showed++
				}
				if ev.Closed {
					a.closed++
					a.revenueCents += ev.RevenueCents
				}
			}
		}
	}

	result := make([]domain.SetterMetrics, 0, len(acc))
	for setterID, a := range acc {
		result = append(result, domain.SetterMetrics{
			SetterID:               setterID,
			UniqueContacts:         len(a.contacts),
			Dials:                  a.dials,
			DiscoveriesSet:         a.discoveries,
			AppointmentsBooked:     a.booked,
			AppointmentsShowed:     a.showed,
			AppointmentsClosed:     a.closed,
			ShowRate:               safeRatio(a.showed, a.booked),
			SetterWinRate:          safeRatio(a.closed, a.showed),
			AttributedRevenueCents: a.revenueCents,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SetterID < result[j].SetterID })
	return result
}

type repAccumulator struct {
	held         int
	closed       int
	revenueCents int64
	cashCents    int64
	cycleDaysSum float64
	cycleDeals   int
}

func foldReps(sessions []domain.Session) []domain.RepMetrics {
	acc := make(map[string]*repAccumulator)

	for _, session := range sessions {
		appt, ok := session.HeldAppointment()
		if !ok || appt.RepID == nil {
			continue
		}
		key := appt.RepID.String()
		a := acc[key]
		if a == nil {
			a = &repAccumulator{}
			acc[key] = a
		}

		if appt.Showed || appt.Closed {
			a.held++
		}
		a.cashCents += appt.CashCollectedCents
		if appt.Closed {
			a.closed++
			a.revenueCents += appt.RevenueCents
			if appt.CloseTimestamp != nil {
				cycle := appt.CloseTimestamp.Sub(session.FirstTimestamp())
				a.cycleDaysSum += cycle.Hours() / 24
				a.cycleDeals++
			}
		}
	}

	result := make([]domain.RepMetrics, 0, len(acc))
	for repID, a := range acc {
		avgOrder := int64(0)
		if a.closed > 0 {
			avgOrder = a.revenueCents / int64(a.closed)
		}
		avgCycle := 0.0
		if a.cycleDeals > 0 {
			avgCycle = a.cycleDaysSum / float64(a.cycleDeals)
		}
		result = append(result, domain.RepMetrics{
			RepID:              repID,
			SalesCallsHeld:     a.held,
			Closed:             a.closed,
			WinRate:            safeRatio(a.closed, a.held),
			RevenueCents:       a.revenueCents,
			CashCollectedCents: a.cashCents,
			AvgOrderValueCents: avgOrder,
			AvgSalesCycleDays:  avgCycle,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RepID < result[j].RepID })
	return result
}

type pairKey struct {
	setterID string
	repID    string
}

type pairAccumulator struct {
	booked       int
	showed       int
	closed       int
	revenueCents int64
}

func foldPairs(sessions []domain.Session) []domain.PairMetrics {
	acc := make(map[pairKey]*pairAccumulator)

	for _, session := range sessions {
		appt, ok := session.HeldAppointment()
		if !ok || appt.RepID == nil {
			continue
		}
		key := pairKey{setterID: session.AttributedSetterID, repID: appt.RepID.String()}
		a := acc[key]
		if a == nil {
			a = &pairAccumulator{}
			acc[key] = a
		}

		a.booked++
		if appt.Showed || appt.Closed {
			a.showed++
		}
		if appt.Closed {
			a.closed++
			a.revenueCents += appt.RevenueCents
		}
	}

	result := make([]domain.PairMetrics, 0, len(acc))
	for key, a := range acc {
		result = append(result, domain.PairMetrics{
			SetterID:           key.setterID,
			RepID:              key.repID,
			AppointmentsBooked: a.booked,
			Showed:             a.showed,
			Closed:             a.closed,
			ShowRate:           safeRatio(a.showed, a.booked),
			WinRate:            safeRatio(a.closed, a.showed),
			RevenueCents:       a.revenueCents,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SetterID != result[j].SetterID {
			return result[i].SetterID < result[j].SetterID
		}
		return result[i].RepID < result[j].RepID
	})
	return result
}

// safeRatio divides, treating a zero denominator as zero rather than NaN.
func safeRatio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
