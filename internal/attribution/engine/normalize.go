package engine

import (
	"sort"
	"time"

	"salesops_backend/internal/attribution/domain"
	"salesops_backend/platform/logger"

	"github.com/google/uuid"
)

// Normalize converts raw rows from the three independent event stores into a
// single time-ordered event list. Malformed rows (missing contact, zero
// timestamp) are dropped with a warning rather than aborting the batch.
//
// Allow-list filtering contract: an event passes when its setter/rep id is
// absent or present in the corresponding list. Absence is never excluded;
// only an explicit mismatch excludes.
func Normalize(
	dials []domain.RawDial,
	discoveries []domain.RawDiscovery,
	appointments []domain.RawAppointment,
	filters domain.EventFilters,
	log *logger.Logger,
) []domain.Event {
	setterAllow := toSet(filters.SetterIDs)
	repAllow := toSet(filters.RepIDs)

	events := make([]domain.Event, 0, len(dials)+len(discoveries)+len(appointments))

	for _, row := range dials {
		if reason, ok := validRow(row.ContactID, row.Timestamp); !ok {
			logDrop(log, "dials", row.ID, reason)
			continue
		}
		if !idAllowed(row.SetterID, setterAllow) || !idAllowed(row.RepID, repAllow) {
			continue
		}
		events = append(events, domain.Event{
			ID:             row.ID,
			Kind:           domain.KindDial,
			ContactID:      row.ContactID,
			SetterID:       row.SetterID,
			RepID:          row.RepID,
			CorrelationKey: row.CorrelationKey,
			Timestamp:      row.Timestamp,
		})
	}

	for _, row := range discoveries {
		if reason, ok := validRow(row.ContactID, row.Timestamp); !ok {
			logDrop(log, "discoveries", row.ID, reason)
			continue
		}
		if !idAllowed(row.SetterID, setterAllow) {
			continue
		}
		events = append(events, domain.Event{
			ID:             row.ID,
			Kind:           domain.KindDiscovery,
			ContactID:      row.ContactID,
			SetterID:       row.SetterID,
			CorrelationKey: row.CorrelationKey,
			Timestamp:      row.Timestamp,
		})
	}

	for _, row := range appointments {
		if reason, ok := validRow(row.ContactID, row.Timestamp); !ok {
			logDrop(log, "appointments", row.ID, reason)
			continue
		}
		if !idAllowed(row.SetterID, setterAllow) || !idAllowed(row.RepID, repAllow) {
			continue
		}
		events = append(events, domain.Event{
			ID:                 row.ID,
			Kind:               domain.KindAppointment,
			ContactID:          row.ContactID,
			SetterID:           row.SetterID,
			RepID:              row.RepID,
			CorrelationKey:     row.CorrelationKey,
			Timestamp:          row.Timestamp,
			RevenueCents:       row.RevenueCents,
			CashCollectedCents: row.CashCollectedCents,
			Showed:             row.Showed,
			Closed:             row.Closed,
			CloseTimestamp:     row.CloseTimestamp,
		})
	}

	sortEvents(events)
	return events
}

// sortEvents orders events by timestamp, event id as the unique tie key.
func sortEvents(events []domain.Event) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.Before(events[j].Timestamp)
		}
		return events[i].ID.String() < events[j].ID.String()
	})
}

func validRow(contactID uuid.UUID, ts time.Time) (string, bool) {
	if contactID == uuid.Nil {
		return "missing contact id", false
	}
	if ts.IsZero() {
		return "missing timestamp", false
	}
	return "", true
}

func logDrop(log *logger.Logger, source string, id uuid.UUID, reason string) {
	if log != nil {
		log.EventDropped(source, id.String(), reason)
	}
}

func toSet(ids []string) map[string]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func idAllowed(id *uuid.UUID, allow map[string]struct{}) bool {
	if allow == nil || id == nil {
		return true
	}
	_, ok := allow[id.String()]
	return ok
}
