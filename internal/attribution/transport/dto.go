// Package transport defines the DTOs of the attribution HTTP surface.
package transport

import (
	"time"

	"salesops_backend/internal/attribution/domain"
)

// MetricsQuery binds the performance-metrics request parameters.
type MetricsQuery struct {
	AccountID string `form:"accountId" binding:"required,uuid"`
	From      string `form:"from" binding:"required"`
	To        string `form:"to" binding:"required"`

	AttributionMode       string `form:"attributionMode"`
	ExcludeInCallDials    bool   `form:"excludeInCallDials"`
	ExcludeRepDials       bool   `form:"excludeRepDials"`
	TimeWindowDays        int    `form:"timeWindowDays"`
	SameCallWindowMinutes int    `form:"sameCallWindowMinutes"`

	SetterIDs []string `form:"setterIds"`
	RepIDs    []string `form:"repIds"`
}

// Policy converts the bound query into a session-linking policy. Parameters
// the request leaves unset fall back to the deployment's configured defaults.
func (q MetricsQuery) Policy(defaults domain.SessionLinkingPolicy) domain.SessionLinkingPolicy {
	return domain.SessionLinkingPolicy{
		ExcludeInCallDials:    q.ExcludeInCallDials,
		ExcludeRepDials:       q.ExcludeRepDials,
		AttributionMode:       domain.AttributionMode(q.AttributionMode),
		TimeWindowDays:        q.TimeWindowDays,
		SameCallWindowMinutes: q.SameCallWindowMinutes,
	}.NormalizedAgainst(defaults)
}

// Filters converts the bound query into event allow-list filters.
func (q MetricsQuery) Filters() domain.EventFilters {
	return domain.EventFilters{
		SetterIDs: q.SetterIDs,
		RepIDs:    q.RepIDs,
	}
}

// SetterMetricsResponse is one setter row of the performance report.
type SetterMetricsResponse struct {
	SetterID           string  `json:"setterId"`
	UniqueContacts     int     `json:"uniqueContacts"`
	Dials              int     `json:"dials"`
	DiscoveriesSet     int     `json:"discoveriesSet"`
	AppointmentsBooked int     `json:"appointmentsBooked"`
	AppointmentsShowed int     `json:"appointmentsShowed"`
	AppointmentsClosed int     `json:"appointmentsClosed"`
	ShowRate           float64 `json:"showRate"`
	SetterWinRate      float64 `json:"setterWinRate"`
	AttributedRevenue  int64   `json:"attributedRevenueCents"`
}

// RepMetricsResponse is one rep row of the performance report.
type RepMetricsResponse struct {
	RepID             string  `json:"repId"`
	SalesCallsHeld    int     `json:"salesCallsHeld"`
	Closed            int     `json:"closed"`
	WinRate           float64 `json:"winRate"`
	Revenue           int64   `json:"revenueCents"`
	CashCollected     int64   `json:"cashCollectedCents"`
	AvgOrderValue     int64   `json:"avgOrderValueCents"`
	AvgSalesCycleDays float64 `json:"avgSalesCycleDays"`
}

// PairMetricsResponse is one setter x rep cell of the pairing matrix.
type PairMetricsResponse struct {
	SetterID           string  `json:"setterId"`
	RepID              string  `json:"repId"`
	AppointmentsBooked int     `json:"appointmentsBooked"`
	Showed             int     `json:"showed"`
	Closed             int     `json:"closed"`
	ShowRate           float64 `json:"showRate"`
	WinRate            float64 `json:"winRate"`
	Revenue            int64   `json:"revenueCents"`
}

// MetricsResponse is the full performance report.
type MetricsResponse struct {
	Setters          []SetterMetricsResponse `json:"setterMetrics"`
	Reps             []RepMetricsResponse    `json:"repMetrics"`
	Pairs            []PairMetricsResponse   `json:"pairMetrics"`
	DegradedSources  []string                `json:"degradedSources,omitempty"`
	SessionsComputed int                     `json:"sessionsComputed"`
	From             time.Time               `json:"from"`
	To               time.Time               `json:"to"`
}

// FromReport converts a domain metrics report to its response shape.
func FromReport(report domain.MetricsReport, from, to time.Time) MetricsResponse {
	resp := MetricsResponse{
		Setters:          make([]SetterMetricsResponse, 0, len(report.Setters)),
		Reps:             make([]RepMetricsResponse, 0, len(report.Reps)),
		Pairs:            make([]PairMetricsResponse, 0, len(report.Pairs)),
		DegradedSources:  report.DegradedSources,
		SessionsComputed: report.SessionsComputed,
		From:             from,
		To:               to,
	}
	for _, m := range report.Setters {
		resp.Setters = append(resp.Setters, SetterMetricsResponse{
			SetterID:           m.SetterID,
			UniqueContacts:     m.UniqueContacts,
			Dials:              m.Dials,
			DiscoveriesSet:     m.DiscoveriesSet,
			AppointmentsBooked: m.AppointmentsBooked,
			AppointmentsShowed: m.AppointmentsShowed,
			AppointmentsClosed: m.AppointmentsClosed,
			ShowRate:           m.ShowRate,
			SetterWinRate:      m.SetterWinRate,
			AttributedRevenue:  m.AttributedRevenueCents,
		})
	}
	for _, m := range report.Reps {
		resp.Reps = append(resp.Reps, RepMetricsResponse{
			RepID:             m.RepID,
			SalesCallsHeld:    m.SalesCallsHeld,
			Closed:            m.Closed,
			WinRate:           m.WinRate,
			Revenue:           m.RevenueCents,
			CashCollected:     m.CashCollectedCents,
			AvgOrderValue:     m.AvgOrderValueCents,
			AvgSalesCycleDays: m.AvgSalesCycleDays,
		})
	}
	for _, m := range report.Pairs {
		resp.Pairs = append(resp.Pairs, PairMetricsResponse{
			SetterID:           m.SetterID,
			RepID:              m.RepID,
			AppointmentsBooked: m.AppointmentsBooked,
			Showed:             m.Showed,
			Closed:             m.Closed,
			ShowRate:           m.ShowRate,
			WinRate:            m.WinRate,
			Revenue:            m.RevenueCents,
		})
	}
	return resp
}
