// Package service orchestrates the attribution pipeline: fetch the three
// event sources, normalize, link sessions, deduplicate, attribute, aggregate.
package service

import (
	"context"
	"time"

	"salesops_backend/internal/attribution/domain"
	"salesops_backend/internal/attribution/engine"
	"salesops_backend/platform/apperr"
	"salesops_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// EventSource reads raw rows from the three independent event stores.
// Satisfied by the attribution repository.
type EventSource interface {
	ListDials(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]domain.RawDial, error)
	ListDiscoveries(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]domain.RawDiscovery, error)
	ListAppointments(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]domain.RawAppointment, error)
}

// MetricsRequest is one metrics computation: an account, a date range, a
// linking policy, and optional allow-list filters.
type MetricsRequest struct {
	AccountID uuid.UUID
	From      time.Time
	To        time.Time
	Policy    domain.SessionLinkingPolicy
	Filters   domain.EventFilters
}

// Service computes attribution metrics over the event stores.
type Service struct {
	source EventSource
	log    *logger.Logger
}

// New creates a new attribution service.
func New(source EventSource, log *logger.Logger) *Service {
	return &Service{source: source, log: log}
}

// ComputeMetrics runs the full pipeline for one request.
//
// The three source fetches fan out concurrently; a failed source degrades to
// an empty list and is reported in the result's DegradedSources rather than
// failing the computation. Only when every source fails does the computation
// surface as unavailable.
func (s *Service) ComputeMetrics(ctx context.Context, req MetricsRequest) (domain.MetricsReport, error) {
	policy := req.Policy.Normalized()

	var (
		dials        []domain.RawDial
		discoveries  []domain.RawDiscovery
		appointments []domain.RawAppointment

		dialsErr, discoveriesErr, appointmentsErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dials, dialsErr = s.source.ListDials(gctx, req.AccountID, req.From, req.To)
		return nil
	})
	g.Go(func() error {
		discoveries, discoveriesErr = s.source.ListDiscoveries(gctx, req.AccountID, req.From, req.To)
		return nil
	})
	g.Go(func() error {
		appointments, appointmentsErr = s.source.ListAppointments(gctx, req.AccountID, req.From, req.To)
		return nil
	})
	_ = g.Wait()

	var degraded []string
	if dialsErr != nil {
		s.log.SourceDegraded("dials", dialsErr)
		degraded = append(degraded, "dials")
		dials = nil
	}
	if discoveriesErr != nil {
		s.log.SourceDegraded("discoveries", discoveriesErr)
		degraded = append(degraded, "discoveries")
		discoveries = nil
	}
	if appointmentsErr != nil {
		s.log.SourceDegraded("appointments", appointmentsErr)
		degraded = append(degraded, "appointments")
		appointments = nil
	}
	if len(degraded) == 3 {
		return domain.MetricsReport{}, apperr.Unavailable("no event source reachable").WithOp("ComputeMetrics")
	}

	events := engine.Normalize(dials, discoveries, appointments, req.Filters, s.log)
	sessions := engine.BuildSessions(events, policy)
	sessions = engine.Deduplicate(sessions, policy)
	sessions = engine.Attribute(sessions, policy)

	report := engine.Aggregate(sessions)
	report.DegradedSources = degraded
	return report, nil
}
