package transport

import (
	"testing"

	"salesops_backend/internal/attribution/domain"
)

func TestMetricsQuery_PolicyFallsBackToConfiguredDefaults(t *testing.T) {
	defaults := domain.SessionLinkingPolicy{
		AttributionMode:       domain.ModePrimary,
		TimeWindowDays:        21,
		SameCallWindowMinutes: 45,
	}

	p := MetricsQuery{}.Policy(defaults)

	if p.TimeWindowDays != 21 || p.SameCallWindowMinutes != 45 {
		t.Fatalf("expected configured windows 21/45, got %d/%d", p.TimeWindowDays, p.SameCallWindowMinutes)
	}
	if p.AttributionMode != domain.ModePrimary {
		t.Fatalf("expected primary mode, got %s", p.AttributionMode)
	}
}

func TestMetricsQuery_PolicyKeepsExplicitParameters(t *testing.T) {
	defaults := domain.SessionLinkingPolicy{TimeWindowDays: 21, SameCallWindowMinutes: 45}

	q := MetricsQuery{
		AttributionMode:       "last-touch",
		ExcludeInCallDials:    true,
		TimeWindowDays:        7,
		SameCallWindowMinutes: 10,
	}
	p := q.Policy(defaults)

	if p.AttributionMode != domain.ModeLastTouch {
		t.Fatalf("expected last-touch, got %s", p.AttributionMode)
	}
	if p.TimeWindowDays != 7 || p.SameCallWindowMinutes != 10 {
		t.Fatalf("explicit windows were replaced: %d/%d", p.TimeWindowDays, p.SameCallWindowMinutes)
	}
	if !p.ExcludeInCallDials || p.ExcludeRepDials {
		t.Fatalf("dedup flags mishandled: %+v", p)
	}
}
