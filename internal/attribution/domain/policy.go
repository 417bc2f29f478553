package domain

import "time"

// AttributionMode selects which touch in a session receives setter credit.
type AttributionMode string

const (
	// ModePrimary credits the setter on the session's primary event.
	ModePrimary AttributionMode = "primary"
	// ModeLastTouch credits the setter of the latest setter-bearing event
	// strictly before the primary conversion.
	ModeLastTouch AttributionMode = "last-touch"
	// ModeAssist is an extension point for multi-touch credit splitting.
	// It currently resolves identically to ModePrimary; the weighted-split
	// semantics are intentionally not implemented yet.
	ModeAssist AttributionMode = "assist"
)

// Valid reports whether the mode is one of the known attribution modes.
func (m AttributionMode) Valid() bool {
	switch m {
	case ModePrimary, ModeLastTouch, ModeAssist:
		return true
	}
	return false
}

// Default window sizes for heuristic session linking.
const (
	DefaultTimeWindowDays        = 14
	DefaultSameCallWindowMinutes = 30
)

// SessionLinkingPolicy configures session reconstruction, deduplication,
// and attribution. It is request-scoped configuration, never persisted.
type SessionLinkingPolicy struct {
	// ExcludeInCallDials drops dial events from sessions that also contain
	// a conversion.
	ExcludeInCallDials bool
	// ExcludeRepDials drops dial events performed by a rep rather than a setter.
	ExcludeRepDials bool
	AttributionMode AttributionMode
	// TimeWindowDays is the maximum look-back for heuristic linking.
	TimeWindowDays int
	// SameCallWindowMinutes is the maximum gap between a dial/discovery and
	// its conversion to be considered the same call.
	SameCallWindowMinutes int
}

// DefaultPolicy returns the policy used when a request supplies none.
func DefaultPolicy() SessionLinkingPolicy {
	return SessionLinkingPolicy{
		AttributionMode:       ModePrimary,
		TimeWindowDays:        DefaultTimeWindowDays,
		SameCallWindowMinutes: DefaultSameCallWindowMinutes,
	}
}

// Normalized returns a copy with zero or invalid fields replaced by defaults.
func (p SessionLinkingPolicy) Normalized() SessionLinkingPolicy {
	if p.TimeWindowDays <= 0 {
		p.TimeWindowDays = DefaultTimeWindowDays
	}
	if p.SameCallWindowMinutes <= 0 {
		p.SameCallWindowMinutes = DefaultSameCallWindowMinutes
	}
	if !p.AttributionMode.Valid() {
		p.AttributionMode = ModePrimary
	}
	return p
}

// NormalizedAgainst returns a copy with zero or invalid fields replaced by
// the given defaults. The defaults themselves are normalized first, so a
// zero-value defaults policy behaves exactly like Normalized.
func (p SessionLinkingPolicy) NormalizedAgainst(defaults SessionLinkingPolicy) SessionLinkingPolicy {
	defaults = defaults.Normalized()
	if p.TimeWindowDays <= 0 {
		p.TimeWindowDays = defaults.TimeWindowDays
	}
	if p.SameCallWindowMinutes <= 0 {
		p.SameCallWindowMinutes = defaults.SameCallWindowMinutes
	}
	if !p.AttributionMode.Valid() {
		p.AttributionMode = defaults.AttributionMode
	}
	return p
}

// TimeWindow returns the heuristic look-back window as a duration.
func (p SessionLinkingPolicy) TimeWindow() time.Duration {
	return time.Duration(p.TimeWindowDays) * 24 * time.Hour
}

// SameCallWindow returns the same-call gap limit as a duration.
func (p SessionLinkingPolicy) SameCallWindow() time.Duration {
	return time.Duration(p.SameCallWindowMinutes) * time.Minute
}

// EventFilters restricts which events enter the computation. An event passes
// when its setter/rep id is absent or present in the corresponding list;
// absence never excludes.
type EventFilters struct {
	SetterIDs []string
	RepIDs    []string
}
