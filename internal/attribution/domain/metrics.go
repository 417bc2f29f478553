package domain

// SetterMetrics is the per-setter performance fold, keyed by the attributed
// setter id (or the InboundSetter sentinel).
type SetterMetrics struct {
	SetterID               string
	UniqueContacts         int
	Dials                  int
	DiscoveriesSet         int
	AppointmentsBooked     int
	AppointmentsShowed     int
	AppointmentsClosed     int
	ShowRate               float64
	SetterWinRate          float64
	AttributedRevenueCents int64
}

// RepMetrics is the per-rep performance fold, keyed by the rep recorded on
// the session's held appointment.
type RepMetrics struct {
	RepID              string
	SalesCallsHeld     int
	Closed             int
	WinRate            float64
	RevenueCents       int64
	CashCollectedCents int64
	AvgOrderValueCents int64
	AvgSalesCycleDays  float64
}

// PairMetrics is the setter x rep performance fold used for the pairing matrix.
type PairMetrics struct {
	SetterID           string
	RepID              string
	AppointmentsBooked int
	Showed             int
	Closed             int
	ShowRate           float64
	WinRate            float64
	RevenueCents       int64
}

// MetricsReport is the full result of a metrics computation, including which
// event sources were unavailable and degraded to empty (partial results).
type MetricsReport struct {
	Setters          []SetterMetrics
	Reps             []RepMetrics
	Pairs            []PairMetrics
	DegradedSources  []string
	SessionsComputed int
}
