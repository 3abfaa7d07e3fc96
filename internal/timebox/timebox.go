// Package timebox measures elapsed and remaining time against a phase's
// allocated budget.
//
// Everything here is a pure function of a start time and an allocation;
// there are no side effects and calls are safe to repeat. The warning
// levels feed the orchestrator's decision to accept early-out completion.
package timebox

import "time"

// WarningLevel classifies how much of a time budget remains.
type WarningLevel string

const (
	// WarningNone means more than 25% of the budget remains.
	WarningNone WarningLevel = "none"

	// WarningLow means 25% or less of the budget remains.
	WarningLow WarningLevel = "warning"

	// WarningCritical means 10% or less of the budget remains.
	WarningCritical WarningLevel = "critical"
)

// Tracker measures one phase's time budget.
//
// Now is an injectable clock for tests; the zero value falls back to
// time.Now.
type Tracker struct {
	// Allocation is the phase's time budget.
	Allocation time.Duration

	// Start is when the phase timer began.
	Start time.Time

	// Now overrides the clock when non-nil.
	Now func() time.Time
}

// NewTracker creates a tracker for a phase with the given allocation in
// minutes, started at the given time.
func NewTracker(allocationMinutes int, start time.Time) *Tracker {
	return &Tracker{
		Allocation: time.Duration(allocationMinutes) * time.Minute,
		Start:      start,
	}
}

func (t *Tracker) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// Elapsed returns the time since the phase started.
func (t *Tracker) Elapsed() time.Duration {
	return t.now().Sub(t.Start)
}

// Remaining returns the unspent budget, never negative.
func (t *Tracker) Remaining() time.Duration {
	remaining := t.Allocation - t.Elapsed()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// HalfElapsed reports whether at least half the allocation has been spent.
// This is the escape hatch that keeps a stalled user from being trapped in
// a phase indefinitely.
func (t *Tracker) HalfElapsed() bool {
	return t.Allocation > 0 && t.Elapsed()*2 >= t.Allocation
}

// Warning returns the warning level for a budget with the given totals.
func Warning(totalAllocated, totalElapsed time.Duration) WarningLevel {
	if totalAllocated <= 0 {
		return WarningNone
	}
	remaining := totalAllocated - totalElapsed
	if remaining < 0 {
		remaining = 0
	}
	ratio := float64(remaining) / float64(totalAllocated)
	switch {
	case ratio <= 0.10:
		return WarningCritical
	case ratio <= 0.25:
		return WarningLow
	default:
		return WarningNone
	}
}
