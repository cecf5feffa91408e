package progress

import "time"

// Progress is the process-wide bookkeeping of the planner.
// It is created on the first activation and never deleted.
type Progress struct {
	DaysStartedCount int
	// FirstActivationDate is nil until the first reconciliation pass ran.
	FirstActivationDate *time.Time
	// LastReconciledDate is the local midnight the cross-day sweep resumes from.
	LastReconciledDate *time.Time
	LastReconciledAt   *time.Time
}

// Bootstrapped reports whether the first activation was already recorded.
func (p Progress) Bootstrapped() bool {
	return p.FirstActivationDate != nil
}
