package usecase

import "time"

// RunMetrics receives reconciliation counters.
type RunMetrics interface {
	ObserveResolution(status ResolutionStatus)
	IncRemoteFailure(operation string)
	AddFoldedEvents(applied, skipped int)
	ObserveMatchDuration(d time.Duration)
}

type nopRunMetrics struct{}

func (nopRunMetrics) ObserveResolution(ResolutionStatus) {}
func (nopRunMetrics) IncRemoteFailure(string)            {}
func (nopRunMetrics) AddFoldedEvents(int, int)           {}
func (nopRunMetrics) ObserveMatchDuration(time.Duration) {}
