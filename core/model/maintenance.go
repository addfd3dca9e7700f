package model

import "time"

// MaintenanceState tracks the lifecycle of a maintenance window.
// Transitions are monotonic: Scheduled -> InProgress -> Done.
type MaintenanceState int

const (
	MaintenanceScheduled MaintenanceState = iota
	MaintenanceInProgress
	MaintenanceDone
)

// String returns a human-readable representation of the state.
func (s MaintenanceState) String() string {
	switch s {
	case MaintenanceScheduled:
		return "scheduled"
	case MaintenanceInProgress:
		return "in_progress"
	case MaintenanceDone:
		return "done"
	default:
		return "unknown"
	}
}

// MaintenanceJob is a time-windowed job forcing one substation offline
// while in progress. Jobs reference substations by ID and do not own
// them; several jobs may target the same substation.
type MaintenanceJob struct {
	SubstationID string
	Start        time.Time
	End          time.Time
	State        MaintenanceState
}

// NewMaintenanceJob creates a job in the Scheduled state for the
// window [start, end).
func NewMaintenanceJob(substationID string, start, end time.Time) MaintenanceJob {
	return MaintenanceJob{SubstationID: substationID, Start: start, End: end, State: MaintenanceScheduled}
}

// Advance moves the job state forward according to now. Both checks run
// in the same call, so a window that fully elapsed between two passes
// goes Scheduled -> InProgress -> Done at once. Advancing twice with
// the same now is a no-op the second time.
func (j *MaintenanceJob) Advance(now time.Time) {
	if j.State == MaintenanceScheduled && !now.Before(j.Start) {
		j.State = MaintenanceInProgress
	}
	if j.State == MaintenanceInProgress && !now.Before(j.End) {
		j.State = MaintenanceDone
	}
}
