package metrics

import (
	"time"

	"github.com/kianlev/gridflex/core/model"
)

// RequestOutcome represents one request decided by a scheduling pass.
type RequestOutcome struct {
	RequestID    string
	ConsumerID   string
	Class        model.PriorityClass
	MegaWatts    float64
	State        model.RequestState
	SubstationID string // empty when the request was shed
	Time         time.Time
}

// MetricsSink records request outcomes for observability purposes.
type MetricsSink interface {
	RecordRequestOutcomes(outcomes []RequestOutcome) error
}

// PassSummary aggregates one scheduling pass.
type PassSummary struct {
	Time        time.Time
	Processed   int
	Allocated   int
	Shed        int
	AllocatedMW float64
	ShedMW      float64
	Duration    time.Duration
}

// PassRecorder records per-pass summaries.
type PassRecorder interface {
	RecordPass(s PassSummary) error
}

// SubstationState is a snapshot of one substation after a pass.
type SubstationState struct {
	SubstationID string
	UsedMW       float64
	CapacityMW   float64
	Online       bool
	Time         time.Time
}

// SubstationRecorder records substation snapshots.
type SubstationRecorder interface {
	RecordSubstationStates(states []SubstationState) error
}

// MaintenanceTransition captures a maintenance job state change.
type MaintenanceTransition struct {
	SubstationID string
	State        model.MaintenanceState
	Time         time.Time
}

// MaintenanceRecorder records maintenance transitions.
type MaintenanceRecorder interface {
	RecordMaintenance(tr MaintenanceTransition) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRequestOutcomes([]RequestOutcome) error { return nil }
