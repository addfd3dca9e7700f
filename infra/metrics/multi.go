package metrics

import coremetrics "github.com/kianlev/gridflex/core/metrics"

// MultiSink fans request outcomes out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRequestOutcomes forwards the outcomes to all sinks, returning
// the first error encountered.
func (m *MultiSink) RecordRequestOutcomes(outcomes []coremetrics.RequestOutcome) error {
	for _, s := range m.Sinks {
		if err := s.RecordRequestOutcomes(outcomes); err != nil {
			return err
		}
	}
	return nil
}

// RecordPass forwards pass summaries to sinks that support them.
func (m *MultiSink) RecordPass(sum coremetrics.PassSummary) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.PassRecorder); ok {
			if err := rec.RecordPass(sum); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSubstationStates forwards substation snapshots to sinks that
// support them.
func (m *MultiSink) RecordSubstationStates(states []coremetrics.SubstationState) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.SubstationRecorder); ok {
			if err := rec.RecordSubstationStates(states); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordMaintenance forwards maintenance transitions to sinks that
// support them.
func (m *MultiSink) RecordMaintenance(tr coremetrics.MaintenanceTransition) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.MaintenanceRecorder); ok {
			if err := rec.RecordMaintenance(tr); err != nil {
				return err
			}
		}
	}
	return nil
}
