package events

import (
	"time"

	"github.com/kianlev/gridflex/core/model"
)

// RequestEvent is published whenever a demand request changes state:
// once when it is queued and once when a pass allocates or sheds it.
type RequestEvent struct {
	Request      model.Request
	SubstationID string // set when the request was allocated
	Time         time.Time
}

// MaintenanceEvent is published when a maintenance job transitions.
type MaintenanceEvent struct {
	Job  model.MaintenanceJob
	Time time.Time
}

// PassEvent summarises one completed scheduling pass.
type PassEvent struct {
	Time         time.Time
	Processed    int
	Allocated    int
	Shed         int
	AllocatedMW  float64
	ShedMW       float64
	OfflineCount int
	Duration     time.Duration
}
