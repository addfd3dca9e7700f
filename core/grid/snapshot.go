package grid

import (
	"sort"
	"time"

	"github.com/kianlev/gridflex/core/model"
)

// SubstationStatus is the read-only view of one substation.
type SubstationStatus struct {
	ID         string  `json:"id"`
	UsedMW     float64 `json:"used_mw"`
	CapacityMW float64 `json:"capacity_mw"`
	Online     bool    `json:"online"`
}

// PendingRequest is the read-only view of one queued demand request.
type PendingRequest struct {
	ID          string              `json:"id"`
	ConsumerID  string              `json:"consumer_id"`
	MegaWatts   float64             `json:"mw"`
	Class       model.PriorityClass `json:"class"`
	ClassName   string              `json:"class_name"`
	SubmittedAt time.Time           `json:"submitted_at"`
}

// MaintenanceStatus is the read-only view of one maintenance job.
type MaintenanceStatus struct {
	SubstationID string    `json:"substation_id"`
	State        string    `json:"state"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
}

// StatusView is a consistent snapshot of the whole grid.
type StatusView struct {
	Time        time.Time           `json:"time"`
	Substations []SubstationStatus  `json:"substations"`
	Pending     []PendingRequest    `json:"pending"`
	Maintenance []MaintenanceStatus `json:"maintenance"`
}

// Snapshot returns a read-only view of substations, pending requests in
// priority order and maintenance jobs. It copies everything it reports,
// so inspecting the view never disturbs scheduler state.
func (s *Scheduler) Snapshot() StatusView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := StatusView{Time: s.nowFn()}
	for _, sub := range s.substations {
		view.Substations = append(view.Substations, SubstationStatus{
			ID:         sub.ID,
			UsedMW:     sub.UsedMW,
			CapacityMW: sub.CapacityMW,
			Online:     sub.Online,
		})
	}

	queue := make([]model.Request, len(s.pending))
	copy(queue, s.pending)
	sort.SliceStable(queue, func(i, j int) bool { return queue[i].Less(queue[j]) })
	for _, req := range queue {
		view.Pending = append(view.Pending, PendingRequest{
			ID:          req.ID,
			ConsumerID:  req.ConsumerID,
			MegaWatts:   req.MegaWatts,
			Class:       req.Class,
			ClassName:   req.Class.String(),
			SubmittedAt: req.SubmittedAt,
		})
	}

	for _, job := range s.jobs {
		view.Maintenance = append(view.Maintenance, MaintenanceStatus{
			SubstationID: job.SubstationID,
			State:        job.State.String(),
			Start:        job.Start,
			End:          job.End,
		})
	}
	return view
}

// Substations returns a copy of the current substation list in
// first-fit order, for planning and display purposes.
func (s *Scheduler) Substations() []model.Substation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Substation, len(s.substations))
	copy(out, s.substations)
	return out
}

// MaintenanceJobs returns a copy of all known maintenance jobs.
func (s *Scheduler) MaintenanceJobs() []model.MaintenanceJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.MaintenanceJob, len(s.jobs))
	copy(out, s.jobs)
	return out
}
