package grid

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kianlev/gridflex/core/events"
	"github.com/kianlev/gridflex/core/logger"
	"github.com/kianlev/gridflex/core/model"
	"github.com/kianlev/gridflex/internal/eventbus"
)

// DefaultMaintenanceWindow is the fixed duration of a scheduled
// maintenance window.
const DefaultMaintenanceWindow = 3600 * time.Second

// Scheduler owns all mutable grid state: the substation list, the
// pending demand requests and the maintenance jobs. Every public
// operation runs under a single mutex and to completion, so callers
// never observe a half-finished pass.
type Scheduler struct {
	mu          sync.Mutex
	substations []model.Substation
	index       map[string]int
	pending     []model.Request
	jobs        []model.MaintenanceJob
	window      time.Duration
	log         logger.Logger
	bus         eventbus.EventBus
	nowFn       func() time.Time
}

// New creates a Scheduler. A nil bus disables event publication; the
// maintenance window defaults to DefaultMaintenanceWindow when window
// is zero.
func New(window time.Duration, log logger.Logger, bus eventbus.EventBus) *Scheduler {
	if window <= 0 {
		window = DefaultMaintenanceWindow
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Scheduler{
		index:  make(map[string]int),
		window: window,
		log:    log,
		bus:    bus,
		nowFn:  time.Now,
	}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

// AddSubstation registers a substation. The insertion order is also the
// first-fit iteration order of the allocation pass.
func (s *Scheduler) AddSubstation(id string, capacityMW float64) error {
	if capacityMW <= 0 {
		return fmt.Errorf("%w: %q (%.2f MW)", ErrInvalidCapacity, id, capacityMW)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateSubstation, id)
	}
	s.index[id] = len(s.substations)
	s.substations = append(s.substations, model.NewSubstation(id, capacityMW))
	s.log.Infof("substation %s registered with %.1f MW", id, capacityMW)
	return nil
}

// SubmitRequest validates and enqueues a demand request. The returned
// request is a copy reflecting the Queued state; it can be used as a
// handle to correlate later events.
func (s *Scheduler) SubmitRequest(consumerID string, class model.PriorityClass, megawatts float64) (model.Request, error) {
	if megawatts <= 0 {
		return model.Request{}, fmt.Errorf("%w: %.2f MW from %q", ErrInvalidAmount, megawatts, consumerID)
	}
	if !class.Valid() {
		return model.Request{}, fmt.Errorf("%w: %d", ErrInvalidClass, class)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	req := model.NewRequest(consumerID, class, megawatts, s.nowFn())
	req.State = model.RequestQueued
	s.pending = append(s.pending, req)
	s.log.Debugw("demand queued", map[string]any{
		"request_id": req.ID,
		"consumer":   req.ConsumerID,
		"class":      req.Class.String(),
		"mw":         req.MegaWatts,
	})
	s.publish(events.RequestEvent{Request: req, Time: req.SubmittedAt})
	return req, nil
}

// ScheduleMaintenance schedules a fixed-length maintenance window for
// the substation, starting startDelay from now. Multiple overlapping
// jobs against the same substation are allowed; the substation stays
// offline while any of them is in progress.
func (s *Scheduler) ScheduleMaintenance(substationID string, startDelay time.Duration) (model.MaintenanceJob, error) {
	if startDelay < 0 {
		startDelay = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[substationID]; !ok {
		return model.MaintenanceJob{}, fmt.Errorf("%w: %q", ErrUnknownSubstation, substationID)
	}
	start := s.nowFn().Add(startDelay)
	job := model.NewMaintenanceJob(substationID, start, start.Add(s.window))
	s.jobs = append(s.jobs, job)
	s.log.Infof("maintenance scheduled for %s at %s", substationID, start.Format(time.RFC3339))
	return job, nil
}

// Allocation pairs a served request with the substation that took it.
type Allocation struct {
	Request      model.Request
	SubstationID string
}

// PassResult reports the outcome of one scheduling pass.
type PassResult struct {
	Time      time.Time
	Allocated []Allocation
	Shed      []model.Request
	Offline   int
	Duration  time.Duration
}

// AllocatedMW returns the total power allocated by the pass.
func (r PassResult) AllocatedMW() float64 {
	var mw float64
	for _, a := range r.Allocated {
		mw += a.Request.MegaWatts
	}
	return mw
}

// ShedMW returns the total power shed by the pass.
func (r PassResult) ShedMW() float64 {
	var mw float64
	for _, req := range r.Shed {
		mw += req.MegaWatts
	}
	return mw
}

// RunSchedulingPass advances maintenance jobs against now, recomputes
// substation availability and drains the pending requests in priority
// order using first-fit allocation. Requests that find no substation
// with sufficient available capacity are shed; shedding is final.
func (s *Scheduler) RunSchedulingPass(now time.Time) PassResult {
	started := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	res := PassResult{Time: now}
	res.Offline = s.advanceMaintenance(now)

	queue := make([]model.Request, len(s.pending))
	copy(queue, s.pending)
	sort.SliceStable(queue, func(i, j int) bool { return queue[i].Less(queue[j]) })

	var still []model.Request
	for i := range queue {
		req := &queue[i]
		if target, ok := s.allocate(req.MegaWatts); ok {
			req.State = model.RequestAllocated
			res.Allocated = append(res.Allocated, Allocation{Request: *req, SubstationID: target})
			s.publish(events.RequestEvent{Request: *req, SubstationID: target, Time: now})
			continue
		}
		req.State = model.RequestShed
		res.Shed = append(res.Shed, *req)
		s.log.Warnf("shedding %.1f MW for %s: no available capacity", req.MegaWatts, req.ConsumerID)
		s.publish(events.RequestEvent{Request: *req, Time: now})
	}
	// Terminal requests leave the queue for good. Nothing re-enters the
	// Queued state today, but the filter keeps the pass tolerant of a
	// future transition that does.
	for _, req := range queue {
		if req.State == model.RequestQueued {
			still = append(still, req)
		}
	}
	s.pending = still

	res.Duration = time.Since(started)
	s.log.Infof("pass complete: %d allocated (%.1f MW), %d shed (%.1f MW), %d offline",
		len(res.Allocated), res.AllocatedMW(), len(res.Shed), res.ShedMW(), res.Offline)
	s.publish(events.PassEvent{
		Time:         now,
		Processed:    len(queue),
		Allocated:    len(res.Allocated),
		Shed:         len(res.Shed),
		AllocatedMW:  res.AllocatedMW(),
		ShedMW:       res.ShedMW(),
		OfflineCount: res.Offline,
		Duration:     res.Duration,
	})
	return res
}

// allocate walks the substations in registration order and books the
// first one with enough available capacity.
func (s *Scheduler) allocate(mw float64) (string, bool) {
	for i := range s.substations {
		if s.substations[i].TryAllocate(mw) {
			return s.substations[i].ID, true
		}
	}
	return "", false
}

// advanceMaintenance moves every job forward and derives each
// substation's online flag from scratch: offline iff at least one job
// targeting it is in progress. Recomputing rather than toggling keeps
// overlapping jobs against the same substation consistent regardless
// of their order in the list. Returns the number of offline
// substations.
func (s *Scheduler) advanceMaintenance(now time.Time) int {
	inProgress := make(map[string]bool)
	for i := range s.jobs {
		before := s.jobs[i].State
		s.jobs[i].Advance(now)
		if s.jobs[i].State != before {
			s.log.Infof("maintenance on %s: %s -> %s", s.jobs[i].SubstationID, before, s.jobs[i].State)
			s.publish(events.MaintenanceEvent{Job: s.jobs[i], Time: now})
		}
		if s.jobs[i].State == model.MaintenanceInProgress {
			inProgress[s.jobs[i].SubstationID] = true
		}
	}
	offline := 0
	for i := range s.substations {
		online := !inProgress[s.substations[i].ID]
		if s.substations[i].Online != online {
			s.log.Infof("substation %s is now %s", s.substations[i].ID, onlineWord(online))
		}
		s.substations[i].Online = online
		if !online {
			offline++
		}
	}
	return offline
}

func onlineWord(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}

func (s *Scheduler) publish(e eventbus.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}
