package grid

import (
	"errors"
	"testing"
	"time"

	"github.com/kianlev/gridflex/core/events"
	"github.com/kianlev/gridflex/core/model"
	"github.com/kianlev/gridflex/internal/eventbus"
)

func newTestScheduler(t *testing.T, caps map[string]float64) *Scheduler {
	t.Helper()
	s := New(0, nil, nil)
	for _, id := range []string{"S01", "S02", "S03"} {
		if c, ok := caps[id]; ok {
			if err := s.AddSubstation(id, c); err != nil {
				t.Fatalf("add %s: %v", id, err)
			}
		}
	}
	return s
}

// fixedClock makes submissions deterministic and strictly ordered.
func fixedClock(s *Scheduler, start time.Time) func() time.Time {
	t := start
	s.nowFn = func() time.Time {
		t = t.Add(time.Second)
		return t
	}
	return s.nowFn
}

func TestAllocationBothFit(t *testing.T) {
	s := newTestScheduler(t, map[string]float64{"S01": 50, "S02": 40})
	fixedClock(s, time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	if _, err := s.SubmitRequest("C1", model.ClassIndustrial, 45); err != nil {
		t.Fatalf("submit C1: %v", err)
	}
	if _, err := s.SubmitRequest("C2", model.ClassResidential, 10); err != nil {
		t.Fatalf("submit C2: %v", err)
	}

	res := s.RunSchedulingPass(time.Now())
	if len(res.Allocated) != 2 || len(res.Shed) != 0 {
		t.Fatalf("got %d allocated, %d shed", len(res.Allocated), len(res.Shed))
	}
	byConsumer := map[string]string{}
	for _, a := range res.Allocated {
		byConsumer[a.Request.ConsumerID] = a.SubstationID
	}
	if byConsumer["C1"] != "S01" {
		t.Fatalf("C1 on %s, want S01", byConsumer["C1"])
	}
	if byConsumer["C2"] != "S02" {
		t.Fatalf("C2 on %s, want S02", byConsumer["C2"])
	}
	if len(s.Snapshot().Pending) != 0 {
		t.Fatalf("pending queue not drained")
	}
}

func TestShedWhenNoCapacity(t *testing.T) {
	s := newTestScheduler(t, map[string]float64{"S01": 10})
	if _, err := s.SubmitRequest("C3", model.ClassCommercial, 15); err != nil {
		t.Fatalf("submit: %v", err)
	}
	res := s.RunSchedulingPass(time.Now())
	if len(res.Shed) != 1 || res.Shed[0].ConsumerID != "C3" {
		t.Fatalf("expected C3 shed, got %+v", res.Shed)
	}
	if res.Shed[0].State != model.RequestShed {
		t.Fatalf("state = %v, want shed", res.Shed[0].State)
	}
	// Shedding is final: a later pass with free capacity does not
	// revisit the request.
	res = s.RunSchedulingPass(time.Now())
	if len(res.Allocated) != 0 || len(res.Shed) != 0 {
		t.Fatalf("shed request revisited: %+v", res)
	}
}

func TestPassLeavesNoTerminalRequestsBehind(t *testing.T) {
	s := newTestScheduler(t, map[string]float64{"S01": 50, "S02": 40})
	fixedClock(s, time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	if _, err := s.SubmitRequest("C1", model.ClassIndustrial, 45); err != nil {
		t.Fatalf("submit C1: %v", err)
	}
	if _, err := s.SubmitRequest("C2", model.ClassResidential, 100); err != nil {
		t.Fatalf("submit C2: %v", err)
	}

	res := s.RunSchedulingPass(time.Now())
	if len(res.Allocated) != 1 || len(res.Shed) != 1 {
		t.Fatalf("got %d allocated, %d shed", len(res.Allocated), len(res.Shed))
	}
	if n := len(s.Snapshot().Pending); n != 0 {
		t.Fatalf("pending after pass = %d, want 0", n)
	}

	// A second pass must not rebook the allocated request or retry the
	// shed one: usage stays put and the pass is empty.
	res = s.RunSchedulingPass(time.Now())
	if len(res.Allocated) != 0 || len(res.Shed) != 0 {
		t.Fatalf("terminal requests reprocessed: %+v", res)
	}
	var used float64
	for _, sub := range s.Substations() {
		used += sub.UsedMW
	}
	if used != 45 {
		t.Fatalf("used = %.1f MW, want 45 after one allocation", used)
	}
}

func TestPriorityOrderUnderScarcity(t *testing.T) {
	s := newTestScheduler(t, map[string]float64{"S01": 10})
	fixedClock(s, time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	// Submitted lowest priority first; only one 10 MW slot exists.
	if _, err := s.SubmitRequest("res", model.ClassResidential, 10); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SubmitRequest("com", model.ClassCommercial, 10); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SubmitRequest("ind", model.ClassIndustrial, 10); err != nil {
		t.Fatal(err)
	}

	res := s.RunSchedulingPass(time.Now())
	if len(res.Allocated) != 1 || res.Allocated[0].Request.ConsumerID != "ind" {
		t.Fatalf("industrial demand must win, got %+v", res.Allocated)
	}
	if len(res.Shed) != 2 {
		t.Fatalf("lower classes must be shed, got %d", len(res.Shed))
	}
}

func TestTieBreakEarlierWins(t *testing.T) {
	s := newTestScheduler(t, map[string]float64{"S01": 10})
	fixedClock(s, time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	if _, err := s.SubmitRequest("first", model.ClassIndustrial, 10); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SubmitRequest("second", model.ClassIndustrial, 10); err != nil {
		t.Fatal(err)
	}
	res := s.RunSchedulingPass(time.Now())
	if len(res.Allocated) != 1 || res.Allocated[0].Request.ConsumerID != "first" {
		t.Fatalf("earlier industrial request must be served, got %+v", res.Allocated)
	}
}

func TestMaintenanceTakesSubstationOffline(t *testing.T) {
	s := newTestScheduler(t, map[string]float64{"S01": 10, "S02": 100})
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	s.nowFn = func() time.Time { return now }

	job, err := s.ScheduleMaintenance("S02", 0)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if got := job.End.Sub(job.Start); got != DefaultMaintenanceWindow {
		t.Fatalf("window = %v, want %v", got, DefaultMaintenanceWindow)
	}

	// 50 MW only fits S02, which is under maintenance.
	if _, err := s.SubmitRequest("big", model.ClassIndustrial, 50); err != nil {
		t.Fatal(err)
	}
	res := s.RunSchedulingPass(now)
	if res.Offline != 1 {
		t.Fatalf("offline = %d, want 1", res.Offline)
	}
	if len(res.Shed) != 1 {
		t.Fatalf("request must be shed while S02 is offline, got %+v", res)
	}

	// After the window the substation serves again.
	if _, err := s.SubmitRequest("big2", model.ClassIndustrial, 50); err != nil {
		t.Fatal(err)
	}
	res = s.RunSchedulingPass(now.Add(DefaultMaintenanceWindow))
	if res.Offline != 0 {
		t.Fatalf("offline = %d after window, want 0", res.Offline)
	}
	if len(res.Allocated) != 1 || res.Allocated[0].SubstationID != "S02" {
		t.Fatalf("expected allocation on S02, got %+v", res.Allocated)
	}
}

func TestOverlappingMaintenanceJobs(t *testing.T) {
	s := newTestScheduler(t, map[string]float64{"S01": 10})
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	s.nowFn = func() time.Time { return now }

	if _, err := s.ScheduleMaintenance("S01", 0); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ScheduleMaintenance("S01", 30*time.Minute); err != nil {
		t.Fatal(err)
	}

	// First job done, second still in progress: offline either way the
	// jobs are iterated.
	res := s.RunSchedulingPass(now.Add(DefaultMaintenanceWindow + time.Minute))
	if res.Offline != 1 {
		t.Fatalf("substation must stay offline while any job is in progress")
	}
	res = s.RunSchedulingPass(now.Add(2*DefaultMaintenanceWindow + time.Hour))
	if res.Offline != 0 {
		t.Fatalf("substation must come back once all jobs are done")
	}
}

func TestValidationErrors(t *testing.T) {
	s := newTestScheduler(t, map[string]float64{"S01": 10})

	if err := s.AddSubstation("S01", 20); !errors.Is(err, ErrDuplicateSubstation) {
		t.Fatalf("duplicate id: %v", err)
	}
	if err := s.AddSubstation("S09", -1); !errors.Is(err, ErrInvalidCapacity) {
		t.Fatalf("bad capacity: %v", err)
	}
	if _, err := s.SubmitRequest("C1", model.ClassResidential, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount: %v", err)
	}
	if _, err := s.SubmitRequest("C1", model.PriorityClass(42), 5); !errors.Is(err, ErrInvalidClass) {
		t.Fatalf("bad class: %v", err)
	}
	if _, err := s.ScheduleMaintenance("nope", 0); !errors.Is(err, ErrUnknownSubstation) {
		t.Fatalf("unknown substation: %v", err)
	}
	if len(s.Snapshot().Pending) != 0 {
		t.Fatalf("rejected requests must not be queued")
	}
}

func TestSnapshotDoesNotMutate(t *testing.T) {
	s := newTestScheduler(t, map[string]float64{"S01": 50})
	fixedClock(s, time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	if _, err := s.SubmitRequest("C1", model.ClassResidential, 5); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SubmitRequest("C2", model.ClassIndustrial, 5); err != nil {
		t.Fatal(err)
	}

	first := s.Snapshot()
	second := s.Snapshot()
	if len(first.Pending) != 2 || len(second.Pending) != 2 {
		t.Fatalf("snapshot consumed pending requests")
	}
	if first.Pending[0].ConsumerID != "C2" {
		t.Fatalf("pending view not in priority order: %+v", first.Pending)
	}

	res := s.RunSchedulingPass(time.Now())
	if len(res.Allocated) != 2 {
		t.Fatalf("snapshots disturbed the queue: %+v", res)
	}

	// Mutating the view must not leak back into the scheduler.
	view := s.Snapshot()
	if len(view.Substations) > 0 {
		view.Substations[0].UsedMW = -999
	}
	if s.Snapshot().Substations[0].UsedMW == -999 {
		t.Fatalf("snapshot shares state with the scheduler")
	}
}

func TestPassEventsPublished(t *testing.T) {
	bus := eventbus.New()
	s := New(0, nil, bus)
	if err := s.AddSubstation("S01", 10); err != nil {
		t.Fatal(err)
	}
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	if _, err := s.SubmitRequest("C1", model.ClassCommercial, 4); err != nil {
		t.Fatal(err)
	}
	s.RunSchedulingPass(time.Now())

	var queued, allocated, pass bool
	for len(ch) > 0 {
		switch ev := (<-ch).(type) {
		case events.RequestEvent:
			switch ev.Request.State {
			case model.RequestQueued:
				queued = true
			case model.RequestAllocated:
				allocated = true
				if ev.SubstationID != "S01" {
					t.Fatalf("allocation event missing substation: %+v", ev)
				}
			}
		case events.PassEvent:
			pass = true
			if ev.Allocated != 1 || ev.AllocatedMW != 4 {
				t.Fatalf("unexpected pass event %+v", ev)
			}
		}
	}
	if !queued || !allocated || !pass {
		t.Fatalf("missing events: queued=%v allocated=%v pass=%v", queued, allocated, pass)
	}
}

func TestFirstFitSpillsToNextSubstation(t *testing.T) {
	s := newTestScheduler(t, map[string]float64{"S01": 50, "S02": 40, "S03": 60})
	fixedClock(s, time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	for _, mw := range []float64{30, 30, 30} {
		if _, err := s.SubmitRequest("C", model.ClassIndustrial, mw); err != nil {
			t.Fatal(err)
		}
	}
	res := s.RunSchedulingPass(time.Now())
	if len(res.Allocated) != 3 {
		t.Fatalf("all three should fit, got %+v", res)
	}
	// First-fit: 30 on S01, next 30 does not fit S01 (20 left) so goes
	// to S02, third lands on S03.
	want := []string{"S01", "S02", "S03"}
	for i, a := range res.Allocated {
		if a.SubstationID != want[i] {
			t.Fatalf("allocation %d on %s, want %s", i, a.SubstationID, want[i])
		}
	}
}
