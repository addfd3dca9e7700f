package scenarios

import (
	"testing"
	"time"

	"github.com/kianlev/gridflex/core/grid"
	"github.com/kianlev/gridflex/infra/logger"
)

// RunScenario executes one scenario against a fresh scheduler.
func RunScenario(t *testing.T, sc *Scenario) {
	sched := grid.New(0, logger.NopLogger{}, nil)
	for _, sub := range sc.Substations {
		if err := sched.AddSubstation(sub.ID, sub.CapacityMW); err != nil {
			t.Fatalf("substation %s: %v", sub.ID, err)
		}
	}
	for _, m := range sc.Maintenance {
		delay := time.Duration(m.DelaySeconds) * time.Second
		if _, err := sched.ScheduleMaintenance(m.Substation, delay); err != nil {
			t.Fatalf("maintenance %s: %v", m.Substation, err)
		}
	}
	for _, r := range sc.Requests {
		class, err := r.ParsedClass()
		if err != nil {
			t.Fatalf("request %s: %v", r.Consumer, err)
		}
		if _, err := sched.SubmitRequest(r.Consumer, class, r.MW); err != nil {
			t.Fatalf("request %s: %v", r.Consumer, err)
		}
	}

	// Base is captured after ScheduleMaintenance so pass offsets are
	// never earlier than the job start times they reference.
	base := time.Now()
	for i, p := range sc.Passes {
		res := sched.RunSchedulingPass(base.Add(time.Duration(p.AtSeconds) * time.Second))
		if len(res.Allocated) != p.Expected.Allocated {
			t.Errorf("%s pass %d: allocated %d, want %d", sc.Name, i, len(res.Allocated), p.Expected.Allocated)
		}
		if len(res.Shed) != p.Expected.Shed {
			t.Errorf("%s pass %d: shed %d, want %d", sc.Name, i, len(res.Shed), p.Expected.Shed)
		}
		if res.Offline != p.Expected.Offline {
			t.Errorf("%s pass %d: offline %d, want %d", sc.Name, i, res.Offline, p.Expected.Offline)
		}
	}
}
