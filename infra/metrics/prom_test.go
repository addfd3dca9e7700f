package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kianlev/gridflex/core/metrics"
	"github.com/kianlev/gridflex/core/model"
)

func TestPromSink_RecordRequestOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	now := time.Now()
	outcomes := []coremetrics.RequestOutcome{
		{
			RequestID:    "r1",
			ConsumerID:   "C1",
			Class:        model.ClassIndustrial,
			MegaWatts:    45,
			State:        model.RequestAllocated,
			SubstationID: "S01",
			Time:         now,
		},
		{
			RequestID:  "r2",
			ConsumerID: "C2",
			Class:      model.ClassResidential,
			MegaWatts:  80,
			State:      model.RequestShed,
			Time:       now,
		},
	}
	if err := sink.RecordRequestOutcomes(outcomes); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP grid_requests_total Total number of demand requests decided by scheduling passes
# TYPE grid_requests_total counter
grid_requests_total{class="industrial",outcome="allocated"} 1
grid_requests_total{class="residential",outcome="shed"} 1
`
	if err := testutil.CollectAndCompare(sink.requests, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}

	if err := sink.RecordPass(coremetrics.PassSummary{Duration: 5 * time.Millisecond}); err != nil {
		t.Fatalf("pass error: %v", err)
	}
	if c := testutil.CollectAndCount(sink.passSeconds); c == 0 {
		t.Errorf("pass duration not recorded")
	}

	if err := sink.RecordSubstationStates([]coremetrics.SubstationState{
		{SubstationID: "S01", UsedMW: 45, CapacityMW: 50, Online: true},
		{SubstationID: "S02", UsedMW: 0, CapacityMW: 40, Online: false},
	}); err != nil {
		t.Fatalf("substation error: %v", err)
	}
	expectedOnline := `
# HELP grid_substation_online Whether the substation is online (1) or under maintenance (0)
# TYPE grid_substation_online gauge
grid_substation_online{substation="S01"} 1
grid_substation_online{substation="S02"} 0
`
	if err := testutil.CollectAndCompare(sink.online, strings.NewReader(expectedOnline)); err != nil {
		t.Errorf("unexpected online metric: %v", err)
	}
}

func TestPromSinkDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("second create must reuse collectors: %v", err)
	}
}
