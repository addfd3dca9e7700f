package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kianlev/gridflex/core/grid"
	"github.com/kianlev/gridflex/infra/logger"
)

func newTestScheduler(t *testing.T) *grid.Scheduler {
	t.Helper()
	sched := grid.New(0, logger.NopLogger{}, nil)
	for _, sub := range []struct {
		id string
		mw float64
	}{{"S01", 50}, {"S02", 40}, {"S03", 60}} {
		if err := sched.AddSubstation(sub.id, sub.mw); err != nil {
			t.Fatalf("substation %s: %v", sub.id, err)
		}
	}
	return sched
}

func runConsole(t *testing.T, sched *grid.Scheduler, input string) string {
	t.Helper()
	var out bytes.Buffer
	if err := runShellLoop(sched, strings.NewReader(input), &out); err != nil {
		t.Fatalf("console: %v", err)
	}
	return out.String()
}

func TestConsoleReportAndBalance(t *testing.T) {
	sched := newTestScheduler(t)
	out := runConsole(t, sched, "report C101 res 25.5\nbalance\nexit\n")
	for _, want := range []string{
		"Demand recorded for C101.",
		"Allocated 25.5 MW to S01 for C101",
		"Load balancing complete.",
		"Goodbye.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleStatusAndMaintenance(t *testing.T) {
	sched := newTestScheduler(t)
	out := runConsole(t, sched, "maintenance S02 300\nstatus\nexit\n")
	for _, want := range []string{
		"Maintenance scheduled for S02",
		"--- Grid Status ---",
		"S02 [scheduled]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleBadInput(t *testing.T) {
	sched := newTestScheduler(t)
	out := runConsole(t, sched, "report C1 foo 10\nreport C1 res -5\nmaintenance S99 10\nfrobnicate\nexit\n")
	for _, want := range []string{
		"Invalid type. Use 'res', 'com', or 'ind'.",
		"MW must be positive.",
		"No such substation: S99",
		"Unknown command.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleEOF(t *testing.T) {
	sched := newTestScheduler(t)
	out := runConsole(t, sched, "help\n")
	if !strings.Contains(out, "Available commands:") {
		t.Fatalf("help output missing:\n%s", out)
	}
}
