package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestPlanCommandWithStandaloneConfig(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "config.yaml", `
grid:
  substations:
    - id: S01
      capacity_mw: 50
    - id: S02
      capacity_mw: 40
`)
	planFile := writeFile(t, dir, "planner.yaml", `
slot_duration_minutes: 60
horizon_hours: 2
`)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"plan",
		"-c", cfgFile,
		"--plan-config", planFile,
		"--forecast", "100",
		"--format", "csv",
	})
	defer func() {
		planCfgPath = ""
		planForecastMW = 0
		planFormat = "text"
	}()
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("plan: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	// Header plus one row per slot over the standalone 2h horizon.
	if len(lines) != 3 {
		t.Fatalf("expected 2 slots from the standalone horizon, got %d lines:\n%s", len(lines)-1, out.String())
	}
	for _, line := range lines[1:] {
		if !strings.HasSuffix(line, ",false") {
			t.Errorf("100 MW must be infeasible on 90 MW of capacity: %q", line)
		}
	}
}
