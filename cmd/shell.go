package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kianlev/gridflex/config"
	"github.com/kianlev/gridflex/core/grid"
	"github.com/kianlev/gridflex/core/model"
	"github.com/kianlev/gridflex/infra/logger"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive console for manual grid operation",
	RunE:  runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	window := time.Duration(cfg.Scheduler.MaintenanceWindowSeconds) * time.Second
	sched := grid.New(window, logger.NopLogger{}, nil)
	for _, sub := range cfg.Grid.Substations {
		if err := sched.AddSubstation(sub.ID, sub.CapacityMW); err != nil {
			return fmt.Errorf("substation %s: %w", sub.ID, err)
		}
	}
	return runShellLoop(sched, cmd.InOrStdin(), cmd.OutOrStdout())
}

func runShellLoop(sched *grid.Scheduler, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Grid Console - Demand-Response Coordinator")
	fmt.Fprintln(out, "Type 'help' for the command list.")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "exit", "quit":
			fmt.Fprintln(out, "Goodbye.")
			return nil
		case "help":
			printShellHelp(out)
		case "report":
			shellReport(sched, out, fields[1:])
		case "balance":
			shellBalance(sched, out)
		case "maintenance":
			shellMaintenance(sched, out, fields[1:])
		case "status":
			shellStatus(sched, out)
		default:
			fmt.Fprintln(out, "Unknown command. Type 'help' for the command list.")
		}
	}
}

func printShellHelp(out io.Writer) {
	fmt.Fprintln(out, "Available commands:")
	fmt.Fprintln(out, "  report <consumerID> <res|com|ind> <MW>  record a demand request")
	fmt.Fprintln(out, "      e.g.: report C101 res 25.5")
	fmt.Fprintln(out, "  balance                                 run a scheduling pass")
	fmt.Fprintln(out, "  maintenance <subID> <delaySec>          schedule 1h maintenance after delay")
	fmt.Fprintln(out, "      e.g.: maintenance S02 300")
	fmt.Fprintln(out, "  status                                  show substations, demands, maintenance")
	fmt.Fprintln(out, "  help                                    show this message")
	fmt.Fprintln(out, "  exit                                    leave the console")
}

func shellReport(sched *grid.Scheduler, out io.Writer, args []string) {
	if len(args) != 3 {
		fmt.Fprintln(out, "Usage: report <consumerID> <res|com|ind> <MW>")
		return
	}
	class, err := model.ParseClass(args[1])
	if err != nil {
		fmt.Fprintln(out, "Invalid type. Use 'res', 'com', or 'ind'.")
		return
	}
	mw, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		fmt.Fprintln(out, "Invalid MW value.")
		return
	}
	if _, err := sched.SubmitRequest(args[0], class, mw); err != nil {
		if errors.Is(err, grid.ErrInvalidAmount) {
			fmt.Fprintln(out, "MW must be positive.")
			return
		}
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Demand recorded for %s.\n", args[0])
}

func shellBalance(sched *grid.Scheduler, out io.Writer) {
	res := sched.RunSchedulingPass(time.Now())
	for _, a := range res.Allocated {
		fmt.Fprintf(out, "Allocated %.1f MW to %s for %s\n",
			a.Request.MegaWatts, a.SubstationID, a.Request.ConsumerID)
	}
	for _, r := range res.Shed {
		fmt.Fprintf(out, "Shed %.1f MW demand from %s\n", r.MegaWatts, r.ConsumerID)
	}
	fmt.Fprintln(out, "Load balancing complete.")
}

func shellMaintenance(sched *grid.Scheduler, out io.Writer, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(out, "Usage: maintenance <subID> <delaySec>")
		return
	}
	delay, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintln(out, "Invalid delay value.")
		return
	}
	job, err := sched.ScheduleMaintenance(args[0], time.Duration(delay)*time.Second)
	if err != nil {
		if errors.Is(err, grid.ErrUnknownSubstation) {
			fmt.Fprintf(out, "No such substation: %s\n", args[0])
			return
		}
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Maintenance scheduled for %s at %s.\n",
		job.SubstationID, job.Start.Format(time.RFC3339))
}

func shellStatus(sched *grid.Scheduler, out io.Writer) {
	view := sched.Snapshot()
	fmt.Fprintln(out, "--- Grid Status ---")
	fmt.Fprintln(out, "Substations:")
	for _, s := range view.Substations {
		fmt.Fprintf(out, "  %s: %.1f/%.1f MW used (%s)\n",
			s.ID, s.UsedMW, s.CapacityMW, onlineWord(s.Online))
	}
	fmt.Fprintln(out, "Pending Demands:")
	for _, r := range view.Pending {
		fmt.Fprintf(out, "  %s (%.1f MW, %s)\n", r.ConsumerID, r.MegaWatts, r.Class)
	}
	fmt.Fprintln(out, "Maintenance Jobs:")
	for _, m := range view.Maintenance {
		fmt.Fprintf(out, "  %s [%s]\n", m.SubstationID, m.State)
	}
}

func onlineWord(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}
