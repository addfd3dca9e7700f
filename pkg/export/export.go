// Package export serializes capacity plans and pass logs for use
// outside the service, in JSON or CSV form.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kianlev/gridflex/core/grid/logging"
	"github.com/kianlev/gridflex/core/planner"
)

// WritePlanJSON writes the capacity plan to w in JSON format.
func WritePlanJSON(w io.Writer, slots []planner.Slot) error {
	enc := json.NewEncoder(w)
	return enc.Encode(slots)
}

// WritePlanCSV writes the capacity plan to w as CSV, one row per slot.
func WritePlanCSV(w io.Writer, slots []planner.Slot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"slot_start", "available_mw", "forecast_mw", "feasible"}); err != nil {
		return err
	}
	for _, s := range slots {
		rec := []string{
			s.Start.Format(time.RFC3339),
			strconv.FormatFloat(s.AvailableMW, 'f', -1, 64),
			strconv.FormatFloat(s.ForecastMW, 'f', -1, 64),
			strconv.FormatBool(s.Feasible),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePassCSV writes pass records to w as CSV, one row per pass.
func WritePassCSV(w io.Writer, recs []logging.PassRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "allocated", "shed", "allocated_mw", "shed_mw", "offline"}); err != nil {
		return err
	}
	for _, r := range recs {
		rec := []string{
			r.Timestamp.Format(time.RFC3339),
			strconv.Itoa(len(r.Allocated)),
			strconv.Itoa(len(r.Shed)),
			strconv.FormatFloat(r.AllocatedMW, 'f', -1, 64),
			strconv.FormatFloat(r.ShedMW, 'f', -1, 64),
			strconv.Itoa(r.Offline),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
