package planner

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kianlev/gridflex/core/model"
)

// Config defines planning parameters loaded from configuration.
type Config struct {
	SlotDurationMinutes int     `json:"slot_duration_minutes" yaml:"slot_duration_minutes"`
	HorizonHours        int     `json:"horizon_hours" yaml:"horizon_hours"`
	DefaultForecastMW   float64 `json:"default_forecast_mw" yaml:"default_forecast_mw"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.SlotDurationMinutes == 0 {
		c.SlotDurationMinutes = 60
	}
	if c.HorizonHours == 0 {
		c.HorizonHours = 24
	}
}

// Slot is one planning interval with its capacity outlook.
type Slot struct {
	Start       time.Time          `json:"start"`
	AvailableMW float64            `json:"available_mw"`
	ForecastMW  float64            `json:"forecast_mw"`
	Feasible    bool               `json:"feasible"`
	Shares      map[string]float64 `json:"shares,omitempty"`
}

// Planner builds capacity plans from the current grid state.
type Planner struct {
	Config      Config
	Substations []model.Substation
	Jobs        []model.MaintenanceJob
}

// ForecastDemand derives a conservative demand estimate from recent
// pass totals: the mean plus one standard deviation. An empty history
// falls back to the configured default.
func (p *Planner) ForecastDemand(history []float64) float64 {
	if len(history) == 0 {
		return p.Config.DefaultForecastMW
	}
	mean, std := stat.MeanStdDev(history, nil)
	if len(history) == 1 {
		return history[0]
	}
	return mean + std
}

// Plan builds one slot per interval over the horizon starting at from.
// Each slot checks the forecast against the capacity of the
// substations not held offline by a maintenance window during the
// slot. Infeasible slots carry no shares; feasible slots record how
// the LP split the target across substations.
func (p *Planner) Plan(from time.Time, forecastMW float64) ([]Slot, error) {
	if p.Config.SlotDurationMinutes <= 0 {
		return nil, errors.New("slot_duration_minutes must be positive")
	}
	if forecastMW < 0 {
		return nil, errors.New("forecast must be non-negative")
	}
	if len(p.Substations) == 0 {
		return nil, errors.New("no substations to plan against")
	}
	slotDur := time.Duration(p.Config.SlotDurationMinutes) * time.Minute
	horizon := time.Duration(p.Config.HorizonHours) * time.Hour
	totalSlots := int(horizon / slotDur)
	if totalSlots == 0 {
		return nil, fmt.Errorf("slot duration %v exceeds horizon %v", slotDur, horizon)
	}

	slots := make([]Slot, 0, totalSlots)
	for i := 0; i < totalSlots; i++ {
		ts := from.Add(time.Duration(i) * slotDur)
		ids, caps := p.availableAt(ts, slotDur)
		slot := Slot{Start: ts, ForecastMW: forecastMW}
		for _, c := range caps {
			slot.AvailableMW += c
		}
		if forecastMW == 0 {
			slot.Feasible = true
			slots = append(slots, slot)
			continue
		}
		if len(caps) == 0 {
			slots = append(slots, slot)
			continue
		}
		sol, err := lpSolve(caps, forecastMW)
		if err != nil {
			slots = append(slots, slot)
			continue
		}
		slot.Feasible = true
		slot.Shares = make(map[string]float64, len(ids))
		for j, id := range ids {
			share := sol[j]
			if share < 0 {
				share = 0
			}
			if share > caps[j] {
				share = caps[j]
			}
			slot.Shares[id] = share
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// availableAt returns the substations not under maintenance during
// [ts, ts+d) together with their full capacities. Day-ahead planning
// ignores currently allocated load since allocations are not modelled
// as lasting into the horizon.
func (p *Planner) availableAt(ts time.Time, d time.Duration) ([]string, []float64) {
	end := ts.Add(d)
	var ids []string
	var caps []float64
	for _, sub := range p.Substations {
		offline := false
		for _, job := range p.Jobs {
			if job.State == model.MaintenanceDone {
				continue
			}
			if job.SubstationID == sub.ID && job.Start.Before(end) && ts.Before(job.End) {
				offline = true
				break
			}
		}
		if !offline {
			ids = append(ids, sub.ID)
			caps = append(caps, sub.CapacityMW)
		}
	}
	return ids, caps
}
