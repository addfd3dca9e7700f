// Package scenarios runs YAML-defined grid scheduling scenarios as
// acceptance tests. Each scenario builds a fresh grid, feeds it demand
// and maintenance, then checks pass outcomes against expectations.
package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kianlev/gridflex/core/model"
)

type SubstationDef struct {
	ID         string  `yaml:"id"`
	CapacityMW float64 `yaml:"capacity_mw"`
}

type RequestDef struct {
	Consumer string  `yaml:"consumer"`
	Class    string  `yaml:"class"`
	MW       float64 `yaml:"mw"`
}

func (r RequestDef) ParsedClass() (model.PriorityClass, error) {
	return model.ParseClass(r.Class)
}

type MaintenanceDef struct {
	Substation   string `yaml:"substation"`
	DelaySeconds int    `yaml:"delay_seconds"`
}

// PassDef runs one scheduling pass at an offset from the scenario start
// and checks the resulting counts.
type PassDef struct {
	AtSeconds int `yaml:"at_seconds"`
	Expected  struct {
		Allocated int `yaml:"allocated"`
		Shed      int `yaml:"shed"`
		Offline   int `yaml:"offline"`
	} `yaml:"expected"`
}

type Scenario struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	Substations []SubstationDef  `yaml:"substations"`
	Requests    []RequestDef     `yaml:"requests"`
	Maintenance []MaintenanceDef `yaml:"maintenance,omitempty"`
	Passes      []PassDef        `yaml:"passes"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
