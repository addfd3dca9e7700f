package main

import (
	"fmt"
	"math/rand"
)

// Consumer is one simulated demand source with a fixed class.
type Consumer struct {
	ID    string
	Class string
}

// GenerateConsumers creates consumers with IDs con0001..conNNNN and a
// class mix driven by the configured fractions.
func GenerateConsumers(cfg Config, rng *rand.Rand) []Consumer {
	if cfg.Consumers <= 0 {
		return nil
	}
	cs := make([]Consumer, cfg.Consumers)
	for i := range cs {
		class := "ind"
		switch roll := rng.Float64(); {
		case roll < cfg.ResPct:
			class = "res"
		case roll < cfg.ResPct+cfg.ComPct:
			class = "com"
		}
		cs[i] = Consumer{ID: fmt.Sprintf("con%04d", i+1), Class: class}
	}
	return cs
}

// nextDemand picks one consumer and draws its demand from the
// configured MW range.
func nextDemand(cfg Config, consumers []Consumer, rng *rand.Rand) (Consumer, float64) {
	c := consumers[rng.Intn(len(consumers))]
	mw := cfg.MinMW + rng.Float64()*(cfg.MaxMW-cfg.MinMW)
	return c, mw
}
