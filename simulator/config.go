package main

import (
	"flag"
	"fmt"
	"time"
)

// Config holds parameters for the demand simulator.
type Config struct {
	Broker    string
	ClientID  string
	Topic     string
	Consumers int
	Interval  time.Duration
	MinMW     float64
	MaxMW     float64
	ResPct    float64
	ComPct    float64
	Seed      int64
	Verbose   bool
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Broker, "broker", "tcp://localhost:1883", "MQTT broker URL")
	flag.StringVar(&cfg.ClientID, "client-id", "gridflex-sim", "MQTT client ID")
	flag.StringVar(&cfg.Topic, "topic", "grid/demand", "demand topic")
	flag.IntVar(&cfg.Consumers, "consumers", 20, "number of simulated consumers")
	flag.DurationVar(&cfg.Interval, "interval", 2*time.Second, "delay between demand reports")
	flag.Float64Var(&cfg.MinMW, "min-mw", 1, "minimum demand per report")
	flag.Float64Var(&cfg.MaxMW, "max-mw", 60, "maximum demand per report")
	flag.Float64Var(&cfg.ResPct, "res-pct", 0.5, "fraction of residential consumers")
	flag.Float64Var(&cfg.ComPct, "com-pct", 0.3, "fraction of commercial consumers; the rest are industrial")
	flag.Int64Var(&cfg.Seed, "seed", 0, "RNG seed, 0 uses the current time")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "log each published demand")
	flag.Parse()
	return cfg
}

// Validate checks simulator parameters.
func (c *Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("broker is required")
	}
	if c.Consumers <= 0 {
		return fmt.Errorf("consumers must be positive")
	}
	if c.MinMW <= 0 || c.MaxMW < c.MinMW {
		return fmt.Errorf("invalid MW range [%f, %f]", c.MinMW, c.MaxMW)
	}
	if c.ResPct < 0 || c.ComPct < 0 || c.ResPct+c.ComPct > 1 {
		return fmt.Errorf("invalid class mix: res %.2f com %.2f", c.ResPct, c.ComPct)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	return nil
}
