// Package grid implements the demand-response scheduling core: a
// priority-ordered pending queue, first-fit allocation of demand
// across substations and a time-driven maintenance state machine that
// gates substation availability.
//
// The scheduler is the sole owner of all mutable state. Each public
// operation runs under one mutex and to completion; RunSchedulingPass
// takes an explicit now instant so passes are deterministic functions
// of their inputs.
package grid
