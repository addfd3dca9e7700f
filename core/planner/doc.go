// Package planner implements day-ahead capacity planning. It slices a
// day into fixed slots, derives the maintenance-aware available
// capacity per slot and checks forecast demand for feasibility with a
// linear program, flagging the slots where load would have to be shed.
package planner
