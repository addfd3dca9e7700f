package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PriorityClass identifies the criticality of a demand request.
// Higher weights are served first.
type PriorityClass int

const (
	ClassResidential PriorityClass = 1
	ClassCommercial  PriorityClass = 2
	ClassIndustrial  PriorityClass = 3
)

// String returns a human-readable representation of the priority class.
func (c PriorityClass) String() string {
	switch c {
	case ClassResidential:
		return "residential"
	case ClassCommercial:
		return "commercial"
	case ClassIndustrial:
		return "industrial"
	default:
		return "unknown"
	}
}

// Weight returns the numeric priority used for ordering. Industrial
// demand outranks commercial which outranks residential.
func (c PriorityClass) Weight() int { return int(c) }

// Valid reports whether the class is one of the three known values.
func (c PriorityClass) Valid() bool {
	return c == ClassResidential || c == ClassCommercial || c == ClassIndustrial
}

// ParseClass maps textual tokens to a PriorityClass. Both the short CLI
// tokens ("res", "com", "ind") and full names are accepted.
func ParseClass(s string) (PriorityClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "res", "residential":
		return ClassResidential, nil
	case "com", "commercial":
		return ClassCommercial, nil
	case "ind", "industrial":
		return ClassIndustrial, nil
	default:
		return 0, fmt.Errorf("unknown priority class %q", s)
	}
}

// RequestState tracks the lifecycle of a demand request. States only
// move forward: Created -> Queued -> Allocated or Shed.
type RequestState int

const (
	RequestCreated RequestState = iota
	RequestQueued
	RequestAllocated
	RequestShed
	// RequestCompleted exists for symmetry with allocated load being
	// released; no transition produces it yet.
	RequestCompleted
)

// String returns a human-readable representation of the request state.
func (s RequestState) String() string {
	switch s {
	case RequestCreated:
		return "created"
	case RequestQueued:
		return "queued"
	case RequestAllocated:
		return "allocated"
	case RequestShed:
		return "shed"
	case RequestCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Request represents a consumer power demand awaiting allocation.
// Fields other than State are immutable after creation.
type Request struct {
	ID          string
	ConsumerID  string
	MegaWatts   float64
	Class       PriorityClass
	SubmittedAt time.Time
	State       RequestState
}

// NewRequest creates a request in the Created state with a fresh ID.
func NewRequest(consumerID string, class PriorityClass, mw float64, now time.Time) Request {
	return Request{
		ID:          uuid.NewString(),
		ConsumerID:  consumerID,
		MegaWatts:   mw,
		Class:       class,
		SubmittedAt: now,
		State:       RequestCreated,
	}
}

// Less defines the scheduling order: higher priority class first, then
// earlier submission. The ID comparison keeps the order total so that
// two requests submitted at the same instant cannot swap places within
// a pass.
func (r Request) Less(other Request) bool {
	if r.Class.Weight() != other.Class.Weight() {
		return r.Class.Weight() > other.Class.Weight()
	}
	if !r.SubmittedAt.Equal(other.SubmittedAt) {
		return r.SubmittedAt.Before(other.SubmittedAt)
	}
	return r.ID < other.ID
}
