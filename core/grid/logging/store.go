// Package logging persists the outcome of each scheduling pass so that
// allocations and shed load can be audited after the fact. Two backends
// exist: an append-only JSONL file and a SQLite database.
package logging

import (
	"context"
	"time"

	"github.com/kianlev/gridflex/core/grid"
)

// RequestEntry is one decided request inside a PassRecord.
type RequestEntry struct {
	RequestID    string  `json:"request_id"`
	ConsumerID   string  `json:"consumer_id"`
	Class        string  `json:"class"`
	MegaWatts    float64 `json:"mw"`
	SubstationID string  `json:"substation_id,omitempty"`
}

// PassRecord captures one scheduling pass.
type PassRecord struct {
	Timestamp   time.Time      `json:"timestamp"`
	Allocated   []RequestEntry `json:"allocated"`
	Shed        []RequestEntry `json:"shed"`
	AllocatedMW float64        `json:"allocated_mw"`
	ShedMW      float64        `json:"shed_mw"`
	Offline     int            `json:"offline"`
}

// NewPassRecord converts a pass result into its persisted form.
func NewPassRecord(res grid.PassResult) PassRecord {
	rec := PassRecord{
		Timestamp:   res.Time,
		AllocatedMW: res.AllocatedMW(),
		ShedMW:      res.ShedMW(),
		Offline:     res.Offline,
	}
	for _, a := range res.Allocated {
		rec.Allocated = append(rec.Allocated, RequestEntry{
			RequestID:    a.Request.ID,
			ConsumerID:   a.Request.ConsumerID,
			Class:        a.Request.Class.String(),
			MegaWatts:    a.Request.MegaWatts,
			SubstationID: a.SubstationID,
		})
	}
	for _, r := range res.Shed {
		rec.Shed = append(rec.Shed, RequestEntry{
			RequestID:  r.ID,
			ConsumerID: r.ConsumerID,
			Class:      r.Class.String(),
			MegaWatts:  r.MegaWatts,
		})
	}
	return rec
}

// touches reports whether the record involves the given consumer.
func (r PassRecord) touches(consumerID string) bool {
	for _, e := range r.Allocated {
		if e.ConsumerID == consumerID {
			return true
		}
	}
	for _, e := range r.Shed {
		if e.ConsumerID == consumerID {
			return true
		}
	}
	return false
}

// PassQuery defines filters for retrieving records.
type PassQuery struct {
	Start      time.Time
	End        time.Time
	ConsumerID string
	// ShedOnly restricts results to passes that shed load.
	ShedOnly bool
}

func (q PassQuery) matches(r PassRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.ShedOnly && len(r.Shed) == 0 {
		return false
	}
	if q.ConsumerID != "" && !r.touches(q.ConsumerID) {
		return false
	}
	return true
}

// PassStore persists PassRecords and supports querying.
type PassStore interface {
	Append(ctx context.Context, rec PassRecord) error
	Query(ctx context.Context, q PassQuery) ([]PassRecord, error)
	Close() error
}
