package model

// Substation represents one grid substation with a fixed capacity.
// UsedMW is mutated only by allocation and release; Online only by the
// maintenance subsystem.
type Substation struct {
	ID         string
	CapacityMW float64
	UsedMW     float64
	Online     bool
}

// NewSubstation creates an online substation with no allocated load.
func NewSubstation(id string, capacityMW float64) Substation {
	return Substation{ID: id, CapacityMW: capacityMW, Online: true}
}

// Available returns the unallocated capacity, or zero while the
// substation is offline for maintenance.
func (s Substation) Available() float64 {
	if !s.Online {
		return 0
	}
	return s.CapacityMW - s.UsedMW
}

// TryAllocate reserves mw of capacity if it fits. It reports whether
// the allocation succeeded; on failure nothing is mutated.
func (s *Substation) TryAllocate(mw float64) bool {
	if mw > s.Available() {
		return false
	}
	s.UsedMW += mw
	return true
}

// Release returns mw of capacity to the pool, clamped at zero so an
// over-release from a caller bug cannot drive usage negative.
func (s *Substation) Release(mw float64) {
	s.UsedMW -= mw
	if s.UsedMW < 0 {
		s.UsedMW = 0
	}
}
