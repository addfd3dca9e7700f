package model

import "testing"

func TestSubstationAllocateBounds(t *testing.T) {
	s := NewSubstation("S01", 50)
	if !s.TryAllocate(30) {
		t.Fatalf("allocation within capacity refused")
	}
	if s.TryAllocate(25) {
		t.Fatalf("allocation above available accepted")
	}
	if s.UsedMW != 30 {
		t.Fatalf("used = %v, want 30", s.UsedMW)
	}
	if !s.TryAllocate(20) {
		t.Fatalf("exact fit refused")
	}
	if s.Available() != 0 {
		t.Fatalf("available = %v, want 0", s.Available())
	}
	if s.UsedMW > s.CapacityMW {
		t.Fatalf("used exceeds capacity")
	}
}

func TestSubstationReleaseClamp(t *testing.T) {
	s := NewSubstation("S01", 10)
	s.TryAllocate(4)
	s.Release(100)
	if s.UsedMW != 0 {
		t.Fatalf("used = %v, want 0 after over-release", s.UsedMW)
	}
}

func TestSubstationOfflineAvailability(t *testing.T) {
	s := NewSubstation("S02", 40)
	s.Online = false
	if s.Available() != 0 {
		t.Fatalf("offline substation must report zero availability")
	}
	if s.TryAllocate(1) {
		t.Fatalf("offline substation accepted load")
	}
}
