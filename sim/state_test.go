package sim

import (
	"testing"
)

func newTestState() *State {
	stations := []*Station{
		NewStation(0, 100, Location{Lat: 1, Lon: 1}, map[ApparatusType]uint32{ApparatusEngine: 2}),
		NewStation(1, 101, Location{Lat: 2, Lon: 2}, map[ApparatusType]uint32{ApparatusEngine: 1}),
	}
	apparatus := []*Apparatus{
		{ID: 0, StationIndex: 0, Type: ApparatusEngine, Status: StatusAvailable},
		{ID: 1, StationIndex: 0, Type: ApparatusEngine, Status: StatusAvailable},
		{ID: 2, StationIndex: 1, Type: ApparatusEngine, Status: StatusAvailable},
	}
	incidents := []*Incident{
		NewIncident(0, 500, Location{Lat: 1, Lon: 1}, 0, -1, "Fire", LevelLow, CategoryInvalid),
	}
	return NewState(stations, apparatus, incidents)
}

func TestDispatchApparatus_DeterministicSelection(t *testing.T) {
	s := newTestState()

	ids1, err := s.DispatchApparatus(ApparatusEngine, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids1) != 1 || ids1[0] != 0 {
		t.Errorf("expected first dispatch to pick apparatus 0, got %v", ids1)
	}

	s.ReturnApparatus(ApparatusEngine, ids1)

	ids2, err := s.DispatchApparatus(ApparatusEngine, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids2) != 1 || ids2[0] != 0 {
		t.Errorf("expected repeat dispatch to pick the same lowest-id apparatus 0, got %v", ids2)
	}
}

func TestDispatchApparatus_PartialDispatchNotError(t *testing.T) {
	s := newTestState()

	ids, err := s.DispatchApparatus(ApparatusEngine, 5, 0)
	if err != nil {
		t.Fatalf("partial dispatch must not error: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 dispatched (all available at station 0), got %d", len(ids))
	}

	station, _ := s.Station(0)
	if station.Available[ApparatusEngine] != 0 {
		t.Errorf("expected station 0 available engines = 0, got %d", station.Available[ApparatusEngine])
	}
}

func TestDispatchApparatus_UnknownStation(t *testing.T) {
	s := newTestState()
	if _, err := s.DispatchApparatus(ApparatusEngine, 1, 99); err == nil {
		t.Error("expected error for out-of-range station index")
	}
}

func TestAdvanceTime_RejectsBackwards(t *testing.T) {
	s := newTestState()
	if err := s.AdvanceTime(100); err != nil {
		t.Fatalf("unexpected error advancing forward: %v", err)
	}
	if err := s.AdvanceTime(50); err == nil {
		t.Error("expected error advancing time backwards")
	}
}

func TestActivateAndResolveIncident(t *testing.T) {
	s := newTestState()
	inc, err := s.Incident(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.ActivateIncident(inc)
	if _, ok := s.Active()[0]; !ok {
		t.Fatal("expected incident 0 to be active")
	}
	if len(s.InProgressIndices()) != 1 {
		t.Errorf("expected 1 in-progress incident, got %d", len(s.InProgressIndices()))
	}

	s.ResolveIncident(0)
	if _, ok := s.Active()[0]; ok {
		t.Error("expected incident 0 to no longer be active")
	}
	if _, ok := s.Done()[0]; !ok {
		t.Error("expected incident 0 to be in Done")
	}
	if len(s.InProgressIndices()) != 0 {
		t.Errorf("expected 0 in-progress incidents after resolution, got %d", len(s.InProgressIndices()))
	}
}

func TestReturnApparatus_TypeMismatchSkipped(t *testing.T) {
	s := newTestState()
	ids, err := s.DispatchApparatus(ApparatusEngine, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.ReturnApparatus(ApparatusTruck, ids)
	a := s.Apparatus[ids[0]]
	if a.Status != StatusDispatched {
		t.Error("expected apparatus to remain Dispatched after a type-mismatched return")
	}

	s.ReturnApparatus(ApparatusEngine, ids)
	if a.Status != StatusAvailable {
		t.Error("expected apparatus to become Available after a correctly-typed return")
	}
}

func TestPendingReturnIDs_Deterministic(t *testing.T) {
	s := newTestState()
	ids, err := s.DispatchApparatus(ApparatusEngine, 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pending := s.PendingReturnIDs(0, ApparatusEngine, 2)
	if len(pending) != 2 || pending[0] != ids[0] || pending[1] != ids[1] {
		t.Errorf("expected pending ids %v in ascending order, got %v", ids, pending)
	}
}
