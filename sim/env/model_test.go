package env

import (
	"testing"

	"github.com/inference-sim/inference-sim/sim"
	"github.com/inference-sim/inference-sim/sim/oracle"
)

func newTestState() *sim.State {
	stations := []*sim.Station{
		sim.NewStation(0, 100, sim.Location{Lat: 1, Lon: 1}, map[sim.ApparatusType]uint32{sim.ApparatusEngine: 2}),
	}
	apparatus := []*sim.Apparatus{
		{ID: 0, StationIndex: 0, Type: sim.ApparatusEngine, Status: sim.StatusAvailable},
		{ID: 1, StationIndex: 0, Type: sim.ApparatusEngine, Status: sim.StatusAvailable},
	}
	incidents := []*sim.Incident{
		sim.NewIncident(0, 1, sim.Location{Lat: 1, Lon: 1}, 0, -1, "Fire", sim.LevelLow, sim.CategoryInvalid),
	}
	return sim.NewState(stations, apparatus, incidents)
}

func TestApplyEvent_IncidentReported_SetsRequiredAndActivates(t *testing.T) {
	state := newTestState()
	m := New(oracle.NewHardCoded(1), nil)

	err := m.ApplyEvent(state, sim.Event{Type: sim.EventIncidentReported, EventTime: 10, IncidentIndex: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inc, _ := state.Incident(0)
	if inc.Required[sim.ApparatusEngine] != 1 {
		t.Errorf("expected 1 required engine for Low level, got %d", inc.Required[sim.ApparatusEngine])
	}
	if _, ok := state.Active()[0]; !ok {
		t.Error("expected incident to be active after report")
	}
	if state.SystemTime != 10 {
		t.Errorf("expected system time advanced to 10, got %d", state.SystemTime)
	}
}

func TestApplyEvent_UnknownEventTypeIsFatal(t *testing.T) {
	state := newTestState()
	m := New(oracle.NewHardCoded(1), nil)

	err := m.ApplyEvent(state, sim.Event{Type: sim.EventType(99), EventTime: 1})
	if err == nil {
		t.Fatal("expected error for unknown event type")
	}
	if _, ok := err.(*sim.FatalError); !ok {
		t.Errorf("expected *sim.FatalError, got %T", err)
	}
}

func TestApplyActions_FullLifecycle(t *testing.T) {
	state := newTestState()
	m := New(oracle.NewHardCoded(1), nil)

	if err := m.ApplyEvent(state, sim.Event{Type: sim.EventIncidentReported, EventTime: 0, IncidentIndex: 0}); err != nil {
		t.Fatalf("report: %v", err)
	}

	actions := []sim.Action{{
		Type: sim.ActionDispatch, IncidentIndex: 0, StationIndex: 0,
		ApparatusType: sim.ApparatusEngine, Count: 1, TravelTimeSec: 120,
	}}
	events, err := m.ApplyActions(state, actions)
	if err != nil {
		t.Fatalf("ApplyActions: %v", err)
	}

	inc, _ := state.Incident(0)
	if inc.Status != sim.IncidentResponded {
		t.Errorf("expected status Responded after dispatch, got %v", inc.Status)
	}
	if inc.Current[sim.ApparatusEngine] != 1 {
		t.Errorf("expected 1 engine credited current, got %d", inc.Current[sim.ApparatusEngine])
	}

	var sawResolution, sawReturn, sawArrival bool
	for _, e := range events {
		switch e.Type {
		case sim.EventIncidentResolution:
			sawResolution = true
		case sim.EventApparatusReturnToStation:
			sawReturn = true
		case sim.EventApparatusArrivalAtIncident:
			sawArrival = true
		}
	}
	if !sawResolution || !sawReturn || !sawArrival {
		t.Errorf("expected resolution, return, and arrival events, got %+v", events)
	}

	if err := m.ApplyEvent(state, sim.Event{Type: sim.EventApparatusArrivalAtIncident, EventTime: 120, IncidentIndex: 0, StationIndex: 0}); err != nil {
		t.Fatalf("arrival: %v", err)
	}
	inc, _ = state.Incident(0)
	if inc.Status != sim.IncidentBeingResolved {
		t.Errorf("expected status BeingResolved after arrival, got %v", inc.Status)
	}

	if err := m.ApplyEvent(state, sim.Event{Type: sim.EventIncidentResolution, EventTime: 500, IncidentIndex: 0}); err != nil {
		t.Fatalf("resolution: %v", err)
	}
	inc, _ = state.Incident(0)
	if inc.Status != sim.IncidentResolved {
		t.Errorf("expected status Resolved, got %v", inc.Status)
	}
	if _, ok := state.Active()[0]; ok {
		t.Error("expected incident removed from active after resolution")
	}
	if _, ok := state.Done()[0]; !ok {
		t.Error("expected incident present in done after resolution")
	}
}

func TestApplyActions_DoNothingIsNoop(t *testing.T) {
	state := newTestState()
	m := New(oracle.NewHardCoded(1), nil)
	events, err := m.ApplyActions(state, sim.DoNothing())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if events != nil {
		t.Errorf("expected no events from DoNothing, got %+v", events)
	}
}

func TestApplyActions_ExceedsAvailableIsFatal(t *testing.T) {
	state := newTestState()
	m := New(oracle.NewHardCoded(1), nil)
	_ = m.ApplyEvent(state, sim.Event{Type: sim.EventIncidentReported, EventTime: 0, IncidentIndex: 0})

	actions := []sim.Action{{
		Type: sim.ActionDispatch, IncidentIndex: 0, StationIndex: 0,
		ApparatusType: sim.ApparatusEngine, Count: 5, TravelTimeSec: 60,
	}}
	_, err := m.ApplyActions(state, actions)
	if err == nil {
		t.Fatal("expected error for dispatch exceeding available apparatus")
	}
	if _, ok := err.(*sim.FatalError); !ok {
		t.Errorf("expected *sim.FatalError, got %T", err)
	}
}

func TestApplyEvent_ReturnApparatus_CreditsStation(t *testing.T) {
	state := newTestState()
	m := New(oracle.NewHardCoded(1), nil)
	_ = m.ApplyEvent(state, sim.Event{Type: sim.EventIncidentReported, EventTime: 0, IncidentIndex: 0})
	_, _ = m.ApplyActions(state, []sim.Action{{
		Type: sim.ActionDispatch, IncidentIndex: 0, StationIndex: 0,
		ApparatusType: sim.ApparatusEngine, Count: 1, TravelTimeSec: 60,
	}})

	station, _ := state.Station(0)
	before := station.Available[sim.ApparatusEngine]

	err := m.ApplyEvent(state, sim.Event{
		Type: sim.EventApparatusReturnToStation, EventTime: 1000,
		StationIndex: 0, ApparatusType: sim.ApparatusEngine, EnginesCount: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if station.Available[sim.ApparatusEngine] != before+1 {
		t.Errorf("expected available count incremented by 1, got %d (was %d)", station.Available[sim.ApparatusEngine], before)
	}
}
