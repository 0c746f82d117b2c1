// Package env implements the Environment Model: the invariant-preserving
// state transitions that apply a popped event to sim.State and turn a
// dispatch policy's actions into follow-up events. Grounded line-for-line
// on original_source/src/environment/environment_model.cpp's
// handleEvent/takeActions/processDispatchAction, translated to Go error
// returns in place of C++ exceptions/spdlog.
package env

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/inference-sim/sim"
	"github.com/inference-sim/inference-sim/sim/oracle"
)

// RespondDelaySeconds is the fixed delay between dispatch and an incident
// being marked Responded (spec.md §4.4 step 2).
const RespondDelaySeconds = 60

// Model applies events and dispatch actions to a sim.State.
type Model struct {
	Oracle oracle.Oracle
	Logger *logrus.Logger
}

// New constructs an environment model over the given oracle.
func New(o oracle.Oracle, logger *logrus.Logger) *Model {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Model{Oracle: o, Logger: logger}
}

// ApplyEvent dispatches on event.Type and then advances State.SystemTime to
// event.EventTime (spec.md §4.4). Returns a *sim.FatalError for unknown
// event types or any invariant violation; the driver panics on a non-nil
// error from this method.
func (m *Model) ApplyEvent(state *sim.State, event sim.Event) error {
	switch event.Type {
	case sim.EventIncidentReported:
		if err := m.handleIncidentReported(state, event); err != nil {
			return err
		}
	case sim.EventApparatusArrivalAtIncident:
		m.handleArrival(state, event)
	case sim.EventIncidentResolution:
		m.handleResolution(state, event)
	case sim.EventApparatusReturnToStation:
		if err := m.handleReturn(state, event); err != nil {
			return err
		}
	default:
		err := fmt.Errorf("unknown event type: %v", event.Type)
		m.Logger.Error(err)
		return &sim.FatalError{Reason: err.Error()}
	}

	return state.AdvanceTime(event.EventTime)
}

func (m *Model) handleIncidentReported(state *sim.State, event sim.Event) error {
	inc, err := state.Incident(event.IncidentIndex)
	if err != nil {
		return err
	}
	required := m.Oracle.RequiredApparatus(inc)
	inc.Required = required
	state.ActivateIncident(inc)
	if totalUnits(required) == 0 {
		// Nothing to dispatch: the incident resolves at once, with no
		// dispatches (spec.md §8 boundary behavior).
		inc.RespondedTime = event.EventTime
		inc.ResolvedTime = event.EventTime
		inc.AdvanceStatus(sim.IncidentResolved)
		state.ResolveIncident(inc.IncidentIndex)
	}
	m.Logger.WithFields(logrus.Fields{
		"incident": inc.IncidentIndex,
		"level":    inc.Level,
		"required": totalUnits(required),
	}).Info("incident reported")
	return nil
}

func (m *Model) handleArrival(state *sim.State, event sim.Event) {
	inc, ok := state.Active()[event.IncidentIndex]
	if !ok {
		// Already resolved; arrival events for a done incident are
		// harmless no-ops (non-fatal resource-exhaustion-adjacent case).
		return
	}
	inc.AdvanceStatus(sim.IncidentBeingResolved)
}

func (m *Model) handleResolution(state *sim.State, event sim.Event) {
	inc, ok := state.Active()[event.IncidentIndex]
	if !ok {
		return
	}
	inc.ResolvedTime = event.EventTime
	inc.AdvanceStatus(sim.IncidentResolved)
	state.ResolveIncident(event.IncidentIndex)
}

func (m *Model) handleReturn(state *sim.State, event sim.Event) error {
	station, err := state.Station(event.StationIndex)
	if err != nil {
		return err
	}
	ids := state.PendingReturnIDs(station.StationIndex, event.ApparatusType, event.EnginesCount)
	state.ReturnApparatus(event.ApparatusType, ids)
	m.Logger.WithFields(logrus.Fields{
		"station":  station.StationIndex,
		"type":     event.ApparatusType,
		"returned": event.EnginesCount,
	}).Info("apparatus returned to station")
	return nil
}

// ApplyActions applies a dispatch policy's action batch (all referring to
// the same incident) and returns the follow-up events it generates
// (spec.md §4.4).
func (m *Model) ApplyActions(state *sim.State, actions []sim.Action) ([]sim.Event, error) {
	if len(actions) == 0 || actions[0].Type == sim.ActionDoNothing {
		return nil, nil
	}

	incidentIndex := actions[0].IncidentIndex
	inc, ok := state.Active()[incidentIndex]
	if !ok {
		// Incident already resolved; ignore (spec.md §4.4 step 1).
		return nil, nil
	}

	inc.RespondedTime = state.SystemTime + RespondDelaySeconds

	var newEvents []sim.Event
	resolutionSent := false

	for _, action := range actions {
		if action.Type != sim.ActionDispatch {
			return nil, &sim.FatalError{Reason: fmt.Sprintf("unknown action type: %v", action.Type)}
		}
		if action.IncidentIndex != inc.IncidentIndex {
			return nil, &sim.FatalError{Reason: fmt.Sprintf("action incident mismatch: %d != %d", action.IncidentIndex, inc.IncidentIndex)}
		}

		station, err := state.Station(action.StationIndex)
		if err != nil {
			return nil, err
		}
		if station.StationIndex != action.StationIndex {
			return nil, &sim.FatalError{Reason: fmt.Sprintf("station index mismatch: %d != %d", action.StationIndex, station.StationIndex)}
		}
		if action.Count > station.Available[action.ApparatusType] {
			return nil, &sim.FatalError{Reason: fmt.Sprintf("dispatch exceeds available: station %d type %v count %d > available %d", action.StationIndex, action.ApparatusType, action.Count, station.Available[action.ApparatusType])}
		}
		dispatchedIDs, err := state.DispatchApparatus(action.ApparatusType, action.Count, action.StationIndex)
		if err != nil {
			return nil, err
		}
		dispatchedCount := uint32(len(dispatchedIDs))

		inc.Dispatches = append(inc.Dispatches, sim.Dispatch{
			StationIndex:  action.StationIndex,
			Count:         dispatchedCount,
			TravelTimeSec: action.TravelTimeSec,
		})
		inc.AdvanceStatus(sim.IncidentResponded)

		resolutionDuration := m.Oracle.ResolutionTime(state, inc)
		tResolve := state.SystemTime + RespondDelaySeconds + sim.SimTime(resolutionDuration)
		inc.ResolvedTime = tResolve

		if !resolutionSent {
			resolutionSent = true
			newEvents = append(newEvents, sim.Event{
				Type:          sim.EventIncidentResolution,
				EventTime:     tResolve,
				Sequence:      state.NextSequence(),
				IncidentIndex: inc.IncidentIndex,
			})
		}

		newEvents = append(newEvents, sim.Event{
			Type:          sim.EventApparatusReturnToStation,
			EventTime:     tResolve + sim.SimTime(action.TravelTimeSec),
			Sequence:      state.NextSequence(),
			IncidentIndex: inc.IncidentIndex,
			StationIndex:  action.StationIndex,
			ApparatusType: action.ApparatusType,
			EnginesCount:  dispatchedCount,
		})

		newEvents = append(newEvents, sim.Event{
			Type:          sim.EventApparatusArrivalAtIncident,
			EventTime:     state.SystemTime + RespondDelaySeconds + sim.SimTime(action.TravelTimeSec),
			Sequence:      state.NextSequence(),
			IncidentIndex: inc.IncidentIndex,
			StationIndex:  action.StationIndex,
		})

		inc.Current[action.ApparatusType] += dispatchedCount
	}

	return newEvents, nil
}

func totalUnits(m map[sim.ApparatusType]uint32) uint32 {
	var total uint32
	for _, n := range m {
		total += n
	}
	return total
}
