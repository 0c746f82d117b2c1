// Package dispatch implements the pluggable dispatch policies that decide,
// on each driver tick, which stations send which apparatus to which
// incident. Grounded on original_source/src/policy/nearest_dispatch.cpp and
// original_source/src/policy/firebeats_dispatch.cpp, restructured around a
// shared Policy interface the way the teacher's routing.go exposes
// RoutingPolicy (RoundRobin/LeastLoaded/WeightedScoring) behind one
// constructor.
package dispatch

import (
	"fmt"

	"github.com/inference-sim/inference-sim/internal/matrix"
	"github.com/inference-sim/inference-sim/sim"
)

// unreachable marks a station/incident pair the duration matrix cannot
// route between (spec.md §6: a negative entry is not a valid duration).
const unreachable = -1

// Policy selects actions for the state's current tick. Implementations
// must not mutate state; the environment model is the sole writer
// (spec.md §5).
type Policy interface {
	Select(state *sim.State) []sim.Action
}

// nextIncident returns the first in-progress incident (in report-time
// order) that still has an unmet apparatus requirement and hasn't already
// run out of time to resolve, or false if none do. Both NearestDispatch
// and BeatsDispatch act on exactly this one incident per tick (spec.md
// §4.5 common preamble).
func nextIncident(state *sim.State) (*sim.Incident, bool) {
	for _, idx := range state.InProgressIndices() {
		inc, ok := state.Active()[idx]
		if !ok {
			continue
		}
		if inc.ResolvedTime > state.SystemTime && inc.TotalCurrent() < inc.TotalRequired() {
			return inc, true
		}
	}
	return nil, false
}

// feasible reports whether a station duration seconds away can still reach
// an incident before its predicted resolution time (spec.md §4.5 step 2),
// shared verbatim between NearestDispatch and BeatsDispatch ("travel-time
// feasibility check is identical").
func feasible(systemTime sim.SimTime, duration float64, resolvedTime sim.SimTime) bool {
	return systemTime+sim.SimTime(duration) < resolvedTime
}

// deficitTypes returns the apparatus types inc still needs, in a fixed
// enum order so iteration is deterministic regardless of map order.
func deficitTypes(inc *sim.Incident) []sim.ApparatusType {
	var types []sim.ApparatusType
	for t := sim.ApparatusPumper; t <= sim.ApparatusReach; t++ {
		if inc.Deficit(t) > 0 {
			types = append(types, t)
		}
	}
	return types
}

// NewDispatchPolicy builds a named Policy, mirroring oracle.New's
// name-based factory.
func NewDispatchPolicy(name string, durations *matrix.Matrix[float64], beats *matrix.Matrix[int32]) (Policy, error) {
	switch name {
	case "nearest":
		if durations == nil {
			return nil, fmt.Errorf("dispatch: nearest policy requires a duration matrix")
		}
		return &NearestDispatch{Durations: durations}, nil
	case "beats":
		if beats == nil {
			return nil, fmt.Errorf("dispatch: beats policy requires a beats matrix")
		}
		return &BeatsDispatch{Beats: beats, Durations: durations}, nil
	default:
		return nil, fmt.Errorf("dispatch: unknown policy %q", name)
	}
}
