package dispatch

import (
	"sort"

	"github.com/inference-sim/inference-sim/internal/matrix"
	"github.com/inference-sim/inference-sim/sim"
)

// NearestDispatch sends the closest available apparatus first, filling a
// deficit from progressively farther stations when the nearest one alone
// can't cover it (original_source/src/policy/nearest_dispatch.cpp).
type NearestDispatch struct {
	// Durations is a Stations x Incidents matrix; Durations.Get(station,
	// incident) is the travel time in seconds, or unreachable if the pair
	// cannot be routed.
	Durations *matrix.Matrix[float64]
}

type stationDuration struct {
	station  uint32
	duration float64
}

// Select implements Policy.
func (p *NearestDispatch) Select(state *sim.State) []sim.Action {
	inc, ok := nextIncident(state)
	if !ok {
		return sim.DoNothing()
	}

	ranked := p.rankStations(state, inc)

	var actions []sim.Action
	for _, t := range deficitTypes(inc) {
		deficit := inc.Deficit(t)
		for _, sd := range ranked {
			if deficit == 0 {
				break
			}
			station, err := state.Station(sd.station)
			if err != nil {
				continue
			}
			available := station.Available[t]
			if available == 0 {
				continue
			}
			count := available
			if count > deficit {
				count = deficit
			}
			actions = append(actions, sim.Action{
				Type:          sim.ActionDispatch,
				IncidentIndex: inc.IncidentIndex,
				StationIndex:  sd.station,
				ApparatusType: t,
				Count:         count,
				TravelTimeSec: sd.duration,
			})
			deficit -= count
		}
	}

	if len(actions) == 0 {
		return sim.DoNothing()
	}
	return actions
}

// rankStations returns every reachable, in-time station for inc, sorted by
// ascending travel time, with a station-index tie-break for determinism. A
// station is excluded when it cannot arrive before the incident's predicted
// resolution (spec.md §4.5 step 2: system_time + duration >= resolved_time).
func (p *NearestDispatch) rankStations(state *sim.State, inc *sim.Incident) []stationDuration {
	col := p.Durations.Column(int(inc.IncidentIndex))
	ranked := make([]stationDuration, 0, len(col))
	for i, d := range col {
		if d < 0 {
			continue
		}
		if i >= len(state.Stations) {
			continue
		}
		if !feasible(state.SystemTime, d, inc.ResolvedTime) {
			continue
		}
		ranked = append(ranked, stationDuration{station: state.Stations[i].StationIndex, duration: d})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].duration != ranked[j].duration {
			return ranked[i].duration < ranked[j].duration
		}
		return ranked[i].station < ranked[j].station
	})
	return ranked
}
