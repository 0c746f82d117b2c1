package dispatch

import (
	"github.com/inference-sim/inference-sim/internal/matrix"
	"github.com/inference-sim/inference-sim/sim"
)

// BeatsDispatch sends apparatus in the department's pre-assigned
// zone-to-station priority order instead of by measured travel time
// (original_source/src/policy/firebeats_dispatch.cpp). Durations, if
// provided, annotates TravelTimeSec on the resulting actions and feeds the
// same in-time feasibility check NearestDispatch uses; it never affects
// station ordering.
type BeatsDispatch struct {
	// Beats is a Zones x Ranks matrix; Beats.Get(rank, zone) is the
	// StationIndex assigned at that priority rank for the zone, or a
	// negative sentinel for ranks with no assignment. A negative rank is
	// skipped, not a list terminator: later ranks in the same column can
	// still hold valid stations.
	Beats *matrix.Matrix[int32]

	// Durations is optional; when present its (station, incident) cell is
	// used as TravelTimeSec. When absent, TravelTimeSec is left zero.
	Durations *matrix.Matrix[float64]
}

// Select implements Policy.
func (p *BeatsDispatch) Select(state *sim.State) []sim.Action {
	inc, ok := nextIncident(state)
	if !ok {
		return sim.DoNothing()
	}
	if inc.ZoneIndex < 0 || int(inc.ZoneIndex) >= int(p.Beats.Width) {
		return sim.DoNothing()
	}

	order := p.beatOrder(int(inc.ZoneIndex))

	var actions []sim.Action
	for _, t := range deficitTypes(inc) {
		deficit := inc.Deficit(t)
		for _, stationIndex := range order {
			if deficit == 0 {
				break
			}
			station, err := state.Station(stationIndex)
			if err != nil {
				continue
			}
			travelTime := p.travelTime(stationIndex, inc.IncidentIndex)
			if !feasible(state.SystemTime, travelTime, inc.ResolvedTime) {
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
				StationIndex:  stationIndex,
				ApparatusType: t,
				Count:         count,
				TravelTimeSec: travelTime,
			})
			deficit -= count
		}
	}

	if len(actions) == 0 {
		return sim.DoNothing()
	}
	return actions
}

// beatOrder returns the station indices assigned to zone, in ascending
// priority-rank order. A negative entry marks an exhausted rank for this
// zone and is skipped, not a terminator: lower-ranked stations further
// down the column can still be valid (original_source/src/policy/
// firebeats_dispatch.cpp: `if (index < 0 || index >= size) { continue; }`).
func (p *BeatsDispatch) beatOrder(zone int) []uint32 {
	order := make([]uint32, 0, p.Beats.Height)
	for rank := 0; rank < int(p.Beats.Height); rank++ {
		v := p.Beats.Get(rank, zone)
		if v < 0 {
			continue
		}
		order = append(order, uint32(v))
	}
	return order
}

func (p *BeatsDispatch) travelTime(stationIndex, incidentIndex uint32) float64 {
	if p.Durations == nil {
		return 0
	}
	if int(stationIndex) >= int(p.Durations.Height) || int(incidentIndex) >= int(p.Durations.Width) {
		return 0
	}
	d := p.Durations.Get(int(stationIndex), int(incidentIndex))
	if d < 0 {
		return 0
	}
	return d
}
