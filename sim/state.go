package sim

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// stationTypeKey indexes apparatus by the (station, type) pair they were
// assigned to at init.
type stationTypeKey struct {
	station uint32
	typ     ApparatusType
}

// State is the single in-memory world: system time, stations, apparatus,
// and the three disjoint incident tables (queued-in-event-stream, active,
// done). The environment model owns all mutation; dispatch policies must
// treat State as read-only (spec.md §5).
type State struct {
	SystemTime SimTime

	Stations  []*Station
	Apparatus map[ApparatusID]*Apparatus

	// AllIncidents is authoritative and populated once at init; only
	// fields on its elements mutate afterward, never its membership.
	AllIncidents []*Incident

	active map[uint32]*Incident
	done   map[uint32]*Incident

	// inProgress holds incident indices in report-time order. Because
	// IncidentReported events are only ever processed in non-decreasing
	// event-time order (spec.md §4.1), appending here on report
	// preserves report-time order without a separate priority queue —
	// the "linear scan" DESIGN NOTES §9 asks to replace with a priority
	// structure collapses to this append-ordered slice. ResolveIncident
	// removes an index from it as soon as the incident is done.
	inProgress []uint32

	// byStationType indexes apparatus ids by (station, type), sorted
	// ascending by ApparatusID, so dispatch selection is deterministic
	// regardless of Go's randomized map iteration order (spec.md §5,
	// §8 byte-identical-replay requirement).
	byStationType map[stationTypeKey][]ApparatusID

	nextSequence uint64

	Logger *logrus.Logger
}

// NextSequence returns the next strictly-increasing event sequence number,
// used as the FIFO tie-break key when two events share EventTime
// (spec.md §4.1). State owns this counter because it is the one object the
// driver, environment model, and initial event generation all share.
func (s *State) NextSequence() uint64 {
	s.nextSequence++
	return s.nextSequence
}

// NewState builds an empty world over the given stations and apparatus
// roster. Apparatus statuses and each station's Total/Available counters
// are taken as given; NewState does not reconcile them with each other.
func NewState(stations []*Station, apparatus []*Apparatus, incidents []*Incident) *State {
	s := &State{
		Stations:     stations,
		Apparatus:    make(map[ApparatusID]*Apparatus, len(apparatus)),
		AllIncidents: incidents,
		active:       make(map[uint32]*Incident),
		done:         make(map[uint32]*Incident),
		byStationType: make(map[stationTypeKey][]ApparatusID),
		Logger:        logrus.StandardLogger(),
	}
	for _, a := range apparatus {
		s.Apparatus[a.ID] = a
		key := stationTypeKey{station: a.StationIndex, typ: a.Type}
		s.byStationType[key] = append(s.byStationType[key], a.ID)
	}
	for key := range s.byStationType {
		ids := s.byStationType[key]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return s
}

// AdvanceTime moves SystemTime forward. Per spec.md §4.2/§7, going backward
// is a programmer/data error, not a recoverable one.
func (s *State) AdvanceTime(t SimTime) error {
	if t < s.SystemTime {
		return fatalf("advance_time backwards: %d < %d", t, s.SystemTime)
	}
	s.SystemTime = t
	return nil
}

// Station returns the station at the given dense index.
func (s *State) Station(index uint32) (*Station, error) {
	if int(index) < 0 || int(index) >= len(s.Stations) {
		return nil, fatalf("station index out of range: %d", index)
	}
	return s.Stations[index], nil
}

// Incident returns the authoritative incident record at the given index.
func (s *State) Incident(index uint32) (*Incident, error) {
	if int(index) < 0 || int(index) >= len(s.AllIncidents) {
		return nil, fatalf("incident index out of range: %d", index)
	}
	return s.AllIncidents[index], nil
}

// Active returns the incidents currently reported-but-unresolved, keyed by
// incident index. Callers must not mutate the returned map's membership.
func (s *State) Active() map[uint32]*Incident { return s.active }

// Done returns the terminal incident table, keyed by incident index.
func (s *State) Done() map[uint32]*Incident { return s.done }

// InProgressIndices returns the indices of reported, not-yet-resolved
// incidents in report-time order.
func (s *State) InProgressIndices() []uint32 { return s.inProgress }

// ActivateIncident moves an incident from "not yet seen" into Active and
// appends it to the in-progress order. Called only from the environment
// model on IncidentReported.
func (s *State) ActivateIncident(inc *Incident) {
	s.active[inc.IncidentIndex] = inc
	s.inProgress = append(s.inProgress, inc.IncidentIndex)
}

// ResolveIncident moves an incident from Active to Done and drops it from
// the in-progress order.
func (s *State) ResolveIncident(index uint32) {
	inc, ok := s.active[index]
	if !ok {
		return
	}
	delete(s.active, index)
	s.done[index] = inc

	filtered := s.inProgress[:0]
	for _, idx := range s.inProgress {
		if idx != index {
			filtered = append(filtered, idx)
		}
	}
	s.inProgress = filtered
}

// DispatchApparatus picks up to count Available apparatus of the given type
// at the given station, marks them Dispatched, and returns their ids. If
// fewer than count are available, it dispatches what is available and
// returns that many ids (spec.md §4.2) — never an error for a partial
// dispatch; that is the caller's (dispatch policy's) job to have checked.
func (s *State) DispatchApparatus(t ApparatusType, count uint32, stationIndex uint32) ([]ApparatusID, error) {
	station, err := s.Station(stationIndex)
	if err != nil {
		return nil, err
	}
	if station.StationIndex != stationIndex {
		return nil, fatalf("station index mismatch: %d != %d", stationIndex, station.StationIndex)
	}

	ids := make([]ApparatusID, 0, count)
	candidates := s.byStationType[stationTypeKey{station: stationIndex, typ: t}]
	for _, id := range candidates {
		if uint32(len(ids)) >= count {
			break
		}
		a := s.Apparatus[id]
		if a.Status != StatusAvailable {
			continue
		}
		a.Status = StatusDispatched
		ids = append(ids, a.ID)
	}

	dispatched := uint32(len(ids))
	if dispatched > station.Available[t] {
		return nil, fatalf("station %d available[%s] underflow: have %d, dispatched %d", stationIndex, t, station.Available[t], dispatched)
	}
	station.Available[t] -= dispatched
	return ids, nil
}

// PendingReturnIDs selects up to count non-Available apparatus ids of the
// given type at the given station, in ascending ApparatusID order, for an
// ApparatusReturnToStation event to credit back (spec.md's event payload
// carries only a station/type/count, not specific ids — this recovers a
// deterministic, id-consistent selection rather than ranging over Go's
// randomized map iteration order).
func (s *State) PendingReturnIDs(stationIndex uint32, t ApparatusType, count uint32) []ApparatusID {
	candidates := s.byStationType[stationTypeKey{station: stationIndex, typ: t}]
	ids := make([]ApparatusID, 0, count)
	for _, id := range candidates {
		if uint32(len(ids)) >= count {
			break
		}
		if s.Apparatus[id].Status != StatusAvailable {
			ids = append(ids, id)
		}
	}
	return ids
}

// ReturnApparatus marks each listed apparatus id back to Available and
// credits the station's counters. Type/id mismatches are logged and
// skipped, never fatal (spec.md §4.2).
func (s *State) ReturnApparatus(t ApparatusType, ids []ApparatusID) {
	for _, id := range ids {
		a, ok := s.Apparatus[id]
		if !ok {
			s.warnf("return_apparatus: unknown apparatus id %d", id)
			continue
		}
		if a.Type != t {
			s.warnf("return_apparatus: type mismatch for apparatus %d: have %s, returned as %s", id, a.Type, t)
			continue
		}
		a.Status = StatusAvailable
		station, err := s.Station(a.StationIndex)
		if err != nil {
			s.warnf("return_apparatus: %v", err)
			continue
		}
		station.Available[t]++
		if station.Available[t] > station.Total[t] {
			s.warnf("return_apparatus: station %d available[%s] exceeds total after return", a.StationIndex, t)
		}
	}
}

func (s *State) warnf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Warnf(format, args...)
		return
	}
	logrus.Warnf(format, args...)
}

func (s *State) String() string {
	return fmt.Sprintf("State{t=%d active=%d done=%d}", s.SystemTime, len(s.active), len(s.done))
}
