package sim

import "math"

// UnresolvedHorizon is the ResolvedTime a newly reported incident carries
// until its first dispatch sets a predicted resolution time. The source's
// Incident() default constructor seeds resolvedTime to wall-clock "now"
// over a historical trace, which is always far beyond the simulated
// system_time; UnresolvedHorizon reproduces that "far future" property
// without depending on wall-clock time.
const UnresolvedHorizon SimTime = math.MaxInt64

// Dispatch records one station's contribution to an incident: Count units
// of whatever apparatus type the action carried, TravelTimeSec seconds away.
type Dispatch struct {
	StationIndex  uint32
	Count         uint32
	TravelTimeSec float64
}

// Incident tracks one call from report through resolution.
//
// Invariants (spec.md §3): Current[T] <= Required[T] for every T; Status is
// monotone; RespondedTime >= ReportTime once set; ResolvedTime >=
// RespondedTime once resolved.
type Incident struct {
	IncidentIndex uint32 // dense index into State.AllIncidents
	IncidentID    uint32 // sparse source-system id

	Location Location

	ReportTime    SimTime
	RespondedTime SimTime
	ResolvedTime  SimTime

	ZoneIndex int32
	Type      IncidentType
	Level     IncidentLevel
	Category  IncidentCategory
	Status    IncidentStatus

	Required map[ApparatusType]uint32
	Current  map[ApparatusType]uint32

	Dispatches []Dispatch
}

// NewIncident constructs an incident in the initial Reported state with
// empty required/current maps, ready for the oracle to populate Required.
func NewIncident(index, id uint32, loc Location, reportTime SimTime, zone int32, typ IncidentType, level IncidentLevel, category IncidentCategory) *Incident {
	return &Incident{
		IncidentIndex: index,
		IncidentID:    id,
		Location:      loc,
		ReportTime:    reportTime,
		ResolvedTime:  UnresolvedHorizon,
		ZoneIndex:     zone,
		Type:          typ,
		Level:         level,
		Category:      category,
		Status:        IncidentReported,
		Required:      make(map[ApparatusType]uint32),
		Current:       make(map[ApparatusType]uint32),
	}
}

// TotalRequired sums Required across all apparatus types.
func (i *Incident) TotalRequired() uint32 {
	var total uint32
	for _, n := range i.Required {
		total += n
	}
	return total
}

// TotalCurrent sums Current across all apparatus types.
func (i *Incident) TotalCurrent() uint32 {
	var total uint32
	for _, n := range i.Current {
		total += n
	}
	return total
}

// Deficit returns the outstanding need for apparatus type T.
func (i *Incident) Deficit(t ApparatusType) uint32 {
	req := i.Required[t]
	cur := i.Current[t]
	if cur >= req {
		return 0
	}
	return req - cur
}

// AdvanceStatus moves Status forward to at least target, never backward
// (status monotonicity, spec.md §3).
func (i *Incident) AdvanceStatus(target IncidentStatus) {
	if target > i.Status {
		i.Status = target
	}
}
