// Package sim holds the core domain model for the dispatch simulator:
// locations, apparatus, stations, incidents, events, and the world state
// that the environment model, oracle, and dispatch policies operate on.
package sim

import "fmt"

// SimTime is simulated time in seconds since the start of the replay.
type SimTime int64

// Location is an immutable geographic point.
type Location struct {
	Lat float64
	Lon float64
}

// ApparatusType enumerates the kinds of apparatus a station can host.
type ApparatusType uint8

const (
	ApparatusInvalid ApparatusType = iota
	ApparatusPumper
	ApparatusEngine
	ApparatusTruck
	ApparatusRescue
	ApparatusHazard
	ApparatusChief
	ApparatusSquad
	ApparatusFast
	ApparatusMedic
	ApparatusBrush
	ApparatusBoat
	ApparatusUTV
	ApparatusReach
)

var apparatusTypeNames = map[ApparatusType]string{
	ApparatusInvalid: "Invalid",
	ApparatusPumper:  "Pumper",
	ApparatusEngine:  "Engine",
	ApparatusTruck:   "Truck",
	ApparatusRescue:  "Rescue",
	ApparatusHazard:  "Hazard",
	ApparatusChief:   "Chief",
	ApparatusSquad:   "Squad",
	ApparatusFast:    "Fast",
	ApparatusMedic:   "Medic",
	ApparatusBrush:   "Brush",
	ApparatusBoat:    "Boat",
	ApparatusUTV:     "UTV",
	ApparatusReach:   "Reach",
}

func (t ApparatusType) String() string {
	if name, ok := apparatusTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ApparatusType(%d)", uint8(t))
}

// ParseApparatusType maps a source-system label to an ApparatusType.
// Returns ApparatusInvalid and false on an unrecognized label; callers must
// never let ApparatusInvalid reach live state (spec.md §3).
func ParseApparatusType(s string) (ApparatusType, bool) {
	for t, name := range apparatusTypeNames {
		if t != ApparatusInvalid && name == s {
			return t, true
		}
	}
	return ApparatusInvalid, false
}

// ApparatusStatus is the lifecycle state of one apparatus unit.
type ApparatusStatus uint8

const (
	StatusAvailable ApparatusStatus = iota
	StatusDispatched
	StatusEnRouteToIncident
	StatusAtIncident
	StatusReturningToStation
)

func (s ApparatusStatus) String() string {
	switch s {
	case StatusAvailable:
		return "Available"
	case StatusDispatched:
		return "Dispatched"
	case StatusEnRouteToIncident:
		return "EnRouteToIncident"
	case StatusAtIncident:
		return "AtIncident"
	case StatusReturningToStation:
		return "ReturningToStation"
	default:
		return fmt.Sprintf("ApparatusStatus(%d)", uint8(s))
	}
}

// IncidentLevel is a coarse severity classification used by the HardCoded
// resolution oracle.
type IncidentLevel uint8

const (
	LevelInvalid IncidentLevel = iota
	LevelLow
	LevelModerate
	LevelHigh
	LevelCritical
)

func (l IncidentLevel) String() string {
	switch l {
	case LevelLow:
		return "Low"
	case LevelModerate:
		return "Moderate"
	case LevelHigh:
		return "High"
	case LevelCritical:
		return "Critical"
	default:
		return "Invalid"
	}
}

// IncidentCategory is the source system's fine-grained call category
// (e.g. department CAD codes). Kept as a typed string rather than a closed
// enum because the Department/ML oracles load category tables from CSV/YAML
// at runtime; the source's duplicate "Invalid" enum entry (spec.md §9) is
// collapsed to the single zero value here.
type IncidentCategory string

// CategoryInvalid is the sentinel for an unparsed or unknown category.
const CategoryInvalid IncidentCategory = ""

// IncidentType is the source system's human-facing incident type label
// (e.g. "BuildingFire", "Medical"). Also a typed string for the same reason
// as IncidentCategory.
type IncidentType string

// TypeInvalid is the sentinel for an unparsed or unknown incident type.
const TypeInvalid IncidentType = ""

// IncidentStatus is monotone: a status may only advance to a later value in
// this order (spec.md §3 invariant).
type IncidentStatus uint8

const (
	IncidentReported IncidentStatus = iota
	IncidentResponded
	IncidentBeingResolved
	IncidentResolved
)

func (s IncidentStatus) String() string {
	switch s {
	case IncidentReported:
		return "Reported"
	case IncidentResponded:
		return "Responded"
	case IncidentBeingResolved:
		return "BeingResolved"
	case IncidentResolved:
		return "Resolved"
	default:
		return fmt.Sprintf("IncidentStatus(%d)", uint8(s))
	}
}

// ApparatusID uniquely identifies one apparatus unit for the lifetime of a run.
type ApparatusID uint32
