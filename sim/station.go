package sim

// Station is a fixed apparatus depot. Created at init, never destroyed.
//
// Invariant: for every ApparatusType T, 0 <= Available[T] <= Total[T], and
// Available[T] equals the count of apparatus at this station with
// Type==T and Status==StatusAvailable. State enforces this invariant on
// every dispatch/return; Station itself does not validate.
type Station struct {
	StationIndex uint32
	StationID    uint32
	Location     Location
	Available    map[ApparatusType]uint32
	Total        map[ApparatusType]uint32
}

// NewStation builds a Station whose Total and Available counters both start
// at total's count for every type present in total (all units in station).
func NewStation(stationIndex, stationID uint32, loc Location, total map[ApparatusType]uint32) *Station {
	s := &Station{
		StationIndex: stationIndex,
		StationID:    stationID,
		Location:     loc,
		Total:        make(map[ApparatusType]uint32, len(total)),
		Available:    make(map[ApparatusType]uint32, len(total)),
	}
	for t, n := range total {
		s.Total[t] = n
		s.Available[t] = n
	}
	return s
}
