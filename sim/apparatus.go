package sim

// Apparatus is one dispatchable unit, permanently bound to the station it
// was created at. Created once at simulation start and never destroyed
// mid-run; only its Status mutates.
type Apparatus struct {
	ID           ApparatusID
	StationIndex uint32
	Type         ApparatusType
	Status       ApparatusStatus
}
