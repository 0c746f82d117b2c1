package loaders

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/inference-sim/inference-sim/sim"
)

// SkipReason records one dropped input row (SUPPLEMENTED FEATURES: the
// original only counts skips; this additionally names which row and why).
type SkipReason struct {
	Row    int
	ID     string
	Reason string
}

// LoadReport summarizes one CSV load: how many rows were accepted and,
// for every row that wasn't, why.
type LoadReport struct {
	Accepted int
	Skipped  []SkipReason
}

func (r *LoadReport) skip(row int, id, reason string) {
	r.Skipped = append(r.Skipped, SkipReason{Row: row, ID: id, Reason: reason})
}

// LoadStations reads a STATIONS_CSV_PATH-shaped file: columns
// OBJECTID,FacilityName,Address,City,State,Zip,GLOBALID,X,Y. Rows outside
// bounds are skipped, not fatal; a malformed station id is a load-time
// error (original throws InvalidStationError).
func LoadStations(path string, bounds Polygon) ([]*sim.Station, LoadReport, error) {
	var report LoadReport
	f, err := os.Open(path)
	if err != nil {
		return nil, report, fmt.Errorf("loaders: opening stations csv %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	if _, err := r.Read(); err != nil {
		return nil, report, fmt.Errorf("loaders: reading stations csv header: %w", err)
	}

	var stations []*sim.Station
	var index uint32
	row := 1
	for {
		record, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, report, fmt.Errorf("loaders: stations csv row %d: %w", row, err)
		}
		row++
		if len(record) < 9 {
			report.skip(row, "", "too few columns")
			continue
		}

		stationID, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, report, fmt.Errorf("loaders: invalid station id %q at row %d", record[0], row)
		}
		lat, err := strconv.ParseFloat(record[7], 64)
		if err != nil {
			report.skip(row, record[0], "invalid lat")
			continue
		}
		lon, err := strconv.ParseFloat(record[8], 64)
		if err != nil {
			report.skip(row, record[0], "invalid lon")
			continue
		}
		loc := sim.Location{Lat: lat, Lon: lon}
		if !bounds.Contains(loc) {
			report.skip(row, record[0], "out of bounds")
			continue
		}

		station := sim.NewStation(index, uint32(stationID), loc, nil)
		stations = append(stations, station)
		report.Accepted++
		index++
	}
	return stations, report, nil
}

// incidentLevelNames mirrors the original's level string comparisons in
// loadIncidentsFromCSV; LoadIncidents compares type names inline.
var incidentLevelNames = map[string]sim.IncidentLevel{
	"Low":      sim.LevelLow,
	"Moderate": sim.LevelModerate,
	"High":     sim.LevelHigh,
	"Critical": sim.LevelCritical,
}

// LoadIncidents reads an INCIDENTS_CSV_PATH-shaped file: columns
// ID,Lat,Lon,Type,Level,DateTime ("2006-01-02 15:04:05"). Out-of-bounds
// and duplicate-id rows are skipped with a reason, not fatal.
func LoadIncidents(path string, bounds Polygon) ([]*sim.Incident, LoadReport, error) {
	var report LoadReport
	f, err := os.Open(path)
	if err != nil {
		return nil, report, fmt.Errorf("loaders: opening incidents csv %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	if _, err := r.Read(); err != nil {
		return nil, report, fmt.Errorf("loaders: reading incidents csv header: %w", err)
	}

	seen := make(map[int]bool)
	var incidents []*sim.Incident
	var index uint32
	row := 1
	for {
		record, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, report, fmt.Errorf("loaders: incidents csv row %d: %w", row, err)
		}
		row++
		if len(record) < 6 {
			report.skip(row, "", "too few columns")
			continue
		}

		id, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, report, fmt.Errorf("loaders: invalid incident id %q at row %d", record[0], row)
		}
		lat, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			report.skip(row, record[0], "invalid lat")
			continue
		}
		lon, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			report.skip(row, record[0], "invalid lon")
			continue
		}
		typeName := record[3]
		levelName := record[4]
		datetimeStr := record[5]

		reportTime, err := time.Parse("2006-01-02 15:04:05", datetimeStr)
		if err != nil {
			return nil, report, fmt.Errorf("loaders: invalid datetime %q at row %d: %w", datetimeStr, row, err)
		}

		loc := sim.Location{Lat: lat, Lon: lon}
		if !bounds.Contains(loc) {
			report.skip(row, record[0], "out of bounds")
			continue
		}
		if seen[id] {
			report.skip(row, record[0], "duplicate incident id")
			continue
		}
		seen[id] = true

		level := incidentLevelNames[levelName]
		incidentType := sim.IncidentType(typeName)
		if typeName != "Fire" && typeName != "Medical" {
			incidentType = sim.TypeInvalid
		}

		inc := sim.NewIncident(index, uint32(id), loc, sim.SimTime(reportTime.Unix()), -1, incidentType, level, sim.CategoryInvalid)
		incidents = append(incidents, inc)
		report.Accepted++
		index++
	}
	return incidents, report, nil
}

// apparatusColumns lists the apparatus CSV's per-type count columns in
// file order, mirrored on loadApparatusFromCSV's column walk.
var apparatusColumns = []sim.ApparatusType{
	sim.ApparatusEngine,
	sim.ApparatusTruck,
	sim.ApparatusRescue,
	sim.ApparatusHazard,
	sim.ApparatusSquad,
	sim.ApparatusFast,
	sim.ApparatusMedic,
	sim.ApparatusBrush,
	sim.ApparatusBoat,
	sim.ApparatusUTV,
	sim.ApparatusReach,
	sim.ApparatusChief,
}

// LoadApparatus reads an APPARATUS_CSV_PATH-shaped file: columns
// StationID,FacilityName,StationName,Engine,Truck,Rescue,Hazard,Squad,
// Fast,Medic,Brush,Boat,UTV,Reach,Chief. Every station referenced must
// already exist in stationByID; counts are both appended to apparatus and
// folded into that Station's Total/Available.
func LoadApparatus(path string, stationByID map[uint32]*sim.Station) ([]*sim.Apparatus, LoadReport, error) {
	var report LoadReport
	f, err := os.Open(path)
	if err != nil {
		return nil, report, fmt.Errorf("loaders: opening apparatus csv %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	if _, err := r.Read(); err != nil {
		return nil, report, fmt.Errorf("loaders: reading apparatus csv header: %w", err)
	}

	var apparatus []*sim.Apparatus
	var nextID sim.ApparatusID
	row := 1
	for {
		record, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, report, fmt.Errorf("loaders: apparatus csv row %d: %w", row, err)
		}
		row++
		if len(record) < 3+len(apparatusColumns) {
			report.skip(row, "", "too few columns")
			continue
		}

		stationID, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, report, fmt.Errorf("loaders: invalid station id %q at row %d", record[0], row)
		}
		station, ok := stationByID[uint32(stationID)]
		if !ok {
			report.skip(row, record[0], "unknown station id")
			continue
		}

		for i, apparatusType := range apparatusColumns {
			count := parseIntToken(record[3+i])
			for n := 0; n < count; n++ {
				a := &sim.Apparatus{ID: nextID, StationIndex: station.StationIndex, Type: apparatusType, Status: sim.StatusAvailable}
				apparatus = append(apparatus, a)
				nextID++
			}
			if count > 0 {
				station.Total[apparatusType] += uint32(count)
				station.Available[apparatusType] += uint32(count)
			}
		}
		report.Accepted++
	}
	return apparatus, report, nil
}

// parseIntToken mirrors the original's parseIntToken: an unparsable or
// empty token defaults to zero rather than aborting the whole row.
func parseIntToken(token string) int {
	if token == "" {
		return 0
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0
	}
	return n
}
