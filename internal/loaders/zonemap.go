package loaders

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// LoadZoneNames reads ZONE_MAP_CSV_PATH: columns ZoneIndex,ZoneName.
// Carries no simulation semantics (original's zoneIDToNameMapCSV in
// firebeats_dispatch.cpp). The CLI does not call it, and BeatsDispatch
// neither logs nor reads zone names.
func LoadZoneNames(path string) (map[int32]string, error) {
	names := make(map[int32]string)
	if path == "" {
		return names, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return names, nil
		}
		return nil, fmt.Errorf("loaders: opening zone map csv %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("loaders: reading zone map csv header: %w", err)
	}
	for {
		record, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("loaders: zone map csv: %w", err)
		}
		if len(record) < 2 {
			continue
		}
		zoneIndex, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		names[int32(zoneIndex)] = record[1]
	}
	return names, nil
}
