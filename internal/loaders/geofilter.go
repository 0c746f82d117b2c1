// Package loaders turns the CSV/GeoJSON inputs named in spec.md §6 into
// sim domain entities. Grounded on original_source/src/utils/loaders.cpp
// and src/data/geometry.cpp, translated from hand-rolled C++ line parsing
// into encoding/csv plus a small stdlib GeoJSON/point-in-polygon helper
// (no pack repo imports a GeoJSON library, so this stays on the standard
// library — see DESIGN.md).
package loaders

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/inference-sim/inference-sim/sim"
)

// Polygon is a closed ring of points in (lon, lat) order, matching the
// original's Point(x=lon, y=lat) convention.
type Polygon []sim.Location

// LoadPolygonFromGeoJSON reads the first feature's outer ring from a
// GeoJSON Polygon file. A missing file is not an error: it returns a
// polygon covering the whole globe, exactly mirroring the original's
// "Failed to open GeoJSON file. Accepting all points." fallback.
func LoadPolygonFromGeoJSON(path string) (Polygon, error) {
	if path == "" {
		return wholeWorld(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return wholeWorld(), nil
		}
		return nil, fmt.Errorf("loaders: reading bounds geojson %s: %w", path, err)
	}

	var doc geoJSONDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("loaders: parsing bounds geojson %s: %w", path, err)
	}
	if len(doc.Features) == 0 || len(doc.Features[0].Geometry.Coordinates) == 0 {
		return wholeWorld(), nil
	}

	ring := doc.Features[0].Geometry.Coordinates[0]
	polygon := make(Polygon, 0, len(ring))
	for _, coord := range ring {
		if len(coord) < 2 {
			continue
		}
		polygon = append(polygon, sim.Location{Lon: coord[0], Lat: coord[1]})
	}
	return polygon, nil
}

func wholeWorld() Polygon {
	return Polygon{
		{Lon: -180, Lat: -90},
		{Lon: -180, Lat: 90},
		{Lon: 180, Lat: 90},
		{Lon: 180, Lat: -90},
		{Lon: -180, Lat: -90},
	}
}

type geoJSONDocument struct {
	Features []geoJSONFeature `json:"features"`
}

type geoJSONFeature struct {
	Geometry geoJSONGeometry `json:"geometry"`
}

type geoJSONGeometry struct {
	Coordinates [][][]float64 `json:"coordinates"`
}

// Contains reports whether loc falls inside the polygon, using the
// nonzero winding-number rule (original's windingNumber/isPointInPolygon).
func (p Polygon) Contains(loc sim.Location) bool {
	if len(p) == 0 {
		return true
	}
	return windingNumber(p, loc) != 0
}

func windingNumber(polygon Polygon, point sim.Location) int {
	n := len(polygon)
	winding := 0
	for i := 0; i < n; i++ {
		p1 := polygon[i]
		p2 := polygon[(i+1)%n]
		if onSegment(point, p1, p2) {
			return 0
		}
		cross := crossProduct(p1, p2, point)
		if p1.Lat <= point.Lat {
			if p2.Lat > point.Lat && cross > 0 {
				winding++
			}
		} else {
			if p2.Lat <= point.Lat && cross < 0 {
				winding--
			}
		}
	}
	return winding
}

func crossProduct(p1, p2, p3 sim.Location) float64 {
	return (p2.Lon-p1.Lon)*(p3.Lat-p1.Lat) - (p2.Lat-p1.Lat)*(p3.Lon-p1.Lon)
}

func onSegment(p, p1, p2 sim.Location) bool {
	if crossProduct(p1, p2, p) != 0 {
		return false
	}
	return p.Lon >= min(p1.Lon, p2.Lon) && p.Lon <= max(p1.Lon, p2.Lon) &&
		p.Lat >= min(p1.Lat, p2.Lat) && p.Lat <= max(p1.Lat, p2.Lat)
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
