package loaders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/inference-sim/inference-sim/sim"
)

func TestLoadPolygonFromGeoJSON_EmptyPathIsWholeWorld(t *testing.T) {
	p, err := LoadPolygonFromGeoJSON("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Contains(sim.Location{Lat: 0, Lon: 0}) {
		t.Error("expected whole-world polygon to contain the origin")
	}
}

func TestLoadPolygonFromGeoJSON_MissingFileIsWholeWorld(t *testing.T) {
	p, err := LoadPolygonFromGeoJSON("/nonexistent/bounds.geojson")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Contains(sim.Location{Lat: -40, Lon: 120}) {
		t.Error("expected whole-world polygon to contain an arbitrary point")
	}
}

func TestLoadPolygonFromGeoJSON_ParsesOuterRing(t *testing.T) {
	doc := `{"features":[{"geometry":{"coordinates":[[[0,0],[0,10],[10,10],[10,0],[0,0]]]}}]}`
	dir := t.TempDir()
	path := filepath.Join(dir, "bounds.geojson")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	p, err := LoadPolygonFromGeoJSON(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p) != 5 {
		t.Fatalf("expected 5-point ring, got %d", len(p))
	}
	if !p.Contains(sim.Location{Lat: 5, Lon: 5}) {
		t.Error("expected point inside the square to be contained")
	}
	if p.Contains(sim.Location{Lat: 50, Lon: 50}) {
		t.Error("expected point outside the square to not be contained")
	}
}

func TestPolygonContains_SquareBoundary(t *testing.T) {
	square := Polygon{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 10}, {Lat: 10, Lon: 10}, {Lat: 10, Lon: 0}, {Lat: 0, Lon: 0},
	}
	cases := []struct {
		name string
		loc  sim.Location
		want bool
	}{
		{"center", sim.Location{Lat: 5, Lon: 5}, true},
		{"far outside", sim.Location{Lat: -5, Lon: -5}, false},
		{"outside east", sim.Location{Lat: 5, Lon: 20}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := square.Contains(c.loc); got != c.want {
				t.Errorf("Contains(%+v) = %v, want %v", c.loc, got, c.want)
			}
		})
	}
}

func TestPolygonContains_EmptyPolygonAcceptsEverything(t *testing.T) {
	var p Polygon
	if !p.Contains(sim.Location{Lat: 999, Lon: 999}) {
		t.Error("expected empty polygon to accept any point")
	}
}
