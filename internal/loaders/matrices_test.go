package loaders

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/inference-sim/inference-sim/internal/matrix"
)

func TestLoadDurationMatrix_RoundTrip(t *testing.T) {
	m, _ := matrix.New[float64](2, 2)
	m.Set(0, 0, 1)
	m.Set(1, 1, 2)
	var buf bytes.Buffer
	if err := matrix.Write(&buf, m); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "durations.bin")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("writing fixture file: %v", err)
	}

	got, err := LoadDurationMatrix(path)
	if err != nil {
		t.Fatalf("LoadDurationMatrix: %v", err)
	}
	if got.Get(1, 1) != 2 {
		t.Errorf("got %v, want 2", got.Get(1, 1))
	}
}

func TestLoadDurationMatrix_MissingFile(t *testing.T) {
	if _, err := LoadDurationMatrix("/nonexistent/matrix.bin"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadBeatsMatrix_RoundTrip(t *testing.T) {
	m, _ := matrix.New[int32](1, 1)
	m.Set(0, 0, 3)
	var buf bytes.Buffer
	if err := matrix.Write(&buf, m); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "beats.bin")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("writing fixture file: %v", err)
	}

	got, err := LoadBeatsMatrix(path)
	if err != nil {
		t.Fatalf("LoadBeatsMatrix: %v", err)
	}
	if got.Get(0, 0) != 3 {
		t.Errorf("got %v, want 3", got.Get(0, 0))
	}
}

func TestLoadZoneNames_EmptyPathReturnsEmptyMap(t *testing.T) {
	names, err := LoadZoneNames("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected empty map, got %v", names)
	}
}

func TestLoadZoneNames_MissingFileReturnsEmptyMap(t *testing.T) {
	names, err := LoadZoneNames("/nonexistent/zones.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected empty map, got %v", names)
	}
}

func TestLoadZoneNames_ParsesRows(t *testing.T) {
	path := writeFixture(t, "zones.csv", "ZoneIndex,ZoneName\n0,Downtown\n1,Uptown\n")
	names, err := LoadZoneNames(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if names[0] != "Downtown" || names[1] != "Uptown" {
		t.Errorf("unexpected zone names: %v", names)
	}
}
