package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/inference-sim/sim"
)

func TestNew_HardCoded(t *testing.T) {
	o, err := New("hardcoded", 1)
	require.NoError(t, err)
	_, ok := o.(*HardCoded)
	assert.True(t, ok, "expected *HardCoded")
}

func TestNew_UnknownName(t *testing.T) {
	_, err := New("nonsense", 1)
	assert.Error(t, err)
}

func TestNew_DepartmentRequiresTables(t *testing.T) {
	_, err := New("department", 1)
	assert.Error(t, err, "department oracle must require category/duration tables")

	o, err := New("department", 1,
		WithCategoryTable(map[sim.IncidentCategory]map[sim.ApparatusType]uint32{}),
		WithDurationTable(map[sim.IncidentCategory]DurationParams{}))
	require.NoError(t, err)
	_, ok := o.(*Department)
	assert.True(t, ok, "expected *Department")
}

func TestNew_MLRequiresModelAndFeatureConfig(t *testing.T) {
	_, err := New("ml", 1)
	assert.Error(t, err)
}

func TestHardCodedRequiredApparatus(t *testing.T) {
	tests := []struct {
		name  string
		level sim.IncidentLevel
		want  map[sim.ApparatusType]uint32
	}{
		{"low", sim.LevelLow, map[sim.ApparatusType]uint32{sim.ApparatusEngine: 1}},
		{"moderate", sim.LevelModerate, map[sim.ApparatusType]uint32{sim.ApparatusEngine: 2, sim.ApparatusTruck: 1}},
		{"unknown level", sim.IncidentLevel(255), map[sim.ApparatusType]uint32{}},
	}

	h := NewHardCoded(1)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inc := sim.NewIncident(0, 1, sim.Location{}, 0, -1, "Fire", tt.level, sim.CategoryInvalid)
			got := h.RequiredApparatus(inc)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHardCodedResolutionTime_NeverBelowHalfNominal(t *testing.T) {
	h := NewHardCoded(42)
	inc := sim.NewIncident(0, 1, sim.Location{}, 0, -1, "Fire", sim.LevelHigh, sim.CategoryInvalid)
	for i := 0; i < 50; i++ {
		got := h.ResolutionTime(nil, inc)
		if got < 0.5*hardCodedNominal[sim.LevelHigh] {
			t.Fatalf("resolution time %v below 50%% of nominal %v", got, hardCodedNominal[sim.LevelHigh])
		}
	}
}

func TestHardCodedResolutionTime_Deterministic(t *testing.T) {
	inc := sim.NewIncident(0, 1, sim.Location{}, 0, -1, "Fire", sim.LevelModerate, sim.CategoryInvalid)

	a := NewHardCoded(7)
	b := NewHardCoded(7)
	for i := 0; i < 10; i++ {
		got1 := a.ResolutionTime(nil, inc)
		got2 := b.ResolutionTime(nil, inc)
		if got1 != got2 {
			t.Fatalf("same-seed oracles diverged at iteration %d: %v != %v", i, got1, got2)
		}
	}
}

func TestDepartmentRequiredApparatus_UnknownCategory(t *testing.T) {
	d := NewDepartment(
		map[sim.IncidentCategory]map[sim.ApparatusType]uint32{
			"Fire": {sim.ApparatusEngine: 2},
		},
		map[sim.IncidentCategory]DurationParams{},
		1,
	)
	inc := sim.NewIncident(0, 1, sim.Location{}, 0, -1, "Fire", sim.LevelLow, "Unknown")
	got := d.RequiredApparatus(inc)
	if len(got) != 0 {
		t.Errorf("expected empty requirement for unknown category, got %v", got)
	}

	inc.Category = "Fire"
	got = d.RequiredApparatus(inc)
	if got[sim.ApparatusEngine] != 2 {
		t.Errorf("expected 2 engines for Fire category, got %v", got)
	}
}

func TestDepartmentResolutionTime_ZeroMeanIsZero(t *testing.T) {
	d := NewDepartment(nil, map[sim.IncidentCategory]DurationParams{
		"Fire": {MeanSeconds: 0, Variance: 10, Count: 5},
	}, 1)
	inc := sim.NewIncident(0, 1, sim.Location{}, 0, -1, "Fire", sim.LevelLow, "Fire")
	got := d.ResolutionTime(nil, inc)
	assert.Equal(t, 0.0, got)
}

func TestDepartmentResolutionTime_PositiveAndFinite(t *testing.T) {
	d := NewDepartment(nil, map[sim.IncidentCategory]DurationParams{
		"Fire": {MeanSeconds: 600, Variance: 3600, Count: 100},
	}, 99)
	inc := sim.NewIncident(0, 1, sim.Location{}, 0, -1, "Fire", sim.LevelLow, "Fire")
	for i := 0; i < 20; i++ {
		got := d.ResolutionTime(nil, inc)
		if got <= 0 {
			t.Fatalf("expected strictly positive sampled duration, got %v", got)
		}
	}
}
