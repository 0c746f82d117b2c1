package oracle

import (
	"errors"
	"testing"

	"github.com/inference-sim/inference-sim/sim"
)

type stubModel struct {
	predict func([]float64) (float64, error)
}

func (s *stubModel) Predict(features []float64) (float64, error) {
	return s.predict(features)
}

func TestFeatureConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		fc      *FeatureConfig
		wantErr bool
	}{
		{"nil config", nil, true},
		{"empty features", &FeatureConfig{}, true},
		{"valid simple", &FeatureConfig{Features: []FeatureSpec{{Kind: FeatureHour}}}, false},
		{"numerical missing name", &FeatureConfig{Features: []FeatureSpec{{Kind: FeatureNumerical, Scale: 1}}}, true},
		{"numerical zero scale", &FeatureConfig{Features: []FeatureSpec{{Kind: FeatureNumerical, Name: "zone_index", Scale: 0}}}, true},
		{"one-hot no categories", &FeatureConfig{Features: []FeatureSpec{{Kind: FeatureCategoryOneHot}}}, true},
		{"unknown kind", &FeatureConfig{Features: []FeatureSpec{{Kind: "bogus"}}}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.fc.Validate()
			if (err != nil) != c.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, c.wantErr)
			}
		})
	}
}

func TestNewML_PanicsOnInvalidFeatureConfig(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for invalid feature config")
		}
	}()
	NewML(nil, &stubModel{}, &FeatureConfig{}, sim.Location{})
}

func TestML_ResolutionTime_FallsBackOnModelError(t *testing.T) {
	fc := &FeatureConfig{Features: []FeatureSpec{{Kind: FeatureHour}}}
	m := NewML(nil, &stubModel{predict: func([]float64) (float64, error) {
		return 0, errors.New("inference failed")
	}}, fc, sim.Location{})

	inc := sim.NewIncident(0, 1, sim.Location{}, 0, -1, "Fire", sim.LevelLow, sim.CategoryInvalid)
	got := m.ResolutionTime(nil, inc)
	if got != neutralResolutionPrior {
		t.Errorf("expected neutral prior %v on model error, got %v", neutralResolutionPrior, got)
	}
}

func TestML_ResolutionTime_NegativePredictionFallsBack(t *testing.T) {
	fc := &FeatureConfig{Features: []FeatureSpec{{Kind: FeatureHour}}}
	m := NewML(nil, &stubModel{predict: func([]float64) (float64, error) {
		return -5, nil
	}}, fc, sim.Location{})

	inc := sim.NewIncident(0, 1, sim.Location{}, 0, -1, "Fire", sim.LevelLow, sim.CategoryInvalid)
	got := m.ResolutionTime(nil, inc)
	if got != neutralResolutionPrior {
		t.Errorf("expected neutral prior for negative prediction, got %v", got)
	}
}

func TestML_ExtractFeatures_Order(t *testing.T) {
	fc := &FeatureConfig{Features: []FeatureSpec{
		{Kind: FeatureHour},
		{Kind: FeatureCategoryOneHot, Categories: []sim.IncidentCategory{"Fire", "Medical"}},
		{Kind: FeatureNumerical, Name: "zone_index", Mean: 0, Scale: 1},
	}}

	var captured []float64
	m := NewML(nil, &stubModel{predict: func(f []float64) (float64, error) {
		captured = f
		return 42, nil
	}}, fc, sim.Location{})

	inc := sim.NewIncident(0, 1, sim.Location{}, 3600*13, 7, "Medical", sim.LevelLow, "Medical")
	got := m.ResolutionTime(nil, inc)
	if got != 42 {
		t.Errorf("expected model prediction passed through, got %v", got)
	}
	if len(captured) != 4 {
		t.Fatalf("expected 1 hour + 2 one-hot + 1 numerical = 4 features, got %d: %v", len(captured), captured)
	}
	if captured[1] != 0 || captured[2] != 1 {
		t.Errorf("expected one-hot [0,1] for Medical, got %v", captured[1:3])
	}
	if captured[3] != 7 {
		t.Errorf("expected scaled zone_index 7, got %v", captured[3])
	}
}
