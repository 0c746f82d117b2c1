package loaders

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/inference-sim/sim"
	"github.com/inference-sim/inference-sim/sim/oracle"
)

// categoryTableDoc and durationTableDoc are the YAML document shapes for
// the Department/ML oracles' category tables (spec.md §4.3): a category
// name keys either a required-apparatus count map or a (mean, variance,
// count) sampling triple.
type categoryTableDoc map[string]map[string]uint32

type durationTableDoc map[string]struct {
	MeanSeconds float64 `yaml:"mean_seconds"`
	Variance    float64 `yaml:"variance"`
	Count       int     `yaml:"count"`
}

// LoadCategoryTable reads a category -> required-apparatus YAML document.
func LoadCategoryTable(path string) (map[sim.IncidentCategory]map[sim.ApparatusType]uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loaders: reading category table %s: %w", path, err)
	}
	var doc categoryTableDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("loaders: parsing category table %s: %w", path, err)
	}

	table := make(map[sim.IncidentCategory]map[sim.ApparatusType]uint32, len(doc))
	for category, counts := range doc {
		row := make(map[sim.ApparatusType]uint32, len(counts))
		for typeName, count := range counts {
			t, ok := sim.ParseApparatusType(typeName)
			if !ok {
				return nil, fmt.Errorf("loaders: category table %s: unknown apparatus type %q", path, typeName)
			}
			row[t] = count
		}
		table[sim.IncidentCategory(category)] = row
	}
	return table, nil
}

// LoadDurationTable reads a category -> (mean_seconds, variance, count)
// YAML document for the Department oracle's log-normal sampling.
func LoadDurationTable(path string) (map[sim.IncidentCategory]oracle.DurationParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loaders: reading duration table %s: %w", path, err)
	}
	var doc durationTableDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("loaders: parsing duration table %s: %w", path, err)
	}

	table := make(map[sim.IncidentCategory]oracle.DurationParams, len(doc))
	for category, params := range doc {
		table[sim.IncidentCategory(category)] = oracle.DurationParams{
			MeanSeconds: params.MeanSeconds,
			Variance:    params.Variance,
			Count:       params.Count,
		}
	}
	return table, nil
}

// featureConfigDoc is the YAML document shape for the ML oracle's
// feature-order contract (spec.md §4.3).
type featureConfigDoc struct {
	Features []struct {
		Kind       string   `yaml:"kind"`
		Name       string   `yaml:"name,omitempty"`
		Mean       float64  `yaml:"mean,omitempty"`
		Scale      float64  `yaml:"scale,omitempty"`
		Categories []string `yaml:"categories,omitempty"`
		Holidays   []string `yaml:"holidays,omitempty"`
	} `yaml:"features"`
}

// LoadFeatureConfig reads the ML oracle's feature-order contract document
// (FEATURE_CONFIG_PATH, spec.md §6) and validates it.
func LoadFeatureConfig(path string) (*oracle.FeatureConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loaders: reading feature config %s: %w", path, err)
	}
	var doc featureConfigDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("loaders: parsing feature config %s: %w", path, err)
	}

	fc := &oracle.FeatureConfig{Features: make([]oracle.FeatureSpec, 0, len(doc.Features))}
	for _, f := range doc.Features {
		categories := make([]sim.IncidentCategory, 0, len(f.Categories))
		for _, c := range f.Categories {
			categories = append(categories, sim.IncidentCategory(c))
		}
		fc.Features = append(fc.Features, oracle.FeatureSpec{
			Kind:       oracle.FeatureKind(f.Kind),
			Name:       f.Name,
			Mean:       f.Mean,
			Scale:      f.Scale,
			Categories: categories,
			Holidays:   f.Holidays,
		})
	}
	if err := fc.Validate(); err != nil {
		return nil, fmt.Errorf("loaders: invalid feature config %s: %w", path, err)
	}
	return fc, nil
}
