// Package oracle implements the pluggable Resolution Oracle contract
// (spec.md §4.3): for an incident, answer what apparatus it needs and how
// long it will take to resolve once resourced. Three variants are provided,
// mirrored on inference-sim's interface-plus-factory shape in
// sim/policy/admission.go (AdmissionPolicy / NewAdmissionPolicy).
package oracle

import (
	"fmt"

	"github.com/inference-sim/inference-sim/sim"
)

// Oracle answers the two questions every dispatch policy and the
// environment model need about an incident.
type Oracle interface {
	// RequiredApparatus returns the total units of each type needed to
	// fully resolve the incident.
	RequiredApparatus(inc *sim.Incident) map[sim.ApparatusType]uint32

	// ResolutionTime returns the predicted number of seconds until the
	// incident resolves, measured from the moment resourcing completes.
	// Always a duration, never a resolve-now boolean (spec.md §9 — the
	// source's HardCodedFireModel::computeResolutionTime conflated the
	// two; this contract resolves that ambiguity in favor of "duration").
	ResolutionTime(state *sim.State, inc *sim.Incident) float64
}

// New constructs an Oracle by name. Valid names: "hardcoded", "department",
// "ml".
func New(name string, seed int64, opts ...Option) (Oracle, error) {
	cfg := &config{seed: seed}
	for _, o := range opts {
		o(cfg)
	}
	switch name {
	case "hardcoded":
		return NewHardCoded(seed), nil
	case "department":
		if cfg.categoryTable == nil || cfg.durationTable == nil {
			return nil, fmt.Errorf("oracle %q requires WithCategoryTable and WithDurationTable", name)
		}
		return NewDepartment(cfg.categoryTable, cfg.durationTable, seed), nil
	case "ml":
		if cfg.model == nil || cfg.featureConfig == nil {
			return nil, fmt.Errorf("oracle %q requires WithModel and WithFeatureConfig", name)
		}
		return NewML(cfg.categoryTable, cfg.model, cfg.featureConfig, cfg.referenceCenter), nil
	default:
		return nil, fmt.Errorf("unknown resolution model %q; valid values: [hardcoded, department, ml]", name)
	}
}

type config struct {
	seed            int64
	categoryTable   map[sim.IncidentCategory]map[sim.ApparatusType]uint32
	durationTable   map[sim.IncidentCategory]DurationParams
	model           Model
	featureConfig   *FeatureConfig
	referenceCenter sim.Location
}

// Option configures New.
type Option func(*config)

// WithCategoryTable supplies the IncidentCategory -> required-apparatus
// table used by the Department and ML variants.
func WithCategoryTable(t map[sim.IncidentCategory]map[sim.ApparatusType]uint32) Option {
	return func(c *config) { c.categoryTable = t }
}

// WithDurationTable supplies the per-category (mean, variance, count)
// sampling table used by the Department variant.
func WithDurationTable(t map[sim.IncidentCategory]DurationParams) Option {
	return func(c *config) { c.durationTable = t }
}

// WithModel supplies the loaded regression model used by the ML variant.
func WithModel(m Model) Option {
	return func(c *config) { c.model = m }
}

// WithFeatureConfig supplies the feature-order contract used by the ML
// variant.
func WithFeatureConfig(fc *FeatureConfig) Option {
	return func(c *config) { c.featureConfig = fc }
}

// WithReferenceCenter supplies the geographic center used to compute the
// ML variant's haversine-distance feature.
func WithReferenceCenter(loc sim.Location) Option {
	return func(c *config) { c.referenceCenter = loc }
}
