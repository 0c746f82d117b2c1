package oracle

import (
	"math"
	"math/rand"

	"github.com/inference-sim/inference-sim/sim"
)

// DurationParams are the per-category sampling parameters loaded from a
// department's historical-resolution table (spec.md §4.3).
type DurationParams struct {
	MeanSeconds float64
	Variance    float64
	Count       int // sample size backing the estimate; informational only
}

// Department implements Oracle from a CSV/YAML-loaded category table:
// RequiredApparatus is a straight lookup, and ResolutionTime samples from a
// log-normal distribution parameterized per category.
//
// Log-normal (not Gaussian) is chosen deliberately: real incident
// resolution times are right-skewed with a long tail of slow-to-clear
// incidents, the same shape inference-sim's workload generators model with
// log-normal/Pareto mixtures for request service times rather than a
// symmetric Gaussian (grounded on the teacher's workload token-length
// samplers).
type Department struct {
	required map[sim.IncidentCategory]map[sim.ApparatusType]uint32
	duration map[sim.IncidentCategory]DurationParams
	rng      *rand.Rand
}

// NewDepartment constructs a Department oracle over the given tables,
// seeded for determinism.
func NewDepartment(required map[sim.IncidentCategory]map[sim.ApparatusType]uint32, duration map[sim.IncidentCategory]DurationParams, seed int64) *Department {
	return &Department{
		required: required,
		duration: duration,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// RequiredApparatus looks up the category's fixed table; an unknown
// category yields no requirement (the environment model then resolves the
// incident as soon as it is reported, per spec.md §8 boundary behavior).
func (d *Department) RequiredApparatus(inc *sim.Incident) map[sim.ApparatusType]uint32 {
	table, ok := d.required[inc.Category]
	if !ok {
		return map[sim.ApparatusType]uint32{}
	}
	out := make(map[sim.ApparatusType]uint32, len(table))
	for t, n := range table {
		out[t] = n
	}
	return out
}

// ResolutionTime samples a log-normal duration from the category's (mean,
// variance) parameters converted to the underlying normal's (mu, sigma).
func (d *Department) ResolutionTime(state *sim.State, inc *sim.Incident) float64 {
	params, ok := d.duration[inc.Category]
	if !ok || params.MeanSeconds <= 0 {
		return 0
	}
	mu, sigma := logNormalParams(params.MeanSeconds, params.Variance)
	sample := math.Exp(mu + sigma*d.rng.NormFloat64())
	if math.IsInf(sample, 0) || math.IsNaN(sample) || sample < 0 {
		return params.MeanSeconds
	}
	return sample
}

// logNormalParams converts a target (mean, variance) of X into the
// parameters (mu, sigma) of the underlying normal ln(X), using the standard
// log-normal moment-matching identities.
func logNormalParams(mean, variance float64) (mu, sigma float64) {
	if mean <= 0 {
		return 0, 0
	}
	ratio := 1 + variance/(mean*mean)
	sigma2 := math.Log(ratio)
	mu = math.Log(mean) - sigma2/2
	return mu, math.Sqrt(sigma2)
}
