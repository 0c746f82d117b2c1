package oracle

import (
	"math"
	"time"

	"github.com/inference-sim/inference-sim/sim"
)

// Model is the minimal contract the ML oracle needs from a loaded
// regression model: a single-sample forward pass over an ordered feature
// vector. internal/onnxruntime implements this against a real ONNX model;
// tests use a stub.
type Model interface {
	Predict(features []float64) (float64, error)
}

// FeatureKind tags one entry in the feature-order contract.
type FeatureKind string

const (
	FeatureHour          FeatureKind = "hour"
	FeatureDayOfWeek     FeatureKind = "day_of_week"
	FeatureMonth         FeatureKind = "month"
	FeatureQuarter       FeatureKind = "quarter"
	FeatureDayOfYear     FeatureKind = "day_of_year"
	FeatureSeason        FeatureKind = "season"
	FeatureShift         FeatureKind = "shift"
	FeatureIsHoliday     FeatureKind = "is_holiday"
	FeatureDistanceToRef FeatureKind = "distance_to_reference_center"
	FeatureCategoryOneHot FeatureKind = "category_one_hot"
	FeatureNumerical     FeatureKind = "numerical"
)

// FeatureSpec describes one ordered feature-vector slot.
type FeatureSpec struct {
	Kind FeatureKind

	// Name is the numerical feature's key (only meaningful when
	// Kind==FeatureNumerical); Mean/Scale implement standard scaling:
	// (value-Mean)/Scale.
	Name  string
	Mean  float64
	Scale float64

	// Categories lists the one-hot encoding order (only meaningful when
	// Kind==FeatureCategoryOneHot).
	Categories []sim.IncidentCategory

	// Holidays lists dates (YYYY-MM-DD, UTC) treated as holidays for
	// FeatureIsHoliday.
	Holidays []string
}

// FeatureConfig is the fixed, load-time-validated feature-order contract
// (spec.md §4.3).
type FeatureConfig struct {
	Features []FeatureSpec
}

// Validate checks the feature-order contract is well-formed: every
// one-hot/numerical spec names its data, and the config is non-empty.
func (fc *FeatureConfig) Validate() error {
	if fc == nil || len(fc.Features) == 0 {
		return errFeatureConfigEmpty
	}
	for i, f := range fc.Features {
		switch f.Kind {
		case FeatureNumerical:
			if f.Name == "" || f.Scale == 0 {
				return fatalFeatureErrorf(i, "numerical feature missing name or zero scale")
			}
		case FeatureCategoryOneHot:
			if len(f.Categories) == 0 {
				return fatalFeatureErrorf(i, "category_one_hot feature has no categories")
			}
		case FeatureHour, FeatureDayOfWeek, FeatureMonth, FeatureQuarter,
			FeatureDayOfYear, FeatureSeason, FeatureShift, FeatureIsHoliday,
			FeatureDistanceToRef:
			// no extra fields required
		default:
			return fatalFeatureErrorf(i, "unknown feature kind %q", f.Kind)
		}
	}
	return nil
}

// ML implements Oracle by extracting a feature vector per the configured
// order and running it through a single-sample regression model
// (spec.md §4.3). RequiredApparatus reuses the category table, same as
// Department.
type ML struct {
	required        map[sim.IncidentCategory]map[sim.ApparatusType]uint32
	model           Model
	featureConfig   *FeatureConfig
	referenceCenter sim.Location
}

// NewML constructs an ML oracle. Panics if featureConfig fails Validate —
// the feature-order contract must be checked at load time, not at first
// prediction (spec.md §4.3).
func NewML(required map[sim.IncidentCategory]map[sim.ApparatusType]uint32, model Model, featureConfig *FeatureConfig, referenceCenter sim.Location) *ML {
	if err := featureConfig.Validate(); err != nil {
		panic(err)
	}
	return &ML{
		required:        required,
		model:           model,
		featureConfig:   featureConfig,
		referenceCenter: referenceCenter,
	}
}

// RequiredApparatus looks up the category table, same contract as
// Department.RequiredApparatus.
func (m *ML) RequiredApparatus(inc *sim.Incident) map[sim.ApparatusType]uint32 {
	table, ok := m.required[inc.Category]
	if !ok {
		return map[sim.ApparatusType]uint32{}
	}
	out := make(map[sim.ApparatusType]uint32, len(table))
	for t, n := range table {
		out[t] = n
	}
	return out
}

// ResolutionTime extracts the configured feature vector and runs the
// model. On inference failure, or a negative prediction, it returns a
// neutral prior so the run continues; the failure is not logged, here or
// by the environment model that calls it.
func (m *ML) ResolutionTime(state *sim.State, inc *sim.Incident) float64 {
	features := m.extractFeatures(inc)
	prediction, err := m.model.Predict(features)
	if err != nil {
		return neutralResolutionPrior
	}
	if prediction < 0 {
		return neutralResolutionPrior
	}
	return prediction
}

// neutralResolutionPrior is returned when inference fails: a department
// average (30 minutes), matching the HardCoded oracle's Moderate nominal so
// a degraded ML run behaves like a reasonable fallback rather than stalling
// the simulation.
const neutralResolutionPrior = 30 * secondsPerMinute

func (m *ML) extractFeatures(inc *sim.Incident) []float64 {
	reportTime := time.Unix(int64(inc.ReportTime), 0).UTC()
	out := make([]float64, 0, len(m.featureConfig.Features))
	for _, spec := range m.featureConfig.Features {
		switch spec.Kind {
		case FeatureHour:
			out = append(out, float64(reportTime.Hour()))
		case FeatureDayOfWeek:
			out = append(out, float64(reportTime.Weekday()))
		case FeatureMonth:
			out = append(out, float64(reportTime.Month()))
		case FeatureQuarter:
			out = append(out, float64((int(reportTime.Month())-1)/3+1))
		case FeatureDayOfYear:
			out = append(out, float64(reportTime.YearDay()))
		case FeatureSeason:
			out = append(out, float64(season(reportTime.Month())))
		case FeatureShift:
			out = append(out, float64(shift(reportTime.Hour())))
		case FeatureIsHoliday:
			out = append(out, boolFloat(isHoliday(reportTime, spec.Holidays)))
		case FeatureDistanceToRef:
			out = append(out, haversineMeters(inc.Location, m.referenceCenter))
		case FeatureCategoryOneHot:
			out = append(out, oneHot(inc.Category, spec.Categories)...)
		case FeatureNumerical:
			out = append(out, scaledNumerical(inc, spec))
		}
	}
	return out
}

func season(month time.Month) int {
	switch month {
	case time.December, time.January, time.February:
		return 0 // winter
	case time.March, time.April, time.May:
		return 1 // spring
	case time.June, time.July, time.August:
		return 2 // summer
	default:
		return 3 // fall
	}
}

func shift(hour int) int {
	switch {
	case hour >= 6 && hour < 14:
		return 0 // day
	case hour >= 14 && hour < 22:
		return 1 // evening
	default:
		return 2 // night
	}
}

func isHoliday(t time.Time, holidays []string) bool {
	date := t.Format("2006-01-02")
	for _, h := range holidays {
		if h == date {
			return true
		}
	}
	return false
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func oneHot(category sim.IncidentCategory, order []sim.IncidentCategory) []float64 {
	out := make([]float64, len(order))
	for i, c := range order {
		if c == category {
			out[i] = 1
		}
	}
	return out
}

// scaledNumerical looks up a numerical feature by name on the incident and
// applies standard scaling. Only "zone_index" is currently supported; the
// switch is the extension point for additional numerical features the
// feature-config document may name.
func scaledNumerical(inc *sim.Incident, spec FeatureSpec) float64 {
	var raw float64
	switch spec.Name {
	case "zone_index":
		raw = float64(inc.ZoneIndex)
	default:
		raw = 0
	}
	return (raw - spec.Mean) / spec.Scale
}

// haversineMeters is the great-circle distance between two points.
func haversineMeters(a, b sim.Location) float64 {
	const earthRadiusMeters = 6371000.0
	lat1, lon1 := radians(a.Lat), radians(a.Lon)
	lat2, lon2 := radians(b.Lat), radians(b.Lon)
	dLat := lat2 - lat1
	dLon := lon2 - lon1
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
