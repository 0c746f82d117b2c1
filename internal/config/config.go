// Package config loads the simulator's external-interface configuration
// (spec.md §6) from environment variables, an optional .env file, or
// inline JSON — an explicit value passed to constructors, never a
// package-level global (spec.md §9 DESIGN NOTES: "singleton configuration
// ... replace with an explicit configuration value"). Mirrors the
// teacher's cmd/default_config.go dual file/struct-decode shape, adapted
// from YAML to the spec's flat env-style key set.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds every spec.md §6 configuration key.
type Config struct {
	IncidentsCSVPath  string `json:"INCIDENTS_CSV_PATH"`
	StationsCSVPath   string `json:"STATIONS_CSV_PATH"`
	ApparatusCSVPath  string `json:"APPARATUS_CSV_PATH"`
	BoundsGeoJSONPath string `json:"BOUNDS_GEOJSON_PATH"`

	DistanceMatrixPath string `json:"DISTANCE_MATRIX_PATH"`
	DurationMatrixPath string `json:"DURATION_MATRIX_PATH"`
	BeatsMatrixPath    string `json:"BEATS_MATRIX_PATH"`
	ZoneMapCSVPath     string `json:"ZONE_MAP_CSV_PATH"`

	OSRMURL string `json:"OSRM_URL"`
	LogsPath string `json:"LOGS_PATH"`

	// Policy is one of "NEAREST", "FIREBEATS".
	Policy string `json:"POLICY"`
	// ResolutionModel is one of "HARDCODED", "DEPARTMENT", "ML".
	ResolutionModel string `json:"RESOLUTION_MODEL"`

	ONNXModelPath     string `json:"ONNX_MODEL_PATH"`
	FeatureConfigPath string `json:"FEATURE_CONFIG_PATH"`

	CategoryTablePath string `json:"CATEGORY_TABLE_PATH"`
	DurationTablePath string `json:"DURATION_TABLE_PATH"`

	RandomSeed int64 `json:"RANDOM_SEED"`
}

// ErrKind marks a configuration error. The CLI maps every error from
// LoadEnv/LoadJSON to exit code 2 without inspecting its type.
type ErrKind struct {
	Reason string
}

func (e *ErrKind) Error() string { return fmt.Sprintf("config: %s", e.Reason) }

func configErrorf(format string, args ...interface{}) error {
	return &ErrKind{Reason: fmt.Sprintf(format, args...)}
}

// LoadEnv loads a .env file (if present at envFilePath; a missing file is
// not an error — godotenv.Load only returns a parse error for a malformed
// file) and then builds a Config from the process environment.
func LoadEnv(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				return nil, configErrorf("parsing env file %s: %v", envFilePath, err)
			}
		}
	}

	cfg := &Config{
		IncidentsCSVPath:  os.Getenv("INCIDENTS_CSV_PATH"),
		StationsCSVPath:   os.Getenv("STATIONS_CSV_PATH"),
		ApparatusCSVPath:  os.Getenv("APPARATUS_CSV_PATH"),
		BoundsGeoJSONPath: os.Getenv("BOUNDS_GEOJSON_PATH"),

		DistanceMatrixPath: os.Getenv("DISTANCE_MATRIX_PATH"),
		DurationMatrixPath: os.Getenv("DURATION_MATRIX_PATH"),
		BeatsMatrixPath:    os.Getenv("BEATS_MATRIX_PATH"),
		ZoneMapCSVPath:     os.Getenv("ZONE_MAP_CSV_PATH"),

		OSRMURL:  os.Getenv("OSRM_URL"),
		LogsPath: os.Getenv("LOGS_PATH"),

		Policy:          os.Getenv("POLICY"),
		ResolutionModel: os.Getenv("RESOLUTION_MODEL"),

		ONNXModelPath:     os.Getenv("ONNX_MODEL_PATH"),
		FeatureConfigPath: os.Getenv("FEATURE_CONFIG_PATH"),

		CategoryTablePath: os.Getenv("CATEGORY_TABLE_PATH"),
		DurationTablePath: os.Getenv("DURATION_TABLE_PATH"),
	}

	seed := int64(0)
	if raw := os.Getenv("RANDOM_SEED"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &seed); err != nil {
			return nil, configErrorf("RANDOM_SEED %q is not an integer", raw)
		}
	}
	cfg.RandomSeed = seed

	return cfg, cfg.Validate()
}

// LoadJSON builds a Config from an inline JSON document with the same
// keys as the environment variables (spec.md §6).
func LoadJSON(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, configErrorf("parsing inline JSON config: %v", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the cross-field requirements: POLICY and
// RESOLUTION_MODEL must be recognized values; ML requires ONNX_MODEL_PATH,
// FEATURE_CONFIG_PATH and CATEGORY_TABLE_PATH; DEPARTMENT requires
// CATEGORY_TABLE_PATH and DURATION_TABLE_PATH; the three CSV paths are
// always required.
func (c *Config) Validate() error {
	switch c.Policy {
	case "NEAREST", "FIREBEATS":
	default:
		return configErrorf("POLICY must be NEAREST or FIREBEATS, got %q", c.Policy)
	}
	switch c.ResolutionModel {
	case "HARDCODED", "DEPARTMENT", "ML":
	default:
		return configErrorf("RESOLUTION_MODEL must be HARDCODED, DEPARTMENT, or ML, got %q", c.ResolutionModel)
	}
	if c.ResolutionModel == "ML" {
		if c.ONNXModelPath == "" || c.FeatureConfigPath == "" {
			return configErrorf("RESOLUTION_MODEL=ML requires ONNX_MODEL_PATH and FEATURE_CONFIG_PATH")
		}
		if c.CategoryTablePath == "" {
			return configErrorf("RESOLUTION_MODEL=ML requires CATEGORY_TABLE_PATH for its required-apparatus lookup")
		}
	}
	if c.ResolutionModel == "DEPARTMENT" {
		if c.CategoryTablePath == "" || c.DurationTablePath == "" {
			return configErrorf("RESOLUTION_MODEL=DEPARTMENT requires CATEGORY_TABLE_PATH and DURATION_TABLE_PATH")
		}
	}
	if c.IncidentsCSVPath == "" || c.StationsCSVPath == "" || c.ApparatusCSVPath == "" {
		return configErrorf("INCIDENTS_CSV_PATH, STATIONS_CSV_PATH, and APPARATUS_CSV_PATH are required")
	}
	return nil
}
