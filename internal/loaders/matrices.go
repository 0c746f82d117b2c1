package loaders

import (
	"fmt"
	"os"

	"github.com/inference-sim/inference-sim/internal/matrix"
)

// LoadDurationMatrix opens and parses a DURATION_MATRIX_PATH or
// DISTANCE_MATRIX_PATH file in the binary format spec.md §6 defines.
func LoadDurationMatrix(path string) (*matrix.Matrix[float64], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loaders: opening matrix %s: %w", path, err)
	}
	defer f.Close()
	m, err := matrix.ReadFloat64(f)
	if err != nil {
		return nil, fmt.Errorf("loaders: parsing matrix %s: %w", path, err)
	}
	return m, nil
}

// LoadBeatsMatrix opens and parses a BEATS_MATRIX_PATH file.
func LoadBeatsMatrix(path string) (*matrix.Matrix[int32], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loaders: opening beats matrix %s: %w", path, err)
	}
	defer f.Close()
	m, err := matrix.ReadInt32(f)
	if err != nil {
		return nil, fmt.Errorf("loaders: parsing beats matrix %s: %w", path, err)
	}
	return m, nil
}
