// Package matrix implements the dense row-major duration/distance/beats
// tables the dispatch policies read, plus their little-endian binary codec
// (spec.md §6). Replaces the original source's raw `int*`/`double*`
// flat-pointer matrices (spec.md §9 DESIGN NOTES) with a typed,
// length-checked buffer: indexing is bounds-checked and out-of-bounds is
// fatal, never undefined behavior.
package matrix

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Element is the set of scalar types a Matrix may hold: float64 for
// duration/distance tables, int32 for the beats table.
type Element interface {
	~float64 | ~int32
}

// MinDimension and MaxDimension bound matrix width/height (spec.md §6).
const (
	MinDimension = 1
	MaxDimension = 10000
)

// Matrix is a dense row-major Width x Height table: element (row, col) is
// stored at Data[row*Width+col].
type Matrix[T Element] struct {
	Width  int32
	Height int32
	Data   []T
}

// New allocates a zeroed Width x Height matrix.
func New[T Element](width, height int32) (*Matrix[T], error) {
	if err := validateDimensions(width, height); err != nil {
		return nil, err
	}
	return &Matrix[T]{Width: width, Height: height, Data: make([]T, int64(width)*int64(height))}, nil
}

func validateDimensions(width, height int32) error {
	if width < MinDimension || width > MaxDimension || height < MinDimension || height > MaxDimension {
		return fmt.Errorf("matrix: invalid dimensions %dx%d (must be in [%d,%d])", width, height, MinDimension, MaxDimension)
	}
	return nil
}

// Get returns the element at (row, col). Out-of-bounds access is a
// programmer error and panics, per spec.md §9 ("out-of-bounds is fatal").
func (m *Matrix[T]) Get(row, col int) T {
	if row < 0 || row >= int(m.Height) || col < 0 || col >= int(m.Width) {
		panic(fmt.Sprintf("matrix: index (%d,%d) out of bounds for %dx%d", row, col, m.Height, m.Width))
	}
	return m.Data[row*int(m.Width)+col]
}

// Set writes the element at (row, col).
func (m *Matrix[T]) Set(row, col int, v T) {
	if row < 0 || row >= int(m.Height) || col < 0 || col >= int(m.Width) {
		panic(fmt.Sprintf("matrix: index (%d,%d) out of bounds for %dx%d", row, col, m.Height, m.Width))
	}
	m.Data[row*int(m.Width)+col] = v
}

// Column returns a copy of column col across all rows (e.g. all stations'
// durations to one incident).
func (m *Matrix[T]) Column(col int) []T {
	out := make([]T, m.Height)
	for row := 0; row < int(m.Height); row++ {
		out[row] = m.Get(row, col)
	}
	return out
}

// ReadFloat64 parses the little-endian binary format for a duration or
// distance matrix: int32 width, int32 height, width*height float64 values,
// row-major (spec.md §6).
func ReadFloat64(r io.Reader) (*Matrix[float64], error) {
	width, height, err := readDims(r)
	if err != nil {
		return nil, err
	}
	m, err := New[float64](width, height)
	if err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &m.Data); err != nil {
		return nil, fmt.Errorf("matrix: reading float64 payload: %w", err)
	}
	return m, nil
}

// ReadInt32 parses the little-endian binary format for a beats matrix:
// int32 width, int32 height, width*height int32 values, row-major.
func ReadInt32(r io.Reader) (*Matrix[int32], error) {
	width, height, err := readDims(r)
	if err != nil {
		return nil, err
	}
	m, err := New[int32](width, height)
	if err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &m.Data); err != nil {
		return nil, fmt.Errorf("matrix: reading int32 payload: %w", err)
	}
	return m, nil
}

func readDims(r io.Reader) (width, height int32, err error) {
	if err = binary.Read(r, binary.LittleEndian, &width); err != nil {
		return 0, 0, fmt.Errorf("matrix: reading width: %w", err)
	}
	if err = binary.Read(r, binary.LittleEndian, &height); err != nil {
		return 0, 0, fmt.Errorf("matrix: reading height: %w", err)
	}
	if err := validateDimensions(width, height); err != nil {
		return 0, 0, err
	}
	return width, height, nil
}

// Write serializes m in the little-endian binary format: int32 width,
// int32 height, row-major payload.
func Write[T Element](w io.Writer, m *Matrix[T]) error {
	if err := binary.Write(w, binary.LittleEndian, m.Width); err != nil {
		return fmt.Errorf("matrix: writing width: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, m.Height); err != nil {
		return fmt.Errorf("matrix: writing height: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, m.Data); err != nil {
		return fmt.Errorf("matrix: writing payload: %w", err)
	}
	return nil
}
