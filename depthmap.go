package openark

import (
	"fmt"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

// PMD pico depth sensor frame dimensions.
const (
	PMDCols = 176
	PMDRows = 120
)

// DefaultConfidenceThreshold is the amplitude below which a PMD sample is
// treated as noise and invalidated.
const DefaultConfidenceThreshold = 60.0 / 255.0 * 500.0

// DepthMap is a row-major grid of per-pixel 3-D coordinates in millimeters.
// A cell holding the zero vector (or a non-finite coordinate) is invalid and
// excluded from every derived point set.
type DepthMap struct {
	rows int
	cols int
	data []vec3d.T
}

func NewDepthMap(rows, cols int) (*DepthMap, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: depth map size %dx%d", ErrConfiguration, rows, cols)
	}
	return &DepthMap{
		rows: rows,
		cols: cols,
		data: make([]vec3d.T, rows*cols),
	}, nil
}

// NewDepthMapFromBuffer wraps a flat sensor buffer of row-major xyz triples,
// the layout delivered by pmdGet3DCoordinates.
func NewDepthMapFromBuffer(rows, cols int, buf []float32) (*DepthMap, error) {
	m, err := NewDepthMap(rows, cols)
	if err != nil {
		return nil, err
	}
	if len(buf) != 3*rows*cols {
		return nil, fmt.Errorf("%w: buffer length %d, want %d", ErrConfiguration, len(buf), 3*rows*cols)
	}
	for i := range m.data {
		m.data[i] = vec3d.T{float64(buf[3*i]), float64(buf[3*i+1]), float64(buf[3*i+2])}
	}
	return m, nil
}

func (m *DepthMap) Rows() int {
	return m.rows
}

func (m *DepthMap) Cols() int {
	return m.cols
}

func (m *DepthMap) Set(row, col int, p vec3d.T) {
	m.data[row*m.cols+col] = p
}

// At returns the coordinate at (row, col) and whether it is a valid sample.
func (m *DepthMap) At(row, col int) (vec3d.T, bool) {
	p := m.data[row*m.cols+col]
	return p, validSample(&p)
}

// Invalidate marks the cell at (row, col) as holding no sample.
func (m *DepthMap) Invalidate(row, col int) {
	m.data[row*m.cols+col] = vec3d.T{}
}

// MaskLowAmplitude invalidates every cell whose sensor amplitude falls below
// threshold. The amplitude buffer is row-major, one value per cell.
func (m *DepthMap) MaskLowAmplitude(amps []float32, threshold float64) error {
	if len(amps) != len(m.data) {
		return fmt.Errorf("%w: amplitude length %d, want %d", ErrConfiguration, len(amps), len(m.data))
	}
	for i := range m.data {
		if float64(amps[i]) < threshold {
			m.data[i] = vec3d.T{}
		}
	}
	return nil
}

func validSample(p *vec3d.T) bool {
	if p[0] == 0 && p[1] == 0 && p[2] == 0 {
		return false
	}
	return isFinite(p[0]) && isFinite(p[1]) && isFinite(p[2])
}
