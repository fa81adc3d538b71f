package openark

import (
	vec3d "github.com/flywave/go3d/float64/vec3"
)

// PointCloud is the canonical full-resolution point set extracted from a
// depth map, with a parallel back-map from point index to source pixel.
// Points keep the row-major scan order of the depth map.
type PointCloud struct {
	points []vec3d.T
	pixels []PixelIndex
}

func newPointCloud(m *DepthMap) *PointCloud {
	c := &PointCloud{
		points: make([]vec3d.T, 0, m.rows*m.cols),
		pixels: make([]PixelIndex, 0, m.rows*m.cols),
	}
	for row := 0; row < m.rows; row++ {
		for col := 0; col < m.cols; col++ {
			p, ok := m.At(row, col)
			if !ok {
				continue
			}
			c.points = append(c.points, p)
			c.pixels = append(c.pixels, PixelIndex{Row: row, Col: col})
		}
	}
	return c
}

func (c *PointCloud) Len() int {
	return len(c.points)
}

// Points returns the backing point slice. Callers must not mutate it.
func (c *PointCloud) Points() []vec3d.T {
	return c.points
}

func (c *PointCloud) Point(i int) vec3d.T {
	return c.points[i]
}

// Pixel returns the (row, col) origin of point i.
func (c *PointCloud) Pixel(i int) PixelIndex {
	return c.pixels[i]
}
