package openark

import (
	"math"

	vec2d "github.com/flywave/go3d/float64/vec2"
)

// SurfaceHull is the 2-D convex hull of a surface's pixel footprint on the
// depth map, in (col, row) coordinates. Downstream segmentation uses it as a
// region-of-interest boundary.
type SurfaceHull struct {
	vertices []vec2d.T
	hull     []vec2d.T
	edges    []hullEdge
}

type hullEdge struct {
	Start vec2d.T
	End   vec2d.T
}

func newSurfaceHull(pixels []PixelIndex) *SurfaceHull {
	vertices := make([]vec2d.T, len(pixels))
	for i, px := range pixels {
		vertices[i] = vec2d.T{float64(px.Col), float64(px.Row)}
	}
	return &SurfaceHull{vertices: vertices}
}

// Hull returns the hull vertices in counter-clockwise order in (col, row)
// space.
func (c *SurfaceHull) Hull() []vec2d.T {
	if c.hull == nil && len(c.vertices) > 0 {
		minX, maxX := c.extremePoints()
		c.hull = append(c.quickHull(c.vertices, maxX, minX), c.quickHull(c.vertices, minX, maxX)...)
	}
	return c.hull
}

// Rect returns the axis-aligned bounds of the hull.
func (c *SurfaceHull) Rect() vec2d.Rect {
	r := vec2d.Rect{Min: vec2d.MaxVal, Max: vec2d.MinVal}
	hull := c.Hull()
	for i := range hull {
		r.Extend(&hull[i])
	}
	return r
}

// Contains reports whether the pixel-space point lies inside the hull.
// Boundary points count as inside.
func (c *SurfaceHull) Contains(point vec2d.T) bool {
	for _, edge := range c.hullEdges() {
		side := vec2d.Sub(&edge.End, &edge.Start)
		to := vec2d.Sub(&point, &edge.Start)
		if cross2(side, to) < 0 {
			return false
		}
	}
	return len(c.Hull()) > 0
}

func (c *SurfaceHull) hullEdges() []hullEdge {
	if c.edges == nil {
		hull := c.Hull()
		for i, start := range hull {
			nextIndex := i + 1
			if len(hull) <= nextIndex {
				nextIndex = 0
			}
			c.edges = append(c.edges, hullEdge{Start: start, End: hull[nextIndex]})
		}
	}
	return c.edges
}

func (c *SurfaceHull) quickHull(points []vec2d.T, start, end vec2d.T) []vec2d.T {
	var lhs []vec2d.T
	farthest := vec2d.T{}
	maxDistance := 0.0
	for _, point := range points {
		d := distanceIndicator(point, start, end)
		if d > 0 {
			lhs = append(lhs, point)
			if d > maxDistance {
				maxDistance = d
				farthest = point
			}
		}
	}
	if len(lhs) == 0 {
		return []vec2d.T{end}
	}

	return append(
		c.quickHull(lhs, farthest, end),
		c.quickHull(lhs, start, farthest)...)
}

func (c *SurfaceHull) extremePoints() (minX, maxX vec2d.T) {
	minX = vec2d.T{math.MaxFloat64, 0}
	maxX = vec2d.T{-math.MaxFloat64, 0}

	for _, p := range c.vertices {
		if p[0] < minX[0] {
			minX = p
		}
		if maxX[0] < p[0] {
			maxX = p
		}
	}

	return minX, maxX
}

func cross2(lhs, rhs vec2d.T) float64 {
	return (lhs[0] * rhs[1]) - (lhs[1] * rhs[0])
}

func distanceIndicator(point, start, end vec2d.T) float64 {
	vLine := vec2d.Sub(&end, &start)
	vPoint := vec2d.Sub(&point, &start)
	return cross2(vLine, vPoint)
}
