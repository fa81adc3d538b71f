package openark

import (
	"testing"

	vec3d "github.com/flywave/go3d/float64/vec3"

	"github.com/stretchr/testify/assert"
)

func gridPoints(nx, ny int, step float64) []vec3d.T {
	var pts []vec3d.T
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			pts = append(pts, vec3d.T{float64(i) * step, float64(j) * step, 0})
		}
	}
	return pts
}

func TestSpatialIndexNearest(t *testing.T) {
	a := assert.New(t)

	pts := gridPoints(10, 10, 1)
	idx := newSpatialIndex(pts)

	ids := idx.Nearest(pts[0], 3)
	a.Len(ids, 3)
	// the query point itself is a member, so it must be among its own
	// nearest neighbors
	a.Contains(ids, 0)

	// results are sorted ascending
	for i := 1; i < len(ids); i++ {
		a.Greater(ids[i], ids[i-1])
	}
}

func TestSpatialIndexNearestMoreThanSet(t *testing.T) {
	a := assert.New(t)

	pts := []vec3d.T{{0, 0, 0}, {1, 0, 0}}
	idx := newSpatialIndex(pts)

	ids := idx.Nearest(vec3d.T{0, 0, 0}, 10)
	a.Equal([]int{0, 1}, ids)
}

func TestSpatialIndexInRadius(t *testing.T) {
	a := assert.New(t)

	pts := gridPoints(5, 5, 10)
	idx := newSpatialIndex(pts)

	// radius covers the point itself and its 4-neighborhood
	ids := idx.InRadius(pts[12], 10.5)
	a.Len(ids, 5)
	a.Contains(ids, 12)

	// brute-force cross check
	var want []int
	for i, p := range pts {
		d := vec3d.Sub(&p, &pts[12])
		if d.LengthSqr() <= 10.5*10.5 {
			want = append(want, i)
		}
	}
	a.Equal(want, ids)
}

func TestSpatialIndexDeterministic(t *testing.T) {
	a := assert.New(t)

	pts := gridPoints(8, 8, 3)
	first := newSpatialIndex(pts)
	second := newSpatialIndex(pts)

	for i := range pts {
		a.Equal(first.Nearest(pts[i], 9), second.Nearest(pts[i], 9))
	}
}
