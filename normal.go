package openark

import (
	"sync"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"gonum.org/v1/gonum/mat"
)

// minNormalNeighbors is the smallest neighborhood a local plane can be
// fit to.
const minNormalNeighbors = 3

// normalField holds one surface normal and curvature estimate per point of
// a point set. valid[i] is false when point i had too few neighbors.
type normalField struct {
	normals   []vec3d.T
	curvature []float64
	valid     []bool
}

// estimateNormals computes a unit surface normal and a curvature estimate
// for every point, fanning the per-point eigen-fits out over a bounded
// worker pool. All workers are joined before it returns.
func estimateNormals(points []vec3d.T, index *spatialIndex, k, workers int) *normalField {
	n := len(points)
	nf := &normalField{
		normals:   make([]vec3d.T, n),
		curvature: make([]float64, n),
		valid:     make([]bool, n),
	}

	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				normalAt(points, index, k, i, nf)
			}
		}(start, end)
	}
	wg.Wait()

	return nf
}

func normalAt(points []vec3d.T, index *spatialIndex, k, i int, nf *normalField) {
	ids := index.Nearest(points[i], k)
	if len(ids) < minNormalNeighbors {
		return
	}

	var centroid vec3d.T
	for _, id := range ids {
		centroid.Add(&points[id])
	}
	centroid.Scale(1.0 / float64(len(ids)))

	var xx, xy, xz, yy, yz, zz float64
	for _, id := range ids {
		d := vec3d.Sub(&points[id], &centroid)
		xx += d[0] * d[0]
		xy += d[0] * d[1]
		xz += d[0] * d[2]
		yy += d[1] * d[1]
		yz += d[1] * d[2]
		zz += d[2] * d[2]
	}

	cov := mat.NewSymDense(3, []float64{
		xx, xy, xz,
		xy, yy, yz,
		xz, yz, zz,
	})

	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		return
	}

	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// Eigenvalues ascend; the smallest one spans the normal direction.
	normal := vec3d.T{vecs.At(0, 0), vecs.At(1, 0), vecs.At(2, 0)}
	if normal.LengthSqr() == 0 {
		return
	}
	normal.Normalize()

	// Orient toward the sensor origin.
	if vec3d.Dot(&normal, &points[i]) > 0 {
		normal.Invert()
	}

	sum := vals[0] + vals[1] + vals[2]
	if sum > 1e-15 {
		nf.curvature[i] = vals[0] / sum
	}
	nf.normals[i] = normal
	nf.valid[i] = true
}
