package openark

import (
	"errors"
	"fmt"
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"gonum.org/v1/gonum/mat"
)

// maxSphereCondition bounds the design-matrix condition number accepted by
// the sphere regression; near-planar clusters exceed it.
const maxSphereCondition = 1e10

// planeRankEps separates a genuinely planar neighborhood from a collinear
// one in the covariance spectrum.
const planeRankEps = 1e-12

// fitPlane computes the orthogonal least-squares plane through the selected
// cluster points, via eigen-decomposition of their centered covariance.
func fitPlane(points []vec3d.T, cluster []int) (*PlaneModel, error) {
	if len(cluster) < 3 {
		return nil, fmt.Errorf("%w: plane fit needs 3 points, have %d", ErrInsufficientData, len(cluster))
	}

	var centroid vec3d.T
	for _, id := range cluster {
		centroid.Add(&points[id])
	}
	centroid.Scale(1.0 / float64(len(cluster)))

	var xx, xy, xz, yy, yz, zz float64
	for _, id := range cluster {
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
		return nil, fmt.Errorf("%w: covariance eigen-decomposition failed", ErrIllConditioned)
	}

	vals := eig.Values(nil)
	// vals ascend; a collinear or degenerate cluster has no unique normal.
	if vals[2] <= 0 || vals[1] <= planeRankEps*vals[2] {
		return nil, fmt.Errorf("%w: cluster points are collinear", ErrInsufficientData)
	}

	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	normal := vec3d.T{vecs.At(0, 0), vecs.At(1, 0), vecs.At(2, 0)}
	normal.Normalize()

	return &PlaneModel{
		A: normal[0],
		B: normal[1],
		C: normal[2],
		D: -vec3d.Dot(&normal, &centroid),
	}, nil
}

// fitSphere solves the linearized sphere regression
// x2+y2+z2 = 2cx*x + 2cy*y + 2cz*z + (r2 - cx2 - cy2 - cz2)
// as a 4-unknown least-squares system over the cluster points.
func fitSphere(points []vec3d.T, cluster []int) (*SphereModel, error) {
	if len(cluster) < 4 {
		return nil, fmt.Errorf("%w: sphere fit needs 4 points, have %d", ErrInsufficientData, len(cluster))
	}

	n := len(cluster)
	a := mat.NewDense(n, 4, nil)
	b := mat.NewVecDense(n, nil)
	for i, id := range cluster {
		p := points[id]
		a.Set(i, 0, 2*p[0])
		a.Set(i, 1, 2*p[1])
		a.Set(i, 2, 2*p[2])
		a.Set(i, 3, 1)
		b.SetVec(i, p[0]*p[0]+p[1]*p[1]+p[2]*p[2])
	}

	if cond := mat.Cond(a, 2); !isFinite(cond) || cond > maxSphereCondition {
		return nil, fmt.Errorf("%w: sphere system condition %g", ErrIllConditioned, cond)
	}

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return nil, fmt.Errorf("%w: sphere solve condition %g", ErrIllConditioned, float64(cond))
		}
		return nil, fmt.Errorf("%w: sphere solve: %v", ErrIllConditioned, err)
	}

	center := vec3d.T{x.AtVec(0), x.AtVec(1), x.AtVec(2)}
	r2 := x.AtVec(3) + center.LengthSqr()
	if !(r2 > 0) || !isFinite(r2) {
		return nil, fmt.Errorf("%w: non-positive squared radius %g", ErrIllConditioned, r2)
	}

	return &SphereModel{Center: center, Radius: math.Sqrt(r2)}, nil
}
