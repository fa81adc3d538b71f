package openark

import (
	"errors"
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

var (
	// ErrInsufficientData reports that a stage had fewer valid points than
	// its minimum viable input.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrIllConditioned reports a numerically degenerate regression, such
	// as fitting a sphere to coplanar points.
	ErrIllConditioned = errors.New("ill-conditioned fit")
	// ErrConfiguration reports invalid construction-time options.
	ErrConfiguration = errors.New("invalid configuration")
)

// PixelIndex locates a depth-map cell by row-major position.
type PixelIndex struct {
	Row int
	Col int
}

// PlaneModel holds the regression plane a*x+b*y+c*z+d = 0 with a unit
// normal vector (a,b,c).
type PlaneModel struct {
	A, B, C, D float64
}

func (m *PlaneModel) Equation() [4]float64 {
	return [4]float64{m.A, m.B, m.C, m.D}
}

func (m *PlaneModel) Normal() vec3d.T {
	return vec3d.T{m.A, m.B, m.C}
}

// Distance returns the perpendicular distance from p to the plane.
func (m *PlaneModel) Distance(p vec3d.T) float64 {
	return math.Abs(m.A*p[0] + m.B*p[1] + m.C*p[2] + m.D)
}

// DistanceSq returns the squared perpendicular distance from p to the plane.
func (m *PlaneModel) DistanceSq(p vec3d.T) float64 {
	d := m.A*p[0] + m.B*p[1] + m.C*p[2] + m.D
	return d * d
}

// SphereModel holds the regression sphere by center and radius.
type SphereModel struct {
	Center vec3d.T
	Radius float64
}

func (m *SphereModel) Equation() [4]float64 {
	return [4]float64{m.Center[0], m.Center[1], m.Center[2], m.Radius}
}

// DistanceSq returns the squared radial deviation of p from the sphere
// surface.
func (m *SphereModel) DistanceSq(p vec3d.T) float64 {
	v := vec3d.Sub(&p, &m.Center)
	d := v.Length() - m.Radius
	return d * d
}

type intList []int

func (t intList) Len() int {
	return len(t)
}

func (t intList) Less(i, j int) bool {
	return t[i] < t[j]
}

func (t intList) Swap(i, j int) {
	tmp := t[i]
	t[i] = t[j]
	t[j] = tmp
}
