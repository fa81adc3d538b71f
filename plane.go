package openark

import (
	"fmt"
	"image"
	"image/color"
	"runtime"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	// DefaultCloudSizeThreshold is the member count a cluster must reach to
	// qualify as the dominant surface.
	DefaultCloudSizeThreshold = 1000
	// DefaultRSquaredDistanceThreshold is the squared distance under which a
	// pixel's point is counted as part of the fitted surface.
	DefaultRSquaredDistanceThreshold = 0.0005
)

// Options configures a PlaneExtractor. Nil fields take defaults.
type Options struct {
	// LeafSize is the voxel edge length of the downsampling grid, in map
	// units per axis.
	LeafSize *vec3d.T
	// NeighborCount is K for nearest-neighbor searches during normal
	// estimation and region growing.
	NeighborCount *int
	// SmoothnessThreshold is the maximum angle, in degrees, between a seed
	// normal and a neighbor normal joining its region.
	SmoothnessThreshold *float64
	// CurvatureThreshold gates which region members keep expanding the
	// growth front.
	CurvatureThreshold *float64
	// MinRegionSize discards grown regions with fewer members.
	MinRegionSize *int
	// MaxRegionSize stops growth at this many members; 0 leaves growth
	// unbounded.
	MaxRegionSize *int
	// CloudSizeThreshold qualifies a cluster for surface fitting when its
	// member count is at least this value.
	CloudSizeThreshold *int
	// RSquaredDistanceThreshold is the squared surface-distance membership
	// tolerance.
	RSquaredDistanceThreshold *float64
	// Workers sizes the normal-estimation worker pool; defaults to the
	// available hardware parallelism.
	Workers *int
}

// PlaneExtractor extracts the dominant planar (and spherical) surface from
// a depth map. Every Compute call rebuilds all derived state from scratch;
// nothing carries over between frames.
type PlaneExtractor struct {
	grid          *voxelGrid
	neighbors     int
	smoothnessDeg float64
	curvature     float64
	minRegion     int
	maxRegion     int
	sizeThreshold int
	rsqThreshold  float64
	workers       int

	depth         *DepthMap
	cloud         *PointCloud
	downCloud     []vec3d.T
	plane         *PlaneModel
	planeErr      error
	sphere        *SphereModel
	sphereErr     error
	planeIndices  []PixelIndex
	sphereIndices []PixelIndex
}

func NewPlaneExtractor(opts Options) (*PlaneExtractor, error) {
	e := &PlaneExtractor{
		neighbors:     30,
		smoothnessDeg: 3.0,
		curvature:     1.0,
		minRegion:     20,
		maxRegion:     0,
		sizeThreshold: DefaultCloudSizeThreshold,
		rsqThreshold:  DefaultRSquaredDistanceThreshold,
		workers:       runtime.NumCPU(),
	}

	leaf := vec3d.T{10, 10, 10}
	if opts.LeafSize != nil {
		leaf = *opts.LeafSize
	}
	grid, err := newVoxelGrid(leaf)
	if err != nil {
		return nil, err
	}
	e.grid = grid

	if opts.NeighborCount != nil {
		e.neighbors = *opts.NeighborCount
	}
	if opts.SmoothnessThreshold != nil {
		e.smoothnessDeg = *opts.SmoothnessThreshold
	}
	if opts.CurvatureThreshold != nil {
		e.curvature = *opts.CurvatureThreshold
	}
	if opts.MinRegionSize != nil {
		e.minRegion = *opts.MinRegionSize
	}
	if opts.MaxRegionSize != nil {
		e.maxRegion = *opts.MaxRegionSize
	}
	if opts.CloudSizeThreshold != nil {
		e.sizeThreshold = *opts.CloudSizeThreshold
	}
	if opts.RSquaredDistanceThreshold != nil {
		e.rsqThreshold = *opts.RSquaredDistanceThreshold
	}
	if opts.Workers != nil {
		e.workers = *opts.Workers
	}

	switch {
	case e.neighbors < minNormalNeighbors:
		return nil, fmt.Errorf("%w: neighbor count %d", ErrConfiguration, e.neighbors)
	case e.smoothnessDeg <= 0 || e.smoothnessDeg >= 90:
		return nil, fmt.Errorf("%w: smoothness threshold %g degrees", ErrConfiguration, e.smoothnessDeg)
	case e.curvature <= 0:
		return nil, fmt.Errorf("%w: curvature threshold %g", ErrConfiguration, e.curvature)
	case e.minRegion < 3:
		return nil, fmt.Errorf("%w: minimum region size %d", ErrConfiguration, e.minRegion)
	case e.maxRegion < 0 || (e.maxRegion > 0 && e.maxRegion < e.minRegion):
		return nil, fmt.Errorf("%w: maximum region size %d", ErrConfiguration, e.maxRegion)
	case e.sizeThreshold < 3:
		return nil, fmt.Errorf("%w: cloud size threshold %d", ErrConfiguration, e.sizeThreshold)
	case e.rsqThreshold <= 0:
		return nil, fmt.Errorf("%w: squared distance threshold %g", ErrConfiguration, e.rsqThreshold)
	case e.workers < 1:
		return nil, fmt.Errorf("%w: worker count %d", ErrConfiguration, e.workers)
	}

	return e, nil
}

func (e *PlaneExtractor) reset() {
	e.depth = nil
	e.cloud = nil
	e.downCloud = nil
	e.plane = nil
	e.sphere = nil
	e.planeIndices = nil
	e.sphereIndices = nil
	e.planeErr = fmt.Errorf("%w: no surface extracted", ErrInsufficientData)
	e.sphereErr = fmt.Errorf("%w: no surface extracted", ErrInsufficientData)
}

// Compute runs the full extraction pipeline against a depth map: point set,
// voxel downsampling, normal estimation, region growing, plane and sphere
// regression, pixel membership. The returned error covers pipeline-level
// failures (no valid samples, no qualifying cluster); per-model regression
// failures surface through PlaneEquation and SphereEquation instead.
func (e *PlaneExtractor) Compute(m *DepthMap) error {
	e.reset()
	if m == nil {
		return fmt.Errorf("%w: nil depth map", ErrConfiguration)
	}
	e.depth = m
	e.cloud = newPointCloud(m)
	if e.cloud.Len() == 0 {
		return fmt.Errorf("%w: depth map has no valid samples", ErrInsufficientData)
	}

	down, err := e.grid.Filter(e.cloud.Points())
	if err != nil {
		return err
	}
	e.downCloud = down
	if len(down) < minNormalNeighbors {
		return fmt.Errorf("%w: downsampled cloud reduced to %d points", ErrInsufficientData, len(down))
	}

	cfg := regionConfig{
		neighbors:     e.neighbors,
		smoothnessDeg: e.smoothnessDeg,
		curvature:     e.curvature,
		minSize:       e.minRegion,
		maxSize:       e.maxRegion,
	}

	// Cheap existence probe on the downsampled set before paying for the
	// full-resolution pass.
	downIndex := newSpatialIndex(down)
	downNormals := estimateNormals(down, downIndex, e.neighbors, e.workers)
	if probe := growRegions(down, downNormals, downIndex, cfg); len(probe) == 0 {
		return fmt.Errorf("%w: no normal-coherent region in downsampled cloud", ErrInsufficientData)
	}

	index := newSpatialIndex(e.cloud.Points())
	normals := estimateNormals(e.cloud.Points(), index, e.neighbors, e.workers)
	clusters := growRegions(e.cloud.Points(), normals, index, cfg)

	var cluster []int
	for _, c := range clusters {
		if len(c) >= e.sizeThreshold {
			cluster = c
			break
		}
	}
	if cluster == nil {
		return fmt.Errorf("%w: no cluster reaches %d members", ErrInsufficientData, e.sizeThreshold)
	}

	e.plane, e.planeErr = fitPlane(e.cloud.Points(), cluster)
	e.sphere, e.sphereErr = fitSphere(e.cloud.Points(), cluster)

	if e.plane != nil {
		e.planeIndices = e.membershipIndices(e.plane.DistanceSq)
	}
	if e.sphere != nil {
		e.sphereIndices = e.membershipIndices(e.sphere.DistanceSq)
	}
	return nil
}

// membershipIndices scans the depth map in row-major order and keeps every
// pixel whose point lies within the squared distance tolerance of the
// fitted surface.
func (e *PlaneExtractor) membershipIndices(distSq func(vec3d.T) float64) []PixelIndex {
	var out []PixelIndex
	for row := 0; row < e.depth.Rows(); row++ {
		for col := 0; col < e.depth.Cols(); col++ {
			p, ok := e.depth.At(row, col)
			if !ok {
				continue
			}
			if distSq(p) < e.rsqThreshold {
				out = append(out, PixelIndex{Row: row, Col: col})
			}
		}
	}
	return out
}

// Cloud returns the full-resolution point set of the last Compute.
func (e *PlaneExtractor) Cloud() *PointCloud {
	return e.cloud
}

// DownCloud returns the downsampled point set of the last Compute.
func (e *PlaneExtractor) DownCloud() []vec3d.T {
	return e.downCloud
}

// PlaneEquation returns the fitted plane, or the regression failure.
func (e *PlaneExtractor) PlaneEquation() (*PlaneModel, error) {
	if e.plane == nil {
		return nil, e.planeErr
	}
	return e.plane, nil
}

// SphereEquation returns the fitted sphere, or the regression failure.
func (e *PlaneExtractor) SphereEquation() (*SphereModel, error) {
	if e.sphere == nil {
		return nil, e.sphereErr
	}
	return e.sphere, nil
}

// PlaneIndices returns the row-major pixel membership of the fitted plane.
func (e *PlaneExtractor) PlaneIndices() []PixelIndex {
	return e.planeIndices
}

// SphereIndices returns the row-major pixel membership of the fitted sphere.
func (e *PlaneExtractor) SphereIndices() []PixelIndex {
	return e.sphereIndices
}

// PlaneHull returns the convex hull of the plane's pixel footprint, or nil
// when no plane was extracted.
func (e *PlaneExtractor) PlaneHull() *SurfaceHull {
	if len(e.planeIndices) == 0 {
		return nil
	}
	return newSurfaceHull(e.planeIndices)
}

// SphereOverlay rasterizes a debug image of the sphere membership, graded
// from green (on the surface) to red (at the tolerance edge). It is a
// reporting aid only and never alters the index sequences. Returns nil when
// no sphere was extracted.
func (e *PlaneExtractor) SphereOverlay() *image.RGBA {
	if e.sphere == nil || e.depth == nil {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, e.depth.Cols(), e.depth.Rows()))
	for _, px := range e.sphereIndices {
		p, ok := e.depth.At(px.Row, px.Col)
		if !ok {
			continue
		}
		t := e.sphere.DistanceSq(p) / e.rsqThreshold
		if t > 1 {
			t = 1
		}
		c := colorful.Hsv(120*(1-t), 1, 1)
		img.SetRGBA(px.Col, px.Row, color.RGBA{
			R: uint8(c.R*255 + 0.5),
			G: uint8(c.G*255 + 0.5),
			B: uint8(c.B*255 + 0.5),
			A: 255,
		})
	}
	return img
}
