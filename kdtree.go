package openark

import (
	"sort"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// treePoint is a cloud point carrying its index into the source point set,
// so neighbor queries can be traced back to cloud/normal indices.
type treePoint struct {
	pos vec3d.T
	id  int
}

func (p treePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(treePoint)
	return p.pos[d] - q.pos[d]
}

func (p treePoint) Dims() int {
	return 3
}

func (p treePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(treePoint)
	v := vec3d.Sub(&p.pos, &q.pos)
	return v.LengthSqr()
}

type treePoints []treePoint

func (p treePoints) Index(i int) kdtree.Comparable {
	return p[i]
}

func (p treePoints) Len() int {
	return len(p)
}

func (p treePoints) Pivot(d kdtree.Dim) int {
	return treePlane{points: p, dim: d}.Pivot()
}

func (p treePoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}

type treePlane struct {
	points treePoints
	dim    kdtree.Dim
}

func (p treePlane) Len() int {
	return len(p.points)
}

func (p treePlane) Less(i, j int) bool {
	return p.points[i].pos[p.dim] < p.points[j].pos[p.dim]
}

func (p treePlane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

func (p treePlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}

func (p treePlane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}

// spatialIndex is the k-d tree over one point set, built once and shared by
// normal estimation and region growing.
type spatialIndex struct {
	tree *kdtree.Tree
}

func newSpatialIndex(points []vec3d.T) *spatialIndex {
	data := make(treePoints, len(points))
	for i, p := range points {
		data[i] = treePoint{pos: p, id: i}
	}
	return &spatialIndex{tree: kdtree.New(data, false)}
}

// Nearest returns the indices of up to k points nearest to q (including q's
// own entry when q is a member of the set), sorted ascending.
func (s *spatialIndex) Nearest(q vec3d.T, k int) []int {
	keep := kdtree.NewNKeeper(k)
	s.tree.NearestSet(keep, treePoint{pos: q, id: -1})
	ids := make([]int, 0, len(keep.Heap))
	for _, cd := range keep.Heap {
		if cd.Comparable == nil {
			continue
		}
		ids = append(ids, cd.Comparable.(treePoint).id)
	}
	sort.Sort(intList(ids))
	return ids
}

// InRadius returns the indices of all points within radius r of q, sorted
// ascending.
func (s *spatialIndex) InRadius(q vec3d.T, r float64) []int {
	keep := kdtree.NewDistKeeper(r * r)
	s.tree.NearestSet(keep, treePoint{pos: q, id: -1})
	ids := make([]int, 0, len(keep.Heap))
	for _, cd := range keep.Heap {
		if cd.Comparable == nil {
			continue
		}
		ids = append(ids, cd.Comparable.(treePoint).id)
	}
	sort.Sort(intList(ids))
	return ids
}
