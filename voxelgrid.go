package openark

import (
	"fmt"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

// voxelGrid reduces point density by replacing all points inside each
// leaf-sized spatial bucket with their centroid.
type voxelGrid struct {
	LeafSize vec3d.T
}

type voxel struct {
	sum vec3d.T
	num int
}

func newVoxelGrid(leafSize vec3d.T) (*voxelGrid, error) {
	for i := range leafSize {
		if !(leafSize[i] > 0) {
			return nil, fmt.Errorf("%w: voxel leaf size %v", ErrConfiguration, leafSize)
		}
	}
	return &voxelGrid{LeafSize: leafSize}, nil
}

func minMaxVec3(pc []vec3d.T) (vec3d.T, vec3d.T, error) {
	if len(pc) == 0 {
		return vec3d.T{}, vec3d.T{}, fmt.Errorf("%w: empty point set", ErrInsufficientData)
	}
	box := vec3d.Box{Min: pc[0], Max: pc[0]}
	for i := 1; i < len(pc); i++ {
		box.Extend(&pc[i])
	}
	return box.Min, box.Max, nil
}

func (f *voxelGrid) Filter(pc []vec3d.T) ([]vec3d.T, error) {
	min, max, err := minMaxVec3(pc)
	if err != nil {
		return nil, err
	}

	size := vec3d.Sub(&max, &min)
	xs := int(size[0]/f.LeafSize[0]) + 1
	ys := int(size[1]/f.LeafSize[1]) + 1
	zs := int(size[2]/f.LeafSize[2]) + 1
	voxels := make([]voxel, xs*ys*zs)

	var n int
	for i := range pc {
		p := vec3d.Sub(&pc[i], &min)
		x, y, z := int(p[0]/f.LeafSize[0]), int(p[1]/f.LeafSize[1]), int(p[2]/f.LeafSize[2])
		v := &voxels[x+xs*(y+ys*z)]
		if v.num == 0 {
			n++
		}
		v.num++
		v.sum.Add(&p)
	}

	newPc := make([]vec3d.T, 0, n)
	for i := range voxels {
		v := &voxels[i]
		if v.num > 0 {
			c := v.sum.Scaled(1.0 / float64(v.num))
			c.Add(&min)
			newPc = append(newPc, c)
		}
	}

	return newPc, nil
}
