package openark

import (
	"math"
	"sort"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

// regionConfig bundles the growth thresholds of one region-growing pass.
type regionConfig struct {
	neighbors     int
	smoothnessDeg float64
	curvature     float64
	minSize       int
	maxSize       int // 0 means unbounded
}

type seedList struct {
	ids       []int
	curvature []float64
}

func (s seedList) Len() int {
	return len(s.ids)
}

func (s seedList) Less(i, j int) bool {
	a, b := s.ids[i], s.ids[j]
	if s.curvature[a] == s.curvature[b] {
		return a < b
	}
	return s.curvature[a] < s.curvature[b]
}

func (s seedList) Swap(i, j int) {
	s.ids[i], s.ids[j] = s.ids[j], s.ids[i]
}

type clusterList [][]int

func (c clusterList) Len() int {
	return len(c)
}

func (c clusterList) Less(i, j int) bool {
	if len(c[i]) == len(c[j]) {
		return c[i][0] < c[j][0]
	}
	return len(c[i]) > len(c[j])
}

func (c clusterList) Swap(i, j int) {
	c[i], c[j] = c[j], c[i]
}

// growRegions clusters the point set into regions of locally consistent
// normal direction, expanding breadth-first from low-curvature seeds.
// Seeds are taken in ascending curvature order and neighbors in ascending
// index order, so identical input reproduces identical clusters.
// A candidate joins a region when its normal deviates from the seed normal
// by less than the smoothness threshold; it extends the expansion front only
// when its own curvature stays under the curvature threshold.
// Regions below minSize are consumed but not returned. Returned clusters are
// ranked by descending member count (ties by smallest member index), member
// indices ascending.
func growRegions(points []vec3d.T, nf *normalField, index *spatialIndex, cfg regionConfig) [][]int {
	n := len(points)
	seeds := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if nf.valid[i] {
			seeds = append(seeds, i)
		}
	}
	sort.Sort(seedList{ids: seeds, curvature: nf.curvature})

	visited := make([]bool, n)
	cosThresh := math.Cos(degToRad(cfg.smoothnessDeg))

	var clusters clusterList
	for _, seed := range seeds {
		if visited[seed] {
			continue
		}
		visited[seed] = true
		seedNormal := nf.normals[seed]

		region := []int{seed}
		front := []int{seed}
		for len(front) > 0 {
			if cfg.maxSize > 0 && len(region) >= cfg.maxSize {
				break
			}
			cur := front[0]
			front = front[1:]
			for _, nb := range index.Nearest(points[cur], cfg.neighbors) {
				if cfg.maxSize > 0 && len(region) >= cfg.maxSize {
					break
				}
				if nb == cur || visited[nb] || !nf.valid[nb] {
					continue
				}
				nn := nf.normals[nb]
				if math.Abs(vec3d.Dot(&seedNormal, &nn)) < cosThresh {
					continue
				}
				visited[nb] = true
				region = append(region, nb)
				if nf.curvature[nb] < cfg.curvature {
					front = append(front, nb)
				}
			}
		}

		if len(region) >= cfg.minSize {
			sort.Sort(intList(region))
			clusters = append(clusters, region)
		}
	}

	sort.Stable(clusters)
	return clusters
}
