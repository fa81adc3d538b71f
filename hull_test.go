package openark

import (
	"testing"

	vec2d "github.com/flywave/go3d/float64/vec2"

	"github.com/stretchr/testify/assert"
)

func TestSurfaceHullSquare(t *testing.T) {
	a := assert.New(t)

	var pixels []PixelIndex
	for row := 0; row < 10; row++ {
		for col := 0; col < 10; col++ {
			pixels = append(pixels, PixelIndex{Row: row, Col: col})
		}
	}

	h := newSurfaceHull(pixels)
	hull := h.Hull()
	a.Len(hull, 4)

	r := h.Rect()
	a.Equal(vec2d.T{0, 0}, r.Min)
	a.Equal(vec2d.T{9, 9}, r.Max)
}

func TestSurfaceHullContains(t *testing.T) {
	a := assert.New(t)

	pixels := []PixelIndex{
		{Row: 0, Col: 0},
		{Row: 0, Col: 20},
		{Row: 20, Col: 0},
		{Row: 20, Col: 20},
	}
	h := newSurfaceHull(pixels)

	a.True(h.Contains(vec2d.T{10, 10}))
	a.True(h.Contains(vec2d.T{0, 0}))
	a.False(h.Contains(vec2d.T{30, 10}))
	a.False(h.Contains(vec2d.T{10, -5}))
}

func TestSurfaceHullEmpty(t *testing.T) {
	a := assert.New(t)

	h := newSurfaceHull(nil)
	a.Empty(h.Hull())
	a.False(h.Contains(vec2d.T{0, 0}))
}
