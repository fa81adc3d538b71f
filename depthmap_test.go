package openark

import (
	"math"
	"testing"

	vec3d "github.com/flywave/go3d/float64/vec3"

	"github.com/stretchr/testify/assert"
)

func TestDepthMapValidity(t *testing.T) {
	a := assert.New(t)

	m, err := NewDepthMap(4, 6)
	a.NoError(err)
	a.Equal(4, m.Rows())
	a.Equal(6, m.Cols())

	// zero sentinel is invalid
	_, ok := m.At(0, 0)
	a.False(ok)

	m.Set(1, 2, vec3d.T{10, 20, 500})
	p, ok := m.At(1, 2)
	a.True(ok)
	a.Equal(vec3d.T{10, 20, 500}, p)

	m.Set(2, 3, vec3d.T{math.NaN(), 0, 100})
	_, ok = m.At(2, 3)
	a.False(ok)

	m.Invalidate(1, 2)
	_, ok = m.At(1, 2)
	a.False(ok)
}

func TestDepthMapBadSize(t *testing.T) {
	a := assert.New(t)

	_, err := NewDepthMap(0, 10)
	a.ErrorIs(err, ErrConfiguration)
	_, err = NewDepthMap(10, -1)
	a.ErrorIs(err, ErrConfiguration)
}

func TestNewDepthMapFromBuffer(t *testing.T) {
	a := assert.New(t)

	buf := []float32{
		0, 0, 0, 1, 2, 3,
		4, 5, 6, 0, 0, 0,
	}
	m, err := NewDepthMapFromBuffer(2, 2, buf)
	a.NoError(err)

	_, ok := m.At(0, 0)
	a.False(ok)
	p, ok := m.At(0, 1)
	a.True(ok)
	a.Equal(vec3d.T{1, 2, 3}, p)
	p, ok = m.At(1, 0)
	a.True(ok)
	a.Equal(vec3d.T{4, 5, 6}, p)

	_, err = NewDepthMapFromBuffer(2, 2, buf[:7])
	a.ErrorIs(err, ErrConfiguration)
}

func TestMaskLowAmplitude(t *testing.T) {
	a := assert.New(t)

	m, err := NewDepthMap(2, 2)
	a.NoError(err)
	m.Set(0, 0, vec3d.T{1, 1, 100})
	m.Set(0, 1, vec3d.T{2, 2, 200})
	m.Set(1, 0, vec3d.T{3, 3, 300})

	amps := []float32{200, 50, 150, 10}
	a.NoError(m.MaskLowAmplitude(amps, DefaultConfidenceThreshold))

	_, ok := m.At(0, 0)
	a.True(ok)
	_, ok = m.At(0, 1)
	a.False(ok)
	_, ok = m.At(1, 0)
	a.True(ok)

	a.ErrorIs(m.MaskLowAmplitude([]float32{1}, 100), ErrConfiguration)
}

func TestPointCloudScanOrder(t *testing.T) {
	a := assert.New(t)

	m, err := NewDepthMap(3, 3)
	a.NoError(err)
	m.Set(0, 2, vec3d.T{1, 1, 1})
	m.Set(1, 0, vec3d.T{2, 2, 2})
	m.Set(2, 1, vec3d.T{3, 3, 3})

	c := newPointCloud(m)
	a.Equal(3, c.Len())
	a.Equal(PixelIndex{Row: 0, Col: 2}, c.Pixel(0))
	a.Equal(PixelIndex{Row: 1, Col: 0}, c.Pixel(1))
	a.Equal(PixelIndex{Row: 2, Col: 1}, c.Pixel(2))
	a.Equal(vec3d.T{2, 2, 2}, c.Point(1))
}
