// Package noise provides diagnostics for the spatial structure of
// imaging noise. A patch of pure noise (a signal-free dark region of a
// noisy acquisition) is examined for autocorrelation along rows and
// columns; the result tells a denoising model along which axis its
// autoregressive receptive field must extend.
package noise

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"micropatch/internal/models"
)

// Direction identifies the axis along which noise is spatially
// correlated.
type Direction int

const (
	// DirectionNone means the noise is spatially uncorrelated.
	DirectionNone Direction = iota

	// DirectionX means noise is correlated along rows of pixels,
	// as produced by line-scanning acquisition.
	DirectionX

	// DirectionY means noise is correlated along columns of pixels.
	DirectionY
)

func (d Direction) String() string {
	switch d {
	case DirectionX:
		return "x"
	case DirectionY:
		return "y"
	default:
		return "none"
	}
}

// Map holds the spatial autocorrelation of a noise patch for pixel
// lags 0..MaxLag in each direction. The value at (dy, dx) is the
// normalized correlation between pixel pairs separated by dy rows and
// dx columns, in [-1, 1], with (0, 0) always exactly 1.
type Map struct {
	vals   []float64
	maxLag int
}

// MaxLag returns the largest lag the map was computed for.
func (m *Map) MaxLag() int {
	return m.maxLag
}

// At returns the autocorrelation at vertical lag dy and horizontal
// lag dx.
func (m *Map) At(dy, dx int) (float64, error) {
	if dy < 0 || dy > m.maxLag || dx < 0 || dx > m.maxLag {
		return 0, fmt.Errorf("lag (%d,%d) out of range [0,%d]", dy, dx, m.maxLag)
	}
	return m.vals[dy*(m.maxLag+1)+dx], nil
}

// Direction classifies the noise as correlated along x (rows), along
// y (columns), or not spatially correlated, by comparing the mean
// absolute autocorrelation over purely horizontal lags against purely
// vertical lags. An axis is only reported when its mean correlation
// exceeds the threshold; a typical threshold is 0.5.
func (m *Map) Direction(threshold float64) Direction {
	if m.maxLag < 1 {
		return DirectionNone
	}

	horiz := 0.0
	vert := 0.0
	for lag := 1; lag <= m.maxLag; lag++ {
		horiz += math.Abs(m.vals[lag])
		vert += math.Abs(m.vals[lag*(m.maxLag+1)])
	}
	horiz /= float64(m.maxLag)
	vert /= float64(m.maxLag)

	switch {
	case horiz > threshold && horiz >= vert:
		return DirectionX
	case vert > threshold:
		return DirectionY
	default:
		return DirectionNone
	}
}

// Autocorrelation estimates the spatial autocorrelation of a
// single-plane noise patch for all lags 0..maxLag in each direction.
//
// The patch is mean-subtracted, then for each lag pair the average
// product of pixel pairs at that separation is divided by the patch
// variance. A larger patch gives a more accurate estimate.
func Autocorrelation(p *models.Patch, maxLag int) (*Map, error) {
	if p.NumPlanes() != 1 {
		return nil, fmt.Errorf("autocorrelation: patch must be a single plane, got %d planes", p.NumPlanes())
	}
	h, w := p.SpatialDims()
	if maxLag < 0 {
		return nil, fmt.Errorf("autocorrelation: max lag must be non-negative, got %d", maxLag)
	}
	if maxLag >= h || maxLag >= w {
		return nil, fmt.Errorf("autocorrelation: max lag %d too large for %dx%d patch", maxLag, h, w)
	}

	mean := stat.Mean(p.Data, nil)
	variance := stat.PopVariance(p.Data, nil)
	if variance == 0 {
		return nil, fmt.Errorf("autocorrelation: patch has zero variance")
	}

	centered := make([]float64, len(p.Data))
	for i, v := range p.Data {
		centered[i] = v - mean
	}

	side := maxLag + 1
	m := &Map{
		vals:   make([]float64, side*side),
		maxLag: maxLag,
	}

	for dy := 0; dy <= maxLag; dy++ {
		for dx := 0; dx <= maxLag; dx++ {
			sum := 0.0
			count := 0
			for y := 0; y < h-dy; y++ {
				for x := 0; x < w-dx; x++ {
					sum += centered[y*w+x] * centered[(y+dy)*w+(x+dx)]
					count++
				}
			}
			m.vals[dy*side+dx] = sum / (float64(count) * variance)
		}
	}

	// The zero-lag entry is a pixel's correlation with itself.
	m.vals[0] = 1.0

	return m, nil
}

// DarkestWindow locates the h-by-w spatial window with the lowest mean
// intensity in a single-plane patch. On a noisy acquisition this is
// the best candidate for a signal-free region of pure noise to feed
// into Autocorrelation.
func DarkestWindow(p *models.Patch, h, w int) (top, left int, err error) {
	if p.NumPlanes() != 1 {
		return 0, 0, fmt.Errorf("darkest window: patch must be a single plane, got %d planes", p.NumPlanes())
	}
	ph, pw := p.SpatialDims()
	if h <= 0 || w <= 0 || h > ph || w > pw {
		return 0, 0, fmt.Errorf("darkest window: %dx%d window does not fit %dx%d patch", h, w, ph, pw)
	}

	// Summed-area table over the plane; integral[y][x] holds the sum of
	// all pixels above and left of (y, x) exclusive.
	integral := make([]float64, (ph+1)*(pw+1))
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			integral[(y+1)*(pw+1)+(x+1)] = p.Data[y*pw+x] +
				integral[y*(pw+1)+(x+1)] +
				integral[(y+1)*(pw+1)+x] -
				integral[y*(pw+1)+x]
		}
	}

	best := math.Inf(1)
	for y := 0; y+h <= ph; y++ {
		for x := 0; x+w <= pw; x++ {
			sum := integral[(y+h)*(pw+1)+(x+w)] -
				integral[y*(pw+1)+(x+w)] -
				integral[(y+h)*(pw+1)+x] +
				integral[y*(pw+1)+x]
			if sum < best {
				best = sum
				top, left = y, x
			}
		}
	}

	return top, left, nil
}
