package models

import (
	"fmt"
)

// Patch represents a single image patch or stack of patches as used by
// the preprocessing pipeline. The data is stored as a flat float64
// array in row-major order together with its shape.
//
// The last two axes are always the spatial plane (height, width). Any
// leading axes are batch or channel dimensions and are carried through
// transformations untouched.
type Patch struct {
	// Data holds the pixel intensities in row-major order
	Data []float64

	// Shape holds the dimensions of the patch, innermost last.
	// Must have at least two entries (height, width).
	Shape []int
}

// NewPatch creates a patch from existing data and shape.
// The data length must match the product of the shape dimensions.
func NewPatch(data []float64, shape ...int) (*Patch, error) {
	if len(shape) < 2 {
		return nil, fmt.Errorf("patch needs at least 2 dimensions, got %d", len(shape))
	}
	n := 1
	for _, d := range shape {
		if d <= 0 {
			return nil, fmt.Errorf("invalid dimension %d in shape %v", d, shape)
		}
		n *= d
	}
	if n != len(data) {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)", len(data), shape, n)
	}
	s := make([]int, len(shape))
	copy(s, shape)
	return &Patch{Data: data, Shape: s}, nil
}

// Zeros creates a zero-filled patch with the given shape.
func Zeros(shape ...int) (*Patch, error) {
	if len(shape) < 2 {
		return nil, fmt.Errorf("patch needs at least 2 dimensions, got %d", len(shape))
	}
	n := 1
	for _, d := range shape {
		if d <= 0 {
			return nil, fmt.Errorf("invalid dimension %d in shape %v", d, shape)
		}
		n *= d
	}
	s := make([]int, len(shape))
	copy(s, shape)
	return &Patch{Data: make([]float64, n), Shape: s}, nil
}

// SpatialDims returns the height and width of the spatial plane,
// which are always the last two axes.
func (p *Patch) SpatialDims() (height, width int) {
	n := len(p.Shape)
	return p.Shape[n-2], p.Shape[n-1]
}

// NumPlanes returns the number of spatial planes in the patch,
// i.e. the product of all leading (batch/channel) dimensions.
func (p *Patch) NumPlanes() int {
	n := 1
	for _, d := range p.Shape[:len(p.Shape)-2] {
		n *= d
	}
	return n
}

// NumElements returns the total number of values in the patch.
func (p *Patch) NumElements() int {
	return len(p.Data)
}

// Clone returns a deep copy of the patch. The returned patch shares
// no storage with the original, so mutating one never affects the other.
func (p *Patch) Clone() *Patch {
	data := make([]float64, len(p.Data))
	copy(data, p.Data)
	shape := make([]int, len(p.Shape))
	copy(shape, p.Shape)
	return &Patch{Data: data, Shape: shape}
}

// Plane returns the values of the i-th spatial plane as a slice
// backed by the patch data. The plane is height*width contiguous
// values; mutating it mutates the patch.
func (p *Patch) Plane(i int) ([]float64, error) {
	if i < 0 || i >= p.NumPlanes() {
		return nil, fmt.Errorf("plane index %d out of range [0, %d)", i, p.NumPlanes())
	}
	h, w := p.SpatialDims()
	size := h * w
	return p.Data[i*size : (i+1)*size], nil
}

// SameSpatialShape reports whether two patches share the same
// spatial plane dimensions. Leading batch/channel dimensions
// are allowed to differ.
func (p *Patch) SameSpatialShape(q *Patch) bool {
	ph, pw := p.SpatialDims()
	qh, qw := q.SpatialDims()
	return ph == qh && pw == qw
}
