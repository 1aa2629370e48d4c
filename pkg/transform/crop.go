package transform

import (
	"fmt"
	"math/rand"

	"micropatch/internal/models"
)

// CropAt extracts an h-by-w window from the spatial plane of a patch,
// with its top-left corner at (top, left). The crop is applied to
// every leading batch/channel plane, so the output keeps the input's
// leading shape with the spatial axes replaced by h and w.
func CropAt(p *models.Patch, top, left, h, w int) (*models.Patch, error) {
	ph, pw := p.SpatialDims()
	if h <= 0 || w <= 0 {
		return nil, fmt.Errorf("crop: window %dx%d must be positive", h, w)
	}
	if top < 0 || left < 0 || top+h > ph || left+w > pw {
		return nil, fmt.Errorf("crop: window %dx%d at (%d,%d) exceeds patch %dx%d", h, w, top, left, ph, pw)
	}

	outShape := make([]int, len(p.Shape))
	copy(outShape, p.Shape)
	outShape[len(outShape)-2] = h
	outShape[len(outShape)-1] = w

	out := &models.Patch{
		Data:  make([]float64, p.NumPlanes()*h*w),
		Shape: outShape,
	}

	inSize := ph * pw
	outSize := h * w
	for n := 0; n < p.NumPlanes(); n++ {
		src := p.Data[n*inSize : (n+1)*inSize]
		dst := out.Data[n*outSize : (n+1)*outSize]
		for y := 0; y < h; y++ {
			copy(dst[y*w:(y+1)*w], src[(top+y)*pw+left:(top+y)*pw+left+w])
		}
	}

	return out, nil
}

// RandomCrop extracts an h-by-w window at a position drawn uniformly
// from the valid range. The caller supplies the generator so that the
// crop position can be made reproducible and so that concurrent
// callers never share generator state.
func RandomCrop(p *models.Patch, h, w int, rng *rand.Rand) (*models.Patch, error) {
	ph, pw := p.SpatialDims()
	if h <= 0 || w <= 0 || h > ph || w > pw {
		return nil, fmt.Errorf("crop: window %dx%d does not fit patch %dx%d", h, w, ph, pw)
	}
	top := rng.Intn(ph - h + 1)
	left := rng.Intn(pw - w + 1)
	return CropAt(p, top, left, h, w)
}
