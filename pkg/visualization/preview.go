// Package visualization renders patches and noise diagnostics to
// grayscale images so that preprocessing results can be inspected.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"

	"micropatch/internal/models"
	"micropatch/pkg/noise"
)

// PatchImage renders the first spatial plane of a patch as a 16-bit
// grayscale image. Intensities are min-max scaled so that the full
// value range of the patch maps onto the full grayscale range; a
// constant patch renders as black.
func PatchImage(p *models.Patch) (image.Image, error) {
	plane, err := p.Plane(0)
	if err != nil {
		return nil, fmt.Errorf("failed to render patch: %w", err)
	}
	h, w := p.SpatialDims()

	lo := floats.Min(plane)
	hi := floats.Max(plane)
	scale := 0.0
	if hi > lo {
		scale = 65535.0 / (hi - lo)
	}

	img := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			value := uint16((plane[y*w+x] - lo) * scale)
			img.SetGray16(x, y, color.Gray16{Y: value})
		}
	}

	return img, nil
}

// HeatmapImage renders an autocorrelation map as a 16-bit grayscale
// image, with correlation -1 mapped to black, 0 to mid-gray and +1 to
// white. One pixel per lag pair; the top-left pixel is lag (0, 0).
func HeatmapImage(m *noise.Map) image.Image {
	side := m.MaxLag() + 1
	img := image.NewGray16(image.Rect(0, 0, side, side))

	for dy := 0; dy < side; dy++ {
		for dx := 0; dx < side; dx++ {
			v, err := m.At(dy, dx)
			if err != nil {
				continue
			}
			// Clamp to [-1, 1] before mapping onto the gray range.
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			value := uint16((v + 1) / 2 * 65535)
			img.SetGray16(dx, dy, color.Gray16{Y: value})
		}
	}

	return img
}

// SavePNG writes an image to disk as PNG, creating parent directories
// as needed.
func SavePNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}

	return nil
}

// SavePatchSequence renders a sequence of patches as numbered PNG
// files in the given directory.
func SavePatchSequence(dir string, patches []*models.Patch) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for i, p := range patches {
		img, err := PatchImage(p)
		if err != nil {
			return fmt.Errorf("failed to render patch %d: %w", i, err)
		}

		path := filepath.Join(dir, fmt.Sprintf("patch_%04d.png", i))
		if err := SavePNG(img, path); err != nil {
			return fmt.Errorf("failed to save patch %d: %w", i, err)
		}
	}

	return nil
}
