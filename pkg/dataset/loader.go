// Package dataset loads directories of noisy microscopy acquisitions
// into patches for the preprocessing pipeline.
package dataset

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"micropatch/internal/models"
)

// LoadDirectory loads every JPEG or PNG image in a directory as a
// grayscale patch with intensities in [0, 1], sorted by the numeric
// part of the filename so that an acquisition sequence keeps its
// order. All images must share the dimensions of the first one.
func LoadDirectory(dir string) ([]*models.Patch, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var imageFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".jpg" || ext == ".jpeg" || ext == ".png" {
			imageFiles = append(imageFiles, entry.Name())
		}
	}

	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("no JPEG or PNG images found in %s", dir)
	}

	// Sort by the numeric part of the filename so that frame_2 comes
	// before frame_10.
	sort.Slice(imageFiles, func(i, j int) bool {
		return extractNumber(imageFiles[i]) < extractNumber(imageFiles[j])
	})

	var patches []*models.Patch
	var width, height int
	for _, filename := range imageFiles {
		img, err := loadImage(filepath.Join(dir, filename))
		if err != nil {
			return nil, fmt.Errorf("failed to load image %s: %w", filename, err)
		}

		bounds := img.Bounds()
		if len(patches) == 0 {
			width = bounds.Dx()
			height = bounds.Dy()
		} else if bounds.Dx() != width || bounds.Dy() != height {
			return nil, fmt.Errorf("image %s is %dx%d, expected %dx%d",
				filename, bounds.Dx(), bounds.Dy(), width, height)
		}

		patches = append(patches, imageToPatch(img))
	}

	return patches, nil
}

// extractNumber extracts the numeric part from a filename for sorting.
func extractNumber(filename string) int {
	base := filepath.Base(filename)
	numStr := ""
	for _, c := range base {
		if c >= '0' && c <= '9' {
			numStr += string(c)
		}
	}

	if numStr != "" {
		num, err := strconv.Atoi(numStr)
		if err == nil {
			return num
		}
	}
	return 0
}

// loadImage opens and decodes a single image file.
func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}

	return img, nil
}

// imageToPatch converts an image to a grayscale patch in [0, 1].
func imageToPatch(img image.Image) *models.Patch {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	data := make([]float64, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, _, _, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// Convert 16-bit intensity to float64 (0-1 range).
			data[y*width+x] = float64(r) / 65535.0
		}
	}

	return &models.Patch{Data: data, Shape: []int{height, width}}
}
