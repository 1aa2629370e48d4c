// Package transform provides the patch transformations used to prepare
// noisy microscopy data for training a denoising model: elementwise
// normalization against dataset statistics, deterministic paired
// flip/rotate augmentation, and random cropping.
package transform

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"micropatch/internal/models"
)

// Normalize returns a new patch with every value shifted and scaled
// as (x - mean) / std. The input is never modified.
//
// The std is typically the empirical standard deviation of the full
// dataset (see DatasetStats); a zero std is rejected rather than
// letting the division produce non-finite values.
func Normalize(p *models.Patch, mean, std float64) (*models.Patch, error) {
	if std == 0 {
		return nil, fmt.Errorf("normalize: std must be non-zero")
	}
	out := p.Clone()
	floats.AddConst(-mean, out.Data)
	floats.Scale(1/std, out.Data)
	return out, nil
}

// Denormalize is the exact algebraic inverse of Normalize: it returns
// a new patch with every value mapped as x*std + mean. For any non-zero
// std, Denormalize(Normalize(p, m, s), m, s) recovers p up to
// floating-point rounding.
func Denormalize(p *models.Patch, mean, std float64) (*models.Patch, error) {
	if std == 0 {
		return nil, fmt.Errorf("denormalize: std must be non-zero")
	}
	out := p.Clone()
	floats.Scale(std, out.Data)
	floats.AddConst(mean, out.Data)
	return out, nil
}

// DatasetStats computes the empirical mean and population standard
// deviation over every value of every patch in the dataset. The two
// scalars are computed once per run and then held as fixed
// normalization parameters for both training and inference.
func DatasetStats(patches []*models.Patch) (mean, std float64, err error) {
	total := 0
	for _, p := range patches {
		total += p.NumElements()
	}
	if total == 0 {
		return 0, 0, fmt.Errorf("dataset stats: no data")
	}

	// Pool all values so the statistics are dataset-wide rather than
	// a mean of per-patch statistics (patches may differ in size).
	pooled := make([]float64, 0, total)
	for _, p := range patches {
		pooled = append(pooled, p.Data...)
	}

	mean = stat.Mean(pooled, nil)
	std = stat.PopStdDev(pooled, nil)
	return mean, std, nil
}
