package data

import (
	"fmt"
	"math/rand"
)

// DownSampler draws a Bernoulli subsample of a dataset before optimization,
// trading accuracy for per-iteration cost on very large datasets.
//
// Sampling is deterministic for a given seed and partition layout: each
// partition uses its own generator seeded from Seed and the partition index,
// so resampling the same dataset reproduces the same subset exactly.
type DownSampler struct {
	Fraction float64
	Seed     int64
}

// NewDownSampler validates the sampling fraction.
func NewDownSampler(fraction float64, seed int64) (*DownSampler, error) {
	if fraction <= 0 || fraction > 1 {
		return nil, fmt.Errorf("data: sampling fraction %v outside (0, 1]", fraction)
	}
	return &DownSampler{Fraction: fraction, Seed: seed}, nil
}

// Sample returns a new dataset keeping each point independently with
// probability Fraction. The input dataset is not modified.
func (s *DownSampler) Sample(d *Dataset) *Dataset {
	partitions := make([][]LabeledPoint, len(d.partitions))
	for i, part := range d.partitions {
		rng := rand.New(rand.NewSource(s.Seed + int64(i)))
		kept := make([]LabeledPoint, 0, int(float64(len(part))*s.Fraction)+1)
		for _, p := range part {
			if rng.Float64() < s.Fraction {
				kept = append(kept, p)
			}
		}
		partitions[i] = kept
	}
	return &Dataset{partitions: partitions}
}
