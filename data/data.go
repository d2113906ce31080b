// Copyright 2025 Glint ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package data exposes the training-data model: weighted labeled points,
// partitioned datasets, tree aggregation and seeded down-sampling.
package data

import (
	"context"

	"github.com/glint-ml/glint/internal/data"
)

// LabeledPoint is one weighted training example.
type LabeledPoint = data.LabeledPoint

// Dataset is an immutable partitioned collection of labeled points.
type Dataset = data.Dataset

// DownSampler draws seeded, reproducible Bernoulli subsamples of a dataset.
type DownSampler = data.DownSampler

// NewLabeledPoint creates a point with unit weight and zero offset.
func NewLabeledPoint(label float64, features []float64) LabeledPoint {
	return data.NewLabeledPoint(label, features)
}

// NewDataset splits points evenly into numPartitions partitions.
func NewDataset(points []LabeledPoint, numPartitions int) (*Dataset, error) {
	return data.NewDataset(points, numPartitions)
}

// FromPartitions wraps an existing partition layout without copying.
func FromPartitions(partitions [][]LabeledPoint) *Dataset {
	return data.FromPartitions(partitions)
}

// NewDownSampler validates and creates a down-sampler.
func NewDownSampler(fraction float64, seed int64) (*DownSampler, error) {
	return data.NewDownSampler(fraction, seed)
}

// TreeAggregate folds every point into an accumulator and combines
// per-partition partials through a bounded-depth tree of merges. The combine
// operator must be associative and commutative.
func TreeAggregate[A any](ctx context.Context, d *Dataset, zero func() A,
	seqOp func(A, LabeledPoint) A, combine func(A, A) A, depth int) (A, error) {
	return data.TreeAggregate(ctx, d, zero, seqOp, combine, depth)
}
