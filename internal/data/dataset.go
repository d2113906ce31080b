// Package data holds the training-data model shared by the objective
// functions and the optimization problem: weighted labeled points, the
// partitioned Dataset they live in, bounded-depth tree aggregation over
// partitions, and seeded down-sampling.
package data

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// LabeledPoint is one training example.
//
// Weight scales the example's contribution to loss, gradient and Hessian.
// Offset is an additive fixed term to the linear predictor and is never
// optimized. Points are treated as immutable once constructed.
type LabeledPoint struct {
	Label    float64
	Features []float64
	Offset   float64
	Weight   float64
}

// NewLabeledPoint creates a point with unit weight and zero offset.
func NewLabeledPoint(label float64, features []float64) LabeledPoint {
	return LabeledPoint{Label: label, Features: features, Weight: 1}
}

// Dataset is an immutable partitioned collection of labeled points.
//
// Partitions are processed independently and in parallel; all cross-partition
// combination happens through TreeAggregate.
type Dataset struct {
	partitions [][]LabeledPoint
}

// NewDataset splits points evenly into numPartitions partitions.
func NewDataset(points []LabeledPoint, numPartitions int) (*Dataset, error) {
	if numPartitions < 1 {
		return nil, fmt.Errorf("data: invalid partition count %d", numPartitions)
	}
	partitions := make([][]LabeledPoint, numPartitions)
	for i, p := range points {
		j := i % numPartitions
		partitions[j] = append(partitions[j], p)
	}
	return &Dataset{partitions: partitions}, nil
}

// FromPartitions wraps an existing partition layout without copying.
func FromPartitions(partitions [][]LabeledPoint) *Dataset {
	return &Dataset{partitions: partitions}
}

// NumPartitions returns the number of partitions.
func (d *Dataset) NumPartitions() int {
	return len(d.partitions)
}

// NumPoints returns the total number of points across all partitions.
func (d *Dataset) NumPoints() int {
	n := 0
	for _, part := range d.partitions {
		n += len(part)
	}
	return n
}

// Partition returns partition i read-only.
func (d *Dataset) Partition(i int) []LabeledPoint {
	return d.partitions[i]
}

// Dim returns the feature dimension of the first point, or 0 for an empty
// dataset. All points are expected to share one dimension.
func (d *Dataset) Dim() int {
	for _, part := range d.partitions {
		if len(part) > 0 {
			return len(part[0].Features)
		}
	}
	return 0
}

// TreeAggregate folds every point of the dataset into an accumulator and
// combines per-partition partials through a bounded-depth tree of merges.
//
// seqOp folds one point into a partition-local accumulator; combine merges
// two accumulators and MUST be associative and commutative, since the merge
// order depends on the partition layout and the tree depth. Bounding the
// fan-in keeps long summation chains short, which limits floating-point
// error accumulation and the number of partials merged at any single point.
//
// depth >= 1; depth 1 degenerates to a flat reduce of all partials.
func TreeAggregate[A any](ctx context.Context, d *Dataset, zero func() A,
	seqOp func(A, LabeledPoint) A, combine func(A, A) A, depth int) (A, error) {

	if depth < 1 {
		var a A
		return a, fmt.Errorf("data: invalid tree aggregate depth %d", depth)
	}

	partials := make([]A, len(d.partitions))
	g, gctx := errgroup.WithContext(ctx)
	for i := range d.partitions {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			acc := zero()
			for _, p := range d.partitions[i] {
				acc = seqOp(acc, p)
			}
			partials[i] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var a A
		return a, fmt.Errorf("data: tree aggregate: %w", err)
	}

	if len(partials) == 0 {
		return zero(), nil
	}

	// Merge in rounds of bounded fan-in so the reduction tree has at most
	// `depth` levels above the partition folds.
	fanIn := treeFanIn(len(partials), depth)
	for len(partials) > 1 {
		if err := ctx.Err(); err != nil {
			var a A
			return a, fmt.Errorf("data: tree aggregate: %w", err)
		}
		merged := make([]A, 0, (len(partials)+fanIn-1)/fanIn)
		for lo := 0; lo < len(partials); lo += fanIn {
			hi := min(lo+fanIn, len(partials))
			acc := partials[lo]
			for _, p := range partials[lo+1 : hi] {
				acc = combine(acc, p)
			}
			merged = append(merged, acc)
		}
		partials = merged
	}
	return partials[0], nil
}

// treeFanIn picks the per-round merge width so that n partials collapse to
// one in about `depth` rounds.
func treeFanIn(n, depth int) int {
	fanIn := int(math.Ceil(math.Pow(float64(n), 1/float64(depth))))
	if fanIn < 2 {
		fanIn = 2
	}
	return fanIn
}
