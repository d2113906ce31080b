package objective_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/glint-ml/glint/internal/data"
	"github.com/glint-ml/glint/internal/loss"
	"github.com/glint-ml/glint/internal/objective"
)

func syntheticDataset(t *testing.T, seed int64, n, dim, partitions int) *data.Dataset {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	points := make([]data.LabeledPoint, n)
	for i := range points {
		features := make([]float64, dim)
		for j := range features {
			features[j] = rng.NormFloat64()
		}
		points[i] = data.LabeledPoint{
			Label:    float64(rng.Intn(2)),
			Features: features,
			Offset:   0.1 * rng.NormFloat64(),
			Weight:   0.5 + rng.Float64(),
		}
	}
	d, err := data.NewDataset(points, partitions)
	require.NoError(t, err)
	return d
}

func randomCoef(seed int64, dim int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	coef := make([]float64, dim)
	for i := range coef {
		coef[i] = 0.5 * rng.NormFloat64()
	}
	return coef
}

func TestGradientMatchesFiniteDifferences(t *testing.T) {
	ctx := context.Background()
	d := syntheticDataset(t, 5, 60, 4, 3)
	coef := randomCoef(6, 4)

	losses := map[string]loss.PointwiseLoss{
		"logistic":      loss.Logistic{},
		"squaredError":  loss.SquaredError{},
		"poisson":       loss.Poisson{},
		"smoothedHinge": loss.SmoothedHinge{},
	}
	for name, l := range losses {
		t.Run(name, func(t *testing.T) {
			obj, err := objective.NewGLMObjective(l, objective.Config{})
			require.NoError(t, err)

			_, grad, err := obj.Compute(ctx, d, coef)
			require.NoError(t, err)

			const h = 1e-6
			for i := range coef {
				up := append([]float64(nil), coef...)
				down := append([]float64(nil), coef...)
				up[i] += h
				down[i] -= h
				fUp, err := obj.Value(ctx, d, up)
				require.NoError(t, err)
				fDown, err := obj.Value(ctx, d, down)
				require.NoError(t, err)
				assert.InDelta(t, (fUp-fDown)/(2*h), grad[i], 1e-3, "coordinate %d", i)
			}
		})
	}
}

func TestL2EmbeddingAddsPenaltyTerms(t *testing.T) {
	ctx := context.Background()
	d := syntheticDataset(t, 9, 40, 3, 2)
	coef := randomCoef(10, 3)
	const l2 = 0.7

	plain, err := objective.NewTwiceDiffGLMObjective(loss.Logistic{}, objective.Config{})
	require.NoError(t, err)
	reg, err := objective.NewTwiceDiffGLMObjective(loss.Logistic{}, objective.Config{L2Weight: l2})
	require.NoError(t, err)
	assert.Equal(t, l2, reg.L2RegWeight())

	fPlain, gPlain, err := plain.Compute(ctx, d, coef)
	require.NoError(t, err)
	fReg, gReg, err := reg.Compute(ctx, d, coef)
	require.NoError(t, err)

	assert.InDelta(t, fPlain+0.5*l2*floats.Dot(coef, coef), fReg, 1e-10)
	for i := range coef {
		assert.InDelta(t, gPlain[i]+l2*coef[i], gReg[i], 1e-10)
	}

	hPlain, err := plain.Hessian(ctx, d, coef)
	require.NoError(t, err)
	hReg, err := reg.Hessian(ctx, d, coef)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := hPlain.At(i, j)
			if i == j {
				want += l2
			}
			assert.InDelta(t, want, hReg.At(i, j), 1e-10)
		}
	}
}

func TestHessianMatchesDirectAssembly(t *testing.T) {
	ctx := context.Background()
	d := syntheticDataset(t, 13, 80, 3, 5)
	coef := randomCoef(14, 3)

	for name, l := range map[string]loss.TwiceDiffLoss{
		"logistic":     loss.Logistic{},
		"squaredError": loss.SquaredError{},
		"poisson":      loss.Poisson{},
	} {
		t.Run(name, func(t *testing.T) {
			obj, err := objective.NewTwiceDiffGLMObjective(l, objective.Config{TreeAggregateDepth: 3})
			require.NoError(t, err)

			got, err := obj.Hessian(ctx, d, coef)
			require.NoError(t, err)

			// Direct single-threaded assembly, bypassing tree aggregation.
			want := mat.NewSymDense(3, nil)
			for pi := 0; pi < d.NumPartitions(); pi++ {
				for _, p := range d.Partition(pi) {
					z := floats.Dot(p.Features, coef) + p.Offset
					want.SymRankOne(want, p.Weight*l.D2(z, p.Label), mat.NewVecDense(3, p.Features))
				}
			}
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					assert.InDelta(t, want.At(i, j), got.At(i, j), 1e-9)
				}
			}
		})
	}
}

func TestHessianVectorMatchesHessianProduct(t *testing.T) {
	ctx := context.Background()
	d := syntheticDataset(t, 21, 50, 4, 3)
	coef := randomCoef(22, 4)
	vec := randomCoef(23, 4)

	obj, err := objective.NewTwiceDiffGLMObjective(loss.Logistic{}, objective.Config{L2Weight: 0.3})
	require.NoError(t, err)

	hv, err := obj.HessianVector(ctx, d, coef, vec)
	require.NoError(t, err)

	h, err := obj.Hessian(ctx, d, coef)
	require.NoError(t, err)
	want := mat.NewVecDense(4, nil)
	want.MulVec(h, mat.NewVecDense(4, vec))

	for i := 0; i < 4; i++ {
		assert.InDelta(t, want.AtVec(i), hv[i], 1e-9)
	}
}

// The aggregated quantities must not depend on the tree fan-in depth.
func TestComputeIsDepthInvariant(t *testing.T) {
	ctx := context.Background()
	d := syntheticDataset(t, 31, 90, 3, 9)
	coef := randomCoef(32, 3)

	base, err := objective.NewGLMObjective(loss.Logistic{}, objective.Config{TreeAggregateDepth: 1})
	require.NoError(t, err)
	fWant, gWant, err := base.Compute(ctx, d, coef)
	require.NoError(t, err)

	for _, depth := range []int{2, 3, 4} {
		obj, err := objective.NewGLMObjective(loss.Logistic{}, objective.Config{TreeAggregateDepth: depth})
		require.NoError(t, err)
		f, g, err := obj.Compute(ctx, d, coef)
		require.NoError(t, err)
		assert.InDelta(t, fWant, f, 1e-10, "depth=%d", depth)
		for i := range g {
			assert.InDelta(t, gWant[i], g[i], 1e-10, "depth=%d coordinate %d", depth, i)
		}
	}
}

func TestConfigValidation(t *testing.T) {
	_, err := objective.NewGLMObjective(loss.Logistic{}, objective.Config{TreeAggregateDepth: -1})
	assert.Error(t, err)
	_, err = objective.NewGLMObjective(loss.Logistic{}, objective.Config{L2Weight: -0.5})
	assert.Error(t, err)
}
