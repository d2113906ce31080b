package evaluation_test

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glint-ml/glint/internal/evaluation"
)

func TestPerfectSeparatorScoresOne(t *testing.T) {
	labels := map[string]evaluation.LabeledRecord{
		"a": {Label: 1, Weight: 1},
		"b": {Label: 1, Weight: 1},
		"c": {Label: 0, Weight: 1},
		"d": {Label: 0, Weight: 1},
	}
	scores := map[string]float64{"a": 0.9, "b": 0.8, "c": 0.2, "d": 0.1}

	e := &evaluation.AreaUnderROCCurveLocalEvaluator{Labels: labels}
	assert.Equal(t, 1.0, e.Evaluate(scores))

	// Inverting the ranking gives 0.
	inverted := map[string]float64{"a": 0.1, "b": 0.2, "c": 0.8, "d": 0.9}
	assert.Equal(t, 0.0, e.Evaluate(inverted))
}

func TestAUCInvariantUnderMonotonicTransform(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	labels := make(map[string]evaluation.LabeledRecord)
	scores := make(map[string]float64)
	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("ex-%d", i)
		labels[id] = evaluation.LabeledRecord{Label: float64(rng.Intn(2)), Weight: 1}
		scores[id] = rng.NormFloat64()
	}
	e := &evaluation.AreaUnderROCCurveLocalEvaluator{Labels: labels}
	base := e.Evaluate(scores)

	transformed := make(map[string]float64, len(scores))
	for id, s := range scores {
		transformed[id] = math.Exp(3*s) + 7
	}
	assert.InDelta(t, base, e.Evaluate(transformed), 1e-12)
}

func TestRandomScoresOnBalancedDataNearHalf(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	labels := make(map[string]evaluation.LabeledRecord)
	scores := make(map[string]float64)
	for i := 0; i < 5000; i++ {
		id := fmt.Sprintf("ex-%d", i)
		labels[id] = evaluation.LabeledRecord{Label: float64(i % 2), Weight: 1}
		scores[id] = rng.Float64()
	}
	e := &evaluation.AreaUnderROCCurveLocalEvaluator{Labels: labels}
	assert.InDelta(t, 0.5, e.Evaluate(scores), 0.05)
}

func TestWeightsActAsRepeatedMass(t *testing.T) {
	// A weight-2 example contributes exactly like two copies of itself.
	weighted := &evaluation.AreaUnderROCCurveLocalEvaluator{Labels: map[string]evaluation.LabeledRecord{
		"p1": {Label: 1, Weight: 2},
		"n1": {Label: 0, Weight: 1},
		"n2": {Label: 0, Weight: 1},
	}}
	duplicated := &evaluation.AreaUnderROCCurveLocalEvaluator{Labels: map[string]evaluation.LabeledRecord{
		"p1a": {Label: 1, Weight: 1},
		"p1b": {Label: 1, Weight: 1},
		"n1":  {Label: 0, Weight: 1},
		"n2":  {Label: 0, Weight: 1},
	}}
	wScores := map[string]float64{"p1": 0.8, "n1": 0.9, "n2": 0.1}
	dScores := map[string]float64{"p1a": 0.8, "p1b": 0.8, "n1": 0.9, "n2": 0.1}

	assert.InDelta(t, weighted.Evaluate(wScores), duplicated.Evaluate(dScores), 1e-12)
}

func TestOffsetsShiftScores(t *testing.T) {
	// The offset flips an otherwise perfect ranking for one example.
	e := &evaluation.AreaUnderROCCurveLocalEvaluator{Labels: map[string]evaluation.LabeledRecord{
		"p": {Label: 1, Weight: 1, Offset: -10},
		"n": {Label: 0, Weight: 1},
	}}
	scores := map[string]float64{"p": 1, "n": 0.5}
	assert.Equal(t, 0.0, e.Evaluate(scores))
}

func TestMissingIdsUseDefaultScore(t *testing.T) {
	e := &evaluation.AreaUnderROCCurveLocalEvaluator{
		Labels: map[string]evaluation.LabeledRecord{
			"p": {Label: 1, Weight: 1},
			"n": {Label: 0, Weight: 1},
		},
		DefaultScore: -5,
	}
	// The negative is unscored and falls to the default, below the positive.
	auc := e.Evaluate(map[string]float64{"p": 0.1})
	assert.Equal(t, 1.0, auc)
}

func TestZeroClassWeightYieldsNonFiniteAUC(t *testing.T) {
	// No positives at all: the normalizer is zero and the result is
	// non-finite. This mirrors the documented boundary behavior rather
	// than guessing a guard.
	e := &evaluation.AreaUnderROCCurveLocalEvaluator{Labels: map[string]evaluation.LabeledRecord{
		"n1": {Label: 0, Weight: 1},
		"n2": {Label: 0, Weight: 1},
	}}
	auc := e.Evaluate(map[string]float64{"n1": 0.4, "n2": 0.6})
	require.False(t, isFinite(auc))

	onlyPos := &evaluation.AreaUnderROCCurveLocalEvaluator{Labels: map[string]evaluation.LabeledRecord{
		"p1": {Label: 1, Weight: 1},
	}}
	require.False(t, isFinite(onlyPos.Evaluate(map[string]float64{"p1": 0.4})))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func TestTieBreakIsDeterministic(t *testing.T) {
	labels := map[string]evaluation.LabeledRecord{
		"a": {Label: 1, Weight: 1},
		"b": {Label: 0, Weight: 1},
		"c": {Label: 1, Weight: 1},
		"d": {Label: 0, Weight: 1},
	}
	scores := map[string]float64{"a": 0.5, "b": 0.5, "c": 0.5, "d": 0.5}
	e := &evaluation.AreaUnderROCCurveLocalEvaluator{Labels: labels}

	first := e.Evaluate(scores)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Evaluate(scores), "map iteration order must not leak into the result")
	}
}
