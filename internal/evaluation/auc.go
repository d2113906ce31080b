// Package evaluation provides driver-local scoring metrics consumed after
// training. They run outside the optimization loop but share the weighted
// example data model.
package evaluation

import "sort"

// LabeledRecord is the ground truth for one scored example.
type LabeledRecord struct {
	Label  float64
	Offset float64
	Weight float64
}

// AreaUnderROCCurveLocalEvaluator computes the weighted AUC of predicted
// scores against a label map, entirely on the driver.
//
// The estimator ranks all examples by score (plus per-example offset)
// descending and sweeps once, accumulating positive weight and, for each
// negative example, adding the running positive weight scaled by the
// negative's weight. This is the weighted rank estimator of AUC: exact for
// unit weights, with weights acting as repeated-mass contributions, and
// O(n log n) where the naive pairwise definition is O(n²).
//
// When the total positive or total negative weight is zero the result is a
// non-finite value (division by zero). That boundary is deliberately left
// unguarded; tests assert on it.
type AreaUnderROCCurveLocalEvaluator struct {
	// Labels maps example id to its ground truth. Labels above
	// PositiveThreshold are positives.
	Labels map[string]LabeledRecord
	// DefaultScore is used for ids present in Labels but absent from the
	// score map.
	DefaultScore float64
	// PositiveThreshold separates positive from negative labels
	// (default 0.5).
	PositiveThreshold float64
}

// ranked is one joined (score, label, weight) triple.
type ranked struct {
	id     string
	score  float64
	label  float64
	weight float64
}

// Evaluate joins scores with labels by id and returns the weighted AUC.
func (e *AreaUnderROCCurveLocalEvaluator) Evaluate(scores map[string]float64) float64 {
	threshold := e.PositiveThreshold
	if threshold == 0 {
		threshold = 0.5
	}

	joined := make([]ranked, 0, len(e.Labels))
	for id, rec := range e.Labels {
		score, ok := scores[id]
		if !ok {
			score = e.DefaultScore
		}
		joined = append(joined, ranked{id: id, score: score + rec.Offset, label: rec.Label, weight: rec.Weight})
	}

	// Descending by score; ties broken by id so the order is a stable
	// total order regardless of map iteration.
	sort.Slice(joined, func(i, j int) bool {
		if joined[i].score != joined[j].score {
			return joined[i].score > joined[j].score
		}
		return joined[i].id < joined[j].id
	})

	var posWeight, negWeight, acc float64
	for _, r := range joined {
		if r.label > threshold {
			posWeight += r.weight
		} else {
			acc += posWeight * r.weight
			negWeight += r.weight
		}
	}
	return acc / (posWeight * negWeight)
}
