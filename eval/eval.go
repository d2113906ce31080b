// Copyright 2025 Glint ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package eval exposes the driver-local evaluators consumed after training.
package eval

import "github.com/glint-ml/glint/internal/evaluation"

// LabeledRecord is the ground truth for one scored example.
type LabeledRecord = evaluation.LabeledRecord

// AreaUnderROCCurveLocalEvaluator computes the weighted AUC of predicted
// scores against a label map, entirely on the driver.
type AreaUnderROCCurveLocalEvaluator = evaluation.AreaUnderROCCurveLocalEvaluator
