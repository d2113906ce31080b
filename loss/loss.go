// Copyright 2025 Glint ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package loss exposes the pointwise convex losses consumed by the
// distributed objective functions.
package loss

import "github.com/glint-ml/glint/internal/loss"

// PointwiseLoss is a convex per-example loss with a first derivative with
// respect to the linear predictor.
type PointwiseLoss = loss.PointwiseLoss

// TwiceDiffLoss is a PointwiseLoss with a second derivative, enabling
// Hessian computation and variance estimation.
type TwiceDiffLoss = loss.TwiceDiffLoss

// Logistic is the binary logistic loss.
type Logistic = loss.Logistic

// SquaredError is the squared-error loss for linear regression.
type SquaredError = loss.SquaredError

// Poisson is the Poisson regression loss.
type Poisson = loss.Poisson

// SmoothedHinge is the smoothed hinge loss for soft-margin linear SVMs. It
// is not twice differentiable, so variance estimation is unavailable for it.
type SmoothedHinge = loss.SmoothedHinge
