package problem

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/glint-ml/glint/internal/data"
	"github.com/glint-ml/glint/internal/objective"
)

// ComputeVariances estimates the per-coefficient variance as the diagonal of
// the Moore–Penrose pseudo-inverse of the objective Hessian at coef (the
// inverse observed information). The Hessian is aggregated by the same tree
// reduction as a gradient pass and already includes any embedded L2 term.
//
// The pseudo-inverse never fails on a singular or ill-conditioned Hessian
// (collinear or sparse features): degenerate directions simply contribute
// large but finite variances. When the bound objective cannot produce a
// Hessian, the result is a nil slice and a nil error - an explicit absent
// value callers branch on, not a failure.
func (p *Problem) ComputeVariances(ctx context.Context, d *data.Dataset, coef []float64) ([]float64, error) {
	twice, ok := p.obj.(objective.TwiceDiffFunction)
	if !ok {
		return nil, nil
	}
	hessian, err := twice.Hessian(ctx, p.sampled(d), coef)
	if err != nil {
		return nil, fmt.Errorf("problem: hessian aggregation: %w", err)
	}
	return PinvDiagonal(hessian), nil
}

// PinvDiagonal computes the diagonal of the Moore–Penrose pseudo-inverse of
// a symmetric matrix through its SVD. For symmetric positive semi-definite
// input the singular vectors coincide with the eigenvectors, so
// pinv(H)[j][j] = Σ_k V[j,k]² / σ_k over the singular values above the
// relative cutoff; values below it are treated as exact zeros.
func PinvDiagonal(h mat.Symmetric) []float64 {
	n := h.SymmetricDim()
	var svd mat.SVD
	if !svd.Factorize(mat.NewDense(n, n, denseCopy(h)), mat.SVDThin) {
		// SVD of a finite matrix does not fail to converge in practice;
		// fall back to an empty inverse (all-zero variances) rather than
		// surfacing an error for a diagnostics-only quantity.
		return make([]float64, n)
	}
	values := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	// Relative cutoff in the spirit of numpy.linalg.pinv.
	cutoff := 0.0
	if len(values) > 0 {
		cutoff = values[0] * float64(n) * 1e-15
	}

	diag := make([]float64, n)
	for j := 0; j < n; j++ {
		for k, s := range values {
			if s <= cutoff {
				continue
			}
			vjk := v.At(j, k)
			diag[j] += vjk * vjk / s
		}
	}
	return diag
}

func denseCopy(h mat.Symmetric) []float64 {
	n := h.SymmetricDim()
	out := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[i*n+j] = h.At(i, j)
		}
	}
	return out
}
