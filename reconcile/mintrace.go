package reconcile

import (
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/goreconcile/stats"
)

// MinTraceName is the registered name of the minimum-trace method.
const MinTraceName = "min_trace"

// eigenThreshold is the smallest eigenvalue accepted for W.
const eigenThreshold = 1e-8

// MinTraceMethod selects the weight matrix used by MinTrace.
type MinTraceMethod string

// Supported minimum-trace methods.
const (
	// OLS weights every node equally.
	OLS MinTraceMethod = "ols"
	// WLSStruct weights each node by its number of bottom descendants.
	WLSStruct MinTraceMethod = "wls_struct"
	// WLSVar weights each node by its residual variance.
	WLSVar MinTraceMethod = "wls_var"
	// MinTCov uses the full residual covariance.
	MinTCov MinTraceMethod = "mint_cov"
	// MinTShrink shrinks the residual covariance towards its diagonal.
	MinTShrink MinTraceMethod = "mint_shrink"
)

// MinTraceMethods lists every minimum-trace method.
var MinTraceMethods = []MinTraceMethod{OLS, WLSStruct, WLSVar, MinTCov, MinTShrink}

// NeedsResiduals reports whether the method estimates W from residuals.
func (m MinTraceMethod) NeedsResiduals() bool {
	switch m {
	case WLSVar, MinTCov, MinTShrink:
		return true
	}
	return false
}

// WeightMatrix computes W for the given method. residuals has one row per
// timestamp and one column per hierarchy node; NaN marks a missing value.
// It may be nil for ols and wls_struct.
func WeightMatrix(s, residuals mat.Matrix, method MinTraceMethod) (mat.Symmetric, error) {
	nHiers, nBottom := s.Dims()

	switch method {
	case OLS, WLSStruct, WLSVar, MinTCov, MinTShrink:
	default:
		return nil, NewConfigError(MinTraceName, ErrUnknownMethod, "unknown method %q", method)
	}

	if method.NeedsResiduals() {
		if isNil(residuals) {
			return nil, NewConfigError(MinTraceName, ErrResidualsRequired,
				"methods wls_var, mint_cov, mint_shrink need residuals, got none for %s", method)
		}
		if _, cols := residuals.Dims(); cols != nHiers {
			return nil, NewConfigError(MinTraceName, ErrDimensionMismatch,
				"residuals have %d columns, summing matrix has %d rows", cols, nHiers)
		}
	}

	switch method {
	case OLS:
		return identity(nHiers), nil
	case WLSStruct:
		ones := mat.NewVecDense(nBottom, nil)
		for i := 0; i < nBottom; i++ {
			ones.SetVec(i, 1)
		}
		var counts mat.VecDense
		counts.MulVec(s, ones)
		return mat.NewDiagDense(nHiers, counts.RawVector().Data), nil
	}

	cov := stats.MaskedCovariance(residuals)
	switch method {
	case WLSVar:
		return stats.DiagonalTarget(cov), nil
	case MinTCov:
		return cov, nil
	default:
		target := stats.DiagonalTarget(cov)
		lambda := stats.ShrinkageIntensity(residuals, cov)

		var shrunkTarget, shrunkCov mat.SymDense
		shrunkTarget.ScaleSym(lambda, target)
		shrunkCov.ScaleSym(1-lambda, cov)

		w := mat.NewSymDense(nHiers, nil)
		w.AddSym(&shrunkTarget, &shrunkCov)
		return w, nil
	}
}

// checkPositiveDefinite fails unless every eigenvalue of w exceeds eigenThreshold.
func checkPositiveDefinite(w mat.Symmetric) error {
	n := w.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if !finite(w.At(i, j)) {
				return NewNumericalError(MinTraceName, ErrNotPositiveDefinite,
					"weight matrix has non-finite entry at (%d, %d)", i, j)
			}
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(w, false); !ok {
		return NewNumericalError(MinTraceName, ErrNotPositiveDefinite, "eigendecomposition failed")
	}
	for _, v := range eig.Values(nil) {
		if v < eigenThreshold {
			return NewNumericalError(MinTraceName, ErrNotPositiveDefinite,
				"eigenvalue %g below %g", v, eigenThreshold)
		}
	}
	return nil
}

// MinTraceProjection computes the generalized least squares projection
// P = (Sᵗ·W⁻¹·S)⁻¹·Sᵗ·W⁻¹ for the weight matrix selected by method.
func MinTraceProjection(s, residuals mat.Matrix, method MinTraceMethod) (Projection, error) {
	w, err := WeightMatrix(s, residuals, method)
	if err != nil {
		return Projection{}, err
	}
	if err := checkPositiveDefinite(w); err != nil {
		return Projection{}, err
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(w); !ok {
		return Projection{}, NewNumericalError(MinTraceName, ErrNotPositiveDefinite, "cholesky factorization failed")
	}
	var wInv mat.SymDense
	if err := chol.InverseTo(&wInv); err != nil {
		return Projection{}, NewNumericalError(MinTraceName, ErrSingular, "inverting weight matrix: %v", err)
	}

	var r, rs, p mat.Dense
	r.Mul(s.T(), &wInv)
	rs.Mul(&r, s)
	if err := p.Solve(&rs, &r); err != nil {
		return Projection{}, NewNumericalError(MinTraceName, ErrSingular, "solving for projection: %v", err)
	}

	return Projection{P: &p, W: w}, nil
}

// MinTrace reconciles yHat with the minimum-trace estimator.
func MinTrace(s, yHat, residuals mat.Matrix, method MinTraceMethod) (*mat.Dense, error) {
	if err := checkForecast(MinTraceName, s, yHat); err != nil {
		return nil, err
	}
	pr, err := MinTraceProjection(s, residuals, method)
	if err != nil {
		return nil, err
	}
	return pr.Apply(s, yHat), nil
}
