package reconcile

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Projection holds the matrices a reconciliation method derives from S.
// P maps the full hierarchy vector to bottom-level estimates and W is the
// weight matrix the method used to build it.
type Projection struct {
	P *mat.Dense
	W mat.Symmetric
}

// Apply reconciles yHat with the projection: S·P·yHat.
func (pr Projection) Apply(s, yHat mat.Matrix) *mat.Dense {
	return Reconcile(s, pr.P, pr.W, yHat)
}

// Reconcile returns S·P·yHat. The weight matrix is accepted for symmetry
// with the methods that produce it but is not used.
func Reconcile(s, p mat.Matrix, w mat.Symmetric, yHat mat.Matrix) *mat.Dense {
	var sp mat.Dense
	sp.Mul(s, p)
	return ReconcileSP(&sp, yHat)
}

// ReconcileSP returns SP·yHat for a precomputed SP, which saves a product
// when the same projection reconciles several forecast matrices.
func ReconcileSP(sp, yHat mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Mul(sp, yHat)
	return &out
}

// identity returns the n×n identity as a diagonal matrix.
func identity(n int) *mat.DiagDense {
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	return mat.NewDiagDense(n, ones)
}

// checkForecast verifies that yHat has one row per hierarchy node.
func checkForecast(method string, s, yHat mat.Matrix) error {
	nHiers, _ := s.Dims()
	rows, _ := yHat.Dims()
	if rows != nHiers {
		return NewConfigError(method, ErrDimensionMismatch,
			"forecasts have %d rows, summing matrix has %d", rows, nHiers)
	}
	return nil
}

// isNil reports whether m is nil, including a typed nil *mat.Dense.
func isNil(m mat.Matrix) bool {
	if m == nil {
		return true
	}
	if d, ok := m.(*mat.Dense); ok && d == nil {
		return true
	}
	return false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
