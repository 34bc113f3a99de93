// Package reconcile implements reconciliation methods for hierarchical forecasts.
//
// A hierarchy is described by its summing matrix S (n_hiers × n_bottom):
// row i has a one in column j when bottom series j rolls up into node i.
// Base forecasts yHat (n_hiers × H) produced independently for every node
// rarely add up. Each method here builds a projection P (n_bottom × n_hiers)
// and returns the coherent forecast S·P·yHat.
//
// # Bottom-Up
//
// Trust only the bottom level and re-aggregate it:
//
//	reconciled, err := reconcile.BottomUp(S, yHat)
//
// # Top-Down
//
// Split the root forecast by historical proportions. y holds the history
// (n_hiers × T) in S row order and idxBottom the rows of the bottom series:
//
//	reconciled, err := reconcile.TopDown(S, yHat, y, idxBottom, reconcile.AverageProportions)
//
// # Minimum Trace
//
// Generalized least squares reconciliation with a choice of weights:
//
//	reconciled, err := reconcile.MinTrace(S, yHat, nil, reconcile.OLS)
//	reconciled, err := reconcile.MinTrace(S, yHat, residuals, reconcile.MinTShrink)
//
// The residual-based methods (wls_var, mint_cov, mint_shrink) need in-sample
// residuals laid out as T × n_hiers, with NaN for missing values.
//
// # Projections
//
// Every method also exposes its projection so callers can reuse S·P:
//
//	pr, err := reconcile.MinTraceProjection(S, residuals, reconcile.MinTCov)
//	var sp mat.Dense
//	sp.Mul(S, pr.P)
//	a := reconcile.ReconcileSP(&sp, yHatA)
//	b := reconcile.ReconcileSP(&sp, yHatB)
//
// # Errors
//
// Configuration mistakes match ErrConfiguration, numerical failures match
// ErrNumerical, and forecast_proportions returns ErrNotImplemented. The
// specific cause is available through errors.Is as well:
//
//	if errors.Is(err, reconcile.ErrNotPositiveDefinite) {
//	    // fall back to a structural weighting
//	}
package reconcile
