// Package goreconcile reconciles forecasts of hierarchical time series so
// that every aggregate equals the sum of its children.
//
// Base forecasts produced independently for each node of a hierarchy rarely
// add up. Reconciliation maps them through a projection P onto the coherent
// subspace spanned by the summing matrix S: ỹ = S·P·ŷ.
//
// # Methods
//
//   - bottom_up: keep the bottom forecasts and sum them upwards
//   - top_down: split the root forecast using historical proportions
//   - min_trace: the minimum trace projection with an OLS, WLS or
//     covariance-based weight matrix, optionally shrunk to its diagonal
//
// # Quick Start
//
// Reconcile one forecast matrix directly:
//
//	s, _ := hierarchy.New(nodes, bottom, data)
//	reconciled, err := reconcile.MinTrace(s.Dense(), yHat, residuals, reconcile.MinTShrink)
//
// Or reconcile every model of a long-format table:
//
//	r, _ := hierarchical.New([]hierarchical.Spec{
//		{Method: "bottom_up"},
//		{Method: "min_trace", Params: map[string]string{"method": "mint_shrink"}},
//	})
//	out, err := r.Reconcile(ctx, forecasts, history, s)
//
// # Packages
//
//   - hierarchy: summing matrices, built directly, from CSV or from node paths
//   - stats: masked covariance and shrinkage intensity of residuals
//   - reconcile: the reconciliation methods and their error taxonomy
//   - hierarchical: method registry and the table-level reconciler
//   - timeseries: long-format frames, pivoting and CSV input/output
//   - evaluation: RMSE, MAE and MAPE of reconciled columns
//
// The hierrec command in cmd/hierrec exposes the same functionality on CSV
// files.
package goreconcile
