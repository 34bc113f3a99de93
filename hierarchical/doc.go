// Package hierarchical runs reconciliation methods over long-format
// forecast tables.
//
// A forecast table has one row per (unique_id, ds) and one column per
// forecasting model. A Reconciler pivots each model into an
// n_hiers × horizon matrix in summing matrix row order, runs every
// configured method on it and writes the result back as a new column
// named "{model}/{method display name}".
//
// # Configuring methods
//
// Methods are selected with Spec values:
//
//	r, err := hierarchical.New([]hierarchical.Spec{
//		{Method: "bottom_up"},
//		{Method: "min_trace", Params: map[string]string{"method": "mint_shrink"}},
//	}, hierarchical.WithParallelism(4))
//
// ParseSpec reads the same thing from "min_trace:method=mint_shrink".
//
// # Inputs
//
// Each Method declares the shared values it needs (KeyY, KeyS,
// KeyIdxBottom, KeyResiduals). The history table is only pivoted when a
// method needs it, and residuals are only passed when the history holds a
// column named after the model.
//
// # Custom methods
//
// Register adds a Method to the process-wide registry so specs can refer to
// it by name.
package hierarchical
