// Package timeseries provides long-format tables of hierarchical time series.
//
// A Frame holds one row per (unique_id, ds) pair and any number of float64
// value columns: the actual value y, one point forecast per model, or one
// in-sample residual per model.
//
// # Loading from CSV
//
//	forecasts, err := timeseries.LoadCSV("forecasts.csv", nil)
//
//	opts := timeseries.DefaultCSVOptions()
//	opts.IDColumn = "series"
//	history, err := timeseries.LoadCSV("history.csv", opts)
//
// Empty, NA, NaN and null cells are loaded as NaN.
//
// # Pivoting
//
// Reshape a column into a matrix with one row per series, in any order, and
// one column per timestamp:
//
//	layout, err := frame.Layout(S.Nodes)
//	yHat, err := frame.Pivot("ARIMA", layout)
//
//	// ... reconcile yHat ...
//
//	values, err := frame.Unpivot(reconciled, layout)
//	out := frame.Copy()
//	err = out.AddColumn("ARIMA/bottom_up", values)
//
// # Series
//
// Extract one column of one series, sorted by time:
//
//	s, err := frame.Series("Total", "y")
package timeseries
