// Package hierarchy provides the summing matrix of a forecasting hierarchy.
//
// The summing matrix S has one row per hierarchy node (every level) and one
// column per bottom-level series. Entry (i, j) is one when bottom series j
// is node i or one of its descendants.
//
// # Building S
//
// From explicit labels and row-major data:
//
//	S, err := hierarchy.New(
//	    []string{"Total", "A", "B"},
//	    []string{"A", "B"},
//	    []float64{1, 1, 1, 0, 0, 1},
//	)
//
// From the level paths of the bottom series:
//
//	S, err := hierarchy.FromPaths([][]string{
//	    {"Total", "North", "Store1"},
//	    {"Total", "North", "Store2"},
//	    {"Total", "South", "Store3"},
//	})
//	// nodes: Total, Total/North, Total/South, Total/North/Store1, ...
//
// From a CSV table whose header lists the bottom series:
//
//	S, err := hierarchy.LoadCSV("S.csv")
//
// # Validation
//
// Only the shape is checked: the dimensions, binary entries, unique labels,
// and that every bottom series also labels a row. Acyclicity and row
// ordering are the caller's responsibility; BottomLast reports whether the
// bottom rows come last as bottom-up reconciliation expects.
package hierarchy
