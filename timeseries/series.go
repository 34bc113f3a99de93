package timeseries

import "time"

// Series is a single value column of one hierarchy node, ordered by time.
type Series struct {
	ID         string
	Column     string
	Timestamps []time.Time
	Values     []float64
}
