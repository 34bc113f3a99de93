// Package evaluation scores forecast columns of a long-format table against
// its actual values.
package evaluation

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/goreconcile/timeseries"
)

// Metric names an accuracy measure.
type Metric string

// Supported metrics.
const (
	RMSE Metric = "rmse"
	MAE  Metric = "mae"
	MAPE Metric = "mape"
)

// Metrics lists every supported metric.
var Metrics = []Metric{RMSE, MAE, MAPE}

// ErrUnknownMetric is returned for a metric name outside Metrics.
var ErrUnknownMetric = errors.New("evaluation: unknown metric")

// ParseMetric validates a metric name.
func ParseMetric(name string) (Metric, error) {
	for _, m := range Metrics {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, name)
}

// Score holds the accuracy of one column, optionally restricted to one node.
// N counts the rows where both values were present.
type Score struct {
	Column string
	Node   string
	N      int
	RMSE   float64
	MAE    float64
	MAPE   float64
}

// Value returns the named metric.
func (s Score) Value(m Metric) float64 {
	switch m {
	case RMSE:
		return s.RMSE
	case MAE:
		return s.MAE
	case MAPE:
		return s.MAPE
	}
	return math.NaN()
}

// Accuracy computes RMSE, MAE and MAPE over the positions where neither
// value is NaN. MAPE is a percentage and skips zero actuals. Metrics
// without any usable position are NaN.
func Accuracy(actual, predicted []float64) Score {
	n := min(len(actual), len(predicted))
	sq := make([]float64, 0, n)
	abs := make([]float64, 0, n)
	var pct []float64
	for i := 0; i < n; i++ {
		a, p := actual[i], predicted[i]
		if math.IsNaN(a) || math.IsNaN(p) {
			continue
		}
		d := a - p
		sq = append(sq, d*d)
		abs = append(abs, math.Abs(d))
		if a != 0 {
			pct = append(pct, math.Abs(d)/math.Abs(a)*100)
		}
	}

	return Score{
		N:    len(sq),
		RMSE: math.Sqrt(mean(sq)),
		MAE:  mean(abs),
		MAPE: mean(pct),
	}
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}

// Columns returns the value columns of f other than actual.
func Columns(f *timeseries.Frame, actual string) []string {
	var out []string
	for _, name := range f.Columns() {
		if name != actual {
			out = append(out, name)
		}
	}
	return out
}

// Evaluate scores each column against the actual column over all rows. An
// empty columns list scores every column except actual.
func Evaluate(f *timeseries.Frame, actual string, columns []string) ([]Score, error) {
	truth, ok := f.Column(actual)
	if !ok {
		return nil, fmt.Errorf("%w: %q", timeseries.ErrMissingColumn, actual)
	}
	if len(columns) == 0 {
		columns = Columns(f, actual)
	}

	scores := make([]Score, 0, len(columns))
	for _, name := range columns {
		predicted, ok := f.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", timeseries.ErrMissingColumn, name)
		}
		s := Accuracy(truth, predicted)
		s.Column = name
		scores = append(scores, s)
	}
	return scores, nil
}

// EvaluateByNode scores each column separately for every series id, in
// order of first appearance, column-major.
func EvaluateByNode(f *timeseries.Frame, actual string, columns []string) ([]Score, error) {
	if !f.HasColumn(actual) {
		return nil, fmt.Errorf("%w: %q", timeseries.ErrMissingColumn, actual)
	}
	if len(columns) == 0 {
		columns = Columns(f, actual)
	}

	var nodes []string
	seen := make(map[string]bool)
	for _, id := range f.IDs {
		if !seen[id] {
			seen[id] = true
			nodes = append(nodes, id)
		}
	}

	var scores []Score
	for _, name := range columns {
		for _, node := range nodes {
			truth, err := f.Series(node, actual)
			if err != nil {
				return nil, err
			}
			predicted, err := f.Series(node, name)
			if err != nil {
				return nil, err
			}
			s := Accuracy(truth.Values, predicted.Values)
			s.Column = name
			s.Node = node
			scores = append(scores, s)
		}
	}
	return scores, nil
}
