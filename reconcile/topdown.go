package reconcile

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// TopDownName is the registered name of the top-down method.
const TopDownName = "top_down"

// TopDownMethod selects how bottom-level proportions are derived.
type TopDownMethod string

// Supported top-down methods.
const (
	// AverageProportions averages, over time, each bottom series' share of the top.
	AverageProportions TopDownMethod = "average_proportions"
	// ProportionAverages divides each bottom series' mean by the top's mean.
	ProportionAverages TopDownMethod = "proportion_averages"
	// ForecastProportions is recognised but not implemented.
	ForecastProportions TopDownMethod = "forecast_proportions"
)

// TopDownMethods lists the top-down methods that can be computed.
var TopDownMethods = []TopDownMethod{AverageProportions, ProportionAverages}

// RootIndex returns the row of s with the largest row sum. Ties resolve to
// the first such row.
func RootIndex(s mat.Matrix) int {
	nHiers, _ := s.Dims()
	root, best := 0, -1.0
	for i := 0; i < nHiers; i++ {
		sum := floats.Sum(mat.Row(nil, i, s))
		if sum > best {
			root, best = i, sum
		}
	}
	return root
}

// TopDownProjection builds P from historical proportions. Every bottom
// series receives a fixed share of the root forecast; the root column of P
// holds the shares and every other column is zero. W is the identity.
//
// y has one row per hierarchy node in S order and idxBottom gives the row of
// each bottom series (S column order) within y.
func TopDownProjection(s, y mat.Matrix, idxBottom []int, method TopDownMethod) (Projection, error) {
	nHiers, nBottom := s.Dims()

	switch method {
	case AverageProportions, ProportionAverages:
	case ForecastProportions:
		return Projection{}, fmt.Errorf("%s: method %s: %w", TopDownName, method, ErrNotImplemented)
	default:
		return Projection{}, NewConfigError(TopDownName, ErrUnknownMethod, "unknown method %q", method)
	}

	if rows, _ := y.Dims(); rows != nHiers {
		return Projection{}, NewConfigError(TopDownName, ErrDimensionMismatch,
			"history has %d rows, summing matrix has %d", rows, nHiers)
	}
	if len(idxBottom) != nBottom {
		return Projection{}, NewConfigError(TopDownName, ErrDimensionMismatch,
			"%d bottom indices for %d bottom series", len(idxBottom), nBottom)
	}

	top := RootIndex(s)
	yTop := mat.Row(nil, top, y)

	prop := make([]float64, nBottom)
	for j, idx := range idxBottom {
		if idx < 0 || idx >= nHiers {
			return Projection{}, NewConfigError(TopDownName, ErrDimensionMismatch,
				"bottom index %d out of range", idx)
		}
		yBtm := mat.Row(nil, idx, y)

		switch method {
		case AverageProportions:
			shares := make([]float64, len(yBtm))
			floats.DivTo(shares, yBtm, yTop)
			prop[j] = stat.Mean(shares, nil)
		case ProportionAverages:
			prop[j] = stat.Mean(yBtm, nil) / stat.Mean(yTop, nil)
		}

		if !finite(prop[j]) {
			return Projection{}, NewNumericalError(TopDownName, ErrNonFiniteProportion,
				"proportion of bottom series %d is %v", j, prop[j])
		}
	}

	p := mat.NewDense(nBottom, nHiers, nil)
	p.SetCol(top, prop)

	return Projection{P: p, W: identity(nHiers)}, nil
}

// TopDown reconciles yHat by disaggregating the root forecast with
// historical proportions.
func TopDown(s, yHat, y mat.Matrix, idxBottom []int, method TopDownMethod) (*mat.Dense, error) {
	if err := checkForecast(TopDownName, s, yHat); err != nil {
		return nil, err
	}
	pr, err := TopDownProjection(s, y, idxBottom, method)
	if err != nil {
		return nil, err
	}
	return pr.Apply(s, yHat), nil
}
