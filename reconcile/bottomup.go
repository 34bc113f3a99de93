package reconcile

import "gonum.org/v1/gonum/mat"

// BottomUpName is the registered name of the bottom-up method.
const BottomUpName = "bottom_up"

// BottomUpProjection selects the bottom-level rows of the hierarchy vector.
// P is an identity block starting at column nHiers-nBottom and W is the
// identity. S must list its bottom rows last, in column order.
func BottomUpProjection(s mat.Matrix) Projection {
	nHiers, nBottom := s.Dims()
	offset := nHiers - nBottom

	p := mat.NewDense(nBottom, nHiers, nil)
	for i := 0; i < nBottom; i++ {
		p.Set(i, offset+i, 1)
	}

	return Projection{P: p, W: identity(nHiers)}
}

// BottomUp reconciles yHat by re-aggregating its bottom-level forecasts.
func BottomUp(s, yHat mat.Matrix) (*mat.Dense, error) {
	if err := checkForecast(BottomUpName, s, yHat); err != nil {
		return nil, err
	}
	return BottomUpProjection(s).Apply(s, yHat), nil
}
