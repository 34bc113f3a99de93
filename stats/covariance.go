package stats

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// MaskedCovariance estimates the sample covariance between the columns of x,
// ignoring NaN entries pairwise.
//
// Each column is centred by the mean of its own observed values. Entry (a, b)
// sums the centred products over the rows where both columns are observed and
// divides by that pair count minus one. A pair observed fewer than two times
// yields Inf or NaN.
func MaskedCovariance(x mat.Matrix) *mat.SymDense {
	n, p := x.Dims()

	means := make([]float64, p)
	for j := 0; j < p; j++ {
		sum, count := 0.0, 0
		for i := 0; i < n; i++ {
			v := x.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			sum += v
			count++
		}
		means[j] = sum / float64(count)
	}

	cov := mat.NewSymDense(p, nil)
	for a := 0; a < p; a++ {
		for b := a; b < p; b++ {
			sum, count := 0.0, 0
			for i := 0; i < n; i++ {
				va, vb := x.At(i, a), x.At(i, b)
				if math.IsNaN(va) || math.IsNaN(vb) {
					continue
				}
				sum += (va - means[a]) * (vb - means[b])
				count++
			}
			cov.SetSym(a, b, sum/float64(count-1))
		}
	}
	return cov
}

// Correlation converts a covariance matrix into a correlation matrix.
// The input is not modified.
func Correlation(cov mat.Symmetric) *mat.SymDense {
	n := cov.SymmetricDim()
	inv := make([]float64, n)
	for i := range inv {
		inv[i] = 1 / math.Sqrt(cov.At(i, i))
	}

	corr := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		corr.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			corr.SetSym(i, j, cov.At(i, j)*inv[i]*inv[j])
		}
	}
	return corr
}

// DiagonalTarget returns the diagonal matrix holding the variances of cov.
func DiagonalTarget(cov mat.Symmetric) *mat.SymDense {
	p := cov.SymmetricDim()
	target := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		target.SetSym(i, i, cov.At(i, i))
	}
	return target
}

// ShrinkageIntensity estimates the weight λ placed on the diagonal target
// when shrinking the sample covariance of residuals towards it.
//
// Residuals are standardized by the square roots of the variances in cov and
// every row that still holds a NaN is dropped before the bias term is
// computed, while n remains the full row count of residuals. λ is the sum of
// the estimated variances of the off-diagonal sample correlations divided by
// the sum of their squared distances from zero, clamped to [0, 1]. When the
// sample correlation is already diagonal the target equals the covariance and
// λ is 1.
func ShrinkageIntensity(residuals mat.Matrix, cov mat.Symmetric) float64 {
	n, p := residuals.Dims()

	sd := make([]float64, p)
	for j := range sd {
		sd[j] = math.Sqrt(cov.At(j, j))
	}

	var rows [][]float64
	for i := 0; i < n; i++ {
		row := make([]float64, p)
		complete := true
		for j := 0; j < p; j++ {
			row[j] = residuals.At(i, j) / sd[j]
			if math.IsNaN(row[j]) {
				complete = false
				break
			}
		}
		if complete {
			rows = append(rows, row)
		}
	}

	nf := float64(n)
	corr := Correlation(cov)

	var bias, distance float64
	for a := 0; a < p; a++ {
		for b := 0; b < p; b++ {
			if a == b {
				continue
			}
			var sq, cross float64
			for _, row := range rows {
				sq += row[a] * row[a] * row[b] * row[b]
				cross += row[a] * row[b]
			}
			bias += (sq - cross*cross/nf) / (nf * (nf - 1))

			r := corr.At(a, b)
			distance += r * r
		}
	}

	if distance == 0 {
		return 1
	}
	return math.Max(math.Min(bias/distance, 1), 0)
}
