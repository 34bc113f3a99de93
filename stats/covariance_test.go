package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var nan = math.NaN()

func residuals(p int) *mat.Dense {
	const n = 12
	data := make([]float64, n*p)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			data[i*p+j] = float64((i*(j+3)+j*j+1)%7) - 3 + 0.1*float64(j)*float64(i%3)
		}
	}
	return mat.NewDense(n, p, data)
}

func TestMaskedCovariancePairwise(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		1, 2,
		2, nan,
		3, 6,
		4, 8,
	})

	cov := MaskedCovariance(x)

	assert.InDelta(t, 5.0/3, cov.At(0, 0), 1e-12)
	assert.InDelta(t, 28.0/3, cov.At(1, 1), 1e-12)
	assert.InDelta(t, 14.0/3, cov.At(0, 1), 1e-12)
	assert.Equal(t, cov.At(0, 1), cov.At(1, 0))
}

func TestMaskedCovarianceMatchesGonumWithoutMissing(t *testing.T) {
	x := residuals(4)
	got := MaskedCovariance(x)

	want := mat.NewSymDense(4, nil)
	for a := 0; a < 4; a++ {
		for b := a; b < 4; b++ {
			ca := mat.Col(nil, a, x)
			cb := mat.Col(nil, b, x)
			want.SetSym(a, b, stat.Covariance(ca, cb, nil))
		}
	}
	assert.True(t, mat.EqualApprox(want, got, 1e-12))
}

func TestCorrelation(t *testing.T) {
	cov := mat.NewSymDense(2, []float64{
		4, 2,
		2, 9,
	})

	corr := Correlation(cov)

	assert.InDelta(t, 1, corr.At(0, 0), 1e-12)
	assert.InDelta(t, 1, corr.At(1, 1), 1e-12)
	assert.InDelta(t, 2.0/6, corr.At(0, 1), 1e-12)
	assert.Equal(t, 4.0, cov.At(0, 0), "input must not be modified")
}

func TestCorrelationMatchesSampleCorrelation(t *testing.T) {
	x := mat.NewDense(6, 3, []float64{
		1.0, 2.5, -0.3,
		2.0, 1.5, 0.4,
		0.5, 3.0, 0.1,
		-1.0, 4.5, -0.8,
		3.0, 0.5, 1.2,
		1.5, 2.0, 0.0,
	})

	corr := Correlation(MaskedCovariance(x))

	for a := 0; a < 3; a++ {
		assert.InDelta(t, 1, corr.At(a, a), 1e-12)
		for b := a + 1; b < 3; b++ {
			want := stat.Correlation(mat.Col(nil, a, x), mat.Col(nil, b, x), nil)
			assert.InDelta(t, want, corr.At(a, b), 1e-12, "(%d, %d)", a, b)
			assert.Equal(t, corr.At(a, b), corr.At(b, a))
		}
	}
}

func TestDiagonalTarget(t *testing.T) {
	cov := mat.NewSymDense(3, []float64{
		4, 2, 1,
		2, 9, 3,
		1, 3, 16,
	})

	target := DiagonalTarget(cov)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == j {
				assert.Equal(t, cov.At(i, i), target.At(i, j))
			} else {
				assert.Zero(t, target.At(i, j))
			}
		}
	}
}

func TestShrinkageIntensity(t *testing.T) {
	tests := []struct {
		name    string
		missing [][2]int
		want    float64
	}{
		{"complete", nil, 0.8501333655774347},
		{"with missing values", [][2]int{{0, 2}, {5, 4}}, 0.7643105552588082},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := residuals(7)
			for _, m := range tc.missing {
				res.Set(m[0], m[1], nan)
			}

			lambda := ShrinkageIntensity(res, MaskedCovariance(res))
			require.GreaterOrEqual(t, lambda, 0.0)
			require.LessOrEqual(t, lambda, 1.0)
			assert.InDelta(t, tc.want, lambda, 1e-9)
		})
	}
}

func TestShrinkageIntensityUncorrelated(t *testing.T) {
	res := mat.NewDense(4, 2, []float64{
		1, 1,
		-1, 1,
		1, -1,
		-1, -1,
	})

	assert.Equal(t, 1.0, ShrinkageIntensity(res, MaskedCovariance(res)))
}
