package hierarchical

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/goreconcile/hierarchy"
	"github.com/sartorproj/goreconcile/reconcile"
	"github.com/sartorproj/goreconcile/timeseries"
)

func month(m int) time.Time {
	return time.Date(2024, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
}

func summing(t *testing.T) *hierarchy.SummingMatrix {
	t.Helper()
	s, err := hierarchy.New([]string{"Total", "A", "B"}, []string{"A", "B"}, []float64{
		1, 1,
		1, 0,
		0, 1,
	})
	require.NoError(t, err)
	return s
}

// forecasts returns two horizons for two models, rows deliberately unordered.
func forecasts(t *testing.T) *timeseries.Frame {
	t.Helper()
	f, err := timeseries.NewFrame(
		[]string{"B", "Total", "A", "Total", "A", "B"},
		[]time.Time{month(10), month(9), month(9), month(10), month(10), month(9)},
	)
	require.NoError(t, err)
	require.NoError(t, f.AddColumn("y", []float64{7, 12, 5, 13, 6, 7}))
	require.NoError(t, f.AddColumn("ARIMA", []float64{6, 10, 4, 14, 5, 4}))
	require.NoError(t, f.AddColumn("ETS", []float64{7.5, 11, 4.5, 12, 5.5, 6.5}))
	return f
}

// history returns eight months of actuals and residuals for both models.
func history(t *testing.T, withResiduals bool) *timeseries.Frame {
	t.Helper()
	total := []float64{0.5, -0.3, 0.8, -1.1, 0.2, 0.9, -0.6, 0.1}
	a := []float64{0.2, 0.4, -0.5, 0.3, -0.8, 0.6, 0.1, -0.2}
	b := []float64{-0.4, 0.1, 0.3, -0.2, 0.7, -0.5, 0.2, 0.6}

	var ids []string
	var ts []time.Time
	var y, arima, ets []float64
	for m := 0; m < 8; m++ {
		ya, yb := 4+float64(m%3), 6+float64(m%2)
		ids = append(ids, "Total", "A", "B")
		ts = append(ts, month(m+1), month(m+1), month(m+1))
		y = append(y, ya+yb, ya, yb)
		arima = append(arima, total[m], a[m], b[m])
		ets = append(ets, a[m], b[m], total[m])
	}

	f, err := timeseries.NewFrame(ids, ts)
	require.NoError(t, err)
	require.NoError(t, f.AddColumn("y", y))
	if withResiduals {
		require.NoError(t, f.AddColumn("ARIMA", arima))
		require.NoError(t, f.AddColumn("ETS", ets))
	}
	return f
}

func value(t *testing.T, f *timeseries.Frame, column, id string, ts time.Time) float64 {
	t.Helper()
	values, ok := f.Column(column)
	require.True(t, ok, "missing column %q", column)
	for i := range f.IDs {
		if f.IDs[i] == id && f.Timestamps[i].Equal(ts) {
			return values[i]
		}
	}
	t.Fatalf("no row for %s at %s", id, ts)
	return 0
}

func requireCoherent(t *testing.T, f *timeseries.Frame, column string) {
	t.Helper()
	for _, ts := range []time.Time{month(9), month(10)} {
		sum := value(t, f, column, "A", ts) + value(t, f, column, "B", ts)
		require.InDelta(t, sum, value(t, f, column, "Total", ts), 1e-8, "%s at %s", column, ts)
	}
}

func TestReconcileBottomUp(t *testing.T) {
	r, err := New([]Spec{{Method: "bottom_up"}})
	require.NoError(t, err)

	yHat := forecasts(t)
	out, err := r.Reconcile(context.Background(), yHat, nil, summing(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"y", "ARIMA", "ETS", "ARIMA/bottom_up", "ETS/bottom_up"}, out.Columns())

	got, _ := out.Column("ARIMA/bottom_up")
	assert.Equal(t, []float64{6, 8, 4, 11, 5, 4}, got)
	requireCoherent(t, out, "ETS/bottom_up")

	assert.Equal(t, []string{"y", "ARIMA", "ETS"}, yHat.Columns(), "input must not be modified")
}

func TestReconcileAllMethodsCoherent(t *testing.T) {
	specs := []Spec{
		{Method: "bottom_up"},
		{Method: "top_down", Params: map[string]string{"method": "average_proportions"}},
		{Method: "top_down", Params: map[string]string{"method": "proportion_averages"}},
	}
	for _, m := range reconcile.MinTraceMethods {
		specs = append(specs, Spec{Method: "min_trace", Params: map[string]string{"method": string(m)}})
	}

	r, err := New(specs)
	require.NoError(t, err)

	out, err := r.Reconcile(context.Background(), forecasts(t), history(t, true), summing(t))
	require.NoError(t, err)

	for _, name := range r.Names() {
		for _, model := range []string{"ARIMA", "ETS"} {
			requireCoherent(t, out, model+"/"+name)
		}
	}
}

func TestReconcileNamesAreUnique(t *testing.T) {
	r, err := New([]Spec{
		{Method: "min_trace", Params: map[string]string{"method": "ols"}},
		{Method: "min_trace", Params: map[string]string{"method": "wls_struct"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"min_trace_method-ols", "min_trace_method-wls_struct"}, r.Names())

	out, err := r.Reconcile(context.Background(), forecasts(t), nil, summing(t))
	require.NoError(t, err)
	assert.True(t, out.HasColumn("ARIMA/min_trace_method-ols"))
	assert.True(t, out.HasColumn("ARIMA/min_trace_method-wls_struct"))
}

func TestReconcileTopDownValues(t *testing.T) {
	r, err := New([]Spec{{Method: "top_down", Params: map[string]string{"method": "proportion_averages"}}})
	require.NoError(t, err)

	out, err := r.Reconcile(context.Background(), forecasts(t), history(t, false), summing(t))
	require.NoError(t, err)

	// Mean of A over history is 4.875, mean of Total is 11.375.
	want := 10 * 4.875 / 11.375
	assert.InDelta(t, want, value(t, out, "ARIMA/top_down_method-proportion_averages", "A", month(9)), 1e-9)
	assert.InDelta(t, 10, value(t, out, "ARIMA/top_down_method-proportion_averages", "Total", month(9)), 1e-9)
}

func TestReconcileParallelMatchesSequential(t *testing.T) {
	specs := []Spec{
		{Method: "bottom_up"},
		{Method: "min_trace", Params: map[string]string{"method": "mint_shrink"}},
		{Method: "top_down", Params: map[string]string{"method": "average_proportions"}},
	}

	seq, err := New(specs)
	require.NoError(t, err)
	par, err := New(specs, WithParallelism(4))
	require.NoError(t, err)

	a, err := seq.Reconcile(context.Background(), forecasts(t), history(t, true), summing(t))
	require.NoError(t, err)
	b, err := par.Reconcile(context.Background(), forecasts(t), history(t, true), summing(t))
	require.NoError(t, err)

	require.Equal(t, a.Columns(), b.Columns())
	for _, name := range a.Columns() {
		ca, _ := a.Column(name)
		cb, _ := b.Column(name)
		assert.Equal(t, ca, cb, name)
	}
}

func TestReconcileMissingResiduals(t *testing.T) {
	r, err := New([]Spec{{Method: "min_trace", Params: map[string]string{"method": "mint_cov"}}})
	require.NoError(t, err)

	_, err = r.Reconcile(context.Background(), forecasts(t), history(t, false), summing(t))
	require.ErrorIs(t, err, reconcile.ErrResidualsRequired)
	require.ErrorIs(t, err, reconcile.ErrConfiguration)
	assert.Contains(t, err.Error(), "ARIMA/min_trace_method-mint_cov")
}

func TestReconcileForecastProportions(t *testing.T) {
	r, err := New([]Spec{{Method: "top_down", Params: map[string]string{"method": "forecast_proportions"}}})
	require.NoError(t, err)

	_, err = r.Reconcile(context.Background(), forecasts(t), history(t, false), summing(t))
	require.ErrorIs(t, err, reconcile.ErrNotImplemented)
}

func TestReconcileBoundaryErrors(t *testing.T) {
	s, err := hierarchy.New([]string{"Total", "A", "C"}, []string{"A", "C"}, []float64{1, 1, 1, 0, 0, 1})
	require.NoError(t, err)

	r, err := New([]Spec{{Method: "bottom_up"}})
	require.NoError(t, err)
	_, err = r.Reconcile(context.Background(), forecasts(t), nil, s)
	require.ErrorIs(t, err, timeseries.ErrMissingSeries)
	require.ErrorIs(t, err, reconcile.ErrConfiguration)

	td, err := New([]Spec{{Method: "top_down", Params: map[string]string{"method": "average_proportions"}}})
	require.NoError(t, err)
	_, err = td.Reconcile(context.Background(), forecasts(t), nil, summing(t))
	require.ErrorIs(t, err, reconcile.ErrConfiguration)
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name string
		spec []Spec
	}{
		{"unknown method", []Spec{{Method: "middle_out"}}},
		{"unknown parameter", []Spec{{Method: "bottom_up", Params: map[string]string{"level": "1"}}}},
		{"missing parameter", []Spec{{Method: "min_trace"}}},
		{"value not allowed", []Spec{{Method: "min_trace", Params: map[string]string{"method": "mint_magic"}}}},
		{"duplicate output", []Spec{{Method: "bottom_up"}, {Method: "bottom_up"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.spec)
			require.ErrorIs(t, err, reconcile.ErrConfiguration)
		})
	}

	_, err := New([]Spec{{Method: "middle_out"}})
	require.ErrorIs(t, err, reconcile.ErrUnknownMethod)
}

func TestRegisteredMethodReceivesDeclaredInputsOnly(t *testing.T) {
	var seen Inputs
	m := Method{
		Name:     "test_passthrough",
		Params:   []Param{{Name: "scale", Default: "1", HasDefault: true}},
		Requires: []Key{KeyS},
		Run: func(in Inputs, p Params) (*mat.Dense, error) {
			seen = in
			return mat.DenseCopyOf(in.YHat), nil
		},
	}
	if _, ok := Lookup(m.Name); !ok {
		require.NoError(t, Register(m))
	}
	require.Error(t, Register(m))
	require.Error(t, Register(Method{Name: "no_run"}))

	got, ok := Lookup("test_passthrough")
	require.True(t, ok)
	assert.Equal(t, "test_passthrough", got.Name)

	r, err := New([]Spec{
		{Method: "test_passthrough"},
		{Method: "test_passthrough", Params: map[string]string{"scale": "2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"test_passthrough", "test_passthrough_scale-2"}, r.Names())

	out, err := r.Reconcile(context.Background(), forecasts(t), history(t, true), summing(t))
	require.NoError(t, err)

	assert.NotNil(t, seen.S)
	assert.NotNil(t, seen.YHat)
	assert.Nil(t, seen.Y)
	assert.Nil(t, seen.IdxBottom)
	assert.Nil(t, seen.Residuals)

	original, _ := out.Column("ETS")
	passed, _ := out.Column("ETS/test_passthrough")
	assert.Equal(t, original, passed)
}

func TestMethods(t *testing.T) {
	var names []string
	for _, m := range Methods() {
		names = append(names, m.Name)
	}
	assert.Subset(t, names, []string{"bottom_up", "min_trace", "top_down"})

	mt, ok := Lookup("min_trace")
	require.True(t, ok)
	assert.True(t, mt.Needs(KeyResiduals))
	assert.False(t, mt.Needs(KeyY))
}

func TestReconcileMinTraceHistoryMustCoverNodes(t *testing.T) {
	r, err := New([]Spec{{Method: "min_trace", Params: map[string]string{"method": "ols"}}})
	require.NoError(t, err)

	_, err = r.Reconcile(context.Background(), forecasts(t), nil, summing(t))
	require.NoError(t, err)

	partial, err := timeseries.NewFrame([]string{"Total", "A"}, []time.Time{month(1), month(1)})
	require.NoError(t, err)
	require.NoError(t, partial.AddColumn("y", []float64{10, 4}))

	_, err = r.Reconcile(context.Background(), forecasts(t), partial, summing(t))
	require.ErrorIs(t, err, timeseries.ErrMissingSeries)
	require.ErrorIs(t, err, reconcile.ErrConfiguration)
}
