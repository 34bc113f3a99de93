package hierarchical

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/goreconcile/hierarchy"
	"github.com/sartorproj/goreconcile/reconcile"
	"github.com/sartorproj/goreconcile/timeseries"
)

// Reconciler runs an ordered list of method specs against every model of a
// forecast table.
type Reconciler struct {
	steps       []step
	logger      zerolog.Logger
	parallelism int
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// WithParallelism sets how many (model, method) pairs may run at once.
// Values below one mean one.
func WithParallelism(n int) Option {
	return func(r *Reconciler) {
		r.parallelism = max(n, 1)
	}
}

// New resolves the specs against the registry. Unknown methods, unknown or
// missing parameters, and two specs that would write the same column are
// configuration errors.
func New(specs []Spec, opts ...Option) (*Reconciler, error) {
	r := &Reconciler{
		logger:      zerolog.Nop(),
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(r)
	}

	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		st, err := resolve(spec)
		if err != nil {
			return nil, err
		}
		if seen[st.name] {
			return nil, reconcile.NewConfigError(st.method.Name, nil, "spec %s duplicates output name %q", spec, st.name)
		}
		seen[st.name] = true
		r.steps = append(r.steps, st)
	}
	return r, nil
}

// Names returns the display name of every spec, in order.
func (r *Reconciler) Names() []string {
	names := make([]string, len(r.steps))
	for i, st := range r.steps {
		names[i] = st.name
	}
	return names
}

// needs reports whether any spec requires the given key.
func (r *Reconciler) needs(key Key) bool {
	for _, st := range r.steps {
		if st.method.Needs(key) {
			return true
		}
	}
	return false
}

// Models returns the forecast columns of yHat: every value column except
// the actual value.
func Models(yHat *timeseries.Frame) []string {
	var models []string
	for _, name := range yHat.Columns() {
		if name != timeseries.TargetColumn {
			models = append(models, name)
		}
	}
	return models
}

// pair is one (method, model) combination.
type pair struct {
	step  step
	model string
}

func (p pair) column() string {
	return p.model + "/" + p.step.name
}

// Reconcile reconciles every model column of yHat with every spec and
// returns a copy of yHat with one extra column per pair, named
// "{model}/{display name}". The inputs are never modified.
//
// history holds the actual values in column y and, for residual-based
// methods, one residual column per model named like the model. It may be
// nil when no spec needs it. Every node of S must appear in yHat, and in
// history when it is used. min_trace declares residuals for every variant,
// so a non-nil history must cover every node even for ols and wls_struct.
// The first failing pair aborts the call.
func (r *Reconciler) Reconcile(ctx context.Context, yHat, history *timeseries.Frame, s *hierarchy.SummingMatrix) (*timeseries.Frame, error) {
	models := Models(yHat)
	r.logger.Info().
		Strs("models", models).
		Strs("methods", r.Names()).
		Int("nodes", len(s.Nodes)).
		Msg("Reconciling forecasts")

	for _, st := range r.steps {
		if st.method.Name == BottomUp.Name && !s.BottomLast() {
			r.logger.Warn().Msg("Bottom series are not the last rows of the summing matrix")
			break
		}
	}

	forecastLayout, err := yHat.Layout(s.Nodes)
	if err != nil {
		return nil, reconcile.NewConfigError("", err, "forecasts: %v", err)
	}

	shared := Context{
		S:         s.Dense(),
		IdxBottom: s.BottomIndex(),
	}

	var historyLayout *timeseries.Layout
	needsHistory := r.needs(KeyY) || r.needs(KeyResiduals)
	if needsHistory && history != nil {
		if historyLayout, err = history.Layout(s.Nodes); err != nil {
			return nil, reconcile.NewConfigError("", err, "history: %v", err)
		}
	}
	if r.needs(KeyY) {
		if history == nil {
			return nil, reconcile.NewConfigError("", timeseries.ErrMissingSeries, "history is required")
		}
		if shared.Y, err = history.Pivot(timeseries.TargetColumn, historyLayout); err != nil {
			return nil, reconcile.NewConfigError("", err, "history: %v", err)
		}
	}

	pairs := make([]pair, 0, len(r.steps)*len(models))
	for _, st := range r.steps {
		for _, model := range models {
			pairs = append(pairs, pair{step: st, model: model})
		}
	}

	results := make([][]float64, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for i, p := range pairs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			values, err := r.run(p, shared, yHat, history, forecastLayout, historyLayout)
			if err != nil {
				return fmt.Errorf("%s: %w", p.column(), err)
			}
			results[i] = values
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := yHat.Copy()
	for i, p := range pairs {
		if err := out.AddColumn(p.column(), results[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// run reconciles one model with one method.
func (r *Reconciler) run(p pair, shared Context, yHat, history *timeseries.Frame, forecastLayout, historyLayout *timeseries.Layout) ([]float64, error) {
	start := time.Now()

	forecasts, err := yHat.Pivot(p.model, forecastLayout)
	if err != nil {
		return nil, err
	}

	var residuals *mat.Dense
	if p.step.method.Needs(KeyResiduals) && historyLayout != nil && history.HasColumn(p.model) {
		byNode, err := history.Pivot(p.model, historyLayout)
		if err != nil {
			return nil, err
		}
		residuals = mat.DenseCopyOf(byNode.T())
	}

	reconciled, err := p.step.method.Run(p.step.method.inputs(shared, forecasts, residuals), p.step.params)
	if err != nil {
		return nil, err
	}

	values, err := yHat.Unpivot(reconciled, forecastLayout)
	if err != nil {
		return nil, err
	}

	r.logger.Debug().
		Str("model", p.model).
		Str("method", p.step.name).
		Bool("residuals", residuals != nil).
		Dur("elapsed", time.Since(start)).
		Msg("Reconciled")
	return values, nil
}
