package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sartorproj/goreconcile/hierarchical"
	"github.com/sartorproj/goreconcile/hierarchy"
	"github.com/sartorproj/goreconcile/internal/config"
	"github.com/sartorproj/goreconcile/internal/logging"
	"github.com/sartorproj/goreconcile/timeseries"
)

type reconcileFlags struct {
	forecasts   string
	history     string
	summing     string
	paths       string
	methods     []string
	methodsFile string
	out         string
	dateFormat  string
}

func (a *app) reconcileCommand() *cobra.Command {
	var f reconcileFlags
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile every model of a forecast table",
		Long: `Reconcile reads base forecasts in long format (unique_id, ds, one column
per model), reconciles every model with every method and writes the table
back with one "{model}/{method}" column per pair.

Methods come from --method flags, then --methods-file, then the methods key
of the config file. The method syntax is name[:key=value[,key=value]].`,
		Example: `  hierrec reconcile --forecasts yhat.csv --history y.csv --summing S.csv \
    --method bottom_up --method min_trace:method=mint_shrink`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runReconcile(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.forecasts, "forecasts", "", "base forecast CSV (required)")
	flags.StringVar(&f.history, "history", "", "history CSV with actual values and per-model residual columns")
	flags.StringVar(&f.summing, "summing", "", "summing matrix CSV")
	flags.StringVar(&f.paths, "paths", "", "bottom series paths CSV, one level per column, instead of --summing")
	flags.StringArrayVarP(&f.methods, "method", "m", nil, "method spec, repeatable")
	flags.StringVar(&f.methodsFile, "methods-file", "", "yaml file with a methods list")
	flags.Int("parallel", 1, "number of (model, method) pairs run at once")
	flags.StringVarP(&f.out, "out", "o", "", "output CSV (default stdout)")
	flags.StringVar(&f.dateFormat, "date-format", "2006-01-02", "timestamp layout for reading and writing")
	_ = cmd.MarkFlagRequired("forecasts")
	cmd.MarkFlagsMutuallyExclusive("summing", "paths")
	cmd.MarkFlagsOneRequired("summing", "paths")
	return cmd
}

func (a *app) runReconcile(cmd *cobra.Command, f reconcileFlags) error {
	logger := logging.FromContext(cmd.Context())

	specs, err := a.specs(f)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return errors.New("no methods configured: use --method, --methods-file or the methods config key")
	}

	s, err := loadSumming(f)
	if err != nil {
		return err
	}

	opts := timeseries.DefaultCSVOptions()
	opts.DateFormat = f.dateFormat

	yHat, err := timeseries.LoadCSV(f.forecasts, opts)
	if err != nil {
		return fmt.Errorf("loading forecasts: %w", err)
	}
	var history *timeseries.Frame
	if f.history != "" {
		if history, err = timeseries.LoadCSV(f.history, opts); err != nil {
			return fmt.Errorf("loading history: %w", err)
		}
	}

	r, err := hierarchical.New(specs,
		hierarchical.WithLogger(*logger),
		hierarchical.WithParallelism(a.config.Parallel),
	)
	if err != nil {
		return err
	}

	start := time.Now()
	out, err := r.Reconcile(cmd.Context(), yHat, history, s)
	if err != nil {
		return err
	}
	logger.Info().
		Int("rows", out.Len()).
		Int("columns", len(out.Columns())).
		Dur("elapsed", time.Since(start)).
		Msg("Reconciled forecasts")

	w, err := output(cmd, f.out)
	if err != nil {
		return err
	}
	if err := timeseries.WriteCSV(out, w, opts); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (a *app) specs(f reconcileFlags) ([]hierarchical.Spec, error) {
	if len(f.methods) > 0 {
		specs := make([]hierarchical.Spec, 0, len(f.methods))
		for _, raw := range f.methods {
			spec, err := hierarchical.ParseSpec(raw)
			if err != nil {
				return nil, err
			}
			specs = append(specs, spec)
		}
		return specs, nil
	}
	if f.methodsFile != "" {
		return config.LoadMethodsFile(f.methodsFile)
	}
	return a.config.Methods, nil
}

func loadSumming(f reconcileFlags) (*hierarchy.SummingMatrix, error) {
	if f.summing != "" {
		s, err := hierarchy.LoadCSV(f.summing)
		if err != nil {
			return nil, fmt.Errorf("loading summing matrix: %w", err)
		}
		return s, nil
	}

	file, err := os.Open(f.paths)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	s, err := hierarchy.LoadPathsCSV(file, true)
	if err != nil {
		return nil, fmt.Errorf("loading paths: %w", err)
	}
	return s, nil
}
