package main

import (
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sartorproj/goreconcile/evaluation"
	"github.com/sartorproj/goreconcile/timeseries"
)

// scoreResult is the exported form of one score. Missing metrics are null.
type scoreResult struct {
	Column string   `json:"column" yaml:"column"`
	Node   string   `json:"node,omitempty" yaml:"node,omitempty"`
	N      int      `json:"n" yaml:"n"`
	RMSE   *float64 `json:"rmse" yaml:"rmse"`
	MAE    *float64 `json:"mae" yaml:"mae"`
	MAPE   *float64 `json:"mape" yaml:"mape"`
}

func (a *app) evaluateCommand() *cobra.Command {
	var (
		forecasts string
		actual    string
		metric    string
		format    string
		byNode    bool
		columns   []string
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score forecast columns against actual values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := evaluation.ParseMetric(metric)
			if err != nil {
				return err
			}

			frame, err := timeseries.LoadCSV(forecasts, nil)
			if err != nil {
				return err
			}

			var scores []evaluation.Score
			if byNode {
				scores, err = evaluation.EvaluateByNode(frame, actual, columns)
			} else {
				scores, err = evaluation.Evaluate(frame, actual, columns)
			}
			if err != nil {
				return err
			}

			if format != formatTable {
				results := make([]scoreResult, len(scores))
				for i, s := range scores {
					results[i] = scoreResult{
						Column: s.Column,
						Node:   s.Node,
						N:      s.N,
						RMSE:   optional(s.RMSE),
						MAE:    optional(s.MAE),
						MAPE:   optional(s.MAPE),
					}
				}
				return renderData(cmd.OutOrStdout(), format, results)
			}

			headers := []string{"column", "n", string(m)}
			if byNode {
				headers = []string{"column", "node", "n", string(m)}
			}
			rows := make([][]string, len(scores))
			for i, s := range scores {
				row := []string{s.Column}
				if byNode {
					row = append(row, s.Node)
				}
				rows[i] = append(row, strconv.Itoa(s.N), strconv.FormatFloat(s.Value(m), 'f', 4, 64))
			}
			return renderTable(cmd.OutOrStdout(), headers, rows)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&forecasts, "forecasts", "", "forecast CSV holding the actual column (required)")
	flags.StringVar(&actual, "actual", timeseries.TargetColumn, "actual value column")
	flags.StringVar(&metric, "metric", string(evaluation.RMSE), "metric shown in table output: rmse, mae, mape")
	flags.StringVarP(&format, "format", "f", formatTable, "output format: table, json, yaml")
	flags.BoolVar(&byNode, "by-node", false, "score every series separately")
	flags.StringSliceVar(&columns, "column", nil, "columns to score (default all but the actual column)")
	_ = cmd.MarkFlagRequired("forecasts")
	return cmd
}

func optional(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
