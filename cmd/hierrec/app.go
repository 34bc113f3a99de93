package main

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sartorproj/goreconcile/internal/config"
	"github.com/sartorproj/goreconcile/internal/logging"
)

type app struct {
	configFile string
	config     *config.Config
	logger     zerolog.Logger
}

func newApp() *app {
	return &app{logger: *logging.Default()}
}

func (a *app) execute(ctx context.Context, args []string) error {
	root := a.rootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "hierrec",
		Short:             "Reconcile hierarchical time series forecasts",
		Version:           version,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default is ./.hierrec.yaml)")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error")
	flags.String("log-format", "", "log format: auto, console, json")

	root.AddCommand(
		a.reconcileCommand(),
		a.evaluateCommand(),
		a.methodsCommand(),
	)
	return root
}

// setup loads the configuration once flags are parsed and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	opts := config.DefaultOptions()
	opts.ConfigFile = a.configFile
	opts.Flags = cmd.Flags()

	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}
	a.config = cfg

	logCfg := logging.FromEnv()
	logCfg.Level = cfg.LogLevel
	logCfg.Format = cfg.LogFormat
	a.logger = logging.NewFromConfig(logCfg)
	logging.SetDefault(a.logger)

	if cfg.File != "" {
		a.logger.Debug().Str("file", cfg.File).Msg("Loaded config")
	}
	cmd.SetContext(logging.WithLogger(cmd.Context(), &a.logger))
	return nil
}

// output opens path for writing, or returns the command's stdout for "" and "-".
func output(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
