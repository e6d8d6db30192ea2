package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ahrav/go-ballot/infrastructure/report"
	"github.com/ahrav/go-ballot/infrastructure/telemetry"
)

// globalOptions are shared by every subcommand.
type globalOptions struct {
	logLevel  string
	logFormat string
	logger    *zap.Logger
}

// runOptions are the flags of "ballot run".
type runOptions struct {
	input       string
	config      string
	format      string
	candidate   string
	scores      bool
	trace       string
	metricsFile string
}

func newRootCmd() *cobra.Command {
	global := &globalOptions{}

	root := &cobra.Command{
		Use:   "ballot",
		Short: "Consensus over candidate graph partitions",
		Long: `ballot scores competing node selections on a shared graph, picks the
best-supported candidate(s) at every node, and ranks candidates overall.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(global.logFormat, global.logLevel)
			if err != nil {
				return err
			}
			global.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if global.logger != nil {
				_ = global.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&global.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&global.logFormat, "log-format", "console", "log format (console, json)")

	root.AddCommand(newRunCmd(global), newGenerateCmd(global))
	return root
}

func newRunCmd(global *globalOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run consensus over a run file",
		Example: `  ballot run --input run.yaml
  ballot run --input run.yaml --format json --scores
  ballot run --input run.yaml --candidate A --trace stdout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsensus(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), global.logger, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "", "run file (YAML or JSON)")
	flags.StringVarP(&opts.config, "config", "c", "", "engine config file (YAML); defaults apply when omitted")
	flags.StringVarP(&opts.format, "format", "f", report.FormatTable, "output format (table, json)")
	flags.StringVar(&opts.candidate, "candidate", "", "only report nodes and ranking for this candidate")
	flags.BoolVar(&opts.scores, "scores", false, "include the full score table")
	flags.StringVar(&opts.trace, "trace", telemetry.ExporterNone, "trace exporter (none, stdout)")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics in text format to this file")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// newLogger builds a zap logger for the given format and level.
func newLogger(format, level string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(format) {
	case "console":
		cfg = zap.NewDevelopmentConfig()
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	return cfg.Build()
}
