package main

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ahrav/go-ballot/infrastructure/middleware"
	"github.com/ahrav/go-ballot/infrastructure/report"
	"github.com/ahrav/go-ballot/infrastructure/runfile"
	"github.com/ahrav/go-ballot/infrastructure/telemetry"
	"github.com/ahrav/go-ballot/internal/application"
	"github.com/ahrav/go-ballot/internal/ports"
)

func runConsensus(ctx context.Context, stdout, stderr io.Writer, logger *zap.Logger, opts *runOptions) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch opts.format {
	case report.FormatTable, report.FormatJSON:
	default:
		return fmt.Errorf("%w: %s", report.ErrUnknownFormat, opts.format)
	}

	config := application.DefaultEngineConfig()
	if opts.config != "" {
		var err error
		if config, err = application.LoadConfigFile(opts.config); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	run, err := runfile.NewLoader().LoadFile(ctx, opts.input)
	if err != nil {
		return fmt.Errorf("load run file %s: %w", opts.input, err)
	}
	logger.Info("loaded run file",
		zap.String("path", opts.input),
		zap.Int("nodes", run.Graph.Len()),
		zap.Int("edges", run.Graph.EdgeCount()),
		zap.Int("candidates", run.Candidates.Len()),
	)

	// Resolve before running so a typo fails fast.
	if opts.candidate != "" {
		name, err := report.ResolveCandidate(run.Candidates.Names(), opts.candidate)
		if err != nil {
			return err
		}
		opts.candidate = name
	}

	tcfg := telemetry.DefaultConfig()
	tcfg.TraceExporter = opts.trace
	tcfg.Writer = stderr
	shutdown, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("trace shutdown failed", zap.Error(err))
		}
	}()

	registry := prometheus.NewRegistry()
	engine, err := application.NewEngine(config,
		application.WithLogger(logger),
		application.WithMetrics(middleware.NewPrometheusMetrics(registry)),
		application.WithObserver(middleware.NewOTelRunObserver()),
	)
	if err != nil {
		return err
	}

	result, runErr := engine.Run(ctx, run.Graph, run.Candidates)

	// Metrics are written for failed runs too.
	if opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.metricsFile, registry); err != nil {
			return ports.NewMetricsError("registry", "write_textfile", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	logger.Info("consensus complete",
		zap.String("run_id", result.RunID),
		zap.Int("contested", result.Winners.Contested()),
		zap.Int("undecided", result.Winners.Undecided()),
	)

	return report.Write(stdout, result, report.Options{
		Format:    opts.format,
		Scores:    opts.scores,
		Candidate: opts.candidate,
	})
}
