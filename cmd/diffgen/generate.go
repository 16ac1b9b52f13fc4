package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/san-kum/diffgen/internal/config"
	"github.com/san-kum/diffgen/internal/dataset"
	"github.com/san-kum/diffgen/internal/logging"
	"github.com/san-kum/diffgen/internal/metrics"
	"github.com/san-kum/diffgen/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type generateFlags struct {
	cfg         *config.Config
	configFile  string
	preset      string
	logLevel    string
	logFile     string
	metricsAddr string
	dryRun      bool
}

func newGenerateCmd() *cobra.Command {
	f := &generateFlags{cfg: config.DefaultConfig()}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "generate a dataset split",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.cfg.Out, "out", "", "output directory")
	fl.StringVar(&f.cfg.Split, "split", f.cfg.Split, "split label written to metadata")
	fl.IntVar(&f.cfg.N, "n", f.cfg.N, "grid size (n x n, >= 3)")
	fl.IntVar(&f.cfg.TrajStart, "traj-start", f.cfg.TrajStart, "first absolute trajectory index")
	fl.IntVar(&f.cfg.TrajCount, "traj-count", f.cfg.TrajCount, "number of trajectories")
	fl.IntVar(&f.cfg.TSteps, "t-steps", f.cfg.TSteps, "samples per trajectory")
	fl.Float32Var(&f.cfg.AlphaMin, "alpha-min", f.cfg.AlphaMin, "lower bound of alpha (inclusive)")
	fl.Float32Var(&f.cfg.AlphaMax, "alpha-max", f.cfg.AlphaMax, "upper bound of alpha (exclusive)")
	fl.StringVar(&f.cfg.MuSet, "mu-set", f.cfg.MuSet, "comma-separated mu values")
	fl.Float32Var(&f.cfg.SRef, "s-ref", f.cfg.SRef, "reference stability margin")
	fl.Uint64Var(&f.cfg.Seed, "seed", f.cfg.Seed, "base seed")
	fl.IntVar(&f.cfg.Workers, "workers", f.cfg.Workers, "trajectories computed in parallel")
	fl.StringVar(&f.configFile, "config", "", "config file path (yaml)")
	fl.StringVar(&f.preset, "preset", "", "split preset ("+fmt.Sprint(config.ListPresets())+")")
	fl.StringVar(&f.logLevel, "log-level", "info", "debug, info, warn or error")
	fl.StringVar(&f.logFile, "log-file", "", "also write JSON logs to this file (rotated)")
	fl.BoolVar(&f.dryRun, "dry-run", false, "print the size and cost of the run without generating it")
	fl.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while generating")
	return cmd
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(flags *pflag.FlagSet, f *generateFlags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.preset != "" {
		cfg = config.GetPreset(f.preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", f.preset, config.ListPresets())
		}
	}
	if f.configFile != "" {
		loaded, err := config.LoadOver(f.configFile, cfg)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	src := f.cfg
	overrides := map[string]func(){
		"out":        func() { cfg.Out = src.Out },
		"split":      func() { cfg.Split = src.Split },
		"n":          func() { cfg.N = src.N },
		"traj-start": func() { cfg.TrajStart = src.TrajStart },
		"traj-count": func() { cfg.TrajCount = src.TrajCount },
		"t-steps":    func() { cfg.TSteps = src.TSteps },
		"alpha-min":  func() { cfg.AlphaMin = src.AlphaMin },
		"alpha-max":  func() { cfg.AlphaMax = src.AlphaMax },
		"mu-set":     func() { cfg.MuSet = src.MuSet },
		"s-ref":      func() { cfg.SRef = src.SRef },
		"seed":       func() { cfg.Seed = src.Seed },
		"workers":    func() { cfg.Workers = src.Workers },
	}
	for name, apply := range overrides {
		if flags.Changed(name) {
			apply()
		}
	}

	if cfg.Out == "" {
		return nil, errors.New("output directory is required (--out or out: in the config file)")
	}
	return cfg, nil
}

func runGenerate(cmd *cobra.Command, f *generateFlags) error {
	logger, err := logging.New(logging.Options{Level: f.logLevel, File: f.logFile, Console: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := resolveConfig(cmd.Flags(), f)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)
	gen, err := pipeline.New(cfg, pipeline.WithLogger(logger), pipeline.WithObserver(rec))
	if err != nil {
		return err
	}

	if f.dryRun {
		return printEstimate(cmd.OutOrStdout(), gen.Estimate())
	}

	if f.metricsAddr != "" {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		srv := &http.Server{
			Addr:              f.metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", zap.Error(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
	}

	w, err := dataset.Create(cfg.Out, cfg.N)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("generating",
		zap.String("out", cfg.Out),
		zap.String("split", cfg.Split),
		zap.Int("n", cfg.N),
		zap.Int("traj_start", cfg.TrajStart),
		zap.Int("traj_count", cfg.TrajCount),
		zap.Int("t_steps", cfg.TSteps),
		zap.Uint64("seed", cfg.Seed),
		zap.Int("workers", cfg.Workers),
	)
	stats, runErr := gen.Run(ctx, w)
	if err := w.Close(); err != nil {
		return errors.Join(runErr, err)
	}
	if runErr != nil {
		logger.Warn("generation stopped", zap.Uint64("samples_written", stats.Samples), zap.Error(runErr))
		return runErr
	}

	m := dataset.NewManifest(cfg, stats.Samples, stats.Trajectories)
	if err := dataset.WriteManifest(cfg.Out, m); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d samples (%d trajectories) to %s  run %s\n",
		stats.Samples, stats.Trajectories, cfg.Out, m.RunID)
	return nil
}

func printEstimate(out io.Writer, e pipeline.Estimate) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "samples\t%d\n", e.Samples)
	fmt.Fprintf(w, "stream bytes\t%d\n", e.StreamBytes)
	for _, mu := range e.SortedMu() {
		fmt.Fprintf(w, "substeps mu=%g\t%d\n", mu, e.Substeps[mu])
	}
	fmt.Fprintf(w, "expected substeps\t%.0f\n", e.ExpectedSubsteps)
	fmt.Fprintf(w, "cell updates\t%.3g\n", e.CellUpdates)
	return w.Flush()
}
