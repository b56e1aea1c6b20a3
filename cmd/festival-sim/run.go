package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/signalsfoundry/festival-simulator/internal/config"
	"github.com/signalsfoundry/festival-simulator/internal/control"
	"github.com/signalsfoundry/festival-simulator/internal/engine"
	"github.com/signalsfoundry/festival-simulator/internal/logging"
	"github.com/signalsfoundry/festival-simulator/internal/observability"
)

const shutdownTimeout = 5 * time.Second

// runFlags are command-line overrides for the environment config.
type runFlags struct {
	scenario    string
	seed        uint64
	scale       float64
	tick        time.Duration
	metricsAddr string
	controlAddr string
	logLevel    string
	logFormat   string
	paused      bool
}

func newRunCommand() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a festival scenario",
		Long: `Runs a scenario until its end date, an emergency stop, or an interrupt.

Settings come from FESTIVAL_* environment variables; flags override them.
The run can be steered through the SimulationControl gRPC service.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			f.apply(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			cfg.Log.Output = cmd.ErrOrStderr()
			log := logging.New(cfg.Log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, !f.paused, log, nil, cmd.OutOrStdout())
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.scenario, "scenario", "", "scenario YAML file (default: embedded scenario)")
	fs.Uint64Var(&f.seed, "seed", 0, "random seed overriding the scenario seed")
	fs.Float64Var(&f.scale, "scale", 1, "time scale factor, clamped to [0.1, 10]")
	fs.DurationVar(&f.tick, "tick", time.Minute, "simulated time per tick at scale 1")
	fs.StringVar(&f.metricsAddr, "metrics-addr", ":9090", "HTTP address for Prometheus /metrics; empty disables")
	fs.StringVar(&f.controlAddr, "control-addr", ":50051", "TCP address of the control gRPC server")
	fs.StringVar(&f.logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	fs.StringVar(&f.logFormat, "log-format", "text", "log format (text|json)")
	fs.BoolVar(&f.paused, "paused", false, "wait for a Start call on the control plane instead of starting immediately")
	return cmd
}

// apply copies explicitly set flags over cfg.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("scenario") {
		cfg.ScenarioPath = f.scenario
	}
	if fs.Changed("seed") {
		cfg.Seed = f.seed
	}
	if fs.Changed("scale") {
		cfg.TimeScale = f.scale
	}
	if fs.Changed("tick") {
		cfg.TickQuantum = f.tick
	}
	if fs.Changed("metrics-addr") {
		cfg.MetricsAddr = f.metricsAddr
	}
	if fs.Changed("control-addr") {
		cfg.ControlAddr = f.controlAddr
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
}

// run drives one simulation with its control and metrics servers. lis, if
// non-nil, replaces listening on cfg.ControlAddr. It returns once the run
// stops or ctx is cancelled, after writing a summary to out.
func run(ctx context.Context, cfg config.Config, autostart bool, log logging.Logger, lis net.Listener, out io.Writer) error {
	if log == nil {
		log = logging.Noop()
	}

	scenario, err := config.LoadScenario(cfg.ScenarioPath)
	if err != nil {
		return err
	}

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	reg := prometheus.NewRegistry()
	simMetrics, err := observability.NewSimCollector(reg)
	if err != nil {
		return fmt.Errorf("init simulation metrics: %w", err)
	}
	ctlMetrics, err := observability.NewControlCollector(reg)
	if err != nil {
		return fmt.Errorf("init control metrics: %w", err)
	}

	orch, err := scenario.Build(cfg.Seed,
		engine.WithLogger(log),
		engine.WithMetricsRecorder(simMetrics),
		engine.WithTickQuantum(cfg.TickQuantum),
		engine.WithTimeScale(cfg.TimeScale),
	)
	if err != nil {
		return fmt.Errorf("build scenario: %w", err)
	}
	defer orch.Subscribe(notificationLogger(ctx, log))()

	if lis == nil {
		lis, err = net.Listen("tcp", cfg.ControlAddr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.ControlAddr, err)
		}
	}
	gs, health := control.NewServer(control.NewService(orch, log), log, ctlMetrics)

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", simMetrics.Handler())
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: shutdownTimeout}
	}

	log.Info(ctx, "festival run ready",
		logging.String("scenario", scenario.Name),
		logging.String("run_id", orch.RunID()),
		logging.String("control_addr", lis.Addr().String()),
		logging.String("metrics_addr", cfg.MetricsAddr),
		logging.Float("scale", orch.TimeScale()),
		logging.Duration("tick", cfg.TickQuantum),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gs.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("control server: %w", err)
		}
		return nil
	})
	if metricsSrv != nil {
		g.Go(func() error {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		var startErr error
		if autostart {
			startErr = orch.Start()
		}
		if startErr == nil {
			select {
			case <-orch.Done():
			case <-gctx.Done():
				log.Info(ctx, "interrupted; stopping run")
				orch.Stop()
			}
		}

		health.Shutdown()
		gs.GracefulStop()
		if metricsSrv != nil {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := metricsSrv.Shutdown(sctx); err != nil {
				log.Warn(ctx, "metrics server shutdown failed", logging.Err(err))
			}
		}
		return startErr
	})

	err = g.Wait()
	printSummary(out, orch)
	return err
}
