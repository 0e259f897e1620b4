package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appplate "github.com/brailleforge/brailleforge/internal/application/plate"
	"github.com/brailleforge/brailleforge/internal/config"
	"github.com/brailleforge/brailleforge/internal/domain/assembly"
	"github.com/brailleforge/brailleforge/internal/infrastructure/csg"
	"github.com/brailleforge/brailleforge/internal/infrastructure/monitoring/logging"
	"github.com/brailleforge/brailleforge/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/brailleforge/brailleforge/internal/interfaces/http"
	"github.com/brailleforge/brailleforge/internal/interfaces/http/handlers"
)

// NewServeCmd creates the "serve" command running the HTTP API.
func NewServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the plate generation HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := GetCLIContext(cmd)
			cfg := cliCtx.Config
			if port > 0 {
				cfg.Server.Port = port
			}
			return runServer(cmd.Context(), cfg, cliCtx.Logger)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

// runServer wires the full service stack and blocks until a shutdown signal
// arrives or the listener fails.
func runServer(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	var (
		appMetrics     *prometheus.AppMetrics
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			Subsystem:            cfg.Metrics.Subsystem,
			EnableGoMetrics:      cfg.Metrics.EnableGoMetrics,
			EnableProcessMetrics: cfg.Metrics.EnableProcessMetrics,
		}, logger)
		if err != nil {
			return err
		}
		appMetrics = prometheus.NewAppMetrics(collector)
		metricsHandler = collector.Handler()
	}

	engines, err := csg.Engines(cfg.Assembly.Engines)
	if err != nil {
		return err
	}
	assembler := assembly.New(engines, assembly.Config{
		AttemptTimeout: cfg.Assembly.AttemptTimeout,
	}, logger)

	svc := appplate.NewService(assembler, appplate.Options{
		TotalTimeout:   cfg.Assembly.TotalTimeout,
		FeatureWorkers: cfg.Assembly.FeatureWorkers,
		MaxConcurrent:  cfg.Limits.MaxConcurrentGenerates,
		MaxGridColumns: cfg.Limits.MaxGridColumns,
		MaxGridRows:    cfg.Limits.MaxGridRows,
	}, logger, appMetrics)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		PlateHandler:   handlers.NewPlateHandler(svc, cfg.Server.MaxBodySize, logger),
		HealthHandler:  handlers.NewHealthHandler(Version),
		Logger:         logger,
		Metrics:        appMetrics,
		MetricsHandler: metricsHandler,
	})

	srv := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("signal received", logging.String("signal", sig.String()))
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
