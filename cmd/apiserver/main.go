// Command apiserver is the standalone HTTP server entry point, for
// deployments that want a plain flag-driven binary instead of the CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	appplate "github.com/brailleforge/brailleforge/internal/application/plate"
	"github.com/brailleforge/brailleforge/internal/config"
	"github.com/brailleforge/brailleforge/internal/domain/assembly"
	"github.com/brailleforge/brailleforge/internal/infrastructure/csg"
	"github.com/brailleforge/brailleforge/internal/infrastructure/monitoring/logging"
	"github.com/brailleforge/brailleforge/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/brailleforge/brailleforge/internal/interfaces/http"
	"github.com/brailleforge/brailleforge/internal/interfaces/http/handlers"
)

const defaultConfigPath = "configs/config.yaml"

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	port := flag.Int("port", 0, "HTTP listen port (overrides config)")
	logLevel := flag.String("log-level", "", "log level (overrides config)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using environment and defaults\n", err)
		cfg, err = config.LoadFromEnv()
		if err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	format := "json"
	if cfg.Log.Format == "text" {
		format = "console"
	}
	logger, err := logging.NewLogger(logging.LogConfig{
		Level:  cfg.Log.Level,
		Format: format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("starting brailleforge API server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port))

	srv, err := buildServer(cfg, logger)
	if err != nil {
		logger.Error("startup failed", logging.Err(err))
		os.Exit(1)
	}

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", logging.Err(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Error("shutdown error", logging.Err(err))
	}
}

func buildServer(cfg *config.Config, logger logging.Logger) (*httpserver.Server, error) {
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
			return nil, err
		}
		appMetrics = prometheus.NewAppMetrics(collector)
		metricsHandler = collector.Handler()
	}

	engines, err := csg.Engines(cfg.Assembly.Engines)
	if err != nil {
		return nil, err
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
		HealthHandler:  handlers.NewHealthHandler(version),
		Logger:         logger,
		Metrics:        appMetrics,
		MetricsHandler: metricsHandler,
	})

	return httpserver.NewServer(cfg.Server, router, logger), nil
}

// loadConfig loads configuration from file, erroring if the file is absent.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	return config.Load(path)
}
