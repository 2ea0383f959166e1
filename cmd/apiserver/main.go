// Command apiserver runs the FangMatch HTTP API.  PostgreSQL, Redis, and
// Kafka are optional; with none of them enabled the server runs entirely
// on the built-in seed catalog.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/herbwise/fangmatch/internal/application/catalog"
	"github.com/herbwise/fangmatch/internal/application/matching"
	"github.com/herbwise/fangmatch/internal/config"
	"github.com/herbwise/fangmatch/internal/infrastructure/database/postgres"
	"github.com/herbwise/fangmatch/internal/infrastructure/database/postgres/repositories"
	"github.com/herbwise/fangmatch/internal/infrastructure/database/redis"
	"github.com/herbwise/fangmatch/internal/infrastructure/messaging/kafka"
	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/logging"
	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/prometheus"
	"github.com/herbwise/fangmatch/internal/intelligence/analysis"
	"github.com/herbwise/fangmatch/internal/intelligence/identify"
	httpserver "github.com/herbwise/fangmatch/internal/interfaces/http"
	"github.com/herbwise/fangmatch/internal/interfaces/http/handlers"
)

// Version is injected via ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *port); err != nil {
		fmt.Fprintln(os.Stderr, "apiserver:", err)
		os.Exit(1)
	}
}

func run(configPath string, portOverride int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if portOverride > 0 {
		cfg.Server.Port = portOverride
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logFormat := cfg.Log.Format
	if logFormat == "text" {
		logFormat = "console"
	}
	log, err := logging.NewLogger(logging.Config{
		Level:  cfg.Log.Level,
		Format: logFormat,
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := prometheus.NewCollector("fangmatch")
	metrics := prometheus.NewMetrics(collector)

	catalogOpts := []catalog.Option{catalog.WithMetrics(metrics)}
	matchingOpts := []matching.Option{
		matching.WithMetrics(metrics),
		matching.WithMaxResults(cfg.Matching.MaxResults),
	}
	var readiness []handlers.ReadinessChecker

	// PostgreSQL catalog persistence.
	if cfg.Database.Enabled {
		conn, err := postgres.NewConnection(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		defer conn.Close()
		if err := postgres.Migrate(conn.Pool(), log); err != nil {
			return err
		}
		repo := repositories.NewFormulaRepository(conn.Pool(), logging.NewKeyValueLogger(log))
		catalogOpts = append(catalogOpts, catalog.WithRepository(repo))
		readiness = append(readiness, handlers.ReadinessChecker{Name: "postgres", Check: conn.Ping})
	}

	// Redis cache for identification answers.
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		matchingOpts = append(matchingOpts, matching.WithCache(redis.NewCache(client, log)))
		readiness = append(readiness, handlers.ReadinessChecker{Name: "redis", Check: client.Ping})
	}

	// Kafka change events.
	var consumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, log)
		defer func() { _ = producer.Close() }()
		catalogOpts = append(catalogOpts, catalog.WithPublisher(producer))
	}

	cat := catalog.NewService(log, catalogOpts...)
	if err := cat.Bootstrap(ctx); err != nil {
		return err
	}

	// Refresh the snapshot when another instance changes the catalog.
	if cfg.Kafka.Enabled {
		consumer = kafka.NewConsumer(cfg.Kafka, func(ctx context.Context, ev kafka.FormulaChangedEvent) error {
			// Reload events are emitted by reloads themselves; acting on
			// them would ping-pong between instances.
			if ev.Type == kafka.ChangeReloaded {
				return nil
			}
			return cat.Reload(ctx)
		}, log)
		defer func() { _ = consumer.Close() }()
		go func() {
			if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("kafka consumer stopped", logging.Err(err))
			}
		}()
	}

	// External intelligence services.
	if cfg.Intelligence.IdentifyBaseURL != "" {
		matchingOpts = append(matchingOpts,
			matching.WithIdentifier(identify.NewHTTPIdentifier(cfg.Intelligence, log)))
	}
	if cfg.Intelligence.EnableAnalysis && cfg.Intelligence.AnalysisBaseURL != "" {
		matchingOpts = append(matchingOpts,
			matching.WithAnalyzer(analysis.NewHTTPAnalyzer(cfg.Intelligence, log)))
	}

	svc := matching.NewService(cat, cfg.Matching.MatcherOptions(), log, matchingOpts...)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		MatchHandler:   handlers.NewMatchHandler(svc),
		FormulaHandler: handlers.NewFormulaHandler(cat),
		HealthHandler:  handlers.NewHealthHandler(Version, readiness...),
		Metrics:        collector,
		Logger:         log,
	})
	server := httpserver.NewServer(cfg.Server, router, log)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	if err := server.Stop(context.Background()); err != nil {
		return err
	}
	return <-errCh
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}
