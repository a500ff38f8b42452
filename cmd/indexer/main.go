package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmeedHassan1/ir-iss-project/internal/analytics"
	"github.com/ahmeedHassan1/ir-iss-project/internal/index/snapshot"
	"github.com/ahmeedHassan1/ir-iss-project/internal/rebuild"
	"github.com/ahmeedHassan1/ir-iss-project/internal/store"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/config"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/health"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/kafka"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/logger"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/metrics"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/middleware"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting indexer service", "port", cfg.Server.Port, "data_dir", cfg.Indexer.DataDir)

	pgClient, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pgClient.Close()

	docStore := store.New(pgClient)
	snapshots := snapshot.NewStore()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Port); err != nil {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}

	completeProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete)
	defer completeProducer.Close()

	analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
	defer analyticsProducer.Close()
	collector := analytics.NewCollector(analyticsProducer, 10000)
	collector.Start(ctx)
	defer collector.Close()

	rebuilder := rebuild.New(docStore, snapshots, completeProducer, collector, m, cfg.Indexer)

	if restored, err := rebuilder.LoadFromDisk(ctx); err != nil {
		slog.Warn("failed to restore snapshot from disk", "error", err)
	} else if restored {
		slog.Info("snapshot restored from disk")
	}

	if cfg.Indexer.RebuildOnStartup {
		go func() {
			if _, err := rebuilder.Rebuild(ctx); err != nil {
				slog.Error("startup rebuild failed", "error", err)
			}
		}()
	}

	rebuildConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.RebuildRequest, rebuild.HandleRequest(rebuilder))
	go func() {
		if err := rebuildConsumer.Start(ctx); err != nil {
			slog.Error("rebuild consumer error", "error", err)
		}
	}()

	checker := health.NewChecker()
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := pgClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		snap := snapshots.Current()
		if snap == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "index not built yet"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents, built %s", snap.DocCount(), snap.BuiltAt.UTC().Format(time.RFC3339)),
		}
	})

	h := rebuild.NewHandler(rebuilder, snapshots)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/index/rebuild", h.Rebuild)
	mux.HandleFunc("GET /api/v1/index/stats", h.Stats)
	mux.HandleFunc("GET /api/v1/index/postings", h.Postings)
	mux.HandleFunc("GET /api/v1/weights/{matrix}", h.Weights)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("indexer service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("indexer service stopped")
}
