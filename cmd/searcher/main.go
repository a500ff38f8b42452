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
	"github.com/ahmeedHassan1/ir-iss-project/internal/search/cache"
	"github.com/ahmeedHassan1/ir-iss-project/internal/search/executor"
	"github.com/ahmeedHassan1/ir-iss-project/internal/search/handler"
	"github.com/ahmeedHassan1/ir-iss-project/internal/search/snippet"
	"github.com/ahmeedHassan1/ir-iss-project/internal/store"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/config"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/health"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/kafka"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/logger"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/metrics"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/middleware"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/postgres"
	pkgredis "github.com/ahmeedHassan1/ir-iss-project/pkg/redis"
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
	slog.Info("starting search service", "port", cfg.Server.Port)

	pgClient, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pgClient.Close()
	docStore := store.New(pgClient)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Port); err != nil {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}

	var queryCache *cache.QueryCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis)
		slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	snapshots := snapshot.NewStore()
	if queryCache != nil {
		// Rankings from the previous snapshot are stale the moment a new
		// one is swapped in.
		snapshots.OnSwap(func(snap *snapshot.Snapshot) {
			if err := queryCache.Invalidate(context.Background()); err != nil {
				slog.Error("cache invalidation after snapshot swap failed", "error", err)
			}
		})
	}

	// The searcher never rebuilds; it restores snapshots the indexer wrote.
	loader := rebuild.New(docStore, snapshots, nil, nil, nil, cfg.Indexer)
	if restored, err := loader.LoadFromDisk(ctx); err != nil {
		slog.Warn("failed to restore snapshot from disk", "error", err)
	} else if !restored {
		slog.Warn("no snapshot on disk, serving empty results until the indexer publishes one")
	}

	completeConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete,
		func(ctx context.Context, key []byte, value []byte) error {
			if _, err := loader.LoadFromDisk(ctx); err != nil {
				slog.Error("failed to reload snapshot after rebuild", "error", err)
			}
			return nil
		})
	go func() {
		if err := completeConsumer.Start(ctx); err != nil {
			slog.Error("index-complete consumer error", "error", err)
		}
	}()

	analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
	defer analyticsProducer.Close()
	collector := analytics.NewCollector(analyticsProducer, 10000)
	collector.Start(ctx)
	defer collector.Close()

	aggregator := analytics.NewAggregator(nil)
	analyticsConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, analytics.HandleEvent(aggregator))
	aggregator.SetConsumer(analyticsConsumer)
	go func() {
		if err := aggregator.Start(ctx); err != nil {
			slog.Error("analytics aggregator error", "error", err)
		}
	}()
	analyticsH := analytics.NewHandler(aggregator)

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
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "no snapshot loaded"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents, built %s", snap.DocCount(), snap.BuiltAt.UTC().Format(time.RFC3339)),
		}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	exec := executor.New(snapshots, docStore, snippet.New(cfg.Search.SnippetLength, cfg.Search.SnippetRadius))
	exec.SetMetrics(m)
	h := handler.New(exec, queryCache, collector, m, cfg.Search)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
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

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}
