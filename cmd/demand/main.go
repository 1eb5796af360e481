package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/couchcryptid/ev-demand-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/ev-demand-service/internal/adapter/kafka"
	"github.com/couchcryptid/ev-demand-service/internal/adapter/memory"
	"github.com/couchcryptid/ev-demand-service/internal/adapter/opendata"
	redisadapter "github.com/couchcryptid/ev-demand-service/internal/adapter/redis"
	"github.com/couchcryptid/ev-demand-service/internal/analysis"
	"github.com/couchcryptid/ev-demand-service/internal/config"
	"github.com/couchcryptid/ev-demand-service/internal/domain"
	"github.com/couchcryptid/ev-demand-service/internal/events"
	"github.com/couchcryptid/ev-demand-service/internal/observability"
)

const (
	redisDialAttempts   = 5
	redisInitialBackoff = 500 * time.Millisecond
	redisMaxBackoff     = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	if err := run(cfg, logger); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	channel := events.NewChannel(logger, metrics)
	events.SubscribeLogging(channel, logger)

	// Forward domain events to Kafka (feature-flagged via KAFKA_ENABLED).
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewEventWriter(cfg.KafkaBrokers, cfg.KafkaEventsTopic, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		channel.Subscribe(domain.EventDemandCalculated, writer.Handle)
		channel.Subscribe(domain.EventHighDemandIdentified, writer.Handle)
		logger.Info("kafka event forwarding enabled", "topic", cfg.KafkaEventsTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka event forwarding disabled")
	}

	repo, closeRepo, err := newRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	// Population and station lookups (enabled when OPENDATA_BASE_URL is set).
	var opts []analysis.Option
	if cfg.OpenDataEnabled {
		client := opendata.NewClient(cfg.OpenDataBaseURL, cfg.OpenDataTimeout, metrics, logger)
		cached := opendata.NewCachedLookup(client, cfg.OpenDataCacheSize, metrics)
		opts = append(opts, analysis.WithLookups(cached, cached))
		logger.Info("open data lookups enabled", "base_url", cfg.OpenDataBaseURL, "cache_size", cfg.OpenDataCacheSize, "timeout", cfg.OpenDataTimeout)
	} else {
		logger.Info("open data lookups disabled")
	}

	svc := analysis.NewService(repo, channel, logger, metrics, opts...)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, svc, cfg.TargetRatio, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// newRepository selects the storage backend. The returned func releases it.
func newRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (analysis.Repository, func(), error) {
	if cfg.RepositoryBackend != config.BackendRedis {
		logger.Info("using in-memory repository")
		return memory.NewRepository(), func() {}, nil
	}

	client, err := dialRedis(ctx, cfg.RedisAddr, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using redis repository", "addr", cfg.RedisAddr, "key", cfg.RedisKey)
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}
	return redisadapter.NewRepository(client, cfg.RedisKey), closeFn, nil
}

// dialRedis retries the initial connection with exponential backoff.
func dialRedis(ctx context.Context, addr string, logger *slog.Logger) (*goredis.Client, error) {
	backoff := redisInitialBackoff
	var lastErr error
	for attempt := 1; attempt <= redisDialAttempts; attempt++ {
		client, err := redisadapter.Dial(ctx, addr)
		if err == nil {
			return client, nil
		}
		lastErr = err
		logger.Warn("redis not reachable, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			return nil, ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, redisMaxBackoff)
	}
	return nil, fmt.Errorf("connect to redis after %d attempts: %w", redisDialAttempts, lastErr)
}
