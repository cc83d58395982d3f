package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tilsley/bindle/apps/server/internal/importer"
	"github.com/tilsley/bindle/apps/server/internal/importer/fetch"
	"github.com/tilsley/bindle/apps/server/internal/importer/githost"
	"github.com/tilsley/bindle/apps/server/internal/importer/handler"
	"github.com/tilsley/bindle/apps/server/internal/importer/ratelimit"
	"github.com/tilsley/bindle/apps/server/internal/importer/store"
	"github.com/tilsley/bindle/apps/server/internal/importer/store/pgmigrations"
	"github.com/tilsley/bindle/apps/server/internal/importer/upload"
	"github.com/tilsley/bindle/apps/server/internal/platform/config"
	platformgithub "github.com/tilsley/bindle/apps/server/internal/platform/github"
	"github.com/tilsley/bindle/apps/server/internal/platform/logger"
	pgplatform "github.com/tilsley/bindle/apps/server/internal/platform/postgres"
	"github.com/tilsley/bindle/apps/server/internal/platform/telemetry"
	"github.com/tilsley/bindle/apps/server/internal/platform/validation"
	"github.com/tilsley/bindle/schemas"
)

func main() {
	slog := logger.New()
	cfg := config.Load()

	// --- Observability ---

	// Default the service name before any OTel init.
	if os.Getenv("OTEL_SERVICE_NAME") == "" {
		os.Setenv("OTEL_SERVICE_NAME", "bindle-server") //nolint:errcheck
	}

	otelEnabled := os.Getenv("OTEL_ENABLED") == "true"
	ctx := context.Background()
	tel, err := telemetry.New(ctx, otelEnabled)
	if err != nil {
		slog.Error("telemetry init failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("telemetry shutdown failed", "error", err)
		}
	}()

	// --- Stores ---

	containers, err := newContainerStore(ctx, cfg, slog)
	if err != nil {
		slog.Error("container store init failed", "store", cfg.ContainerStore, "error", err)
		os.Exit(1) //nolint:gocritic
	}

	contentStore := newContentStore(cfg, slog)

	// --- GitHub host adapter ---

	gh := platformgithub.NewTokenClient(cfg.GitHubToken, cfg.GitHubAPIURL)
	fetcher := fetch.NewClient(cfg.GitHubToken)
	host := githost.New(gh, fetcher, cfg.GitHubCodeloadURL)

	// --- Pipeline ---

	limiter := ratelimit.New(cfg.RateLimitMax, cfg.RateLimitWindow)
	limiter.Start()
	defer limiter.Stop()

	uploader := upload.NewBatcher(contentStore, slog)

	svc := importer.NewService(host, uploader, containers, limiter, cfg.MaxRepoSizeMB, cfg.PublicBaseURL, slog)

	// --- HTTP ---

	router := gin.New()

	validator, err := validation.New(schemas.OpenAPISpec)
	if err != nil {
		slog.Error("openapi validation middleware init failed", "error", err)
		os.Exit(1)
	}

	router.Use(gin.Recovery(), otelgin.Middleware("bindle-server"), validator)
	handler.RegisterRoutes(router, svc, slog)

	slog.Info("starting bindle", "port", cfg.Port, "containerStore", cfg.ContainerStore)
	if err := router.Run(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// newContainerStore selects the container store backend from CONTAINER_STORE:
// "redis" (default) or "postgres".
func newContainerStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (importer.ContainerStore, error) {
	switch cfg.ContainerStore {
	case "postgres":
		pool, err := pgplatform.New(ctx, cfg.PostgresURL, pgmigrations.FS)
		if err != nil {
			return nil, err
		}
		log.Info("using postgres container store")
		return store.NewPGContainerStore(pool), nil
	default:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		log.Info("using redis container store", "addr", cfg.RedisAddr)
		return store.NewRedisContainerStore(rdb), nil
	}
}

// newContentStore returns the S3-backed content store when a bucket is
// configured, otherwise an in-process store suitable for local development.
func newContentStore(cfg *config.Config, log *slog.Logger) upload.ContentStore {
	if cfg.S3Bucket == "" {
		log.Warn("S3_BUCKET not set, storing content in memory")
		return store.NewMemoryContentStore(cfg.PublicBaseURL + "/content")
	}

	opts := s3.Options{
		Region: cfg.S3Region,
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     cfg.S3AccessKey,
				SecretAccessKey: cfg.S3SecretKey,
			}, nil
		}),
	}
	if cfg.S3Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.S3Endpoint)
		opts.UsePathStyle = true
	}

	log.Info("using s3 content store", "bucket", cfg.S3Bucket, "region", cfg.S3Region)
	return store.NewS3ContentStore(s3.New(opts), cfg.S3Bucket, cfg.S3PublicURL)
}
