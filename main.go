package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/muhammadolammi/resumereview/internal/analysis"
	"github.com/muhammadolammi/resumereview/internal/auth"
	"github.com/muhammadolammi/resumereview/internal/config"
	"github.com/muhammadolammi/resumereview/internal/database"
	"github.com/muhammadolammi/resumereview/internal/events"
	"github.com/muhammadolammi/resumereview/internal/profiles"
	"github.com/muhammadolammi/resumereview/internal/resumes"
	"github.com/muhammadolammi/resumereview/internal/server"
	"github.com/muhammadolammi/resumereview/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	db, err := sql.Open("postgres", cfg.DBURL)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}
	queries := database.New(db)

	objects, err := newObjectStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	analyzer, err := newAnalyzer(ctx, cfg.Analysis, objects, log)
	if err != nil {
		return err
	}

	var pub events.Publisher = events.NewLogPublisher(log)
	if cfg.RabbitMQURL != "" {
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		defer conn.Close()
		amqpPub, err := events.NewAMQPPublisher(conn)
		if err != nil {
			return err
		}
		pub = amqpPub
	}

	tokens := auth.NewTokens(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	resumeSvc := resumes.NewService(queries, objects, analyzer, pub, log)

	deps := server.Deps{
		Resumes:  resumeSvc,
		Profiles: profiles.NewService(queries),
		Auth:     auth.NewService(queries, tokens),
		Tokens:   tokens,
		Log:      log,
	}
	if cfg.RateLimit.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RateLimit.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		deps.RateLimit = server.NewRateLimiter(server.RateLimiterConfig{
			Client: rdb,
			Limit:  cfg.RateLimit.Limit,
			Window: cfg.RateLimit.Window,
			Log:    log,
		})
	}

	reconciler := resumes.NewReconciler(queries, pub, log, cfg.Reconcile.Interval, cfg.Reconcile.StaleAfter)
	go reconciler.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"port":     cfg.Port,
			"storage":  cfg.Storage.Driver,
			"analyzer": cfg.Analysis.Driver,
		}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newObjectStore(ctx context.Context, cfg config.StorageConfig) (storage.ObjectStore, error) {
	switch cfg.Driver {
	case config.StorageMinIO:
		client, err := storage.NewMinIOClient(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.UseSSL)
		if err != nil {
			return nil, err
		}
		store := storage.NewMinIOStore(client, cfg.Bucket, cfg.PublicBaseURL)
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		client, err := storage.NewR2Client(ctx, cfg.R2.AccountID, cfg.R2.AccessKey, cfg.R2.SecretKey)
		if err != nil {
			return nil, err
		}
		return storage.NewR2Store(client, cfg.Bucket, cfg.R2.AccountID, cfg.PublicBaseURL), nil
	}
}

func newAnalyzer(ctx context.Context, cfg config.AnalysisConfig, files analysis.FileSource, log *logrus.Logger) (analysis.Analyzer, error) {
	if cfg.Driver == config.AnalyzerGemini {
		return analysis.NewGeminiAnalyzer(ctx, cfg.GoogleAPIKey, cfg.GeminiModel, files, cfg.Timeout, log)
	}
	return analysis.NewWebhookClient(cfg.WebhookURL, cfg.Timeout, cfg.MaxAttempts), nil
}
