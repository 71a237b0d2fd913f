package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/maasir554/fingertail/server/internal/classifier"
	"github.com/maasir554/fingertail/server/internal/config"
	"github.com/maasir554/fingertail/server/internal/corpus"
	"github.com/maasir554/fingertail/server/internal/database"
	logger "github.com/maasir554/fingertail/server/internal/logging"
	"github.com/maasir554/fingertail/server/internal/monitoring"
	"github.com/maasir554/fingertail/server/internal/repository"
	"github.com/maasir554/fingertail/server/internal/router"
	"github.com/maasir554/fingertail/server/internal/services"
)

func projectRoot() string {
	if root := os.Getenv("FINGERTAIL_ROOT"); root != "" {
		return root
	}
	return ".."
}

func main() {
	root := projectRoot()

	// Config is loaded with a console logger; the file logger needs its settings.
	bootLog := logger.NewConsoleLogger()
	conf, err := config.Load(root, bootLog, func(next *config.Config) {
		bootLog.Info("Configuration reloaded; model and storage settings apply on restart",
			zap.String("storage", next.Storage.Driver))
	})
	if err != nil {
		bootLog.Fatal("Failed to load configuration", zap.Error(err))
	}

	log, err := logger.Init(root, conf.Logging)
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, conf, log)
	if err != nil {
		log.Fatal("Failed to open blob store", zap.Error(err))
	}
	defer closeStore()

	clf, err := newClassifier(conf, log)
	if err != nil {
		log.Fatal("Failed to build classifier", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	stats := monitoring.NewCollector(reg)

	model := services.NewModelService(ctx, log, repository.NewTrainingRepository(store), clf, stats, services.ModelOptions{
		MinTrainingSessions: conf.Model.MinTrainingSessions,
		MinKeystrokes:       conf.Model.MinKeystrokes,
	})
	services.NewRetrainScheduler(log, model, conf.Model.RetrainInterval).Start(ctx)
	alerts := services.NewAlertNotifier(log, conf.Model.AlertConfidence)

	r := router.Setup(log, conf, router.Deps{Model: model, Alerts: alerts, Gatherer: reg})

	srv := &http.Server{
		Addr:              ":" + conf.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("Server listening on http://localhost" + srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to run Gin server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// openStore builds the configured blob store and a func releasing it.
func openStore(ctx context.Context, conf *config.Config, log *zap.Logger) (repository.BlobStore, func(), error) {
	if conf.Storage.Driver == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		log.Info("Redis connection established successfully.", zap.String("addr", conf.Redis.Addr))
		return repository.NewRedisBlobStore(client, conf.Redis.Prefix), func() { client.Close() }, nil
	}

	db, err := database.Open(conf.Storage.Driver, conf.Database, log)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return repository.NewGormBlobStore(db), closeDB, nil
}

func newClassifier(conf *config.Config, log *zap.Logger) (*classifier.GaussianNB, error) {
	synthetic := classifier.SyntheticSource{
		Count: conf.Model.SyntheticNegatives,
		Noise: conf.Model.SyntheticNoise,
		Seed:  conf.Model.Seed,
	}
	if !conf.Model.UseCorpus {
		return classifier.New(synthetic), nil
	}

	c, err := corpus.LoadFraudulent()
	if err != nil {
		return nil, err
	}
	src := c.NegativeSource()
	log.Info("Fraudulent corpus loaded", zap.Int("sessions", len(c.Sessions)), zap.Int("vectors", len(src.Vectors)))
	return classifier.New(classifier.FallbackSource{Primary: src, Fallback: synthetic}), nil
}
