package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/crono/flox/internal/api"
	"github.com/crono/flox/internal/assets"
	"github.com/crono/flox/internal/catalog"
	"github.com/crono/flox/internal/config"
	"github.com/crono/flox/internal/db"
	"github.com/crono/flox/internal/jobs"
	"github.com/crono/flox/internal/metadata"
	"github.com/crono/flox/internal/repository"
	"github.com/crono/flox/internal/scheduler"
	"github.com/crono/flox/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	logger.WithField("version", version.Version).Info("starting flox")

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer database.Close()

	// Repositories
	itemRepo := repository.NewItemRepository(database)
	episodeRepo := repository.NewEpisodeRepository(database)
	titleRepo := repository.NewAlternativeTitleRepository(database)
	genreRepo := repository.NewGenreRepository(database)
	settingsRepo := repository.NewSettingsRepository(database)

	// External clients
	tmdb := metadata.NewTMDBClient(cfg.TMDBAPIKey, cfg.DefaultLanguage)
	omdb := metadata.NewOMDbClient(cfg.OMDbAPIKey)
	assetStore := assets.NewStore(cfg.AssetDir, logger)

	// Job queue
	queue := jobs.NewQueue(cfg.RedisAddr, logger)
	defer queue.Stop()

	// Catalog services
	episodeSvc := catalog.NewEpisodeService(episodeRepo, tmdb, settingsRepo, logger)
	genreSyncer := catalog.NewGenreSyncer(genreRepo, tmdb, logger)
	titleSyncer := catalog.NewAlternativeTitleSyncer(titleRepo, tmdb)
	service := catalog.NewService(
		itemRepo,
		episodeSvc,
		genreSyncer,
		titleSyncer,
		tmdb,
		omdb,
		assetStore,
		queue,
		settingsRepo,
		database,
		cfg.PageSize,
		logger,
	)

	queue.RegisterHandler(jobs.TaskItemRefresh, jobs.NewRefreshHandler(service, logger))
	if err := queue.Start(); err != nil {
		logger.WithError(err).Fatal("failed to start job queue")
	}

	sched := scheduler.New(service, cfg.RefreshCron, logger)
	if err := sched.Start(); err != nil {
		logger.WithError(err).Fatal("failed to start scheduler")
	}
	defer sched.Stop()

	server := api.NewServer(service, episodeSvc, logger)
	httpServer := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: server,
	}

	go func() {
		logger.WithField("addr", httpServer.Addr).Info("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("http shutdown failed")
	}
}
