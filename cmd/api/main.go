package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"rebalance-sim/internal/api"
	"rebalance-sim/internal/api/cache"
	"rebalance-sim/internal/config"
	"rebalance-sim/internal/logging"
	"rebalance-sim/internal/settings"
	"rebalance-sim/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	env := config.FromEnv()
	logger := logging.New(env.LogLevel, env.LogFormat)

	if wd, err := os.Getwd(); err == nil {
		logger.Infof("Working directory: %s", wd)
	}

	settingsStore := settings.NewFileStore(env.SettingsFile, logger)
	if _, err := settingsStore.Load(); err != nil {
		logger.WithError(err).Warn("settings file unavailable, defaults will be served until saved")
	}

	if err := os.MkdirAll(filepath.Dir(env.ScenarioDB), 0755); err != nil {
		logger.Fatalf("Failed to create scenario directory: %v", err)
	}
	db, err := store.OpenSQLite(env.ScenarioDB)
	if err != nil {
		logger.Fatalf("Failed to open scenario database: %v", err)
	}
	if err := store.InitSchema(db); err != nil {
		logger.Fatalf("Failed to initialise scenario database: %v", err)
	}
	scenarios := store.NewStore(db, logger)
	defer scenarios.Close()

	results := cache.New(env.ResultCacheTTL)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 5m", func() {
		if n := results.Purge(); n > 0 {
			logger.WithField("purged", n).Debug("expired simulation results removed")
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule cache purge: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	if env.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Deps{
		Log:         logger,
		Settings:    settingsStore,
		Scenarios:   scenarios,
		Results:     results,
		CORSOrigins: env.CORSOrigins,
		StaticDir:   env.StaticDir,
		PresetsDir:  env.PresetsDir,
	})

	addr := fmt.Sprintf(":%s", env.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	logger.Infof("Starting API server on %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
