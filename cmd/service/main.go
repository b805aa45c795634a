package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/MrVISKman11/AppTiempo/internal/client"
	"github.com/MrVISKman11/AppTiempo/internal/config"
	"github.com/MrVISKman11/AppTiempo/internal/favorites"
	httphandler "github.com/MrVISKman11/AppTiempo/internal/http"
	"github.com/MrVISKman11/AppTiempo/internal/observability"
	"github.com/MrVISKman11/AppTiempo/internal/orchestrator"
	"github.com/MrVISKman11/AppTiempo/internal/prefs"
)

func main() {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	weatherClient, err := client.NewWUClient(cfg.WeatherAPIKey, cfg.WeatherAPIURL, cfg.WeatherAPITimeout)
	if err != nil {
		logger.Fatal("weather client", zap.Error(err))
	}

	loc := time.Local
	if cfg.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			logger.Fatal("timezone", zap.String("name", cfg.Timezone), zap.Error(err))
		}
	}

	prefsStore := prefs.NewStore(cfg.PrefsPath())
	favStore := favorites.NewStore(cfg.FavoritesPath())
	orch := orchestrator.New(weatherClient, logger, loc)

	if len(cfg.TrackedStations) > 0 {
		observability.SetTrackedStations(cfg.TrackedStations)
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	handler := httphandler.NewHandler(orch, prefsStore, favStore, logger,
		cfg.StationIDMinLength, cfg.StationIDMaxLength)

	router := mux.NewRouter()
	router.Use(httphandler.CorrelationIDMiddleware(logger))
	router.Use(httphandler.MetricsMiddleware)
	router.HandleFunc("/health", handler.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler())
	router.HandleFunc("/preferences", handler.GetPreferences).Methods("GET")
	router.HandleFunc("/preferences", handler.PutPreferences).Methods("PUT")
	router.HandleFunc("/favorites", handler.ListFavorites).Methods("GET")
	router.HandleFunc("/favorites", handler.AddFavorite).Methods("POST")
	router.HandleFunc("/favorites", handler.ReorderFavorites).Methods("PUT")
	router.HandleFunc("/favorites/{id}", handler.GetFavoriteStatus).Methods("GET")
	router.HandleFunc("/favorites/{id}", handler.RemoveFavorite).Methods("DELETE")

	stationRouter := router.PathPrefix("/stations").Subrouter()
	stationRouter.Use(httphandler.RateLimitMiddleware(limiter))
	stationRouter.Use(httphandler.TimeoutMiddleware(cfg.RequestTimeout))
	stationRouter.HandleFunc("/{id}/weather", handler.GetStationWeather).Methods("GET")

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
