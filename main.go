package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"merkez/api/config"
	"merkez/api/database"
	"merkez/api/handlers"
	"merkez/api/live"
	"merkez/api/logging"
	"merkez/api/middleware"
	"merkez/api/store"
	"merkez/api/utils"
)

func main() {
	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		logging.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := cfg.Location()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid timezone")
	}

	ctx := context.Background()

	counterStore, err := store.NewCounterStore(ctx, cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open counter store")
	}

	visitorHandlers := handlers.NewVisitorHandlers(counterStore, loc, cfg.Store.MaxEvents)
	visitorHandlers.AllowedOrigin = cfg.FEOrigin

	// --- Optional ClickHouse archive of every recorded event ---
	var (
		archiver *store.Archiver
		chClient *database.ClickHouseClient
	)
	if cfg.Archive.Enabled {
		chClient, err = database.NewClickHouseDB(ctx, cfg.Archive)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to connect to ClickHouse")
		}
		analyticsStore := store.NewAnalyticsStore(chClient)
		if err := analyticsStore.EnsureSchema(ctx); err != nil {
			logging.Fatal().Err(err).Msg("failed to prepare ClickHouse schema")
		}
		archiver = store.NewArchiver(analyticsStore, store.ArchiverConfig{
			BatchSize:     cfg.Archive.BatchSize,
			FlushInterval: cfg.Archive.FlushInterval,
			BufferSize:    cfg.Archive.BufferSize,
		})
		go archiver.Run()
		visitorHandlers.Archive = archiver
	}

	hub := live.NewHub()
	go hub.Run()
	visitorHandlers.Hub = hub

	r, err := setupRouter(cfg, visitorHandlers)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build router")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Bool("archive", cfg.Archive.Enabled).Msg("visitor API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("server forced to shutdown")
	}
	hub.Close()

	if archiver != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := archiver.Stop(stopCtx); err != nil {
			logging.Warn().Err(err).Msg("archive did not flush before shutdown")
		}
		stopCancel()
	}
	if chClient != nil {
		if err := chClient.Close(); err != nil {
			logging.Warn().Err(err).Msg("closing ClickHouse connection")
		}
	}
	if err := counterStore.Close(); err != nil {
		logging.Error().Err(err).Msg("closing counter store")
	}

	logging.Info().Msg("server exited")
}

// setupRouter wires middleware and routes. The visitor endpoint is also
// mounted at /visitor.php so existing site pages keep working.
func setupRouter(cfg *config.Config, vh *handlers.VisitorHandlers) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(utils.SplitList(cfg.TrustedProxies)); err != nil {
		return nil, err
	}
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware(cfg.FEOrigin))

	r.NoMethod(handlers.MethodNotAllowed)

	r.GET("/healthz", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/visitor.php", vh.Get)
	r.POST("/visitor.php", vh.Ingest)

	api := r.Group("/api")
	{
		visitor := api.Group("/visitor")
		{
			visitor.GET("", vh.Get)
			visitor.POST("", vh.Ingest)
			visitor.GET("/live", vh.Live)
		}

		reportsGroup := api.Group("/reports")
		{
			reportsGroup.GET("/verification", handlers.VerificationReport)
			reportsGroup.GET("/academic", handlers.AcademicReport)
		}

		api.GET("/center", handlers.CenterInfo)
		api.GET("/center/extremes", handlers.CenterExtremes)
		api.GET("/center.geojson", handlers.CenterGeoJSON)
		api.GET("/center.csv", handlers.CenterCSV)

		api.GET("/i18n/:lang", handlers.Dictionary)
	}

	if cfg.StaticDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(cfg.StaticDir))))
	}

	return r, nil
}
