package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atharvakonge/portfolio-ledger/internal/app"
	"github.com/atharvakonge/portfolio-ledger/internal/config"
	"github.com/atharvakonge/portfolio-ledger/internal/handlers"
	"github.com/atharvakonge/portfolio-ledger/internal/logging"
	"github.com/atharvakonge/portfolio-ledger/internal/media"
	"github.com/atharvakonge/portfolio-ledger/internal/quotes"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.New("info", "console").Fatal().Err(err).Msg("Failed to load config")
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer store.Close()

	svc := app.NewServices(cfg, store, logger)
	if _, err := svc.Auth.EnsureSuperuser(ctx, cfg.Superuser); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ensure superuser")
	}

	qlog := logger.Component("quotes")
	fetcher := quotes.FromConfig(cfg.Quotes, qlog)
	jobs := quotes.NewJobQueue(fetcher, cfg.Quotes.Workers, cfg.Quotes.QueueSize, cfg.Quotes.GetResultTTL(), qlog)
	jobs.Start()
	defer jobs.Stop()

	if cfg.Server.GinMode == gin.ReleaseMode || cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	h := handlers.New(handlers.Deps{
		Store:  store,
		Ledger: svc.Ledger,
		Auth:   svc.Auth,
		Quotes: fetcher,
		Jobs:   jobs,
		Media:  media.New(cfg.Media),
		Logger: logger,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handlers.NewRouter(h, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("driver", cfg.Database.Driver).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
}
