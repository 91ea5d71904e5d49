package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThiagoRGoveia/plan-fact/internal/config"
	"github.com/ThiagoRGoveia/plan-fact/internal/database"
	"github.com/ThiagoRGoveia/plan-fact/internal/ingestion"
	"github.com/ThiagoRGoveia/plan-fact/internal/logging"
	"github.com/ThiagoRGoveia/plan-fact/internal/server"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("api stopped")
		os.Exit(1)
	}
}

func run() error {
	envErr := godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.Init(cfg.LogLevel, cfg.LogPretty)
	if envErr != nil {
		log.Warn().Err(envErr).Msg("could not load .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := database.ConnectDB(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBConnectAttempts)
	if err != nil {
		return err
	}
	defer dbpool.Close()

	dbManager := database.NewPostgresDBManager(dbpool)
	if err := dbManager.CreateTables(ctx); err != nil {
		return err
	}

	// The import must finish before the listener opens.
	if cfg.ImportEnabled {
		importService := ingestion.NewImportService(dbManager, ingestion.NewFileProcessor(dbManager, cfg.ImportSheet))
		if _, err := importService.Execute(ctx, cfg.ImportFile); err != nil {
			var importErr *ingestion.ImportError
			if errors.As(err, &importErr) {
				for _, rowErr := range importErr.Errors {
					log.Error().Int("row", rowErr.Row).Err(&rowErr).Msg("import row rejected")
				}
			}
			return fmt.Errorf("startup import failed: %w", err)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      server.SetupRoutes(server.NewChartService(dbManager), cfg.CORSAllowedOrigins),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
