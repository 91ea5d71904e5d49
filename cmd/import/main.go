// Command import runs the spreadsheet import on its own, without starting the API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ThiagoRGoveia/plan-fact/internal/config"
	"github.com/ThiagoRGoveia/plan-fact/internal/database"
	"github.com/ThiagoRGoveia/plan-fact/internal/ingestion"
	"github.com/ThiagoRGoveia/plan-fact/internal/logging"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel, cfg.LogPretty)
	if envErr != nil {
		log.Warn().Err(envErr).Msg("could not load .env file")
	}

	startTime := time.Now()
	if err := execute(context.Background(), cfg); err != nil {
		var importErr *ingestion.ImportError
		if errors.As(err, &importErr) {
			for _, rowErr := range importErr.Errors {
				log.Error().Int("row", rowErr.Row).Err(&rowErr).Msg("import row rejected")
			}
		}
		log.Fatal().Err(err).Msg("import failed")
	}
	log.Info().Dur("elapsed", time.Since(startTime)).Msg("import finished")
}

func execute(ctx context.Context, cfg *config.Config) error {
	dbpool, err := database.ConnectDB(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBConnectAttempts)
	if err != nil {
		return err
	}
	defer dbpool.Close()

	dbManager := database.NewPostgresDBManager(dbpool)
	if err := dbManager.CreateTables(ctx); err != nil {
		return err
	}

	importService := ingestion.NewImportService(dbManager, ingestion.NewFileProcessor(dbManager, cfg.ImportSheet))
	result, err := importService.Execute(ctx, cfg.ImportFile)
	if err != nil {
		return err
	}

	log.Info().
		Str("file", result.FileName).
		Bool("skipped", result.Skipped).
		Int64("rows", result.Rows).
		Msg("import result")
	return nil
}
