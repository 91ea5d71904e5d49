package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ThiagoRGoveia/plan-fact/internal/config"
	"github.com/ThiagoRGoveia/plan-fact/internal/database"
	"github.com/ThiagoRGoveia/plan-fact/internal/logging"
	"github.com/ThiagoRGoveia/plan-fact/internal/parser"
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

	log.Info().Msg("starting database setup")
	ctx := context.Background()

	dbpool, err := database.ConnectDB(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBConnectAttempts)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to connect to database")
	}
	defer dbpool.Close()

	dbManager := database.NewPostgresDBManager(dbpool)

	if err := dbManager.CreateTables(ctx); err != nil {
		log.Fatal().Err(err).Msg("error creating tables")
	}
	log.Info().Msg("tables created")

	if cfg.ProjectsFile == "" {
		log.Info().Msg("PROJECTS_FILE not set, skipping project seeding")
		return
	}

	projects, err := parser.ParseProjectsCSV(cfg.ProjectsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("error reading projects file")
	}

	inserted, err := dbManager.InsertProjects(ctx, projects)
	if err != nil {
		log.Fatal().Err(err).Msg("error seeding projects")
	}
	log.Info().Int("read", len(projects)).Int("inserted", inserted).Msg("database setup finished")
}
