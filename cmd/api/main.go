package main

import (
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"clustereval/adapters/postgres"
	"clustereval/adapters/results"
	"clustereval/adapters/spreadsheet"
	"clustereval/app"
	"clustereval/internal"
	"clustereval/internal/config"
	"clustereval/ports"
	"clustereval/ui"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := internal.DefaultLogger
	reader := spreadsheet.NewReader(logger)

	var repository ports.RunRepository
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		repository, err = postgres.NewRunRepository(db)
		if err != nil {
			log.Fatalf("failed to prepare run repository: %v", err)
		}
	} else {
		logger.Warn("DATABASE_URL not set; run history disabled")
	}

	service := app.NewEvaluationService(reader, reader, results.NewWriter(), repository, logger)
	server := ui.NewServer(service, repository, cfg.Evaluation.ResultsDir, logger)
	if err := server.ListenAndServe(cfg.Server.Port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
