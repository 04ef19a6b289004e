package main

import (
	"context"
	"log"

	"ecocast/adapters/excel"
	"ecocast/adapters/postgres"
	"ecocast/api"
	"ecocast/app"
	"ecocast/internal"
	"ecocast/internal/config"
	"ecocast/internal/errors"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase initializes the PostgreSQL database connection
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}
	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	scenarioCfg, err := appConfig.ScenarioConfig()
	if err != nil {
		log.Fatalf("Invalid scenario configuration: %v", err)
	}

	db, err := initDatabase(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewProjectionRepository(db)
	if impl, ok := repo.(*postgres.ProjectionRepositoryImpl); ok {
		if err := impl.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to ensure database schema: %v", err)
		}
	}

	logger := internal.DefaultLogger
	service := app.NewReconcileService(scenarioCfg, excel.NewTableReader(), repo, logger)
	server := api.NewServer(service, scenarioCfg, logger)

	if err := server.Start(appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
