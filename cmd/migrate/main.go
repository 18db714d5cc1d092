package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rentledger/rentledger/internal/config"
	"github.com/rentledger/rentledger/internal/logger"
)

func main() {
	schemaPath := flag.String("schema", "migrations/schema.sql", "Path to the schema file")
	dryRun := flag.Bool("dry-run", false, "Print migration SQL without executing it")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	schema, err := os.ReadFile(*schemaPath)
	if err != nil {
		logger.Fatalw("Failed to read schema file", "path", *schemaPath, "error", err)
	}

	if *dryRun {
		logger.Info("Dry run mode - printing migration SQL without executing")
		fmt.Println(string(schema))
		return
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)
	db, err := sqlx.Connect("postgres", cfg.Postgres.DSN())
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if _, err := db.Exec(string(schema)); err != nil {
		logger.Fatalw("Failed to run migrations", "error", err)
	}

	logger.Info("Migrations completed successfully")
}
