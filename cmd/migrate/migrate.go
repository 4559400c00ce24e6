package main

import (
	"flag"
	"fmt"

	"gorm.io/driver/postgres"
	"square.ai/skill-gateway/app/infrastructure/database"
	_ "square.ai/skill-gateway/app/infrastructure/database/dbschema"
	"square.ai/skill-gateway/app/utils/logger"
	"square.ai/skill-gateway/config/environment_variables"
)

// migrate applies the registered schemas to DB_POSTGRESQL_WRITE_DSN, or to
// -dsn when given, and prints the resulting schema version.
func main() {
	environment_variables.EnvironmentVariables.LoadFromEnv()
	dsn := flag.String("dsn", environment_variables.EnvironmentVariables.DB_POSTGRESQL_WRITE_DSN, "postgres dsn")
	dryRun := flag.Bool("dry-run", false, "only print the current schema version")
	flag.Parse()

	db, err := database.Open(postgres.Open(*dsn))
	if err != nil {
		logger.GetLogger().
			WithField("error_code", "5c16fb53-d98c-4fc6-8bb4-9abd3c0b9e88").
			Fatalf("unable to connect to database: %v", err)
	}
	migrator := database.NewDBMigrator(db)
	if !*dryRun {
		if err := migrator.Migrate(); err != nil {
			logger.GetLogger().
				WithField("error_code", "75333e43-8157-4f0a-8e34-aa34e6e7c285").
				Fatalf("failed to auto migrate schema: %v", err)
		}
	}
	version, err := migrator.CurrentVersion()
	if err != nil {
		logger.GetLogger().Fatalf("failed to read schema version: %v", err)
	}
	fmt.Printf("schema version %d (latest %d)\n", version, database.SchemaVersion)
}
