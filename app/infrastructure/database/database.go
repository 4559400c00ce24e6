package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
	"square.ai/skill-gateway/app/utils/logger"
	"square.ai/skill-gateway/config/environment_variables"
)

var SchemaRegistry []interface{}

func RegisterSchemaForAutoMigrate(models ...interface{}) {
	SchemaRegistry = append(SchemaRegistry, models...)
}

// NewDB opens the primary database from the environment, attaches the read
// replica when one is configured and runs the schema migration.
func NewDB() (*gorm.DB, func(), error) {
	env := environment_variables.EnvironmentVariables
	db, err := Open(postgres.Open(env.DB_POSTGRESQL_WRITE_DSN))
	if err != nil {
		logger.GetLogger().
			WithField("error_code", "5c16fb53-d98c-4fc6-8bb4-9abd3c0b9e88").
			Errorf("unable to connect to database: %v", err)
		return nil, nil, err
	}
	if env.DB_POSTGRESQL_READ1_DSN != "" {
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.Open(env.DB_POSTGRESQL_READ1_DSN)},
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			logger.GetLogger().
				WithField("error_code", "9fab4b2e-1d70-4a4e-928a-5e81c7ee06de").
				Errorf("unable to setup read replica: %v", err)
			return nil, nil, err
		}
	}
	if env.DB_AUTO_MIGRATE {
		if err := NewDBMigrator(db).Migrate(); err != nil {
			logger.GetLogger().
				WithField("error_code", "75333e43-8157-4f0a-8e34-aa34e6e7c285").
				Errorf("failed to migrate schema: %v", err)
			return nil, nil, err
		}
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// Open opens a gorm connection with the naming strategy every schema relies on.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}
