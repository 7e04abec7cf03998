package main

import (
	"github.com/sirupsen/logrus"

	"github.com/pageza/recetario/backend/config"
	"github.com/pageza/recetario/backend/internal/database"
	"github.com/pageza/recetario/backend/internal/logging"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logging.Setup(cfg.LogLevel, config.IsProduction())

	if cfg.StoreDriver == config.StoreDriverMemory {
		logrus.Info("Memory store has no schema, nothing to migrate")
		return
	}

	db, err := database.New(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.RunMigrations(db); err != nil {
		logrus.WithError(err).Fatal("Migration failed")
	}
	logrus.WithField("driver", cfg.StoreDriver).Info("All migrations applied successfully")
}
