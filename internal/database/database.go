package database

import (
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/recetario/backend/config"
	"github.com/pageza/recetario/backend/internal/logging"
	"github.com/pageza/recetario/backend/internal/store"
	"github.com/pageza/recetario/backend/internal/store/gormstore"
	"github.com/pageza/recetario/backend/internal/store/memory"
)

// New opens the gorm database for the configured driver.
func New(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.New(logrus.StandardLogger(), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logging.GormLevel(),
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		// lib/pq serves as the database/sql driver underneath gorm
		dialector = postgres.New(postgres.Config{
			DriverName: "postgres",
			DSN:        cfg.DSN(),
		})
		logrus.WithFields(logrus.Fields{
			"host": cfg.DBHost,
			"port": cfg.DBPort,
			"user": cfg.DBUser,
		}).Info("Connecting to database")
	case config.StoreDriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
		logrus.WithField("path", cfg.SQLitePath).Info("Opening sqlite database")
	default:
		return nil, fmt.Errorf("driver %q has no database", cfg.StoreDriver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.StoreDriver == config.StoreDriverSQLite {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	logrus.Info("Successfully connected to database")
	return db, nil
}

// OpenStore returns the document store for the configured driver, migrated
// and ready to serve.
func OpenStore(cfg *config.Config) (store.Store, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logrus.Warn("Using in-memory store, data is lost on exit")
		return memory.New(), nil
	}
	db, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return gormstore.New(db), nil
}
