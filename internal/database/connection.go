package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/config"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the SQL database selected by visits.driver.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.IsRelease() {
		logLevel = logger.Silent
	}
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	var dialector gorm.Dialector
	switch cfg.Visits.Driver {
	case "postgres":
		if cfg.Database.URL != "" {
			logrus.Info("connecting to postgres using DATABASE_URL")
		} else {
			logrus.WithFields(logrus.Fields{
				"host":   cfg.Database.Host,
				"port":   cfg.Database.Port,
				"dbname": cfg.Database.DBName,
			}).Info("connecting to postgres")
		}
		dialector = postgres.Open(cfg.GetDSN())
	case "sqlite":
		if dir := filepath.Dir(cfg.Database.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		logrus.WithField("path", cfg.Database.SQLitePath).Info("opening sqlite database")
		dialector = sqlite.Open(cfg.Database.SQLitePath)
	default:
		return nil, fmt.Errorf("visits driver %q does not use a database", cfg.Visits.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.Visits.Driver == "sqlite" {
		// one writer at a time; sqlite serializes anyway
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.VisitDay{},
		&models.VisitPath{},
		&models.VisitReferrer{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	logrus.Info("database migration complete")
	return nil
}
