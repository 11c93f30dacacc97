// Package db wires the GORM/Postgres connection shared by the Job Store
// repositories, following the connect-then-automigrate shape used
// throughout this codebase's data layer.
package db

import (
	"fmt"

	"github.com/rakshabesafe/ppttovideo/internal/domain"
	"github.com/rakshabesafe/ppttovideo/internal/platform/config"
	"github.com/rakshabesafe/ppttovideo/internal/platform/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Service wraps the shared *gorm.DB handle plus the logger used to report
// connection and migration issues.
type Service struct {
	DB  *gorm.DB
	log *logger.Logger
}

// Open connects to Postgres using cfg.URL, enables the uuid-ossp extension
// (harmless if the engine's IDs are plain integers, kept for parity with
// any deployment that layers UUID columns on top) and returns a Service
// ready for AutoMigrateAll.
func Open(cfg config.Database, log *logger.Logger) (*Service, error) {
	gdb, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}
	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Warn("db: could not ensure uuid-ossp extension", "error", err)
	}
	return &Service{DB: gdb, log: log}, nil
}

// AutoMigrateAll migrates every domain type the engine persists.
func (s *Service) AutoMigrateAll() error {
	return s.DB.AutoMigrate(
		&domain.User{},
		&domain.VoiceReference{},
		&domain.Job{},
		&domain.Task{},
	)
}
