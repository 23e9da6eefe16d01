package db

import (
	"fmt"

	"github.com/velvetdesk/agencyops-backend/internal/logger"
	"github.com/velvetdesk/agencyops-backend/internal/types"
	"github.com/velvetdesk/agencyops-backend/internal/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type PostgresService interface {
	DB() *gorm.DB
	Close() error
	AutoMigrateAll() error
}

type postgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (PostgresService, error) {
	host := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	port := utils.GetEnv("POSTGRES_PORT", "5432", log)
	user := utils.GetEnv("POSTGRES_USER", "postgres", log)
	password := utils.GetEnv("POSTGRES_PASSWORD", "postgres", log)
	dbname := utils.GetEnv("POSTGRES_DB", "agencyops", log)
	sslmode := utils.GetEnv("POSTGRES_SSLMODE", "disable", log)

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	log.Info("connected to postgres", "host", host, "db", dbname)
	return &postgresService{db: gormDB, log: log}, nil
}

func (s *postgresService) DB() *gorm.DB {
	return s.db
}

func (s *postgresService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *postgresService) AutoMigrateAll() error {
	return s.db.AutoMigrate(
		&types.Creator{},
		&types.Fan{},
		&types.FanFact{},
		&types.FanPreference{},
		&types.FanLifecycleEvent{},
		&types.FanTransaction{},
		&types.HintCallLog{},
		&types.Chatter{},
	)
}
