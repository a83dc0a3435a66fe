package infra

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tnqbao/gau-filestore-service/config"
	"github.com/tnqbao/gau-filestore-service/repository"
)

type DatabaseClient struct {
	DB     *gorm.DB
	Driver string
}

func InitDatabaseClient(cfg *config.EnvConfig) *DatabaseClient {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.SQLitePath)
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.Postgres.HOST, cfg.Postgres.Username, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.Port)
		dialector = postgres.Open(dsn)
	default:
		panic("Unsupported DB_DRIVER: " + cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to %s: %v", cfg.Database.Driver, err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(fmt.Sprintf("Failed to get database handle: %v", err))
	}
	if cfg.Database.Driver == "sqlite" {
		// single writer keeps sqlite from returning SQLITE_BUSY under concurrent stores
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := repository.Migrate(db); err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}

	log.Println("Connected to database using driver:", cfg.Database.Driver)

	return &DatabaseClient{DB: db, Driver: cfg.Database.Driver}
}

func (d *DatabaseClient) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
