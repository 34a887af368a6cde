package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/campus-chat/internal/entity"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitPostgres(dsn string) (*gorm.DB, *sql.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		log.Error().Msg(fmt.Errorf("failed to connect to database: %w", err).Error())
		return nil, nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Error().Msg(fmt.Errorf("failed to get underlying sql.DB: %w", err).Error())
		return nil, nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxIdleTime(300 * time.Second)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	// Rooms and the social graph live here; messages live in Mongo.
	if err := db.AutoMigrate(
		&entity.Room{},
		&entity.GroupRoom{},
		&entity.GroupMember{},
		&entity.User{},
		&entity.Friendship{},
	); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Info().Msg("Postgres database connection established successfully")
	return db, sqlDB, nil
}
