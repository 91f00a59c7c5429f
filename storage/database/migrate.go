package database

import (
	"VolunteerHub/internal/model"
	"VolunteerHub/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate creates or updates all tables.
func Migrate() error {
	db := DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	logger.Logger.Info("Starting database migration...")

	err := db.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Shift{},
		&model.Signup{},
		&model.NotificationTask{},
	)

	if err != nil {
		logger.Logger.Error("Database migration failed", zap.Error(err))
		return err
	}

	logger.Logger.Info("Database migration completed successfully")
	return nil
}
