package database

import (
	"fanbase_backend/internal/logger"
	"fanbase_backend/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate выполняет миграцию всех моделей
func AutoMigrate(db *gorm.DB) error {
	// uuid_generate_v4() для первичных ключей
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.Plan{},
		&models.Post{},
		&models.Comment{},
		&models.Transaction{},
		&models.Subscription{},
	)
	if err != nil {
		return err
	}

	logger.Info("✅ AutoMigrate успешно завершен")
	return nil
}
