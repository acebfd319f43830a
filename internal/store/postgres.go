package store

import (
	"github.com/omidrahimi/hawala_system/configs"
	"github.com/omidrahimi/hawala_system/internal/logger"
	"github.com/omidrahimi/hawala_system/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func NewDB() {
	dsn := configs.AppConfig.DB.DSN
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: false,
	}), &gorm.Config{})
	if err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}
	DB = db
	logger.Log.Info("connected to the database")
}

func DBMigrate() {
	DB.AutoMigrate(&models.Admin{}, &models.Agent{}, &models.Balance{}, &models.Transaction{}, &models.TopUpRequest{})
	logger.Log.Info("migrations loaded")
}
