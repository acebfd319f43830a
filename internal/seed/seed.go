package seed

import (
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/omidrahimi/hawala_system/configs"
	"github.com/omidrahimi/hawala_system/internal/logger"
	"github.com/omidrahimi/hawala_system/internal/models"
	"github.com/omidrahimi/hawala_system/internal/store"
)

// Run bootstraps the first administrator from config. It does nothing when
// any admin already exists or when no bootstrap credentials are configured.
func Run() {
	username := configs.AppConfig.Admin.Username
	password := configs.AppConfig.Admin.Password
	if username == "" || password == "" {
		logger.Log.Info("no admin bootstrap credentials configured, skipping seed")
		return
	}

	db := store.DB
	var count int64
	if err := db.Model(&models.Admin{}).Count(&count).Error; err != nil {
		logger.Log.Fatal("seed check failed", zap.Error(err))
	}
	if count > 0 {
		logger.Log.Info("admin already present, skipping seed")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Fatal("failed to hash admin password", zap.Error(err))
	}

	admin := models.Admin{Username: username, Password: string(hash), IsActive: true}
	if err := db.Create(&admin).Error; err != nil {
		logger.Log.Fatal("seed failed", zap.Error(err))
	}
	logger.Log.Info("seeded default admin", zap.String("username", username))
}
