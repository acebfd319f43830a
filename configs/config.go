package configs

import (
	"errors"

	"github.com/omidrahimi/hawala_system/internal/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	JWT struct {
		SECRET string `mapstructure:"secret"`
	} `mapstructure:"jwt"`
	Ledger struct {
		CommissionRate float64  `mapstructure:"commission-rate"`
		Currencies     []string `mapstructure:"currencies"`
	} `mapstructure:"ledger"`
	Admin struct {
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
	} `mapstructure:"admin"`
	Notify struct {
		WebhookURL string `mapstructure:"webhook-url"`
	} `mapstructure:"notify"`
}

var AppConfig Config

func LoadConfig() {
	viper.AddConfigPath("./configs")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("ledger.commission-rate", 0.01)
	viper.SetDefault("ledger.currencies", []string{"AFN", "USD"})

	viper.AutomaticEnv()

	var fileLookupError viper.ConfigFileNotFoundError
	if err := viper.ReadInConfig(); err != nil {
		if errors.As(err, &fileLookupError) {
			logger.Log.Fatal("config file not found", zap.Error(err))
		}
		logger.Log.Fatal("failed to read config", zap.Error(err))
	}

	viper.Unmarshal(&AppConfig)
}
