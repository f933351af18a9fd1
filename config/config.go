package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// MongoDB (attempt journal).
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisHandoffDB int    `mapstructure:"REDIS_HANDOFF_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Core backend API (bookings, orders, verification, payment detail).
	CoreAPIBaseURL   string `mapstructure:"CORE_API_BASE_URL"`
	CoreAPIKey       string `mapstructure:"CORE_API_KEY"`
	CoreAPITimeoutMS int    `mapstructure:"CORE_API_TIMEOUT_MS"`

	// Payment gateway checkout widget.
	GatewayScriptURL   string `mapstructure:"GATEWAY_SCRIPT_URL"`
	GatewayDisplayName string `mapstructure:"GATEWAY_DISPLAY_NAME"`
	GatewayThemeColor  string `mapstructure:"GATEWAY_THEME_COLOR"`

	// Fee policy.
	Currency              string  `mapstructure:"CURRENCY"`
	TaxRate               float64 `mapstructure:"TAX_RATE"`
	AppointmentRegFee     float64 `mapstructure:"APPOINTMENT_REG_FEE"`
	LabTestRegFee         float64 `mapstructure:"LAB_TEST_REG_FEE"`
	ConfirmationReturnURL string  `mapstructure:"CONFIRMATION_RETURN_URL"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "medibook")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_HANDOFF_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("CORE_API_BASE_URL", "http://localhost:9090")
	viper.SetDefault("CORE_API_TIMEOUT_MS", 8000)
	viper.SetDefault("GATEWAY_SCRIPT_URL", "https://checkout.razorpay.com/v1/checkout.js")
	viper.SetDefault("GATEWAY_DISPLAY_NAME", "MediBook")
	viper.SetDefault("GATEWAY_THEME_COLOR", "#0f766e")
	viper.SetDefault("CURRENCY", "INR")
	viper.SetDefault("TAX_RATE", 0.18)
	viper.SetDefault("APPOINTMENT_REG_FEE", 350)
	viper.SetDefault("LAB_TEST_REG_FEE", 50)
	viper.SetDefault("CONFIRMATION_RETURN_URL", "/checkout/confirmation")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
