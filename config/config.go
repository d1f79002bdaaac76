package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	StoreDriver       string `mapstructure:"STORE_DRIVER"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	Timezone          string `mapstructure:"TIMEZONE"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Booking rules.
	PlatformFeePercent       float64 `mapstructure:"PLATFORM_FEE_PERCENT"`
	CancellationCutoffHours  int     `mapstructure:"CANCELLATION_CUTOFF_HOURS"`
	PaymentTimeoutMinutes    int     `mapstructure:"PAYMENT_TIMEOUT_MINUTES"`
	SchedulerIntervalSeconds int     `mapstructure:"SCHEDULER_INTERVAL_SECONDS"`
	SlotLengthMinutes        int     `mapstructure:"SLOT_LENGTH_MINUTES"`

	// Payments.
	PaymentKeySecret string `mapstructure:"PAYMENT_KEY_SECRET"`
	StripeKey        string `mapstructure:"STRIPE_KEY"`
	PaymentCurrency  string `mapstructure:"PAYMENT_CURRENCY"`

	// Outbound notifications.
	SMTPHost                string `mapstructure:"SMTP_HOST"`
	SMTPPort                int    `mapstructure:"SMTP_PORT"`
	SMTPUser                string `mapstructure:"SMTP_USER"`
	SMTPPass                string `mapstructure:"SMTP_PASS"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Identity records loaded into the in-memory store. Only read from config.yaml.
	SeedUsers []SeedUser `mapstructure:"SEED_USERS"`
}

// SeedUser is one identity record for local runs without the identity service.
type SeedUser struct {
	ID       string `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	Email    string `mapstructure:"email"`
	Role     string `mapstructure:"role"`
	Approved bool   `mapstructure:"approved"`
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
	viper.SetDefault("TIMEZONE", "UTC")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "prepbook")
	viper.SetDefault("STORE_DRIVER", "mongo")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("PLATFORM_FEE_PERCENT", 10)
	viper.SetDefault("CANCELLATION_CUTOFF_HOURS", 24)
	viper.SetDefault("PAYMENT_TIMEOUT_MINUTES", 10)
	viper.SetDefault("SCHEDULER_INTERVAL_SECONDS", 60)
	viper.SetDefault("SLOT_LENGTH_MINUTES", 60)
	viper.SetDefault("PAYMENT_KEY_SECRET", "")
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("PAYMENT_CURRENCY", "inr")
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USER", "")
	viper.SetDefault("SMTP_PASS", "")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")

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

// UsesMemoryStore reports whether repositories should run in-process instead of on MongoDB.
func UsesMemoryStore() bool {
	return AppConfig.StoreDriver == "memory"
}
