package config

import (
	"errors"
	"sync"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	AppPort             int    `mapstructure:"APP_PORT"`
	BcryptCost          int    `mapstructure:"BCRYPT_COST"`
	AuthRatePerMin      int    `mapstructure:"AUTH_RATE_PER_MIN"`
	LogLevel            string `mapstructure:"LOG_LEVEL"`
	LogFormat           string `mapstructure:"LOG_FORMAT"`
	MongoURI            string `mapstructure:"MONGO_URI"`
	MongoDBName         string `mapstructure:"MONGO_DB_NAME"`
	AccessTokenSecret   string `mapstructure:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret  string `mapstructure:"REFRESH_TOKEN_SECRET"`
	AccessTokenMinutes  int    `mapstructure:"ACCESS_TOKEN_MINUTES"`
	RefreshTokenDays    int    `mapstructure:"REFRESH_TOKEN_DAYS"`
	CookieSecure        bool   `mapstructure:"COOKIE_SECURE"`
	MinioEndpoint       string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey      string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey      string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket         string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL         bool   `mapstructure:"MINIO_USE_SSL"`
	MediaUploadTimeout  int    `mapstructure:"MEDIA_UPLOAD_TIMEOUT_SEC"`
	RouteMetricsEnabled bool   `mapstructure:"ROUTE_METRICS_ENABLED"`
	RequestLogging      bool   `mapstructure:"REQUEST_LOGGING_ENABLED"`
}

var (
	cachedConfig *Config
	configMutex  sync.RWMutex
)

// Load loads configuration from environment variables and .env file.
// It caches the result for subsequent calls.
func Load() (Config, error) {
	configMutex.RLock()
	if cachedConfig != nil {
		defer configMutex.RUnlock()
		return *cachedConfig, nil
	}
	configMutex.RUnlock()

	configMutex.Lock()
	defer configMutex.Unlock()

	// Double-check in case another goroutine loaded it while we waited for the lock
	if cachedConfig != nil {
		return *cachedConfig, nil
	}

	v := viper.New()

	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("AUTH_RATE_PER_MIN", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("MONGO_URI", "mongodb://mongo:27017")
	v.SetDefault("MONGO_DB_NAME", "vidpulse")
	v.SetDefault("ACCESS_TOKEN_SECRET", "this-is-a-default-access-secret-with-32-plus-chars")
	v.SetDefault("REFRESH_TOKEN_SECRET", "this-is-a-default-refresh-secret-with-32-plus-chars")
	v.SetDefault("ACCESS_TOKEN_MINUTES", 15)
	v.SetDefault("REFRESH_TOKEN_DAYS", 10)
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("MINIO_ENDPOINT", "minio:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_BUCKET", "vidpulse-media")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MEDIA_UPLOAD_TIMEOUT_SEC", 30)
	v.SetDefault("ROUTE_METRICS_ENABLED", true)
	v.SetDefault("REQUEST_LOGGING_ENABLED", false)

	// Configure Viper to read from .env file (if present)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	// Try to read .env file (it's okay if it doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	// Override with OS environment variables
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	cachedConfig = &cfg

	return cfg, nil
}

// ResetCache clears the cached configuration (for testing purposes)
func ResetCache() {
	configMutex.Lock()
	defer configMutex.Unlock()
	cachedConfig = nil
}

// Validate checks if required configuration fields are properly set
func (c Config) Validate() error {
	if c.AppPort <= 0 {
		return errors.New("APP_PORT must be greater than 0")
	}
	if c.BcryptCost < 10 || c.BcryptCost > 16 {
		return errors.New("BCRYPT_COST must be between 10 and 16")
	}
	if c.AuthRatePerMin < 1 {
		return errors.New("AUTH_RATE_PER_MIN must be greater than or equal to 1")
	}
	if c.LogLevel == "" {
		return errors.New("LOG_LEVEL cannot be empty")
	}
	if c.LogFormat == "" {
		return errors.New("LOG_FORMAT cannot be empty")
	}
	if c.MongoURI == "" {
		return errors.New("MONGO_URI cannot be empty")
	}
	if c.MongoDBName == "" {
		return errors.New("MONGO_DB_NAME cannot be empty")
	}
	if len(c.AccessTokenSecret) < 32 {
		return errors.New("ACCESS_TOKEN_SECRET must be at least 32 characters")
	}
	if len(c.RefreshTokenSecret) < 32 {
		return errors.New("REFRESH_TOKEN_SECRET must be at least 32 characters")
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if c.AccessTokenMinutes <= 0 {
		return errors.New("ACCESS_TOKEN_MINUTES must be greater than 0")
	}
	if c.RefreshTokenDays <= 0 {
		return errors.New("REFRESH_TOKEN_DAYS must be greater than 0")
	}
	if c.MinioEndpoint == "" {
		return errors.New("MINIO_ENDPOINT cannot be empty")
	}
	if c.MinioBucket == "" {
		return errors.New("MINIO_BUCKET cannot be empty")
	}
	if c.MediaUploadTimeout <= 0 {
		return errors.New("MEDIA_UPLOAD_TIMEOUT_SEC must be greater than 0")
	}
	return nil
}
