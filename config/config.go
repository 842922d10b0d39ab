package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	HTTPPort    string `envconfig:"HTTP_PORT"    default:":8080"`
	LogLevel    string `envconfig:"LOG_LEVEL"    default:"info"`
	UploadDir   string `envconfig:"UPLOAD_DIR"   default:"uploaded"` // upload root, also the static URL prefix
	// PaginationRawOffset makes list queries offset by the raw page number
	// instead of page*limit, matching the historical behavior.
	PaginationRawOffset bool `envconfig:"PAGINATION_RAW_OFFSET" default:"false"`
}

var (
	config Config
	once   sync.Once
)

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		err = envconfig.Process("", &config)
		if err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}

		logger.Infof("Configuration loaded: HTTP Port=%s, LogLevel=%s, UploadDir=%s", config.HTTPPort, config.LogLevel, config.UploadDir)
		if config.DatabaseURL != "" {
			logger.Info("Configuration loaded: DatabaseURL is set")
		} else {
			logger.Fatal("Configuration error: DATABASE_URL is not set")
		}
	})
	return &config
}

func GetConfig() *Config {
	if config.HTTPPort == "" || config.DatabaseURL == "" {
		log.Fatal("Configuration not loaded. Call LoadConfig first.")
	}
	return &config
}
