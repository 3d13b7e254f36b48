package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// VK OAuth
	VKClientID     string
	VKClientSecret string

	// Upstream scraping
	YandexBaseURL          string
	UpstreamTimeoutSeconds int // Timeout per outbound scrape request (default: 30)

	// Maintenance
	WatchCleanupDays int // Age of unfinished duplicate watch statuses before pruning (default: 30)

	// Server
	ServerPort string

	// Paths
	DatabaseFile string // $CONFIG_DIR/mewatch.db

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("YANDEX_BASE_URL", "https://yandex.ru/video/")
	viper.SetDefault("UPSTREAM_TIMEOUT_SECONDS", 30)
	viper.SetDefault("WATCH_CLEANUP_DAYS", 30)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")

	// NOW read CONFIG_DIR from viper (which has loaded .env file)
	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "mewatch")
	} else {
		// Convert relative path to absolute path
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		// VK OAuth
		VKClientID:     viper.GetString("VK_CLIENT_ID"),
		VKClientSecret: viper.GetString("VK_CLIENT_SECRET"),

		// Upstream scraping
		YandexBaseURL:          viper.GetString("YANDEX_BASE_URL"),
		UpstreamTimeoutSeconds: viper.GetInt("UPSTREAM_TIMEOUT_SECONDS"),

		// Maintenance
		WatchCleanupDays: viper.GetInt("WATCH_CLEANUP_DAYS"),

		// Server
		ServerPort: viper.GetString("SERVER_PORT"),

		// Paths
		DatabaseFile: filepath.Join(configDir, "mewatch.db"),

		// Logging
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	// Validate required fields
	if config.VKClientID == "" {
		return nil, fmt.Errorf("VK_CLIENT_ID is required")
	}
	if config.VKClientSecret == "" {
		return nil, fmt.Errorf("VK_CLIENT_SECRET is required")
	}

	return config, nil
}
