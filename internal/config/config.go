package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds process configuration, read from the environment with an
// optional .env file.
type Config struct {
	// DataDir is the directory holding durable storage (database snapshot
	// and the cleared-flag sentinel).
	DataDir string
	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := os.Getenv("PERA_DATA_DIR")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config: resolve home dir: %w", err)
		}
		dataDir = filepath.Join(home, ".pera")
	}

	logLevel := os.Getenv("PERA_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		DataDir:  dataDir,
		LogLevel: logLevel,
	}, nil
}
