// Package mcconfig loads ambient engine configuration (checkpoint
// directories, log verbosity) from .env files and environment variables,
// adapted from the teacher's application-level config loader down to the
// settings a simulation library actually needs.
package mcconfig

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds process-wide defaults for running simulations. Individual
// engines accept their own explicit parameters; Config only supplies
// fallbacks for what would otherwise be hardcoded paths or flags.
type Config struct {
	// CheckpointDir is the default directory dump files and checkpoint
	// archives are written to when a caller does not supply an explicit
	// path.
	CheckpointDir string
	// LogDir enables a rotating file log sink under this directory when
	// non-empty.
	LogDir string
	// Verbose enables Debug-level logging.
	Verbose bool
}

// Load reads configuration from a ".env" file (if present, first in the
// working directory, matching the teacher's development-mode fallback)
// and then from the environment, which always takes precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, relying on environment variables")
	}

	dataPath := getEnv("MCSIM_DATA_PATH", ".")
	checkpointDir := filepath.Join(dataPath, "checkpoints")
	logDir := filepath.Join(dataPath, "logs")

	cfg := &Config{
		CheckpointDir: checkpointDir,
		LogDir:        logDir,
		Verbose:       getEnvBool("MCSIM_VERBOSE", false),
	}

	if err := os.MkdirAll(cfg.CheckpointDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", cfg.CheckpointDir).Msg("failed to create checkpoint directory")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
