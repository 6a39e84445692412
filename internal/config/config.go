package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	// Seed makes runs reproducible. Empty means time-seeded.
	Seed string
	// Now is the simulation clock in unix seconds.
	Now int64

	DataPath     string
	OutputDir    string
	OutputFormat string

	SimulationName string
	NumUsers       int
	NumEvents      int
	NumDays        int

	// StreamRate is the default events per second of the stream command.
	StreamRate float64
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. The executable's directory wins over the working directory.
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	return FromEnv(exeDir), nil
}

// FromEnv resolves the configuration from the process environment. baseDir is
// the fallback data path.
func FromEnv(baseDir string) *AppConfig {
	dataPath := getEnv("DATA_PATH", baseDir)
	if dataPath == "" {
		dataPath = "."
	}

	now := getEnvInt64("NOW", 0)
	if now <= 0 {
		now = time.Now().Unix()
	}

	return &AppConfig{
		Seed:           getEnv("SEED", ""),
		Now:            now,
		DataPath:       dataPath,
		OutputDir:      getEnv("OUTPUT_DIR", filepath.Join(dataPath, "data")),
		OutputFormat:   getEnv("OUTPUT_FORMAT", "jsonl"),
		SimulationName: getEnv("SIMULATION_NAME", ""),
		NumUsers:       getEnvInt("NUM_USERS", 0),
		NumEvents:      getEnvInt("NUM_EVENTS", 0),
		NumDays:        getEnvInt("NUM_DAYS", 0),
		StreamRate:     getEnvFloat("STREAM_RATE", 10),
	}
}

// getEnv treats an empty value as unset.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-integer environment value")
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-integer environment value")
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return fallback
}
