package config

import (
	"os"
	"strconv"

	"clustereval/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Evaluation EvaluationConfig
	Database   DatabaseConfig
	Server     ServerConfig
}

// EvaluationConfig holds the run parameters of an evaluation
type EvaluationConfig struct {
	Threshold     int
	PhenotypePath string
	ClusterPath   string
	ResultsDir    string
}

// DatabaseConfig holds the optional run-history database settings
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// Load reads configuration from environment variables. Threshold validity is
// checked where an evaluation actually starts, since the server accepts it
// per request.
func Load() (*Config, error) {
	cfg := &Config{
		Evaluation: EvaluationConfig{
			PhenotypePath: os.Getenv("PHENOTYPE_DATA_PATH"),
			ClusterPath:   os.Getenv("CLUSTER_MAPPING_PATH"),
			ResultsDir:    getEnvOrDefault("RESULTS_DIR", "results"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
	}

	if raw := os.Getenv("THRESHOLD"); raw != "" {
		threshold, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.ConfigInvalid("THRESHOLD must be an integer")
		}
		cfg.Evaluation.Threshold = threshold
	}

	return cfg, nil
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
