package config

import (
	"os"
	"strconv"

	"ecocast/domain/core"
	"ecocast/domain/scenario"
	"ecocast/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Paths     PathConfig
	Reconcile ReconcileConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	Host    string
	Port    int
	User    string
	Name    string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// PathConfig holds the input/output tables for batch runs
type PathConfig struct {
	HistoryFile  string
	ForecastFile string
	OutputFile   string
}

// ReconcileConfig holds the tunable coefficients of the reconciliation
// engine. Values land on top of scenario.DefaultConfig; the scenario
// multiplier tables themselves are code-level configuration, validated in
// the domain package.
type ReconcileConfig struct {
	BaselineWindowYears float64
	GrowthRate          float64
	GrowthModel         string
	SmoothWindow        int
	AdaptiveSmoothing   bool
	MaxRetries          int
	ReferenceHorizon    float64 // 0 = midpoint of the forecast grid
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}
	config.Database = *dbConfig

	config.Server = *loadServerConfig()
	config.Paths = *loadPathConfig()
	config.Reconcile = *loadReconcileConfig()

	if _, err := config.ScenarioConfig(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// LoadBatch loads configuration for CLI runs, where no database is needed
func LoadBatch() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Paths:     *loadPathConfig(),
		Reconcile: *loadReconcileConfig(),
	}
	if _, err := config.ScenarioConfig(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// ScenarioConfig materializes the validated engine configuration:
// the default scenario profiles and correction table, with the ambient
// coefficients overridden from the environment.
func (c *Config) ScenarioConfig() (*scenario.Config, error) {
	base := scenario.DefaultConfig()
	overrides := *base
	overrides.BaselineWindowYears = c.Reconcile.BaselineWindowYears
	overrides.UncertaintyGrowthRate = c.Reconcile.GrowthRate
	overrides.Growth = scenario.GrowthModel(c.Reconcile.GrowthModel)
	overrides.SmoothWindow = c.Reconcile.SmoothWindow
	overrides.AdaptiveSmoothing = c.Reconcile.AdaptiveSmoothing
	overrides.MaxCorrectionRetries = c.Reconcile.MaxRetries
	overrides.ReferenceHorizon = core.Year(c.Reconcile.ReferenceHorizon)
	return scenario.NewConfig(overrides)
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	return &DatabaseConfig{
		URL:     url,
		Host:    getEnvOrDefault("DB_HOST", ""),
		Port:    getEnvIntOrDefault("DB_PORT", 5432),
		User:    getEnvOrDefault("DB_USER", ""),
		Name:    getEnvOrDefault("DB_NAME", ""),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}
}

func loadPathConfig() *PathConfig {
	return &PathConfig{
		HistoryFile:  getEnvOrDefault("HISTORY_FILE", ""),
		ForecastFile: getEnvOrDefault("FORECAST_FILE", ""),
		OutputFile:   getEnvOrDefault("OUTPUT_FILE", "projections.xlsx"),
	}
}

func loadReconcileConfig() *ReconcileConfig {
	return &ReconcileConfig{
		BaselineWindowYears: getEnvFloatOrDefault("BASELINE_WINDOW_YEARS", 2.0),
		GrowthRate:          getEnvFloatOrDefault("UNCERTAINTY_GROWTH_RATE", 0.4),
		GrowthModel:         getEnvOrDefault("UNCERTAINTY_GROWTH_MODEL", "linear"),
		SmoothWindow:        getEnvIntOrDefault("SMOOTH_WINDOW", 5),
		AdaptiveSmoothing:   getEnvBoolOrDefault("ADAPTIVE_SMOOTHING", true),
		MaxRetries:          getEnvIntOrDefault("MAX_CORRECTION_RETRIES", 2),
		ReferenceHorizon:    getEnvFloatOrDefault("REFERENCE_HORIZON", 0),
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
