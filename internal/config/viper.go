// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"

	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BANKIMPORT_LOG_LEVEL.
const EnvPrefix = "BANKIMPORT"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Import struct {
		MaxFileSize     int64  `mapstructure:"max_file_size" yaml:"max_file_size"`
		DefaultEncoding string `mapstructure:"default_encoding" yaml:"default_encoding"`
		Tolerant        bool   `mapstructure:"tolerant" yaml:"tolerant"`
		AutoCategorize  bool   `mapstructure:"auto_categorize" yaml:"auto_categorize"`
	} `mapstructure:"import" yaml:"import"`

	Database struct {
		Path string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"database" yaml:"database"`

	Rules struct {
		Directory string `mapstructure:"directory" yaml:"directory"`
	} `mapstructure:"rules" yaml:"rules"`

	Categorization struct {
		TravelMileageBox int `mapstructure:"travel_mileage_box" yaml:"travel_mileage_box"`
	} `mapstructure:"categorization" yaml:"categorization"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Owner struct {
		ID string `mapstructure:"id" yaml:"id"`
	} `mapstructure:"owner" yaml:"owner"`
}

// InitializeConfig loads configuration from the standard locations.
func InitializeConfig() (*Config, error) {
	return Load("")
}

// Load initializes Viper configuration with hierarchical loading. A non-empty
// configFile replaces the search path and must exist.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.bank-import")
		v.AddConfigPath(".bank-import")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("import.max_file_size", models.MaxImportFileSize)
	v.SetDefault("import.default_encoding", "UTF-8")
	v.SetDefault("import.tolerant", false)
	v.SetDefault("import.auto_categorize", false)

	v.SetDefault("database.path", "bank-import.db")
	v.SetDefault("rules.directory", "")
	v.SetDefault("categorization.travel_mileage_box", 20)
	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("owner.id", "default")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	// The ceiling is fixed; configuration may only lower it.
	if config.Import.MaxFileSize <= 0 || config.Import.MaxFileSize > models.MaxImportFileSize {
		return fmt.Errorf("import.max_file_size must be between 1 and %d, got: %d",
			models.MaxImportFileSize, config.Import.MaxFileSize)
	}

	if strings.TrimSpace(config.Database.Path) == "" {
		return fmt.Errorf("database.path must not be empty")
	}

	if config.Categorization.TravelMileageBox < 1 {
		return fmt.Errorf("categorization.travel_mileage_box must be a positive box number, got: %d",
			config.Categorization.TravelMileageBox)
	}

	if len(config.CSV.Delimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if strings.TrimSpace(config.Owner.ID) == "" {
		return fmt.Errorf("owner.id must not be empty")
	}

	return nil
}

// NewLogger builds the application logger from the Config struct
func NewLogger(config *Config) logging.Logger {
	return logging.NewLogrusAdapter(config.Log.Level, config.Log.Format)
}
