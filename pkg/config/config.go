// Package config loads the decoder's alphabet/scale/round tables and run
// parameters from YAML plus environment overrides, the way the teacher's
// config package loads config.yaml (same Viper-backed Load/validate split).
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Parser  ParserConfig  `mapstructure:"parser"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Audit   AuditConfig   `mapstructure:"audit"`
	Web     WebConfig     `mapstructure:"web"`
}

// ParserConfig is spec.md §6's configuration surface: the ardu_format
// alphabet, the scale factors, and the round-field set.
type ParserConfig struct {
	ArduToStruct map[string]string  `mapstructure:"ardu_to_struct"`
	ScaleFactors map[string]float64 `mapstructure:"scale_factors"`
	RoundFields  []string           `mapstructure:"round_fields"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// AuditConfig holds the ambient decode-run ledger's configuration.
type AuditConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// WebConfig holds the optional status/control web server's configuration.
type WebConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// Load loads configuration from file and environment variables.
func Load(configFile string) (*Config, error) {
	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/adlog-decoder")
	}

	viper.SetEnvPrefix("ADLOG")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file is fine; defaults apply.
		} else if os.IsNotExist(err) {
			// Explicitly specified file that doesn't exist is also fine.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values, matching
// original_source's config.parser.* defaults (spec.md §6's "typical"
// alphabet/scale entries).
func setDefaults() {
	viper.SetDefault("parser.ardu_to_struct", map[string]string{
		"b": "int8", "B": "uint8",
		"h": "int16", "H": "uint16",
		"i": "int32", "I": "uint32",
		"q": "int64", "Q": "uint64",
		"f": "float32", "d": "float64",
		"n": "string4", "N": "string16", "Z": "string64",
		"c": "int16", "C": "uint16",
		"e": "int32", "E": "uint32",
		"L": "int32",
	})
	viper.SetDefault("parser.scale_factors", map[string]float64{
		"c": 0.01, "C": 0.01, "e": 0.01, "E": 0.01, "L": 1.0e-7,
	})
	viper.SetDefault("parser.round_fields", []string{"Lat", "Lng", "Alt", "Alt2", "Spd", "VZ"})

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.port", 9090)
	viper.SetDefault("metrics.path", "/metrics")

	viper.SetDefault("audit.enabled", false)
	viper.SetDefault("audit.path", "data/adlog-decoder.db")
	viper.SetDefault("audit.retention_days", 30)

	viper.SetDefault("web.enabled", false)
	viper.SetDefault("web.host", "0.0.0.0")
	viper.SetDefault("web.port", 8090)
}
