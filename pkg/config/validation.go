package config

import "fmt"

// validate validates the configuration.
func validate(cfg *Config) error {
	if cfg.Web.Enabled {
		if cfg.Web.Port <= 0 || cfg.Web.Port > 65535 {
			return fmt.Errorf("web.port must be between 1 and 65535")
		}
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port <= 0 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be between 1 and 65535")
		}
		if cfg.Metrics.Path == "" {
			return fmt.Errorf("metrics.path is required when metrics is enabled")
		}
	}

	if cfg.Audit.Enabled {
		if cfg.Audit.Path == "" {
			return fmt.Errorf("audit.path is required when audit is enabled")
		}
		if cfg.Audit.RetentionDays < 0 {
			return fmt.Errorf("audit.retention_days must not be negative")
		}
	}

	for char, code := range cfg.Parser.ArduToStruct {
		if len(char) != 1 {
			return fmt.Errorf("parser.ardu_to_struct key %q must be a single character", char)
		}
		if code == "" {
			return fmt.Errorf("parser.ardu_to_struct[%q] must name a primitive code", char)
		}
	}

	for char := range cfg.Parser.ScaleFactors {
		if len(char) != 1 {
			return fmt.Errorf("parser.scale_factors key %q must be a single character", char)
		}
	}

	return nil
}
