package configs

import (
	"fmt"
	"strings"

	"traffic-rollup/internal/shared/validators"

	"github.com/spf13/viper"
)

const envPrefix = "TRAFFIC_ROLLUP"

// LoadConfig reads configuration from file, applies TRAFFIC_ROLLUP_* environment overrides and validates it.
var LoadConfig = func(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	setDefaults(v)

	// TRAFFIC_ROLLUP_SERVER_PORT overrides server.port
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validators.New()
	if err := validate.Struct(&cfg); err != nil {
		var validationErrors []string
		if ve, ok := err.(validators.ValidationErrors); ok {
			for _, e := range ve {
				validationErrors = append(validationErrors, formatValidationError(e))
			}
		}
		return nil, fmt.Errorf("config validation failed: %s", strings.Join(validationErrors, ", "))
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_header_timeout", 5)
	v.SetDefault("server.read_timeout", 300)
	v.SetDefault("server.write_timeout", 300)
	v.SetDefault("server.idle_timeout", 60)
	v.SetDefault("server.max_body_bytes", 512*1024*1024)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("aggregation.resolutions", []string{"day", "hour", "minute", "second"})
	v.SetDefault("aggregation.shards", 0)
	v.SetDefault("aggregation.queue_buffer", 1024)
	v.SetDefault("aggregation.slow_threshold_seconds", 3.0)
	v.SetDefault("aggregation.quantile_compression", 100)
	v.SetDefault("aggregation.hll_precision", 14)
	v.SetDefault("aggregation.reservoir_capacity", 1000)
	v.SetDefault("aggregation.max_request_span_seconds", 86400)
	v.SetDefault("aggregation.max_user_agent_families", 32)
	v.SetDefault("aggregation.max_line_bytes", 64*1024)

	v.SetDefault("anomaly.sigma_multiplier", 2.0)
	v.SetDefault("anomaly.min_baseline_windows", 3)
	v.SetDefault("anomaly.baseline_windows", 20)

	v.SetDefault("export.sink", "file")
}

// formatValidationError formats a single validation error into a readable string.
func formatValidationError(e validators.FieldError) string {
	field := e.Field()
	tag := e.Tag()

	// "Config.Server.Port" -> "server.port"
	if e.StructNamespace() != "" {
		parts := strings.Split(e.StructNamespace(), ".")
		if len(parts) >= 2 {
			field = strings.ToLower(strings.Join(parts[1:], "."))
		}
	}

	switch tag {
	case "required":
		return fmt.Sprintf("%s (required)", field)
	case "min", "max", "gt", "gte", "lte", "oneof", "required_if", "gtefield":
		return fmt.Sprintf("%s (%s=%s)", field, tag, e.Param())
	default:
		return fmt.Sprintf("%s (%s)", field, tag)
	}
}
