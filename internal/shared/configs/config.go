package configs

// Config holds all configuration for the application.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Log         LogConfig         `mapstructure:"log" validate:"required"`
	FileStorage FileStorageConfig `mapstructure:"file_storage" validate:"required"`
	Aggregation AggregationConfig `mapstructure:"aggregation" validate:"required"`
	Anomaly     AnomalyConfig     `mapstructure:"anomaly" validate:"required"`
	Export      ExportConfig      `mapstructure:"export" validate:"required"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port              int   `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadHeaderTimeout int   `mapstructure:"read_header_timeout" validate:"required,min=1"` // seconds
	ReadTimeout       int   `mapstructure:"read_timeout" validate:"required,min=1"`        // seconds (headers+body)
	WriteTimeout      int   `mapstructure:"write_timeout" validate:"required,min=1"`       // seconds (response)
	IdleTimeout       int   `mapstructure:"idle_timeout" validate:"required,min=1"`        // seconds (keep-alive)
	MaxBodyBytes      int64 `mapstructure:"max_body_bytes" validate:"min=0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json console"`
	Output string `mapstructure:"output" validate:"omitempty,oneof=stdout stderr"`
}

// FileStorageConfig holds file storage configuration.
type FileStorageConfig struct {
	RootDir string `mapstructure:"root_dir" validate:"required"`
}

// AggregationConfig holds the windowing and sketch parameters of every run.
type AggregationConfig struct {
	Resolutions           []string `mapstructure:"resolutions" validate:"required,min=1,unique,dive,resolution"`
	Shards                int      `mapstructure:"shards" validate:"min=0,max=256"` // 0 = number of CPUs
	QueueBuffer           int      `mapstructure:"queue_buffer" validate:"min=0"`
	SlowThresholdSeconds  float64  `mapstructure:"slow_threshold_seconds" validate:"gt=0"`
	QuantileCompression   int      `mapstructure:"quantile_compression" validate:"min=10,max=1000"`
	HLLPrecision          int      `mapstructure:"hll_precision" validate:"min=4,max=18"`
	ReservoirCapacity     int      `mapstructure:"reservoir_capacity" validate:"min=1"`
	MaxRequestSpanSeconds int      `mapstructure:"max_request_span_seconds" validate:"min=1"`
	MaxUserAgentFamilies  int      `mapstructure:"max_user_agent_families" validate:"min=1"`
	MaxLineBytes          int      `mapstructure:"max_line_bytes" validate:"min=256"`
	Seed                  uint64   `mapstructure:"seed"`
}

// AnomalyConfig holds the detector thresholds.
type AnomalyConfig struct {
	SigmaMultiplier    float64 `mapstructure:"sigma_multiplier" validate:"gt=0"`
	MinBaselineWindows int     `mapstructure:"min_baseline_windows" validate:"min=1"`
	BaselineWindows    int     `mapstructure:"baseline_windows" validate:"min=1,gtefield=MinBaselineWindows"`
}

// ExportConfig selects where run results are written.
type ExportConfig struct {
	Sink       string `mapstructure:"sink" validate:"required,oneof=file sqlite"`
	SQLitePath string `mapstructure:"sqlite_path" validate:"required_if=Sink sqlite"`
}
