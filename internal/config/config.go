package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "ipedsprep/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Paths     PathsConfig     `yaml:"paths"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains the directories the pipeline reads from and writes to.
// Only the config file and flags set it.
type PathsConfig struct {
	RawDir       string `yaml:"raw_dir" validate:"required"`
	ProcessedDir string `yaml:"processed_dir" validate:"required"`
	LogsDir      string `yaml:"logs_dir"`
}

// PipelineConfig tunes batch processing. Only the config file sets it.
type PipelineConfig struct {
	Workers        int     `yaml:"workers" validate:"min=1,max=64"`
	FloatTolerance float64 `yaml:"float_tolerance" validate:"gte=0,lt=1"`
	WriteSidecar   bool    `yaml:"write_sidecar"`
}

// TelemetryConfig controls tracing and the metrics textfile
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" envconfig:"ENABLED"`
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required_if=Enabled true"`
	TraceFile   string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load layers defaults, then the YAML file, then IPEDS_LOGGING_* and
// IPEDS_TELEMETRY_* environment overrides.
// An empty path falls back to DefaultConfigFile when it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config file", err).
				WithContext(apperrors.CtxPath, path)
		}
	} else if explicit {
		return nil, apperrors.NewConfigError("config file not found", err).
			WithContext(apperrors.CtxPath, path)
	}

	// No default tags: unset variables leave file and default values alone.
	if err := loadFromEnv(cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv applies overrides to the ambient sections only. Paths and
// pipeline settings decide what gets written and how it is verified.
func loadFromEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix+"_LOGGING", &cfg.Logging); err != nil {
		return err
	}
	return envconfig.Process(EnvPrefix+"_TELEMETRY", &cfg.Telemetry)
}

var validate = validator.New()

// Validate checks field constraints and normalizes logging settings
func (c *Config) Validate() error {
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}
	if err := validate.Struct(c); err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("invalid configuration: %v", err), err)
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Paths: PathsConfig{
			RawDir:       DefaultRawDir,
			ProcessedDir: DefaultProcessedDir,
			LogsDir:      DefaultLogsDir,
		},
		Pipeline: PipelineConfig{
			Workers:        DefaultWorkers,
			FloatTolerance: DefaultFloatTolerance,
			WriteSidecar:   true,
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			ServiceName: AppName,
		},
	}
}
