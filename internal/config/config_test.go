package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ipedsprep/internal/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ipedsprep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     apperrors.ErrorType
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults when nothing is set",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, DefaultRawDir, cfg.Paths.RawDir)
				assert.Equal(t, DefaultProcessedDir, cfg.Paths.ProcessedDir)
				assert.Equal(t, DefaultWorkers, cfg.Pipeline.Workers)
				assert.Equal(t, DefaultFloatTolerance, cfg.Pipeline.FloatTolerance)
				assert.True(t, cfg.Pipeline.WriteSidecar)
				assert.False(t, cfg.Telemetry.Enabled)
			},
		},
		{
			name: "file overrides defaults",
			file: "pipeline:\n  workers: 2\npaths:\n  raw_dir: extracts\nlogging:\n  level: debug\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 2, cfg.Pipeline.Workers)
				assert.Equal(t, "extracts", cfg.Paths.RawDir)
				assert.Equal(t, DefaultProcessedDir, cfg.Paths.ProcessedDir)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name: "env overrides file for logging and telemetry",
			file: "logging:\n  level: debug\n",
			env: map[string]string{
				"IPEDS_LOGGING_LEVEL":          "warn",
				"IPEDS_TELEMETRY_METRICS_FILE": "/tmp/ipedsprep.prom",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "/tmp/ipedsprep.prom", cfg.Telemetry.MetricsFile)
			},
		},
		{
			name: "env cannot move paths or loosen verification",
			file: "pipeline:\n  workers: 2\npaths:\n  processed_dir: out\n",
			env: map[string]string{
				"IPEDS_PATHS_PROCESSED_DIR":      "/elsewhere",
				"IPEDS_PATHS_RAW_DIR":            "/elsewhere/raw",
				"IPEDS_PIPELINE_WORKERS":         "8",
				"IPEDS_PIPELINE_FLOAT_TOLERANCE": "0.9",
				"IPEDS_PIPELINE_WRITE_SIDECAR":   "false",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "out", cfg.Paths.ProcessedDir)
				assert.Equal(t, DefaultRawDir, cfg.Paths.RawDir)
				assert.Equal(t, 2, cfg.Pipeline.Workers)
				assert.Equal(t, DefaultFloatTolerance, cfg.Pipeline.FloatTolerance)
				assert.True(t, cfg.Pipeline.WriteSidecar)
			},
		},
		{
			name:    "invalid worker count",
			file:    "pipeline:\n  workers: 0\n",
			wantErr: apperrors.ErrTypeConfig,
		},
		{
			name:    "invalid log level from env",
			env:     map[string]string{"IPEDS_LOGGING_LEVEL": "loud"},
			wantErr: apperrors.ErrTypeConfig,
		},
		{
			name:    "malformed yaml",
			file:    "pipeline: [\n",
			wantErr: apperrors.ErrTypeConfig,
		},
		{
			name:    "telemetry enabled without service name",
			file:    "telemetry:\n  enabled: true\n  service_name: \"\"\n",
			wantErr: apperrors.ErrTypeConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeConfig))
}

func TestValidate_FillsLogFile(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "both"
	cfg.Logging.FilePath = ""
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath)
}
