package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mriopack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.True(t, cfg.Server.RateLimit.Enabled)
				assert.Equal(t, float64(DefaultRateLimit), cfg.Server.RateLimit.RPS)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "stderr", cfg.Logging.Output)
				assert.Equal(t, DefaultPackagesDir, cfg.Paths.PackagesDir)
				assert.True(t, cfg.Conversion.Normalize)
				assert.False(t, cfg.Conversion.KeepStaged)
				assert.Equal(t, DefaultStepTimeout, cfg.Conversion.StepTimeout)
				assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
			},
		},
		{
			name: "file overrides defaults",
			file: `
server:
  port: 9000
logging:
  level: debug
conversion:
  normalize: false
  step_timeout: 5m
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.False(t, cfg.Conversion.Normalize)
				assert.Equal(t, 5*time.Minute, cfg.Conversion.StepTimeout)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout, "keys absent from the file keep their default")
			},
		},
		{
			name: "env overrides file",
			file: "server:\n  port: 9000\n",
			env: map[string]string{
				"MRIOPACK_SERVER_PORT":            "9100",
				"MRIOPACK_PATHS_PACKAGES_DIR":     "/srv/packages",
				"MRIOPACK_CONVERSION_KEEP_STAGED": "true",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9100, cfg.Server.Port)
				assert.Equal(t, "/srv/packages", cfg.Paths.PackagesDir)
				assert.True(t, cfg.Conversion.KeepStaged)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"MRIOPACK_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "invalid log level",
			file:    "logging:\n  level: verbose\n",
			wantErr: true,
		},
		{
			name:    "unknown key",
			file:    "security:\n  enable_cors: true\n",
			wantErr: true,
		},
		{
			name:    "file output without path",
			file:    "logging:\n  output: file\n  file_path: \"\"\n",
			wantErr: true,
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
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	assert.Empty(t, FindConfigFile())

	require.NoError(t, os.MkdirAll("configs", 0o755))
	require.NoError(t, os.WriteFile(filepath.Join("configs", "mriopack.yaml"), nil, 0o644))
	assert.Equal(t, filepath.Join("configs", "mriopack.yaml"), FindConfigFile())
}
