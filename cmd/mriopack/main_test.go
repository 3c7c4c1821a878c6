package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mriopack/internal/datapackage"
	apperrors "mriopack/internal/errors"
	"mriopack/internal/shared/testutil"
)

// quietEnv keeps telemetry off and logs on stderr for command tests
func quietEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MRIOPACK_TELEMETRY_ENABLE_TRACING", "false")
	t.Setenv("MRIOPACK_TELEMETRY_ENABLE_METRICS", "false")
	t.Setenv("MRIOPACK_LOGGING_OUTPUT", "stderr")
	t.Setenv("MRIOPACK_LOGGING_LEVEL", "error")
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	quietEnv(t)

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeArchive(t *testing.T, tamper bool) string {
	t.Helper()
	bad := ""
	if tamper {
		bad = "production"
	}
	return testutil.WriteArchive(t, t.TempDir(), "exiobase-fixture-3.3.18-hybrid.tar", testutil.DefaultEntries, bad)
}

func TestVersionsCommand(t *testing.T) {
	stdout, _, err := execute(t, "versions")
	require.NoError(t, err)

	assert.Contains(t, stdout, "VERSION")
	assert.Contains(t, stdout, "3.3.18 hybrid")
	assert.Contains(t, stdout, "3.3.17 hybrid")
}

func TestVersionsCommandWithMissingVersionsFile(t *testing.T) {
	t.Setenv("MRIOPACK_PATHS_VERSIONS_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, _, err := execute(t, "versions")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConfig))
}

func TestInspectCommand(t *testing.T) {
	archive := writeArchive(t, false)

	t.Run("table", func(t *testing.T) {
		stdout, _, err := execute(t, "inspect", archive)
		require.NoError(t, err)

		assert.Contains(t, stdout, "exiobase-fixture-hybrid 3.3.18 (2 resources)")
		assert.Contains(t, stdout, "registry version: 3.3.18 hybrid")
		assert.Contains(t, stdout, "technosphere.csv.bz2")
		assert.Contains(t, stdout, "production.csv.bz2")
	})

	t.Run("json", func(t *testing.T) {
		stdout, _, err := execute(t, "inspect", "--json", archive)
		require.NoError(t, err)

		var m datapackage.Manifest
		require.NoError(t, json.Unmarshal([]byte(stdout), &m))
		assert.Equal(t, []string{"technosphere", "production"}, m.Names())
	})

	t.Run("not a tar", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plain.tar")
		require.NoError(t, os.WriteFile(path, []byte("not an archive at all"), 0o644))

		_, _, err := execute(t, "inspect", path)
		require.Error(t, err)
	})

	t.Run("missing argument", func(t *testing.T) {
		_, _, err := execute(t, "inspect")
		require.Error(t, err)
	})
}

func TestVerifyCommand(t *testing.T) {
	t.Run("intact", func(t *testing.T) {
		archive := writeArchive(t, false)

		stdout, _, err := execute(t, "verify", archive)
		require.NoError(t, err)
		assert.Contains(t, stdout, "ok")
		assert.Contains(t, stdout, "2 resources")
	})

	t.Run("tampered", func(t *testing.T) {
		archive := writeArchive(t, true)

		stdout, _, err := execute(t, "verify", archive)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrIntegrity))
		assert.Empty(t, stdout)
	})
}

func TestConvertCommandFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing source", []string{"convert", "--version", "3.3.18 hybrid"}},
		{"missing version", []string{"convert", "--source", t.TempDir()}},
		{"unknown version", []string{"convert", "--source", t.TempDir(), "--version", "9.9.9"}},
		{"positional argument", []string{"convert", "extra", "--source", t.TempDir(), "--version", "3.3.18 hybrid"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Empty(t, stdout)
		})
	}
}

func TestConvertCommandUnknownVersionIsConfigError(t *testing.T) {
	_, stderr, err := execute(t, "convert", "--source", t.TempDir(), "--version", "0.0.0 monetary")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConfig))
	assert.NotContains(t, stderr, "completed")
}
