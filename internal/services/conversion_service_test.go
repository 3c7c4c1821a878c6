package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mriopack/internal/config"
	apperrors "mriopack/internal/errors"
	"mriopack/internal/operations"
)

func newTestConversionService(t *testing.T, settings config.ConversionConfig) *ConversionService {
	t.Helper()
	svc, err := NewConversionService(settings, nil, nil, discardLogger())
	require.NoError(t, err)
	return svc
}

func TestConversionServiceOptions(t *testing.T) {
	tests := []struct {
		name        string
		settings    config.ConversionConfig
		keepStaged  bool
		noNormalize bool
		want        operations.Options
	}{
		{"defaults", config.ConversionConfig{Normalize: true}, false, false, operations.Options{Normalize: true, Flush: true}},
		{"keep staged flag", config.ConversionConfig{Normalize: true}, true, false, operations.Options{Normalize: true, Flush: false}},
		{"keep staged config", config.ConversionConfig{Normalize: true, KeepStaged: true}, false, false, operations.Options{Normalize: true, Flush: false}},
		{"no normalize flag", config.ConversionConfig{Normalize: true}, false, true, operations.Options{Normalize: false, Flush: true}},
		{"normalize disabled in config", config.ConversionConfig{}, false, false, operations.Options{Normalize: false, Flush: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestConversionService(t, tt.settings)
			assert.Equal(t, tt.want, svc.Options(tt.keepStaged, tt.noNormalize))
		})
	}
}

func TestConversionServiceVersions(t *testing.T) {
	svc := newTestConversionService(t, config.ConversionConfig{StepTimeout: time.Minute, PackageTimeout: time.Minute})

	versions, err := svc.Versions()
	require.NoError(t, err)

	ids := make([]string, len(versions))
	for i, v := range versions {
		ids[i] = v.ID
	}
	assert.Contains(t, ids, "3.3.18 hybrid")
	assert.Contains(t, ids, "3.3.17 hybrid")
}

func TestConversionServiceConvertErrors(t *testing.T) {
	svc := newTestConversionService(t, config.ConversionConfig{Normalize: true})

	t.Run("unknown version", func(t *testing.T) {
		_, err := svc.Convert(context.Background(), operations.ConversionRequest{
			SourceDir: t.TempDir(),
			Version:   "0.0.0 monetary",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrConfig))
	})

	t.Run("missing source directory", func(t *testing.T) {
		resp, err := svc.Convert(context.Background(), operations.ConversionRequest{
			SourceDir: t.TempDir() + "/missing",
			Version:   "3.3.18 hybrid",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrConfig))
		require.NotNil(t, resp)
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, "3.3.18 hybrid", resp.Version)
	})
}
