package operations

import (
	"context"
	"log/slog"

	"mriopack/internal/schema"
)

// NewPipeline returns a registry holding the conversion steps
func NewPipeline(logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	registry := NewRegistry()
	steps := []Step{
		newNomenclatureStep(logger),
		newProductionStep(),
		newTechnosphereStep(),
		newExtensionsStep(),
		newPackageStep(logger),
	}
	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}
	if err := registry.ValidateDependencies(); err != nil {
		return nil, err
	}
	return registry, nil
}

// Convert converts the raw sources in sourceDir with the built-in version
// versionID and returns the path of the archive, written to
// sourceDir/datapackage.
func Convert(ctx context.Context, sourceDir, versionID string, opts Options) (string, error) {
	registry, err := NewPipeline(nil)
	if err != nil {
		return "", err
	}
	manager := NewManager(registry, schema.Default(), nil, nil)
	resp, err := manager.Execute(ctx, ConversionRequest{
		SourceDir: sourceDir,
		Version:   versionID,
		Options:   opts,
	})
	if err != nil {
		return "", err
	}
	return resp.Archive, nil
}
