package services

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	"mriopack/internal/config"
	"mriopack/internal/infrastructure"
	"mriopack/internal/operations"
	"mriopack/internal/schema"
)

// ConversionService runs conversions against a version registry
type ConversionService struct {
	manager  *operations.Manager
	versions *schema.Registry
	settings config.ConversionConfig
	logger   *slog.Logger
}

// NewConversionService builds the step pipeline and its manager. A nil meter
// uses the global meter provider.
func NewConversionService(settings config.ConversionConfig, versions *schema.Registry, meter metric.Meter, logger *slog.Logger) (*ConversionService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if versions == nil {
		versions = schema.Default()
	}

	pipeline, err := operations.NewPipeline(logger)
	if err != nil {
		return nil, err
	}

	stepConfig := operations.NewConfig()
	if settings.StepTimeout > 0 {
		stepConfig.DefaultTimeout = settings.StepTimeout
	}
	if settings.PackageTimeout > 0 {
		stepConfig.SetStepTimeout(operations.StepIDPackage, settings.PackageTimeout)
	}

	tracer, err := operations.NewConversionTracer(meter)
	if err != nil {
		return nil, err
	}
	manager := operations.NewManager(pipeline, versions, stepConfig, logger)
	manager.SetTracer(tracer)

	return &ConversionService{
		manager:  manager,
		versions: versions,
		settings: settings,
		logger:   infrastructure.WithComponent(logger, "conversion"),
	}, nil
}

// Options merges per-run overrides into the configured defaults
func (s *ConversionService) Options(keepStaged, noNormalize bool) operations.Options {
	return operations.Options{
		Normalize: s.settings.Normalize && !noNormalize,
		Flush:     !(s.settings.KeepStaged || keepStaged),
	}
}

// Convert runs one conversion. The response is returned even on failure so
// callers can report the state of every step.
func (s *ConversionService) Convert(ctx context.Context, req operations.ConversionRequest) (*operations.ConversionResponse, error) {
	resp, err := s.manager.Execute(ctx, req)
	if err != nil {
		return resp, err
	}
	s.logger.InfoContext(ctx, "package written",
		slog.String("version", resp.Version),
		slog.String("archive", resp.Archive),
		slog.Duration("duration", resp.Duration))
	return resp, nil
}

// Versions returns the registered versions in registration order
func (s *ConversionService) Versions() ([]*schema.Version, error) {
	ids := s.versions.IDs()
	out := make([]*schema.Version, 0, len(ids))
	for _, id := range ids {
		v, err := s.versions.Resolve(id)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
