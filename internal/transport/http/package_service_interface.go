package http

import (
	"context"
	"io"

	"mriopack/internal/datapackage"
	"mriopack/internal/services"
)

// PackageServiceInterface defines the package operations the handlers need
type PackageServiceInterface interface {
	List(ctx context.Context) ([]services.PackageSummary, error)
	Manifest(ctx context.Context, file string) (*datapackage.Manifest, error)
	Resource(ctx context.Context, file, name string) (datapackage.Resource, error)
	WriteResource(ctx context.Context, file, name string, w io.Writer) (int64, error)
	Verify(ctx context.Context, file string) (*services.VerifyResult, error)
}

// HealthServiceInterface defines the health check the handler needs
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
}
