package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mriopack/internal/datapackage"
	apierrors "mriopack/internal/errors"
	"mriopack/internal/infrastructure"
)

// PackageSummary describes one archive of the packages directory
type PackageSummary struct {
	File      string    `json:"file"`
	SizeBytes int64     `json:"size_bytes"`
	Modified  time.Time `json:"modified"`
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Version   string    `json:"version,omitempty"`
	Created   string    `json:"created,omitempty"`
	Resources []string  `json:"resources,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// VerifyResult is the outcome of re-hashing an archive
type VerifyResult struct {
	File      string   `json:"file"`
	Valid     bool     `json:"valid"`
	Resources []string `json:"resources"`
}

// PackageService serves read-only access to the archives of one directory
type PackageService struct {
	dir     string
	metrics *infrastructure.BusinessMetrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewPackageService creates a service over dir. metrics may be nil.
func NewPackageService(dir string, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *PackageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PackageService{
		dir:     dir,
		metrics: metrics,
		tracer:  otel.Tracer(infrastructure.ServiceName + ".packages"),
		logger:  infrastructure.WithComponent(logger, "packages"),
	}
}

// Dir returns the packages directory
func (s *PackageService) Dir() string {
	return s.dir
}

// List returns every .tar archive of the directory sorted by file name. An
// archive whose manifest cannot be read is listed with its error.
func (s *PackageService) List(ctx context.Context) ([]PackageSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read packages directory %s: %w", s.dir, err)
	}

	summaries := make([]PackageSummary, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".tar") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := e.Info()
		if err != nil {
			continue
		}

		summary := PackageSummary{File: e.Name(), SizeBytes: info.Size(), Modified: info.ModTime().UTC()}
		pkg, err := datapackage.Open(filepath.Join(s.dir, e.Name()), s.logger)
		if err != nil {
			s.logger.WarnContext(ctx, "unreadable package", slog.String("file", e.Name()), slog.String("error", err.Error()))
			summary.Error = err.Error()
		} else {
			m := pkg.Manifest()
			summary.ID = m.ID
			summary.Name = m.Name
			summary.Version = m.Version
			summary.Created = m.Created
			summary.Resources = m.Names()
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].File < summaries[j].File })
	return summaries, nil
}

// open resolves file inside the directory and opens it
func (s *PackageService) open(file string) (*datapackage.Package, error) {
	if file != filepath.Base(file) {
		return nil, apierrors.InvalidParameter("file", file)
	}
	path := filepath.Join(s.dir, file)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, apierrors.PackageNotFound(file)
		}
		return nil, err
	}
	return datapackage.Open(path, s.logger)
}

// Manifest returns the manifest of file
func (s *PackageService) Manifest(ctx context.Context, file string) (*datapackage.Manifest, error) {
	pkg, err := s.open(file)
	if err != nil {
		return nil, err
	}
	return pkg.Manifest(), nil
}

// Resource returns the descriptor of the resource name of file
func (s *PackageService) Resource(ctx context.Context, file, name string) (datapackage.Resource, error) {
	pkg, err := s.open(file)
	if err != nil {
		return datapackage.Resource{}, err
	}
	return pkg.Resource(name)
}

// WriteResource copies the stored bytes of resource name to w
func (s *PackageService) WriteResource(ctx context.Context, file, name string, w io.Writer) (int64, error) {
	pkg, err := s.open(file)
	if err != nil {
		return 0, err
	}

	var n int64
	err = pkg.Open(name, func(r io.Reader) error {
		var err error
		n, err = io.Copy(w, r)
		return err
	})
	return n, err
}

// Verify re-hashes every resource of file against its manifest
func (s *PackageService) Verify(ctx context.Context, file string) (*VerifyResult, error) {
	ctx, span := s.tracer.Start(ctx, "package.verify", trace.WithAttributes(attribute.String("package.file", file)))
	defer span.End()

	pkg, err := s.open(file)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	start := time.Now()
	err = pkg.Verify(ctx)
	infrastructure.RecordVerification(ctx, s.metrics, file, err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		infrastructure.WithError(s.logger, err).WarnContext(ctx, "package verification failed",
			slog.String("file", file),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "package verified",
		slog.String("file", file),
		slog.Duration("duration", time.Since(start)),
	)
	return &VerifyResult{File: file, Valid: true, Resources: pkg.Manifest().Names()}, nil
}
