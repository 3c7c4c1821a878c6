package datapackage

import (
	"archive/tar"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	apperrors "mriopack/internal/errors"
	"mriopack/internal/schema"
)

const stageBuild = "package"

// BuildOptions controls Build
type BuildOptions struct {
	// Flush removes the staged resource files and the staged manifest once
	// the archive is in place. The archive itself is never removed.
	Flush bool
	// Now stamps the manifest; defaults to time.Now
	Now func() time.Time
	// Conversion is recorded in the manifest when set
	Conversion *Conversion
	// Produced lists the staged file names written by the current run. When
	// set, other files in stagingDir are ignored even if a descriptor names
	// them. Nil packages every descriptor whose file exists.
	Produced []string
	Logger   *slog.Logger
}

// Build packages the staged resources of v found in stagingDir into
// <slug>-<version>.tar in the same directory and returns its path
func Build(v *schema.Version, stagingDir string, opts BuildOptions) (string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var produced map[string]bool
	if opts.Produced != nil {
		produced = make(map[string]bool, len(opts.Produced))
		for _, name := range opts.Produced {
			produced[name] = true
		}
	}

	manifest := newManifest(v, now(), opts.Conversion)
	for _, d := range v.Resources {
		if produced != nil && !produced[d.Path] {
			logger.Debug("resource not produced by this run, pruned from manifest", slog.String("resource", d.Name))
			continue
		}
		path := filepath.Join(stagingDir, d.Path)
		info, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("resource not produced, pruned from manifest", slog.String("resource", d.Name))
			continue
		}
		if err != nil {
			return "", wrapBuild(apperrors.NewInternalError("cannot stat staged resource", err).WithResource(d.Name), v)
		}
		if info.IsDir() {
			return "", wrapBuild(apperrors.NewIntegrityError(d.Name, "staged resource is a directory"), v)
		}
		hash, err := md5File(path)
		if err != nil {
			return "", wrapBuild(apperrors.NewInternalError("cannot hash staged resource", err).WithResource(d.Name), v)
		}
		manifest.Resources = append(manifest.Resources, resourceFrom(d, hash))
	}

	data, err := manifest.Marshal()
	if err != nil {
		return "", wrapBuild(err, v)
	}
	manifestPath := filepath.Join(stagingDir, ManifestName)
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return "", wrapBuild(apperrors.NewInternalError("cannot write manifest", err).WithResource(ManifestName), v)
	}

	archivePath := filepath.Join(stagingDir, v.ArchiveName())
	if err := writeArchive(archivePath, stagingDir, manifest); err != nil {
		return "", wrapBuild(err, v)
	}

	logger.Info("data package written",
		slog.String("archive", archivePath),
		slog.String("version", v.ID),
		slog.Int("resources", len(manifest.Resources)))

	if opts.Flush {
		staged := append(manifestPaths(stagingDir, manifest), manifestPath)
		for _, p := range staged {
			if p == archivePath {
				continue
			}
			if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
				logger.Warn("failed to remove staged file", slog.String("path", p), slog.String("error", err.Error()))
			}
		}
	}
	return archivePath, nil
}

func manifestPaths(dir string, m *Manifest) []string {
	paths := make([]string, len(m.Resources))
	for i, r := range m.Resources {
		paths[i] = filepath.Join(dir, r.Path)
	}
	return paths
}

// writeArchive writes to a temporary file and renames it, so a failure never
// leaves a partial archive under the final name
func writeArchive(archivePath, dir string, m *Manifest) (err error) {
	tmp, err := os.CreateTemp(dir, ".archive-*.tar")
	if err != nil {
		return apperrors.NewInternalError("cannot create archive", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	tw := tar.NewWriter(tmp)
	names := []string{ManifestName}
	for _, r := range m.Resources {
		names = append(names, r.Path)
	}
	for _, name := range names {
		if err := addFile(tw, filepath.Join(dir, name), name); err != nil {
			return apperrors.NewInternalError("cannot add file to archive", err).WithResource(name)
		}
	}
	if err := tw.Close(); err != nil {
		return apperrors.NewInternalError("cannot finish archive", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewInternalError("cannot close archive", err)
	}
	if err := os.Rename(tmp.Name(), archivePath); err != nil {
		return apperrors.NewInternalError("cannot move archive into place", err)
	}
	return nil
}

func addFile(tw *tar.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = name
	header.Uid, header.Gid = 0, 0
	header.Uname, header.Gname = "", ""
	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}

func md5File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return md5Reader(f)
}

func md5Reader(r io.Reader) (string, error) {
	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func wrapBuild(err error, v *schema.Version) error {
	var ce *apperrors.ConversionError
	if errors.As(err, &ce) {
		return ce.WithStage(stageBuild).WithVersion(v.ID)
	}
	return fmt.Errorf("%s: %w", stageBuild, err)
}
