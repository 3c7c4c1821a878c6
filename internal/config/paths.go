package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved absolute paths of the application
type Paths struct {
	BaseDir      string
	PackagesDir  string
	LogsDir      string
	LogFile      string
	VersionsFile string
}

// ResolvePaths makes every configured path absolute. Relative paths are taken
// from base, which defaults to the working directory.
func (c *Config) ResolvePaths(base string) (*Paths, error) {
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	p := &Paths{
		BaseDir:      base,
		PackagesDir:  resolve(base, c.Paths.PackagesDir),
		LogsDir:      resolve(base, c.Paths.LogsDir),
		LogFile:      resolve(base, c.Logging.FilePath),
		VersionsFile: resolve(base, c.Paths.VersionsFile),
	}
	return p, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// EnsureDirectories creates the directories the application writes to
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.PackagesDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// GetPackagePath returns the path of an archive in the packages directory
func (p *Paths) GetPackagePath(filename string) string {
	return filepath.Join(p.PackagesDir, filepath.Base(filename))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs the resolved paths at debug level
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("path resolution summary",
		slog.String("base", p.BaseDir),
		slog.String("packages", p.PackagesDir),
		slog.String("logs", p.LogsDir),
		slog.String("versions_file", p.VersionsFile))
}
