package config

import (
	"time"

	"mriopack/pkg/contracts"
)

// Application constants
const (
	AppName    = "mriopack"
	AppVersion = contracts.Version

	// EnvPrefix namespaces every environment variable, e.g.
	// MRIOPACK_SERVER_PORT or MRIOPACK_LOGGING_LEVEL
	EnvPrefix = "MRIOPACK"

	// Rate limiting of the package server
	DefaultRateLimit = 50 // requests per second
	DefaultBurstSize = 100

	// Conversion timeouts
	DefaultStepTimeout    = 30 * time.Minute
	DefaultPackageTimeout = 10 * time.Minute

	// Paths, relative to the working directory unless absolute
	DefaultPackagesDir = "packages"
	DefaultLogsDir     = "logs"
)

// DefaultConfigFiles are searched in order when no config file is given
var DefaultConfigFiles = []string{
	"mriopack.yaml",
	"configs/mriopack.yaml",
}
