// Package config loads the mriopack configuration.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later ones taking
// precedence:
//
//	1. Default values
//	2. A YAML file (mriopack.yaml or configs/mriopack.yaml, or --config)
//	3. Environment variables
//
// # Environment Variables
//
// Every variable carries the MRIOPACK prefix followed by the section:
//
//	MRIOPACK_SERVER_PORT=8080
//	MRIOPACK_LOGGING_LEVEL=debug
//	MRIOPACK_PATHS_PACKAGES_DIR=/srv/packages
//	MRIOPACK_CONVERSION_NORMALIZE=false
//
// # Validation
//
// Enumerations and ranges are checked with validator tags at load time.
//
// # Usage
//
//	cfg, err := config.Load(config.FindConfigFile())
//	if err != nil {
//	    return err
//	}
//	paths, err := cfg.ResolvePaths("")
package config
