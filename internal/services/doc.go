// Package services holds the application logic shared by the command line
// and the package server.
//
//   - ConversionService runs conversions against a version registry.
//   - PackageService lists, reads and verifies the archives of one directory.
//   - HealthService reports process health and package directory readiness.
//
// Services take their dependencies through constructors and log with the
// *slog.Logger they are given. Errors are returned as produced by the
// datapackage and operations packages, so the HTTP layer can map them to
// problem responses.
package services
