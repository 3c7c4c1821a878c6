// Package app wires the package server: it builds the services, the chi
// router with its middleware chain and the HTTP server, and runs them until
// interrupted.
package app
