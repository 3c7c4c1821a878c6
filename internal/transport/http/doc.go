// Package http implements the HTTP handlers of the package server. Handlers
// parse and validate the request, call a service and render the result;
// every failure is rendered as an RFC 7807 problem through
// errors.ErrorHandler.
//
// Routes:
//
//	GET /healthz
//	GET /api/packages
//	GET /api/packages/{file}/manifest
//	GET /api/packages/{file}/resources/{name}
//	GET /api/packages/{file}/verify
package http
