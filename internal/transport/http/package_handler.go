package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "mriopack/internal/errors"
	"mriopack/internal/middleware"
)

// PackageHandler serves the archives of the packages directory
type PackageHandler struct {
	service      PackageServiceInterface
	params       *middleware.ParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPackageHandler creates a new package handler
func NewPackageHandler(service PackageServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PackageHandler {
	return &PackageHandler{
		service:      service,
		params:       middleware.NewParamValidator(logger, errorHandler),
		logger:       logger.With(slog.String("component", "package_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the package routes
func (h *PackageHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListPackages)
	r.Route("/{file}", func(r chi.Router) {
		r.Get("/manifest", h.GetManifest)
		r.Get("/verify", h.VerifyPackage)
		r.Get("/resources/{name}", h.GetResource)
	})
	return r
}

// ListPackages handles GET /api/packages
func (h *PackageHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.service.List(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"packages": packages,
		"count":    len(packages),
	})
}

// GetManifest handles GET /api/packages/{file}/manifest
func (h *PackageHandler) GetManifest(w http.ResponseWriter, r *http.Request) {
	params, ok := h.params.PackageParams(w, r)
	if !ok {
		return
	}
	manifest, err := h.service.Manifest(r.Context(), params.File)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, manifest)
}

// GetResource handles GET /api/packages/{file}/resources/{name}. The stored
// bytes are sent as they are, with the media type of the manifest.
func (h *PackageHandler) GetResource(w http.ResponseWriter, r *http.Request) {
	params, ok := h.params.PackageParams(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	res, err := h.service.Resource(ctx, params.File, params.Resource)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// buffered so a missing archive entry still yields a problem response
	var body bytes.Buffer
	n, err := h.service.WriteResource(ctx, params.File, params.Resource, &body)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	mediaType := res.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Content-Length", strconv.FormatInt(n, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(res.Path)))
	w.Header().Set("ETag", strconv.Quote(res.Hash))
	w.WriteHeader(http.StatusOK)
	if _, err := body.WriteTo(w); err != nil {
		h.logger.WarnContext(ctx, "resource write aborted",
			slog.String("file", params.File),
			slog.String("resource", params.Resource),
			slog.String("error", err.Error()),
		)
	}
}

// VerifyPackage handles GET /api/packages/{file}/verify
func (h *PackageHandler) VerifyPackage(w http.ResponseWriter, r *http.Request) {
	params, ok := h.params.PackageParams(w, r)
	if !ok {
		return
	}
	result, err := h.service.Verify(r.Context(), params.File)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}
