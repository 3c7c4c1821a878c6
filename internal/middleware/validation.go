package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	apierrors "mriopack/internal/errors"
)

// PackageParams are the URL parameters of the package routes
type PackageParams struct {
	File     string `validate:"required,archive"`
	Resource string `validate:"omitempty,resource"`
}

var resourceName = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// ParamValidator validates chi URL parameters before a handler touches the
// filesystem
type ParamValidator struct {
	validator    *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewParamValidator creates a validator that reports failures through
// errorHandler
func NewParamValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ParamValidator {
	v := validator.New()
	v.RegisterValidation("archive", isArchiveName)
	v.RegisterValidation("resource", isResourceName)

	return &ParamValidator{
		validator:    v,
		logger:       logger.With(slog.String("component", "param_validator")),
		errorHandler: errorHandler,
	}
}

// PackageParams reads and validates the {file} and {name} parameters. On
// failure the problem response has been written and ok is false.
func (v *ParamValidator) PackageParams(w http.ResponseWriter, r *http.Request) (params PackageParams, ok bool) {
	params = PackageParams{
		File:     chi.URLParam(r, "file"),
		Resource: chi.URLParam(r, "name"),
	}

	if err := v.validator.Struct(params); err != nil {
		field, value := "file", params.File
		if verrs, isValidation := err.(validator.ValidationErrors); isValidation && len(verrs) > 0 {
			field = strings.ToLower(verrs[0].Field())
			if field == "resource" {
				value = params.Resource
			}
			v.logger.DebugContext(r.Context(), "invalid parameter",
				slog.String("field", field),
				slog.String("reason", FormatFieldError(verrs[0])),
			)
		}
		v.errorHandler.HandleError(w, r, apierrors.InvalidParameter(field, value))
		return params, false
	}
	return params, true
}

// isArchiveName accepts a bare file name ending in .tar
func isArchiveName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || len(name) > 255 {
		return false
	}
	if name != filepath.Base(name) || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return false
	}
	return strings.HasSuffix(name, ".tar")
}

func isResourceName(fl validator.FieldLevel) bool {
	return resourceName.MatchString(fl.Field().String())
}

// FormatFieldError renders a validator failure for humans
func FormatFieldError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "archive":
		return fmt.Sprintf("%s must be a .tar file name", err.Field())
	case "resource":
		return fmt.Sprintf("%s must be a datapackage resource name", err.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", err.Field(), err.Tag())
	}
}
