package operations

import (
	"time"
)

// Conversion step identifiers
const (
	StepIDNomenclature = "nomenclature"
	StepIDProduction   = "production"
	StepIDTechnosphere = "technosphere"
	StepIDExtensions   = "extensions"
	StepIDPackage      = "package"
)

// Conversion step names
const (
	StepNameNomenclature = "Nomenclature Extraction"
	StepNameProduction   = "Principal Production"
	StepNameTechnosphere = "Technosphere Conversion"
	StepNameExtensions   = "Extension Conversion"
	StepNamePackage      = "Package Build"
)

// Default timeouts
const (
	DefaultStepTimeout    = 30 * time.Minute
	DefaultPackageTimeout = 10 * time.Minute
)

// DefaultTargetDirName is created inside the source directory when no target
// directory is given
const DefaultTargetDirName = "datapackage"

// Options controls what a conversion writes
type Options struct {
	// Normalize drops zero production pairs and writes coefficients instead
	// of raw flows
	Normalize bool `json:"normalize"`

	// Flush removes the staged files once the archive is written
	Flush bool `json:"flush"`
}

// DefaultOptions returns normalized output with staged files removed
func DefaultOptions() Options {
	return Options{
		Normalize: true,
		Flush:     true,
	}
}

// ConversionRequest represents a request to convert one dataset version
type ConversionRequest struct {
	ID        string  `json:"id"`
	SourceDir string  `json:"source_dir"`
	TargetDir string  `json:"target_dir,omitempty"`
	Version   string  `json:"version"`
	Options   Options `json:"options"`
}

// ConversionResponse represents the outcome of a conversion
type ConversionResponse struct {
	ID       string                `json:"id"`
	Version  string                `json:"version"`
	Status   OperationStatus       `json:"status"`
	Archive  string                `json:"archive,omitempty"`
	Duration time.Duration         `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Error    string                `json:"error,omitempty"`
}
