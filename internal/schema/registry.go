package schema

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	apperrors "mriopack/internal/errors"
	"mriopack/pkg/contracts/domain"
)

// Resource names written to every package
const (
	ResourceProduction          = "production"
	ResourceTechnosphere        = "technosphere"
	ResourceExtensions          = "extensions"
	ResourceLocations           = "locations"
	ResourceSectors             = "sectors"
	ResourceProducts            = "products"
	ResourceExtensionCategories = "extension-categories"
)

// Registry is an immutable set of registered versions. It is safe for
// concurrent use because nothing mutates it after construction and Resolve
// hands out copies.
type Registry struct {
	versions map[string]*Version
	order    []string
}

// File is the YAML layout accepted by LoadFile
type File struct {
	Versions []Version `yaml:"versions"`
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
	validate            = validator.New()
)

// NewRegistry validates the given versions and freezes them in a registry
func NewRegistry(versions ...Version) (*Registry, error) {
	r := &Registry{versions: make(map[string]*Version, len(versions))}
	for i := range versions {
		v := versions[i].Clone()
		if err := prepare(v); err != nil {
			return nil, err
		}
		if _, exists := r.versions[v.ID]; exists {
			return nil, apperrors.NewConfigError(fmt.Sprintf("version %q registered twice", v.ID), nil).WithVersion(v.ID)
		}
		r.versions[v.ID] = v
		r.order = append(r.order, v.ID)
	}
	return r, nil
}

// Default returns the registry of built-in versions
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		r, err := NewRegistry(builtinVersions()...)
		if err != nil {
			panic(fmt.Sprintf("built-in version registry is invalid: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// LoadFile returns a registry holding the built-in versions plus the versions
// defined in a YAML file. A file cannot redefine a built-in version; a new
// physical layout needs a new version id.
func LoadFile(filePath string) (*Registry, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to read version registry file", err).WithResource(filePath)
	}

	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, apperrors.NewConfigError("failed to parse version registry file", err).WithResource(filePath)
	}

	all := append(builtinVersions(), f.Versions...)
	return NewRegistry(all...)
}

// Resolve returns an independent copy of the version with the given id
func (r *Registry) Resolve(id string) (*Version, error) {
	v, ok := r.versions[id]
	if !ok {
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("unsupported version %q (registered: %s)", id, strings.Join(r.IDs(), ", ")), nil,
		).WithVersion(id)
	}
	return v.Clone(), nil
}

// IDs returns the registered version ids in registration order
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// prepare resolves source formats and checks every required key
func prepare(v *Version) error {
	if err := validate.Struct(v); err != nil {
		return apperrors.NewConfigError("invalid version definition", err).WithVersion(v.ID)
	}

	fail := func(format string, args ...interface{}) error {
		return apperrors.NewConfigError(fmt.Sprintf(format, args...), nil).WithVersion(v.ID)
	}

	resolve := func(s *Source, what string) error {
		f, ok := DetectFormat(s.Filename)
		if !ok {
			return fail("%s: unrecognized file extension %q", what, s.Filename)
		}
		s.Format = f
		if f != FormatCSV && s.Worksheet == "" {
			return fail("%s: workbook source %q needs a worksheet", what, s.Filename)
		}
		return nil
	}

	if err := resolve(&v.Production.Source, "production"); err != nil {
		return err
	}
	if err := resolve(&v.Technosphere.Source, "technosphere"); err != nil {
		return err
	}
	for i := range v.Extensions.Sheets {
		sheet := &v.Extensions.Sheets[i]
		kind, err := domain.ParseExtensionKind(string(sheet.Kind))
		if err != nil {
			return fail("extensions: %v", err)
		}
		sheet.Kind = kind
		if err := resolve(&sheet.Source, "extensions/"+string(kind)); err != nil {
			return err
		}
	}
	nomenclature := map[string][]NomenclatureSheet{
		ResourceLocations:           v.Nomenclature.Locations,
		ResourceSectors:             v.Nomenclature.Sectors,
		ResourceProducts:            v.Nomenclature.Products,
		ResourceExtensionCategories: v.Nomenclature.Extensions,
	}
	for entity, sheets := range nomenclature {
		for i := range sheets {
			if err := resolve(&sheets[i].Source, "nomenclature/"+entity); err != nil {
				return err
			}
			if entity == ResourceExtensionCategories {
				kind, err := domain.ParseExtensionKind(string(sheets[i].Kind))
				if err != nil {
					return fail("nomenclature/%s: %v", entity, err)
				}
				sheets[i].Kind = kind
			}
		}
	}

	tableSuffix := ".csv" + v.Compression.Extension()
	if !strings.HasSuffix(v.Production.SaveAs, tableSuffix) {
		return fail("production: save_as %q must end with %q", v.Production.SaveAs, tableSuffix)
	}
	if !strings.HasSuffix(v.Extensions.SaveAs, tableSuffix) {
		return fail("extensions: save_as %q must end with %q", v.Extensions.SaveAs, tableSuffix)
	}
	switch v.Technosphere.Output {
	case OutputSparse:
		if !strings.HasSuffix(v.Technosphere.SaveAs, SparseSuffix) {
			return fail("technosphere: sparse save_as %q must end with %q", v.Technosphere.SaveAs, SparseSuffix)
		}
	case OutputTable:
		if !strings.HasSuffix(v.Technosphere.SaveAs, tableSuffix) {
			return fail("technosphere: table save_as %q must end with %q", v.Technosphere.SaveAs, tableSuffix)
		}
	}

	seen := make(map[string]bool, len(v.Resources))
	for _, r := range v.Resources {
		if seen[r.Name] {
			return fail("resource %q listed twice", r.Name)
		}
		seen[r.Name] = true
		if strings.ContainsAny(r.Path, `/\`) {
			return fail("resource %q: path %q must be a top-level file name", r.Name, r.Path)
		}
	}
	expected := map[string]string{
		ResourceProduction:   v.Production.SaveAs,
		ResourceTechnosphere: v.Technosphere.SaveAs,
		ResourceExtensions:   v.Extensions.SaveAs,
	}
	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r, ok := v.Resource(name)
		if !ok {
			return fail("missing resource descriptor %q", name)
		}
		if r.Path != expected[name] {
			return fail("resource %q: path %q does not match save_as %q", name, r.Path, expected[name])
		}
	}
	return nil
}
