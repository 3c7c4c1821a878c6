package datapackage

import (
	"encoding/json"
	"fmt"
	"time"

	apperrors "mriopack/internal/errors"
	"mriopack/internal/schema"
	"mriopack/pkg/contracts"
)

// ManifestName is the file name of the manifest inside an archive
const ManifestName = "datapackage.json"

// Resource is one manifest entry
type Resource struct {
	Name      string              `json:"name"`
	Path      string              `json:"path"`
	Hash      string              `json:"hash"`
	Profile   string              `json:"profile,omitempty"`
	MediaType string              `json:"mediatype"`
	Format    string              `json:"format,omitempty"`
	Title     string              `json:"title,omitempty"`
	Schema    *schema.TableSchema `json:"schema,omitempty"`
}

// Conversion records how the package contents were produced
type Conversion struct {
	RegistryVersion    string `json:"registry_version"`
	Normalized         bool   `json:"normalized"`
	TechnosphereOutput string `json:"technosphere_output"`
	RunID              string `json:"run_id,omitempty"`
}

// Manifest is the datapackage.json document
type Manifest struct {
	Profile      string               `json:"profile"`
	Name         string               `json:"name"`
	ID           string               `json:"id"`
	Title        string               `json:"title,omitempty"`
	Version      string               `json:"version"`
	Description  string               `json:"description,omitempty"`
	Image        string               `json:"image,omitempty"`
	Created      string               `json:"created,omitempty"`
	Licenses     []schema.License     `json:"licenses,omitempty"`
	Sources      []schema.SourceRef   `json:"sources,omitempty"`
	Contributors []schema.Contributor `json:"contributors,omitempty"`
	Conversion   *Conversion          `json:"conversion,omitempty"`
	Resources    []Resource           `json:"resources"`
}

// newManifest builds the manifest identity of v. Resources are added by the
// builder after pruning and hashing.
func newManifest(v *schema.Version, created time.Time, conversion *Conversion) *Manifest {
	d := v.Dataset
	return &Manifest{
		Profile:      contracts.ManifestProfile,
		Name:         d.Slug,
		ID:           d.ID,
		Title:        d.Name,
		Version:      d.Version,
		Description:  d.Description,
		Image:        d.Image,
		Created:      created.UTC().Format(time.RFC3339),
		Licenses:     append([]schema.License(nil), d.Licenses...),
		Sources:      append([]schema.SourceRef(nil), d.Sources...),
		Contributors: append([]schema.Contributor(nil), d.Contributors...),
		Conversion:   conversion,
		Resources:    []Resource{},
	}
}

func resourceFrom(d schema.ResourceDescriptor, hash string) Resource {
	r := Resource{
		Name:      d.Name,
		Path:      d.Path,
		Hash:      hash,
		Profile:   d.Profile,
		MediaType: d.MediaType,
		Format:    d.Format,
		Title:     d.Title,
	}
	if d.Schema != nil {
		r.Schema = &schema.TableSchema{Fields: append([]schema.Field(nil), d.Schema.Fields...)}
	}
	return r
}

// Marshal renders the manifest as indented JSON
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode manifest", err)
	}
	return append(data, '\n'), nil
}

// ParseManifest decodes a datapackage.json document
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, apperrors.NewConversionError(apperrors.ErrTypeMissingManifest, "manifest is not valid JSON", err).
			WithResource(ManifestName)
	}
	return &m, nil
}

// Resource returns the single resource with the given name. Several entries
// with one name mean a corrupted manifest and are never resolved by order.
func (m *Manifest) Resource(name string) (Resource, error) {
	var found []Resource
	for _, r := range m.Resources {
		if r.Name == name {
			found = append(found, r)
		}
	}
	switch len(found) {
	case 0:
		return Resource{}, apperrors.NewNotFoundError(name)
	case 1:
		return found[0], nil
	default:
		return Resource{}, apperrors.NewNotUniqueError(name, len(found))
	}
}

// Names returns the resource names in manifest order
func (m *Manifest) Names() []string {
	names := make([]string, len(m.Resources))
	for i, r := range m.Resources {
		names[i] = r.Name
	}
	return names
}

func (m *Manifest) String() string {
	return fmt.Sprintf("%s %s (%d resources)", m.ID, m.Version, len(m.Resources))
}
