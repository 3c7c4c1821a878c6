package schema

import (
	"path"
	"strings"

	"mriopack/pkg/contracts/domain"
)

// SourceFormat is the physical format of a raw input file. It is resolved once
// from the filename when a registry is built.
type SourceFormat string

const (
	FormatCSV  SourceFormat = "csv"
	FormatXLSX SourceFormat = "xlsx"
	FormatXLSB SourceFormat = "xlsb"
)

// OutputFormat selects the on-disk encoding of the technosphere matrix
type OutputFormat string

const (
	OutputSparse OutputFormat = "sparse"
	OutputTable  OutputFormat = "table"
)

// Codec selects the block compression of tabular resources
type Codec string

const (
	CodecBzip2 Codec = "bz2"
	CodecZstd  Codec = "zst"
)

// Extension returns the file suffix written by the codec
func (c Codec) Extension() string {
	return "." + string(c)
}

// TableMediaType returns the mediatype of a compressed CSV resource
func (c Codec) TableMediaType() string {
	switch c {
	case CodecZstd:
		return "text/csv+zstd"
	default:
		return "text/csv+bz2"
	}
}

// SparseSuffix is the suffix of the coordinate matrix encoding
const SparseSuffix = ".coo.zst"

// SparseMediaType is the mediatype of the coordinate matrix encoding
const SparseMediaType = "application/x-coo+zstd"

// Source locates one raw table: a file and, for workbooks, a worksheet
type Source struct {
	Filename  string       `yaml:"filename" validate:"required"`
	Worksheet string       `yaml:"worksheet,omitempty"`
	Format    SourceFormat `yaml:"-"`
}

// DetectFormat maps a filename suffix to a source format
func DetectFormat(filename string) (SourceFormat, bool) {
	switch strings.ToLower(path.Ext(filename)) {
	case ".csv":
		return FormatCSV, true
	case ".xlsx", ".xlsm":
		return FormatXLSX, true
	case ".xlsb":
		return FormatXLSB, true
	default:
		return "", false
	}
}

// ProductionSchema describes the principal production vector source
type ProductionSchema struct {
	Source      `yaml:",inline"`
	ColumnNames []string `yaml:"column_names" validate:"required,len=8"`
	SaveAs      string   `yaml:"save_as" validate:"required"`
}

// TechnosphereSchema describes the raw technosphere matrix source
type TechnosphereSchema struct {
	Source      `yaml:",inline"`
	IndexNames  []string     `yaml:"index_names" validate:"required,len=5"`
	ColumnNames []string     `yaml:"column_names" validate:"required,len=4"`
	Output      OutputFormat `yaml:"output" validate:"required,oneof=sparse table"`
	SaveAs      string       `yaml:"save_as" validate:"required"`
}

// ExtensionSheet describes one worksheet of extension flows
type ExtensionSheet struct {
	Kind       domain.ExtensionKind `yaml:"kind" validate:"required"`
	Source     `yaml:",inline"`
	IndexNames []string `yaml:"index_names" validate:"required,min=2,max=3"`
}

// ExtensionsSchema describes all extension sheets, concatenated in order
type ExtensionsSchema struct {
	Sheets      []ExtensionSheet `yaml:"sheets" validate:"required,min=1,dive"`
	ColumnNames []string         `yaml:"column_names" validate:"required,len=4"`
	SaveAs      string           `yaml:"save_as" validate:"required"`
}

// NomenclatureSheet describes one classification sheet and how its headers map
// to canonical field names
type NomenclatureSheet struct {
	Source  `yaml:",inline"`
	Mapping map[string]string    `yaml:"mapping" validate:"required,min=1"`
	Kind    domain.ExtensionKind `yaml:"kind,omitempty"`
}

// NomenclatureSchema lists the classification sheets per entity
type NomenclatureSchema struct {
	Locations  []NomenclatureSheet `yaml:"locations" validate:"dive"`
	Sectors    []NomenclatureSheet `yaml:"sectors" validate:"dive"`
	Products   []NomenclatureSheet `yaml:"products" validate:"dive"`
	Extensions []NomenclatureSheet `yaml:"extensions" validate:"dive"`
}

// Empty reports whether no sheet is configured
func (n NomenclatureSchema) Empty() bool {
	return len(n.Locations)+len(n.Sectors)+len(n.Products)+len(n.Extensions) == 0
}

// License of the published dataset
type License struct {
	Name  string `yaml:"name" json:"name"`
	Path  string `yaml:"path" json:"path,omitempty"`
	Title string `yaml:"title" json:"title,omitempty"`
}

// SourceRef points to where the raw data was published
type SourceRef struct {
	Title string `yaml:"title" json:"title"`
	Path  string `yaml:"path" json:"path,omitempty"`
}

// Contributor of the data package
type Contributor struct {
	Title string `yaml:"title" json:"title"`
	Email string `yaml:"email" json:"email,omitempty"`
	Path  string `yaml:"path" json:"path,omitempty"`
	Role  string `yaml:"role" json:"role,omitempty"`
}

// DatasetInfo is the identity written to the manifest
type DatasetInfo struct {
	Slug         string        `yaml:"slug" validate:"required"`
	Name         string        `yaml:"name" validate:"required"`
	ID           string        `yaml:"id" validate:"required"`
	Version      string        `yaml:"version" validate:"required"`
	Description  string        `yaml:"description"`
	Image        string        `yaml:"image,omitempty"`
	Licenses     []License     `yaml:"licenses"`
	Sources      []SourceRef   `yaml:"sources"`
	Contributors []Contributor `yaml:"contributors"`
}

// Field of a tabular resource schema
type Field struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type,omitempty" json:"type,omitempty"`
}

// TableSchema lists the fields of a tabular resource
type TableSchema struct {
	Fields []Field `yaml:"fields" json:"fields"`
}

// ResourceDescriptor is the static description of one package resource
type ResourceDescriptor struct {
	Name      string       `yaml:"name" validate:"required"`
	Path      string       `yaml:"path" validate:"required"`
	Profile   string       `yaml:"profile,omitempty"`
	MediaType string       `yaml:"mediatype" validate:"required"`
	Title     string       `yaml:"title,omitempty"`
	Format    string       `yaml:"format,omitempty"`
	Schema    *TableSchema `yaml:"schema,omitempty"`
}

// Version is the complete configuration of one registered dataset release
type Version struct {
	ID           string               `yaml:"id" validate:"required"`
	Dataset      DatasetInfo          `yaml:"dataset"`
	Compression  Codec                `yaml:"compression" validate:"required,oneof=bz2 zst"`
	Production   ProductionSchema     `yaml:"production"`
	Technosphere TechnosphereSchema   `yaml:"technosphere"`
	Extensions   ExtensionsSchema     `yaml:"extensions"`
	Nomenclature NomenclatureSchema   `yaml:"nomenclature"`
	Resources    []ResourceDescriptor `yaml:"resources" validate:"required,min=1,dive"`
}

// ArchiveName returns the file name of the package archive
func (v *Version) ArchiveName() string {
	return v.Dataset.Slug + "-" + strings.ReplaceAll(v.ID, " ", "-") + ".tar"
}

// NomenclaturePath returns the staged file name of a nomenclature table
func (v *Version) NomenclaturePath(resource string) string {
	return resource + ".csv" + v.Compression.Extension()
}

// Resource returns the descriptor with the given name
func (v *Version) Resource(name string) (ResourceDescriptor, bool) {
	for _, r := range v.Resources {
		if r.Name == name {
			return r, true
		}
	}
	return ResourceDescriptor{}, false
}
