package datapackage

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	apperrors "mriopack/internal/errors"
	"mriopack/internal/axis"
	"mriopack/internal/flows"
	"mriopack/internal/matrix"
	"mriopack/internal/nomenclature"
	"mriopack/internal/schema"
	"mriopack/internal/tabular"
	"mriopack/pkg/contracts/domain"
)

const stageLoad = "load"

// Package is an opened, read-only data package archive
type Package struct {
	path     string
	manifest *Manifest
	logger   *slog.Logger
}

// Open checks that path is a tar archive holding a manifest and reads the
// manifest
func Open(path string, logger *slog.Logger) (*Package, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !strings.HasSuffix(path, ".tar") {
		return nil, loadErr(apperrors.NewConversionError(apperrors.ErrTypeNotATar, "data package must be a .tar archive", nil).WithResource(path))
	}

	p := &Package{path: path, logger: logger.With(slog.String("component", "loader"), slog.String("archive", path))}

	var data []byte
	err := p.scan(func(hdr *tar.Header, r io.Reader) (bool, error) {
		if hdr.Name != ManifestName {
			return false, nil
		}
		b, err := io.ReadAll(r)
		data = b
		return true, err
	})
	if err != nil {
		return nil, loadErr(err)
	}
	if data == nil {
		return nil, loadErr(apperrors.NewConversionError(apperrors.ErrTypeMissingManifest, "archive has no "+ManifestName, nil).WithResource(path))
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, loadErr(err)
	}
	p.manifest = m
	return p, nil
}

// scan walks the archive entries until visit reports done. The archive is
// opened for the walk and closed afterwards.
func (p *Package) scan(visit func(hdr *tar.Header, r io.Reader) (bool, error)) error {
	f, err := os.Open(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperrors.NewConversionError(apperrors.ErrTypeNotATar, "archive does not exist", err).WithResource(p.path)
		}
		return apperrors.NewInternalError("cannot open archive", err).WithResource(p.path)
	}
	defer f.Close()

	tr := tar.NewReader(f)
	for entries := 0; ; entries++ {
		hdr, err := tr.Next()
		if err == io.EOF {
			if entries == 0 {
				return apperrors.NewConversionError(apperrors.ErrTypeNotATar, "archive is empty", nil).WithResource(p.path)
			}
			return nil
		}
		if err != nil {
			return apperrors.NewConversionError(apperrors.ErrTypeNotATar, "not a tar archive", err).WithResource(p.path)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		done, err := visit(hdr, tr)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Path returns the archive path
func (p *Package) Path() string {
	return p.path
}

// Manifest returns a copy of the manifest
func (p *Package) Manifest() *Manifest {
	m := *p.manifest
	m.Resources = append([]Resource(nil), p.manifest.Resources...)
	if p.manifest.Conversion != nil {
		c := *p.manifest.Conversion
		m.Conversion = &c
	}
	return &m
}

// Resource returns the descriptor of the resource with the given name
func (p *Package) Resource(name string) (Resource, error) {
	r, err := p.manifest.Resource(name)
	if err != nil {
		return Resource{}, loadErr(err)
	}
	return r, nil
}

// Open streams the raw (still compressed) bytes of a resource to read.
// A listed resource without an archive entry is an integrity error.
func (p *Package) Open(name string, read func(io.Reader) error) error {
	res, err := p.Resource(name)
	if err != nil {
		return err
	}
	return p.entry(res, read)
}

func (p *Package) entry(res Resource, read func(io.Reader) error) error {
	found := false
	err := p.scan(func(hdr *tar.Header, r io.Reader) (bool, error) {
		if hdr.Name != res.Path {
			return false, nil
		}
		found = true
		return true, read(r)
	})
	if err != nil {
		return loadErr(withResource(err, res.Name))
	}
	if !found {
		return loadErr(apperrors.NewIntegrityError(res.Name, fmt.Sprintf("manifest lists %s but the archive has no such file", res.Path)))
	}
	return nil
}

// decode opens a compressed table resource and hands the plain stream to fn
func (p *Package) decode(name string, fn func(io.Reader) error) error {
	res, err := p.Resource(name)
	if err != nil {
		return err
	}
	codec, ok := tabular.CodecFor(res.Path)
	if !ok {
		return loadErr(apperrors.NewUnsupportedFormat(res.Path, stageLoad).WithResource(name))
	}
	return p.entry(res, func(r io.Reader) error {
		return tabular.ReadStream(r, codec, fn)
	})
}

// LoadPrincipalProduction returns the production vector in stored order
func (p *Package) LoadPrincipalProduction() (*matrix.ProductionVector, error) {
	var pv *matrix.ProductionVector
	err := p.decode(schema.ResourceProduction, func(r io.Reader) error {
		var err error
		pv, err = tabular.ReadProduction(r)
		return err
	})
	if err != nil {
		return nil, loadErr(withResource(err, schema.ResourceProduction))
	}
	return pv, nil
}

// LoadTechnosphere returns the technosphere coefficients as a coordinate
// matrix, whichever encoding the package uses
func (p *Package) LoadTechnosphere() (*matrix.Sparse, error) {
	res, err := p.Resource(schema.ResourceTechnosphere)
	if err != nil {
		return nil, err
	}

	if !tabular.IsSparse(res.Path) {
		m, err := p.loadTechnosphereTable()
		if err != nil {
			return nil, err
		}
		s := matrix.FromDense(m.Data)
		s.NRows, s.NCols = m.Dims()
		return s, nil
	}

	var out *matrix.Sparse
	err = p.decode(schema.ResourceTechnosphere, func(r io.Reader) error {
		var err error
		out, err = tabular.DecodeSparse(r)
		return err
	})
	if err != nil {
		return nil, loadErr(withResource(err, schema.ResourceTechnosphere))
	}
	return out, nil
}

// LoadTechnosphereDense returns the labeled technosphere. Labels are derived
// again from the stored production vector; a table encoding must list
// exactly that order.
func (p *Package) LoadTechnosphereDense() (*matrix.Labeled, error) {
	pv, err := p.LoadPrincipalProduction()
	if err != nil {
		return nil, err
	}
	sectors, products := axis.DeriveOrder(pv)

	res, err := p.Resource(schema.ResourceTechnosphere)
	if err != nil {
		return nil, err
	}

	if !tabular.IsSparse(res.Path) {
		m, err := p.loadTechnosphereTable()
		if err != nil {
			return nil, err
		}
		if err := axis.Verify(axis.NameProducts, m.Rows, products); err != nil {
			return nil, loadErr(apperrors.NewOrderMismatch(err).WithResource(res.Name))
		}
		if err := axis.Verify(axis.NameSectors, m.Cols, sectors); err != nil {
			return nil, loadErr(apperrors.NewOrderMismatch(err).WithResource(res.Name))
		}
		return m, nil
	}

	s, err := p.LoadTechnosphere()
	if err != nil {
		return nil, err
	}
	if s.NRows != products.Len() || s.NCols != sectors.Len() {
		return nil, loadErr(apperrors.NewIntegrityError(res.Name,
			fmt.Sprintf("technosphere is %dx%d but production has %d entries", s.NRows, s.NCols, pv.Len())))
	}
	dense, err := s.ToDense()
	if err != nil {
		return nil, loadErr(apperrors.NewIntegrityError(res.Name, err.Error()))
	}
	m, err := matrix.NewLabeled(products, sectors, dense)
	if err != nil {
		return nil, loadErr(apperrors.NewInternalError("cannot label technosphere", err).WithResource(res.Name))
	}
	return m, nil
}

func (p *Package) loadTechnosphereTable() (*matrix.Labeled, error) {
	var m *matrix.Labeled
	layout := tabular.Layout{IndexNames: matrix.ProductFields, ColumnNames: matrix.SectorFields}
	err := p.decode(schema.ResourceTechnosphere, func(r io.Reader) error {
		var err error
		m, err = tabular.ReadLabeled(r, layout)
		return err
	})
	if err != nil {
		return nil, loadErr(withResource(err, schema.ResourceTechnosphere))
	}
	return m, nil
}

// ExtensionQuery selects a view of the extension flows
type ExtensionQuery struct {
	// Kinds restricts the rows to these categories; empty keeps every row
	Kinds []domain.ExtensionKind
	// FlipSigns applies the sign convention to the returned view
	FlipSigns bool
}

// LoadExtensions returns the extension flows, optionally filtered by kind and
// sign adjusted. The stored flows are never flipped.
func (p *Package) LoadExtensions(q ExtensionQuery) (*matrix.Labeled, error) {
	var m *matrix.Labeled
	layout := tabular.Layout{IndexNames: matrix.ExtensionFields, ColumnNames: matrix.SectorFields}
	err := p.decode(schema.ResourceExtensions, func(r io.Reader) error {
		var err error
		m, err = tabular.ReadLabeled(r, layout)
		return err
	})
	if err != nil {
		return nil, loadErr(withResource(err, schema.ResourceExtensions))
	}

	if len(q.Kinds) > 0 {
		wanted := make(map[domain.ExtensionKind]bool, len(q.Kinds))
		for _, k := range q.Kinds {
			kind, err := domain.ParseExtensionKind(string(k))
			if err != nil {
				return nil, loadErr(apperrors.NewConfigError(err.Error(), nil).WithResource(schema.ResourceExtensions))
			}
			wanted[kind] = true
		}
		var keep []int
		for i, k := range m.Rows.Level("kind") {
			if wanted[domain.ExtensionKind(k)] {
				keep = append(keep, i)
			}
		}
		if keep == nil {
			keep = []int{}
		}
		m = m.SelectRows(keep)
	}

	if q.FlipSigns {
		m = flows.ApplySignConvention(m, flows.LevelCategory(m))
	}
	return m, nil
}

// LoadNomenclature reads the nomenclature tables present in the package.
// Packages built without classification sheets yield empty tables.
func (p *Package) LoadNomenclature() (*nomenclature.Tables, error) {
	tables := &nomenclature.Tables{}
	for _, entity := range nomenclature.Entities() {
		name := string(entity)
		if _, err := p.manifest.Resource(name); apperrors.GetErrorType(err) == apperrors.ErrTypeNotFound {
			continue
		}
		err := p.decode(name, func(r io.Reader) error {
			header, records, err := tabular.ReadRecords(r)
			if err != nil {
				return err
			}
			return tables.Decode(entity, header, records)
		})
		if err != nil {
			return nil, loadErr(withResource(err, name))
		}
	}
	return tables, nil
}

func withResource(err error, name string) error {
	var ce *apperrors.ConversionError
	if errors.As(err, &ce) && ce.Resource == "" {
		ce.WithResource(name)
	}
	return err
}

func loadErr(err error) error {
	var ce *apperrors.ConversionError
	if errors.As(err, &ce) {
		ce.WithStage(stageLoad)
		return err
	}
	return apperrors.NewInternalError("load failed", err).WithStage(stageLoad)
}
