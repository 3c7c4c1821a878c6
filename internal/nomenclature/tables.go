package nomenclature

import (
	"fmt"

	apperrors "mriopack/internal/errors"
	"mriopack/pkg/contracts/domain"
)

// Tables holds the extracted entities of one version in source order
type Tables struct {
	Locations           []domain.Location
	Sectors             []domain.Sector
	Products            []domain.Product
	ExtensionCategories []domain.ExtensionCategory
}

// Len returns the number of records of an entity
func (t *Tables) Len(entity Entity) int {
	switch entity {
	case EntityLocations:
		return len(t.Locations)
	case EntitySectors:
		return len(t.Sectors)
	case EntityProducts:
		return len(t.Products)
	case EntityExtensions:
		return len(t.ExtensionCategories)
	default:
		return 0
	}
}

// Locations converts records to locations
func Locations(records []Record) []domain.Location {
	out := make([]domain.Location, len(records))
	for i, r := range records {
		out[i] = domain.Location{Code: r.Get("code"), Name: r.Get("name")}
	}
	return out
}

// Sectors converts records to sectors
func Sectors(records []Record) []domain.Sector {
	out := make([]domain.Sector, len(records))
	for i, r := range records {
		out[i] = domain.Sector{
			Key:      r.Key,
			Location: r.Get("location"),
			Name:     r.Get("name"),
			Code1:    r.Get("code 1"),
			Code2:    r.Get("code 2"),
		}
	}
	return out
}

// Products converts records to products
func Products(records []Record) []domain.Product {
	out := make([]domain.Product, len(records))
	for i, r := range records {
		out[i] = domain.Product{
			Key:      r.Key,
			Location: r.Get("location"),
			Name:     r.Get("name"),
			Code1:    r.Get("code 1"),
			Code2:    r.Get("code 2"),
			Unit:     r.Get("unit"),
		}
	}
	return out
}

// ExtensionCategories converts records to extension categories
func ExtensionCategories(records []Record) []domain.ExtensionCategory {
	out := make([]domain.ExtensionCategory, len(records))
	for i, r := range records {
		out[i] = domain.ExtensionCategory{
			Key:         r.Key,
			Name:        r.Get("name"),
			Unit:        r.Get("unit"),
			Compartment: r.Get("compartment"),
			Kind:        domain.ExtensionKind(r.Get("kind")),
		}
	}
	return out
}

// Encode flattens one entity into a header and records for a flat table
func (t *Tables) Encode(entity Entity) ([]string, [][]string) {
	header := entity.Fields()
	var records [][]string
	switch entity {
	case EntityLocations:
		for _, l := range t.Locations {
			records = append(records, []string{l.Code, l.Name})
		}
	case EntitySectors:
		for _, s := range t.Sectors {
			records = append(records, []string{s.Key, s.Location, s.Name, s.Code1, s.Code2})
		}
	case EntityProducts:
		for _, p := range t.Products {
			records = append(records, []string{p.Key, p.Location, p.Name, p.Code1, p.Code2, p.Unit})
		}
	case EntityExtensions:
		for _, e := range t.ExtensionCategories {
			records = append(records, []string{e.Key, e.Name, e.Unit, e.Compartment, string(e.Kind)})
		}
	}
	return header, records
}

// Decode fills one entity from a flat table written by Encode
func (t *Tables) Decode(entity Entity, header []string, records [][]string) error {
	want := entity.Fields()
	if len(header) != len(want) {
		return apperrors.NewSchemaMismatch(fmt.Sprintf("%s table has %d columns, expected %d", entity, len(header), len(want))).
			WithResource(string(entity))
	}
	for i, name := range want {
		if header[i] != name {
			return apperrors.NewSchemaMismatch(fmt.Sprintf("%s table column %d is %q, expected %q", entity, i+1, header[i], name)).
				WithResource(string(entity))
		}
	}

	converted := make([]Record, len(records))
	for i, rec := range records {
		fields := make(map[string]string, len(want))
		for k, name := range want {
			if k < len(rec) {
				fields[name] = rec[k]
			}
		}
		converted[i] = Record{Key: fields["key"], Fields: fields}
	}

	switch entity {
	case EntityLocations:
		t.Locations = Locations(converted)
	case EntitySectors:
		t.Sectors = Sectors(converted)
	case EntityProducts:
		t.Products = Products(converted)
	case EntityExtensions:
		t.ExtensionCategories = ExtensionCategories(converted)
	default:
		return apperrors.NewInternalError(fmt.Sprintf("unknown entity %q", entity), nil)
	}
	return nil
}
