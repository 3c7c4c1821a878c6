package nomenclature

import (
	"fmt"
	"sort"
	"strings"

	apperrors "mriopack/internal/errors"
	"mriopack/internal/schema"
	"mriopack/pkg/contracts/domain"
)

// Entity selects which kind of record a sheet holds
type Entity string

const (
	EntityLocations  Entity = schema.ResourceLocations
	EntitySectors    Entity = schema.ResourceSectors
	EntityProducts   Entity = schema.ResourceProducts
	EntityExtensions Entity = schema.ResourceExtensionCategories
)

// Entities lists every entity in package order
func Entities() []Entity {
	return []Entity{EntityLocations, EntitySectors, EntityProducts, EntityExtensions}
}

// Fields returns the canonical field names of an entity, key first
func (e Entity) Fields() []string {
	switch e {
	case EntityLocations:
		return []string{"code", "name"}
	case EntitySectors:
		return []string{"key", "location", "name", "code 1", "code 2"}
	case EntityProducts:
		return []string{"key", "location", "name", "code 1", "code 2", "unit"}
	case EntityExtensions:
		return []string{"key", "name", "unit", "compartment", "kind"}
	default:
		return nil
	}
}

// required canonical fields a mapping must produce
func (e Entity) required() []string {
	switch e {
	case EntityLocations:
		return []string{"code"}
	case EntitySectors, EntityProducts:
		return []string{"location", "name"}
	case EntityExtensions:
		return []string{"name"}
	default:
		return nil
	}
}

// Record is one extracted row keyed by canonical field name
type Record struct {
	Key    string
	Fields map[string]string
}

// Get returns a field value or the empty string
func (r Record) Get(field string) string {
	return r.Fields[field]
}

// Extract renames the header row of rows through the sheet mapping and emits
// one record per non-empty data row, in source order
func Extract(rows [][]string, sheet schema.NomenclatureSheet, entity Entity) ([]Record, error) {
	for _, field := range entity.required() {
		if !mapsTo(sheet.Mapping, field) {
			return nil, apperrors.NewConfigError(fmt.Sprintf("mapping for %s does not produce field %q", entity, field), nil).
				WithResource(sheetName(sheet))
		}
	}
	var kind domain.ExtensionKind
	if entity == EntityExtensions {
		k, err := domain.ParseExtensionKind(string(sheet.Kind))
		if err != nil {
			return nil, apperrors.NewConfigError(err.Error(), nil).WithResource(sheetName(sheet))
		}
		kind = k
	}
	if len(rows) == 0 {
		return nil, apperrors.NewSchemaMismatch("sheet has no header row").WithResource(sheetName(sheet))
	}

	position := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if _, seen := position[h]; !seen {
			position[h] = i
		}
	}

	aliases := make([]string, 0, len(sheet.Mapping))
	for alias := range sheet.Mapping {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	columns := make(map[string]int, len(aliases))
	var missing []string
	for _, alias := range aliases {
		i, ok := position[strings.TrimSpace(alias)]
		if !ok {
			missing = append(missing, alias)
			continue
		}
		columns[sheet.Mapping[alias]] = i
	}
	if len(missing) > 0 {
		return nil, apperrors.NewSchemaMismatch(fmt.Sprintf("missing header aliases %q", missing)).
			WithResource(sheetName(sheet)).
			WithContext("headers", rows[0])
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		fields := make(map[string]string, len(columns)+1)
		empty := true
		for field, i := range columns {
			v := ""
			if i < len(row) {
				v = strings.TrimSpace(row[i])
			}
			if v != "" {
				empty = false
			}
			fields[field] = v
		}
		if empty {
			continue
		}
		if entity == EntityExtensions {
			fields["kind"] = string(kind)
		}
		records = append(records, Record{Key: compositeKey(entity, fields), Fields: fields})
	}
	return records, nil
}

func compositeKey(entity Entity, f map[string]string) string {
	switch entity {
	case EntityLocations:
		return f["code"]
	case EntitySectors:
		return domain.SectorKey(f["location"], f["name"])
	case EntityProducts:
		return domain.ProductKey(f["location"], f["name"])
	case EntityExtensions:
		return domain.ExtensionKey(domain.ExtensionKind(f["kind"]), f["name"], f["compartment"])
	default:
		return ""
	}
}

func mapsTo(mapping map[string]string, field string) bool {
	for _, target := range mapping {
		if target == field {
			return true
		}
	}
	return false
}

func sheetName(sheet schema.NomenclatureSheet) string {
	if sheet.Worksheet != "" {
		return sheet.Filename + "#" + sheet.Worksheet
	}
	return sheet.Filename
}
