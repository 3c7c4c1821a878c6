package nomenclature

import (
	"context"
	"errors"
	"log/slog"

	apperrors "mriopack/internal/errors"
	"mriopack/internal/schema"
	"mriopack/internal/sources"
)

// Extractor reads every classification sheet configured for a version
type Extractor struct {
	reader sources.Reader
	logger *slog.Logger
}

// NewExtractor creates an extractor reading through r
func NewExtractor(r sources.Reader, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{reader: r, logger: logger.With(slog.String("component", "nomenclature"))}
}

// Run extracts all entities of v. A version without classification sheets
// yields empty tables.
func (e *Extractor) Run(ctx context.Context, v *schema.Version) (*Tables, error) {
	tables := &Tables{}
	sheets := map[Entity][]schema.NomenclatureSheet{
		EntityLocations:  v.Nomenclature.Locations,
		EntitySectors:    v.Nomenclature.Sectors,
		EntityProducts:   v.Nomenclature.Products,
		EntityExtensions: v.Nomenclature.Extensions,
	}

	for _, entity := range Entities() {
		var records []Record
		for _, sheet := range sheets[entity] {
			rows, err := e.reader.ReadTable(ctx, sheet.Source)
			if err != nil {
				return nil, e.wrap(err, v)
			}
			recs, err := Extract(rows, sheet, entity)
			if err != nil {
				return nil, e.wrap(err, v)
			}
			records = append(records, recs...)
		}

		switch entity {
		case EntityLocations:
			tables.Locations = Locations(records)
		case EntitySectors:
			tables.Sectors = Sectors(records)
		case EntityProducts:
			tables.Products = Products(records)
		case EntityExtensions:
			tables.ExtensionCategories = ExtensionCategories(records)
		}

		e.logger.InfoContext(ctx, "nomenclature extracted",
			slog.String("entity", string(entity)),
			slog.Int("records", len(records)),
			slog.String("version", v.ID))
	}
	return tables, nil
}

func (e *Extractor) wrap(err error, v *schema.Version) error {
	var ce *apperrors.ConversionError
	if errors.As(err, &ce) {
		return ce.WithStage("nomenclature").WithVersion(v.ID)
	}
	return err
}
