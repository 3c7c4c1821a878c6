package operations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"

	"mriopack/internal/axis"
	"mriopack/internal/datapackage"
	apperrors "mriopack/internal/errors"
	"mriopack/internal/flows"
	"mriopack/internal/matrix"
	"mriopack/internal/nomenclature"
	"mriopack/internal/schema"
	"mriopack/internal/tabular"
)

// stepError names the step, version and resource on err. Axis disagreements
// become order_mismatch errors; anything else unclassified is internal.
// Cancellation passes through untouched.
func stepError(stepID string, v *schema.Version, resource string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var ce *apperrors.ConversionError
	if !errors.As(err, &ce) {
		var om *axis.OrderMismatch
		if errors.As(err, &om) {
			ce = apperrors.NewOrderMismatch(err)
		} else {
			ce = apperrors.NewInternalError(err.Error(), err)
		}
		err = ce
	}
	if resource != "" && ce.Resource == "" {
		ce.WithResource(resource)
	}
	ce.WithStage(stepID)
	if v != nil && ce.Version == "" {
		ce.WithVersion(v.ID)
	}
	return err
}

func recordMetadata(state *OperationState, stepID, key string, value interface{}) {
	if s := state.GetStep(stepID); s != nil {
		s.SetMetadata(key, value)
	}
}

func requireProduction(state *OperationState, stepID string) error {
	if state.Production == nil || state.FullProduction == nil {
		return apperrors.NewInternalError("principal production must be converted first", nil).WithStage(stepID)
	}
	return nil
}

// nomenclatureStep extracts the classification tables
type nomenclatureStep struct {
	BaseStage
	logger *slog.Logger
}

func newNomenclatureStep(logger *slog.Logger) *nomenclatureStep {
	return &nomenclatureStep{
		BaseStage: NewBaseStage(StepIDNomenclature, StepNameNomenclature, nil),
		logger:    logger,
	}
}

func (s *nomenclatureStep) Execute(ctx context.Context, state *OperationState) error {
	v := state.Version
	tables, err := nomenclature.NewExtractor(state.Source, s.logger).Run(ctx, v)
	if err != nil {
		return stepError(s.ID(), v, "", err)
	}

	for _, entity := range nomenclature.Entities() {
		if tables.Len(entity) == 0 {
			continue
		}
		header, records := tables.Encode(entity)
		name := v.NomenclaturePath(string(entity))
		err := tabular.WriteFile(state.StagedPath(name), v.Compression, func(w io.Writer) error {
			return tabular.EncodeRecords(w, header, records)
		})
		if err != nil {
			return stepError(s.ID(), v, string(entity), err)
		}
		recordMetadata(state, s.ID(), string(entity), tables.Len(entity))
	}
	state.Tables = tables
	return nil
}

// productionStep reads the principal production vector. It fixes the
// canonical axis order and, when normalizing, the positions that survive.
type productionStep struct {
	BaseStage
}

func newProductionStep() *productionStep {
	return &productionStep{BaseStage: NewBaseStage(StepIDProduction, StepNameProduction, nil)}
}

func (s *productionStep) Execute(ctx context.Context, state *OperationState) error {
	v := state.Version
	meta := v.Production

	rows, err := state.Source.ReadTable(ctx, meta.Source)
	if err != nil {
		return stepError(s.ID(), v, meta.Filename, err)
	}
	pv, err := tabular.DecodeProductionWide(rows, meta.ColumnNames)
	if err != nil {
		return stepError(s.ID(), v, meta.Filename, err)
	}
	if pv.Len() == 0 {
		return stepError(s.ID(), v, meta.Filename, apperrors.NewSchemaMismatch("principal production vector has no entries"))
	}
	if err := checkDistinctSectors(pv); err != nil {
		return stepError(s.ID(), v, meta.Filename, err)
	}

	production := pv
	kept := make([]int, pv.Len())
	for i := range kept {
		kept[i] = i
	}
	if state.Options.Normalize {
		kept = axis.NonZero(pv)
		production = pv.Select(kept)
	}

	err = tabular.WriteFile(state.StagedPath(meta.SaveAs), v.Compression, func(w io.Writer) error {
		return tabular.EncodeProduction(w, production)
	})
	if err != nil {
		return stepError(s.ID(), v, schema.ResourceProduction, err)
	}

	state.FullProduction = pv
	state.Production = production
	state.Kept = kept
	state.Sectors, state.Products = axis.DeriveOrder(production)

	recordMetadata(state, s.ID(), "entries", pv.Len())
	recordMetadata(state, s.ID(), "pruned", pv.Len()-production.Len())
	return nil
}

// checkDistinctSectors rejects a vector listing the same sector twice, since
// positions on the sector axis would then be ambiguous
func checkDistinctSectors(pv *matrix.ProductionVector) error {
	seen := make(map[string]int, pv.Len())
	for i, e := range pv.Entries {
		key := strings.Join(e.Sector, "\x00")
		if first, ok := seen[key]; ok {
			return apperrors.NewSchemaMismatch(
				fmt.Sprintf("sector %s listed at positions %d and %d", e.Sector, first, i))
		}
		seen[key] = i
	}
	return nil
}

// technosphereStep converts the product by sector flow matrix
type technosphereStep struct {
	BaseStage
}

func newTechnosphereStep() *technosphereStep {
	return &technosphereStep{BaseStage: NewBaseStage(StepIDTechnosphere, StepNameTechnosphere, []string{StepIDProduction})}
}

func (s *technosphereStep) Validate(state *OperationState) error {
	return requireProduction(state, s.ID())
}

func (s *technosphereStep) Execute(ctx context.Context, state *OperationState) error {
	v := state.Version
	meta := v.Technosphere
	layout := tabular.Layout{IndexNames: meta.IndexNames, ColumnNames: meta.ColumnNames}
	sectors, products := axis.DeriveOrder(state.FullProduction)

	// the sector order is checked on the header rows before any value is parsed
	header, err := state.Source.ReadHeaders(ctx, meta.Source, len(meta.ColumnNames))
	if err != nil {
		return stepError(s.ID(), v, meta.Filename, err)
	}
	columns, err := tabular.DecodeLabeled(header, layout)
	if err != nil {
		return stepError(s.ID(), v, meta.Filename, err)
	}
	if _, err := axis.Reconcile(axis.NameSectors, columns.Cols, sectors, state.Kept); err != nil {
		return stepError(s.ID(), v, meta.Filename, err)
	}

	rows, err := state.Source.ReadTable(ctx, meta.Source)
	if err != nil {
		return stepError(s.ID(), v, meta.Filename, err)
	}
	raw, err := tabular.DecodeLabeled(rows, layout)
	if err != nil {
		return stepError(s.ID(), v, meta.Filename, err)
	}
	colPos, err := axis.Reconcile(axis.NameSectors, raw.Cols, sectors, state.Kept)
	if err != nil {
		return stepError(s.ID(), v, meta.Filename, err)
	}
	rowPos, err := axis.Reconcile(axis.NameProducts, raw.Rows, products, state.Kept)
	if err != nil {
		return stepError(s.ID(), v, meta.Filename, err)
	}

	m := flows.Project(raw, rowPos, colPos)
	m.Rows = state.Products.Clone()
	m.Cols = state.Sectors.Clone()
	if state.Options.Normalize {
		if m, err = flows.NormalizeTechnosphere(m, state.Production); err != nil {
			return stepError(s.ID(), v, schema.ResourceTechnosphere, err)
		}
	}

	path := state.StagedPath(meta.SaveAs)
	switch meta.Output {
	case schema.OutputSparse:
		coo := matrix.FromDense(m.Data)
		coo.NRows, coo.NCols = m.Dims()
		err = tabular.WriteFile(path, schema.CodecZstd, func(w io.Writer) error {
			return tabular.EncodeSparse(w, coo)
		})
		recordMetadata(state, s.ID(), "nnz", coo.NNZ())
	default:
		err = tabular.WriteFile(path, v.Compression, func(w io.Writer) error {
			return tabular.EncodeLabeled(w, m)
		})
	}
	if err != nil {
		return stepError(s.ID(), v, schema.ResourceTechnosphere, err)
	}
	recordMetadata(state, s.ID(), "output", string(meta.Output))
	return nil
}

// extensionsStep concatenates every extension sheet into one table whose
// rows carry name, unit, compartment and kind
type extensionsStep struct {
	BaseStage
}

func newExtensionsStep() *extensionsStep {
	return &extensionsStep{BaseStage: NewBaseStage(StepIDExtensions, StepNameExtensions, []string{StepIDProduction})}
}

func (s *extensionsStep) Validate(state *OperationState) error {
	return requireProduction(state, s.ID())
}

func (s *extensionsStep) Execute(ctx context.Context, state *OperationState) error {
	v := state.Version
	meta := v.Extensions
	sectors, _ := axis.DeriveOrder(state.FullProduction)
	nCols := state.Sectors.Len()

	var labels []matrix.Label
	var values []float64
	for _, sheet := range meta.Sheets {
		resource := sheet.Filename
		if sheet.Worksheet != "" {
			resource += "#" + sheet.Worksheet
		}

		rows, err := state.Source.ReadTable(ctx, sheet.Source)
		if err != nil {
			return stepError(s.ID(), v, resource, err)
		}
		raw, err := tabular.DecodeLabeled(rows, tabular.Layout{IndexNames: sheet.IndexNames, ColumnNames: meta.ColumnNames})
		if err != nil {
			return stepError(s.ID(), v, resource, err)
		}
		colPos, err := axis.Reconcile(axis.NameSectors, raw.Cols, sectors, state.Kept)
		if err != nil {
			return stepError(s.ID(), v, resource, err)
		}
		part := flows.Project(raw, nil, colPos)

		names, units := part.Rows.Level("name"), part.Rows.Level("unit")
		if names == nil || units == nil {
			return stepError(s.ID(), v, resource,
				apperrors.NewConfigError("extension sheet index must include the name and unit levels", nil))
		}
		compartments := part.Rows.Level("compartment")

		r, _ := part.Dims()
		for i := 0; i < r; i++ {
			label := matrix.Label{names[i], units[i], "", string(sheet.Kind)}
			if compartments != nil {
				label[2] = compartments[i]
			}
			labels = append(labels, label)
			for j := 0; j < nCols; j++ {
				values = append(values, part.At(i, j))
			}
		}
		recordMetadata(state, s.ID(), string(sheet.Kind), r)
	}

	var data *mat.Dense
	if len(labels) > 0 && nCols > 0 {
		data = mat.NewDense(len(labels), nCols, values)
	}
	m, err := matrix.NewLabeled(matrix.NewAxis(matrix.ExtensionFields, labels), state.Sectors.Clone(), data)
	if err != nil {
		return stepError(s.ID(), v, schema.ResourceExtensions, err)
	}
	if state.Options.Normalize {
		if m, err = flows.NormalizeExtension(m, state.Production); err != nil {
			return stepError(s.ID(), v, schema.ResourceExtensions, err)
		}
	}

	err = tabular.WriteFile(state.StagedPath(meta.SaveAs), v.Compression, func(w io.Writer) error {
		return tabular.EncodeLabeled(w, m)
	})
	if err != nil {
		return stepError(s.ID(), v, schema.ResourceExtensions, err)
	}
	return nil
}

// packageStep hashes the staged resources and writes the archive
type packageStep struct {
	BaseStage
	logger *slog.Logger
}

func newPackageStep(logger *slog.Logger) *packageStep {
	return &packageStep{
		BaseStage: NewBaseStage(StepIDPackage, StepNamePackage,
			[]string{StepIDNomenclature, StepIDProduction, StepIDTechnosphere, StepIDExtensions}),
		logger: logger,
	}
}

func (s *packageStep) Validate(state *OperationState) error {
	return requireProduction(state, s.ID())
}

func (s *packageStep) Execute(ctx context.Context, state *OperationState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v := state.Version
	staged := state.Staged()
	produced := make([]string, len(staged))
	for i, p := range staged {
		produced[i] = filepath.Base(p)
	}
	archive, err := datapackage.Build(v, state.StagingDir, datapackage.BuildOptions{
		Flush:    state.Options.Flush,
		Produced: produced,
		Conversion: &datapackage.Conversion{
			RegistryVersion:    v.ID,
			Normalized:         state.Options.Normalize,
			TechnosphereOutput: string(v.Technosphere.Output),
			RunID:              state.ID,
		},
		Logger: s.logger,
	})
	if err != nil {
		return stepError(s.ID(), v, "", err)
	}
	state.Archive = archive
	recordMetadata(state, s.ID(), "archive", archive)
	return nil
}
