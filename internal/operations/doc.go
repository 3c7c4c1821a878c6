// Package operations runs a conversion as an ordered set of steps.
//
// A conversion reads the raw sources of one registered dataset version and
// stages the canonical resources before packaging them:
//
//   - nomenclature: classification tables (locations, sectors, products,
//     extension categories)
//   - production: the principal production vector, which fixes the canonical
//     sector and product order and the positions that survive pruning
//   - technosphere: the product by sector flow matrix, verified against that
//     order and normalized into coefficients
//   - extensions: every extension sheet, verified against the sector order,
//     concatenated and normalized
//   - package: manifest, hashes and the tar archive
//
// Manager: executes the steps of a Registry in dependency order. Execution is
// sequential and fail-fast; once a step fails every remaining step is skipped,
// so the package step only runs over a complete set of staged resources.
//
// Step: one unit of work. Steps share an OperationState that carries the
// resolved version, the source reader and what earlier steps produced.
//
// Example usage:
//
//	archive, err := operations.Convert(ctx, "/data/exiobase", "3.3.18 hybrid", operations.DefaultOptions())
//
// or, with explicit wiring:
//
//	registry, _ := operations.NewPipeline(logger)
//	manager := operations.NewManager(registry, schema.Default(), nil, logger)
//	resp, err := manager.Execute(ctx, operations.ConversionRequest{
//		SourceDir: "/data/exiobase",
//		Version:   "3.3.18 hybrid",
//		Options:   operations.DefaultOptions(),
//	})
package operations
