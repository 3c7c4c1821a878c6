// Package tabular implements the on-disk encodings of a data package.
//
// Labeled matrices are written as CSV with one header row per column level,
// followed by a row naming the index levels and then the data rows. Flat
// tables (production, nomenclature) are plain CSV with a single header row.
// Every table is compressed with the codec chosen by the version (bzip2 or
// zstd). The technosphere may instead be stored as a zstd compressed
// coordinate list.
//
// Floats are written in their shortest exact form so that decoding a table
// returns exactly the values that were encoded.
package tabular
