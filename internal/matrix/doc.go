// Package matrix provides the labeled in-memory model shared by the converter
// and the loader.
//
// A [Labeled] matrix couples a dense gonum matrix with one [Axis] per
// dimension. Every axis entry is a [Label], an ordered tuple of field values
// (for example location, sector name, sector code 1, sector code 2). Labels are
// compared field by field, never as a joined string.
//
// The technosphere matrix is also available as a [Sparse] coordinate list,
// which is how it is stored on disk when a version selects the sparse output
// format.
//
// [ProductionVector] holds the principal production entries in the order the
// publisher emitted them. That order is the canonical axis order for every
// other matrix in a package.
package matrix
