// Package axis derives the canonical axis order of a dataset and checks every
// other matrix against it.
//
// The principal production vector is the ground truth: its entry order is the
// order the publisher built every companion table in. The order is never
// sorted. Checks compare label tuples position by position, so an axis holding
// the right labels in a different order is rejected. Nothing here reorders a
// mismatched axis.
package axis
