// Package nomenclature turns raw classification sheets into entity records.
//
// Publisher headers are renamed to canonical field names through the alias
// mapping of the version. Every record gets a synthesized composite key
// because no single published column is unique across the multi-regional
// tables.
package nomenclature
