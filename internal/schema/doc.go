// Package schema holds the registry of supported dataset releases.
//
// Each Version describes where the raw tables of one release live (files,
// worksheets, header layouts), how the canonical outputs are encoded and
// which resources the data package lists. A Registry is validated once when
// it is built and is read-only afterwards, so one registry can serve any
// number of concurrent conversions. Resolve always returns a copy.
//
// New physical layouts get a new version id. Existing entries are never
// redefined, either in code or through a registry file.
package schema
