// Package datapackage builds and reads the archive a conversion produces.
//
// An archive is a flat tar holding datapackage.json and one file per listed
// resource. The manifest is built fresh for every archive from the static
// resource list of the version; resources whose staged file is absent are
// pruned and every remaining file gets an md5 digest.
//
// A Package is read-only. Every load call opens the archive, extracts the one
// entry it needs and closes it again, and returns values the caller owns.
package datapackage
