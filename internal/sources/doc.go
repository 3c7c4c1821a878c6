// Package sources reads raw tables out of the files a dataset publisher ships.
//
// The source format of every table is fixed when the version registry is
// loaded, so callers never branch on file suffixes. CSV files are read with
// encoding/csv and workbooks with excelize. Binary workbooks (xlsb) are a
// known format without a reader and fail with an unsupported format error.
package sources
