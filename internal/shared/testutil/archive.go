package testutil

import (
	"archive/tar"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"mriopack/internal/datapackage"
)

// Entry is one resource of a fixture archive
type Entry struct {
	Name    string
	Path    string
	Content []byte
}

// DefaultEntries are two small bzip2-typed resources
var DefaultEntries = []Entry{
	{Name: "technosphere", Path: "technosphere.csv.bz2", Content: []byte("technosphere bytes")},
	{Name: "production", Path: "production.csv.bz2", Content: []byte("production bytes")},
}

// FixtureManifest returns a manifest listing entries with their md5 hashes
func FixtureManifest(entries []Entry) *datapackage.Manifest {
	m := &datapackage.Manifest{
		Profile: "data-package",
		Name:    "exiobase-fixture",
		ID:      "exiobase-fixture-hybrid",
		Title:   "EXIOBASE fixture",
		Version: "3.3.18",
		Created: "2026-01-02T03:04:05Z",
		Conversion: &datapackage.Conversion{
			RegistryVersion:    "3.3.18 hybrid",
			Normalized:         true,
			TechnosphereOutput: "sparse",
		},
	}
	for _, e := range entries {
		sum := md5.Sum(e.Content)
		m.Resources = append(m.Resources, datapackage.Resource{
			Name:      e.Name,
			Path:      e.Path,
			Hash:      hex.EncodeToString(sum[:]),
			MediaType: "application/x-bzip2",
		})
	}
	return m
}

// WriteArchive writes a package archive holding entries to dir/file and
// returns its path. When tamper names an entry, the archived bytes of that
// entry no longer match the manifest hash.
func WriteArchive(t *testing.T, dir, file string, entries []Entry, tamper string) string {
	t.Helper()

	manifest, err := FixtureManifest(entries).Marshal()
	require.NoError(t, err)

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	add := func(name string, data []byte) {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(data)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write(data)
		require.NoError(t, err)
	}

	add(datapackage.ManifestName, manifest)
	for _, e := range entries {
		data := e.Content
		if e.Name == tamper {
			data = append([]byte("x"), data...)
		}
		add(e.Path, data)
	}
	require.NoError(t, tw.Close())

	path := filepath.Join(dir, file)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}
