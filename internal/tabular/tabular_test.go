package tabular

import (
	"bytes"
	"io"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	apperrors "mriopack/internal/errors"
	"mriopack/internal/matrix"
	"mriopack/internal/schema"
)

func sampleMatrix(t *testing.T) *matrix.Labeled {
	t.Helper()
	rows := matrix.NewAxis([]string{"name", "unit"}, []matrix.Label{
		{"CO2", "kg"},
		{"Land, \"arable\"", "km2"},
	})
	cols := matrix.NewAxis([]string{"location", "sector name"}, []matrix.Label{
		{"AT", "Wheat"},
		{"BE", "Wheat"},
		{"BE", "Steel"},
	})
	m, err := matrix.NewLabeled(rows, cols, mat.NewDense(2, 3, []float64{
		0.1, 1e-17, -3,
		0, 1.0 / 3.0, math.MaxFloat64,
	}))
	require.NoError(t, err)
	return m
}

func TestLabeledRoundTrip(t *testing.T) {
	m := sampleMatrix(t)

	var buf bytes.Buffer
	require.NoError(t, EncodeLabeled(&buf, m))

	got, err := ReadLabeled(&buf, Layout{IndexNames: m.Rows.Names, ColumnNames: m.Cols.Names})
	require.NoError(t, err)

	assert.Equal(t, m.Rows, got.Rows)
	assert.Equal(t, m.Cols, got.Cols)
	assert.True(t, mat.Equal(m.Data, got.Data))
}

func TestLabeledLayoutOnDisk(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeLabeled(&buf, sampleMatrix(t)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, ",location,AT,BE,BE", lines[0])
	assert.Equal(t, ",sector name,Wheat,Wheat,Steel", lines[1])
	assert.Equal(t, "name,unit,,,", lines[2])
	assert.Equal(t, "CO2,kg,0.1,1e-17,-3", lines[3])
}

func TestDecodeLabeledWithoutNamesRow(t *testing.T) {
	rows := [][]string{
		{"", "region", "AT", "BE"},
		{"", "sector", "A", "B"},
		{"CO2", "kg", "1", ""},
		{"", "", "", ""},
		{"CH4", "kg", " 2.5 ", "3"},
	}
	m, err := DecodeLabeled(rows, Layout{IndexNames: []string{"name", "unit"}, ColumnNames: []string{"location", "sector name"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"location", "sector name"}, m.Cols.Names)
	assert.Equal(t, []matrix.Label{{"AT", "A"}, {"BE", "B"}}, m.Cols.Labels)
	assert.Equal(t, []matrix.Label{{"CO2", "kg"}, {"CH4", "kg"}}, m.Rows.Labels)
	assert.Equal(t, []float64{1, 0, 2.5, 3}, m.Data.RawMatrix().Data)
}

func TestDecodeLabeledKeepsFirstRowWithoutFlows(t *testing.T) {
	layout := Layout{IndexNames: []string{"name", "unit"}, ColumnNames: []string{"location", "sector name", "sector code 1", "sector code 2"}}
	header := [][]string{
		{"", "location", "AT", "BE"},
		{"", "sector name", "Wheat", "Steel"},
		{"", "sector code 1", "p01", "p24"},
		{"", "sector code 2", "c01", "c24"},
	}

	tests := []struct {
		name string
		rows [][]string
		want []matrix.Label
	}{
		{
			name: "blank values without names row",
			rows: [][]string{{"Coal", "kg", "", ""}, {"Oil", "kg", "1", "2"}},
			want: []matrix.Label{{"Coal", "kg"}, {"Oil", "kg"}},
		},
		{
			name: "names row",
			rows: [][]string{{"name", "unit", "", ""}, {"Coal", "kg", "", ""}, {"Oil", "kg", "1", "2"}},
			want: []matrix.Label{{"Coal", "kg"}, {"Oil", "kg"}},
		},
		{
			name: "names row in other case",
			rows: [][]string{{"Name", "Unit"}, {"Oil", "kg", "1", "2"}},
			want: []matrix.Label{{"Oil", "kg"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := append(append([][]string{}, header...), tt.rows...)
			m, err := DecodeLabeled(rows, layout)
			require.NoError(t, err)

			assert.Equal(t, tt.want, m.Rows.Labels)
			r, c := m.Data.Dims()
			assert.Equal(t, len(tt.want), r)
			assert.Equal(t, 2, c)
			assert.Equal(t, []float64{1, 2}, mat.Row(nil, r-1, m.Data))
		})
	}
}

func TestDecodeLabeledErrors(t *testing.T) {
	layout := Layout{IndexNames: []string{"name"}, ColumnNames: []string{"location"}}

	_, err := DecodeLabeled(nil, layout)
	assert.ErrorIs(t, err, apperrors.ErrSchemaMismatch)

	_, err = DecodeLabeled([][]string{{"", "AT"}, {"CO2", "abc"}}, layout)
	assert.ErrorIs(t, err, apperrors.ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "abc")

	_, err = DecodeLabeled([][]string{{"x"}}, Layout{})
	assert.ErrorIs(t, err, apperrors.ErrConfig)
}

func TestLabeledEmptyAxis(t *testing.T) {
	m, err := matrix.NewLabeled(
		matrix.NewAxis([]string{"name"}, nil),
		matrix.NewAxis([]string{"location"}, []matrix.Label{{"AT"}}),
		nil,
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeLabeled(&buf, m))
	got, err := ReadLabeled(&buf, Layout{IndexNames: []string{"name"}, ColumnNames: []string{"location"}})
	require.NoError(t, err)
	r, c := got.Dims()
	assert.Equal(t, 0, r)
	assert.Equal(t, 1, c)
}

func TestProductionRoundTrip(t *testing.T) {
	pv := &matrix.ProductionVector{Entries: []matrix.ProductionEntry{
		matrix.EntryFromRow([]string{"AT", "Wheat", "A_PARI", "i01.a", "Wheat", "C_PARI", "p01.a", "tonnes"}, 12.5),
		matrix.EntryFromRow([]string{"BE", "Steel", "A_STEL", "i27.a", "Steel", "C_STEL", "p27.a", "tonnes"}, 0),
	}}

	var buf bytes.Buffer
	require.NoError(t, EncodeProduction(&buf, pv))
	assert.True(t, strings.HasPrefix(buf.String(), "location,sector name,sector code 1,sector code 2,product name,product code 1,product code 2,unit,value\n"))

	got, err := ReadProduction(&buf)
	require.NoError(t, err)
	assert.Equal(t, pv, got)
}

func TestDecodeProductionRejectsWrongHeader(t *testing.T) {
	_, err := DecodeProduction([][]string{{"region"}})
	assert.ErrorIs(t, err, apperrors.ErrSchemaMismatch)
}

func TestDecodeProductionWide(t *testing.T) {
	names := matrix.ProductionFields
	rows := [][]string{
		{"location", "AT", "BE"},
		{"sector name", "Wheat", "Steel"},
		{"sector code 1", "A_PARI", "A_STEL"},
		{"sector code 2", "i01.a", "i27.a"},
		{"product name", "Wheat", "Steel"},
		{"product code 1", "C_PARI", "C_STEL"},
		{"product code 2", "p01.a", "p27.a"},
		{"unit", "tonnes", "tonnes"},
		{"0", "12.5", "0"},
	}

	pv, err := DecodeProductionWide(rows, names)
	require.NoError(t, err)
	require.Equal(t, 2, pv.Len())
	assert.Equal(t, matrix.Label{"AT", "Wheat", "A_PARI", "i01.a"}, pv.Entries[0].Sector)
	assert.Equal(t, matrix.Label{"AT", "Wheat", "C_PARI", "p01.a", "tonnes"}, pv.Entries[0].Product)
	assert.Equal(t, []float64{12.5, 0}, pv.Values())

	_, err = DecodeProductionWide(rows[:4], names)
	assert.ErrorIs(t, err, apperrors.ErrSchemaMismatch)
}

func TestSparseRoundTrip(t *testing.T) {
	s := &matrix.Sparse{NRows: 3, NCols: 2, Entries: []matrix.Triplet{
		{Row: 0, Col: 1, Value: -0.25},
		{Row: 2, Col: 0, Value: 1e-300},
	}}

	var buf bytes.Buffer
	require.NoError(t, EncodeSparse(&buf, s))
	got, err := DecodeSparse(&buf)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestDecodeSparseErrors(t *testing.T) {
	_, err := DecodeSparse(strings.NewReader("PK\x03\x04 not a matrix"))
	assert.ErrorIs(t, err, apperrors.ErrSchemaMismatch)

	var buf bytes.Buffer
	require.NoError(t, EncodeSparse(&buf, &matrix.Sparse{NRows: 1, NCols: 1, Entries: []matrix.Triplet{{Value: 1}}}))
	truncated := buf.Bytes()[:buf.Len()-4]
	_, err = DecodeSparse(bytes.NewReader(truncated))
	assert.ErrorIs(t, err, apperrors.ErrSchemaMismatch)
}

func TestWriteReadFileCodecs(t *testing.T) {
	for _, codec := range []schema.Codec{schema.CodecBzip2, schema.CodecZstd} {
		t.Run(string(codec), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "extensions.csv"+codec.Extension())
			m := sampleMatrix(t)
			require.NoError(t, WriteFile(path, codec, func(w io.Writer) error {
				return EncodeLabeled(w, m)
			}))

			detected, ok := CodecFor(path)
			require.True(t, ok)
			assert.Equal(t, codec, detected)

			var got *matrix.Labeled
			require.NoError(t, ReadFile(path, codec, func(r io.Reader) error {
				var err error
				got, err = ReadLabeled(r, Layout{IndexNames: m.Rows.Names, ColumnNames: m.Cols.Names})
				return err
			}))
			assert.True(t, mat.Equal(m.Data, got.Data))
		})
	}
}

func TestRecordsRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeRecords(&buf, []string{"code", "name"}, [][]string{{"AT", "Austria"}, {"WA", "RoW, Asia"}}))

	header, records, err := ReadRecords(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"code", "name"}, header)
	assert.Equal(t, [][]string{{"AT", "Austria"}, {"WA", "RoW, Asia"}}, records)
}

func TestCodecFor(t *testing.T) {
	_, ok := CodecFor("technosphere.npz")
	assert.False(t, ok)
	assert.True(t, IsSparse("technosphere.coo.zst"))
	assert.False(t, IsSparse("technosphere.csv.zst"))
}
