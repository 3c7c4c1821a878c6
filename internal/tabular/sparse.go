package tabular

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	apperrors "mriopack/internal/errors"
	"mriopack/internal/matrix"
)

const sparseVersion byte = 1

var sparseMagic = []byte("MRCOO\x00")

// EncodeSparse writes the coordinate list in little endian binary form:
// magic, version, rows, cols, nnz, then (row, col, value) per entry. The
// stream is stored through the zstd codec.
func EncodeSparse(w io.Writer, s *matrix.Sparse) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(sparseMagic); err != nil {
		return err
	}
	if err := bw.WriteByte(sparseVersion); err != nil {
		return err
	}

	var buf [8]byte
	put := func(v uint64) error {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, err := bw.Write(buf[:])
		return err
	}

	for _, v := range []int{s.NRows, s.NCols, len(s.Entries)} {
		if err := put(uint64(v)); err != nil {
			return err
		}
	}
	for _, t := range s.Entries {
		if err := put(uint64(t.Row)); err != nil {
			return err
		}
		if err := put(uint64(t.Col)); err != nil {
			return err
		}
		if err := put(math.Float64bits(t.Value)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DecodeSparse reads a coordinate list written by EncodeSparse
func DecodeSparse(r io.Reader) (*matrix.Sparse, error) {
	br := bufio.NewReader(r)

	header := make([]byte, len(sparseMagic)+1)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, apperrors.NewSchemaMismatch(fmt.Sprintf("sparse header: %v", err))
	}
	if string(header[:len(sparseMagic)]) != string(sparseMagic) {
		return nil, apperrors.NewSchemaMismatch("not a coordinate matrix")
	}
	if v := header[len(sparseMagic)]; v != sparseVersion {
		return nil, apperrors.NewSchemaMismatch(fmt.Sprintf("unsupported coordinate matrix version %d", v))
	}

	var buf [8]byte
	next := func() (uint64, error) {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(buf[:]), nil
	}

	var dims [3]uint64
	for i := range dims {
		v, err := next()
		if err != nil {
			return nil, apperrors.NewSchemaMismatch(fmt.Sprintf("sparse dimensions: %v", err))
		}
		dims[i] = v
	}
	const maxDim = 1 << 31
	if dims[0] > maxDim || dims[1] > maxDim || dims[2] > dims[0]*dims[1] {
		return nil, apperrors.NewSchemaMismatch(fmt.Sprintf("implausible coordinate matrix %dx%d with %d entries", dims[0], dims[1], dims[2]))
	}

	capacity := dims[2]
	if capacity > 1<<20 {
		capacity = 1 << 20
	}
	s := &matrix.Sparse{NRows: int(dims[0]), NCols: int(dims[1]), Entries: make([]matrix.Triplet, 0, capacity)}
	for k := uint64(0); k < dims[2]; k++ {
		row, err := next()
		if err != nil {
			return nil, apperrors.NewSchemaMismatch(fmt.Sprintf("sparse entry %d: %v", k, err))
		}
		col, err := next()
		if err != nil {
			return nil, apperrors.NewSchemaMismatch(fmt.Sprintf("sparse entry %d: %v", k, err))
		}
		bits, err := next()
		if err != nil {
			return nil, apperrors.NewSchemaMismatch(fmt.Sprintf("sparse entry %d: %v", k, err))
		}
		if row >= dims[0] || col >= dims[1] {
			return nil, apperrors.NewSchemaMismatch(fmt.Sprintf("sparse entry %d at (%d, %d) outside %dx%d matrix", k, row, col, dims[0], dims[1]))
		}
		s.Entries = append(s.Entries, matrix.Triplet{Row: int(row), Col: int(col), Value: math.Float64frombits(bits)})
	}
	return s, nil
}
