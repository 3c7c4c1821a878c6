package tabular

import (
	"fmt"
	"io"
	"os"

	"mriopack/internal/schema"
)

// WriteFile creates path and streams encode through the codec. A failed write
// removes the partial file.
func WriteFile(path string, codec schema.Codec, encode func(io.Writer) error) (err error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	cw, err := Compress(file, codec)
	if err != nil {
		return err
	}
	if err := encode(cw); err != nil {
		cw.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

// ReadFile opens path and streams the decompressed content to decode
func ReadFile(path string, codec schema.Codec, decode func(io.Reader) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return ReadStream(file, codec, decode)
}

// ReadStream decompresses r and hands the content to decode
func ReadStream(r io.Reader, codec schema.Codec, decode func(io.Reader) error) error {
	dr, err := Decompress(r, codec)
	if err != nil {
		return err
	}
	defer dr.Close()
	return decode(dr)
}
