// Package fileutil reads and writes the JSON data files, transparently
// handling xz and gzip compressed copies.
package fileutil

import (
	"bytes"
	"compress/gzip"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/strongsdef/core/errors"
)

// Compression identifies how a data file is stored on disk.
type Compression string

const (
	// CompressionNone is a plain file.
	CompressionNone Compression = "none"
	// CompressionXZ is an XZ/LZMA2 stream.
	CompressionXZ Compression = "xz"
	// CompressionGzip is a gzip stream.
	CompressionGzip Compression = "gzip"
)

// Injectable for testing write failures.
var osWriteFile = os.WriteFile

var (
	xzMagic   = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
	gzipMagic = []byte{0x1f, 0x8b}
)

// DetectCompression inspects the leading magic bytes of data.
func DetectCompression(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, xzMagic):
		return CompressionXZ
	case bytes.HasPrefix(data, gzipMagic):
		return CompressionGzip
	default:
		return CompressionNone
	}
}

// ReadFile reads the whole file at path, decompressing it if needed, and
// reports the compression it found.
func ReadFile(path string) ([]byte, Compression, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errors.NewIO("read", path, err)
	}

	c := DetectCompression(raw)
	var r io.Reader
	switch c {
	case CompressionXZ:
		xzr, err := xz.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, "", errors.NewIO("decompress", path, err)
		}
		r = xzr
	case CompressionGzip:
		gzr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, "", errors.NewIO("decompress", path, err)
		}
		defer gzr.Close()
		r = gzr
	default:
		return raw, CompressionNone, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", errors.NewIO("decompress", path, err)
	}
	return data, c, nil
}

// Compress encodes data with the given compression.
func Compress(data []byte, c Compression) ([]byte, error) {
	var buf bytes.Buffer
	var w io.WriteCloser
	var err error

	switch c {
	case CompressionNone, "":
		return data, nil
	case CompressionXZ:
		w, err = xz.NewWriter(&buf)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
	case CompressionGzip:
		w, err = gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip writer: %w", err)
		}
	default:
		return nil, errors.NewUnsupported("compression format", string(c))
	}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish compression: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile overwrites path with data, compressed as requested. The file is
// truncated and written in place; there is no temporary copy.
func WriteFile(path string, data []byte, c Compression) error {
	out, err := Compress(data, c)
	if err != nil {
		return errors.NewIO("compress", path, err)
	}
	if err := osWriteFile(path, out, 0644); err != nil {
		return errors.NewIO("write", path, err)
	}
	return nil
}

// Digest returns the hex BLAKE3-256 digest of data.
func Digest(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}
