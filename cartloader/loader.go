// Package cartloader reads Lua carts from plain files and from compressed
// archives (ZIP, 7z, RAR, and gzip, xz, zstd, lz4 or brotli streams, which
// may wrap a tar).
package cartloader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
	magicGzip   = []byte{0x1F, 0x8B}
	magicXZ     = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}
	magicZstd   = []byte{0x28, 0xB5, 0x2F, 0xFD}
	magicLZ4    = []byte{0x04, 0x22, 0x4D, 0x18}
)

// Maximum cart size (1MB of source is far beyond any real cart)
const maxCartSize = 1 << 20

// ErrNoCart is returned when no .lua file is found in an archive
var ErrNoCart = errors.New("no .lua file found in archive")

// ErrUnsupportedFormat is returned for unrecognized file formats
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrFileTooLarge is returned when extracted content exceeds size limit
var ErrFileTooLarge = errors.New("file exceeds maximum size limit")

// formatType represents the detected file format
type formatType int

const (
	formatUnknown formatType = iota
	formatRaw
	formatZIP
	format7z
	formatRAR
	formatGzip
	formatXZ
	formatZstd
	formatLZ4
	formatBrotli
)

// Load reads a cart from path on fs, extracting it from an archive when
// needed. Returns the cart source, the cart's file name (useful for display),
// and any error encountered.
func Load(fs afero.Fs, path string) ([]byte, string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	// Read header for magic byte detection
	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, "", fmt.Errorf("failed to read file header: %w", err)
	}
	header = header[:n]

	format := detectFormat(header, path)

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", fmt.Errorf("failed to seek file: %w", err)
	}

	switch format {
	case formatRaw:
		data, err := limitedRead(f)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read cart: %w", err)
		}
		return data, filepath.Base(path), nil

	case formatZIP, format7z:
		info, err := f.Stat()
		if err != nil {
			return nil, "", fmt.Errorf("failed to stat archive: %w", err)
		}
		if format == formatZIP {
			return extractFromZIP(f, info.Size())
		}
		return extractFrom7z(f, info.Size())

	case formatRAR:
		return extractFromRAR(f)

	case formatGzip, formatXZ, formatZstd, formatLZ4, formatBrotli:
		return extractFromStream(f, format, path)

	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// detectFormat determines the file format based on magic bytes and extension
func detectFormat(header []byte, path string) formatType {
	magics := []struct {
		magic  []byte
		format formatType
	}{
		{magicZIP, formatZIP},
		{magicZIPEnd, formatZIP},
		{magic7z, format7z},
		{magicRAR, formatRAR},
		{magicXZ, formatXZ},
		{magicZstd, formatZstd},
		{magicLZ4, formatLZ4},
		{magicGzip, formatGzip},
	}
	for _, m := range magics {
		if bytes.HasPrefix(header, m.magic) {
			return m.format
		}
	}

	// Fall back to extension. Brotli streams have no magic.
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lua":
		return formatRaw
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".rar":
		return formatRAR
	case ".gz", ".tgz":
		return formatGzip
	case ".xz", ".txz":
		return formatXZ
	case ".zst":
		return formatZstd
	case ".lz4":
		return formatLZ4
	case ".br":
		return formatBrotli
	}

	return formatUnknown
}

// isCartFile checks if a filename has a .lua extension (case-insensitive)
func isCartFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".lua")
}

// limitedRead reads from r up to maxCartSize bytes, returning an error if exceeded
func limitedRead(r io.Reader) ([]byte, error) {
	lr := io.LimitReader(r, maxCartSize+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if len(data) > maxCartSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
