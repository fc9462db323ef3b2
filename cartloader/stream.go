package cartloader

import (
	"archive/tar"
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// A tar header carries "ustar" at this offset.
const (
	tarMagicOffset = 257
	tarBlockSize   = 512
)

// decompressor wraps r in the reader for a single-stream format.
func decompressor(format formatType, r io.Reader) (io.ReadCloser, error) {
	switch format {
	case formatGzip:
		return gzip.NewReader(r)
	case formatXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	case formatZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	case formatLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case formatBrotli:
		return io.NopCloser(brotli.NewReader(r)), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// extractFromStream decompresses a single-stream file. A tar inside the
// stream is searched for the first .lua file; anything else is the cart.
func extractFromStream(r io.Reader, format formatType, path string) ([]byte, string, error) {
	dr, err := decompressor(format, r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer dr.Close()

	br := bufio.NewReaderSize(dr, tarBlockSize)
	if head, _ := br.Peek(tarBlockSize); isTar(head) {
		return extractFromTar(br)
	}

	data, err := limitedRead(br)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decompress %s: %w", filepath.Base(path), err)
	}
	return data, innerName(path), nil
}

func isTar(head []byte) bool {
	return len(head) >= tarMagicOffset+5 && string(head[tarMagicOffset:tarMagicOffset+5]) == "ustar"
}

// extractFromTar extracts the first .lua file from a tar stream
func extractFromTar(r io.Reader) ([]byte, string, error) {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to read tar entry: %w", err)
		}

		if header.Typeflag != tar.TypeReg || !isCartFile(header.Name) {
			continue
		}

		data, err := limitedRead(tr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", header.Name, err)
		}
		return data, filepath.Base(header.Name), nil
	}

	return nil, "", ErrNoCart
}

// innerName strips the compression extension: "game.lua.gz" is "game.lua".
func innerName(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		return base
	}
	return name
}
