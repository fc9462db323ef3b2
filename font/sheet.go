package font

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png" // sheet formats
	"path/filepath"

	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp" // sheet formats
)

// Sheet layout: 16 x 16 cells, character code c at column c%16, row c/16.
const sheetCells = 16

// ErrSheetTooSmall is returned when a sheet cannot hold a full glyph per cell.
var ErrSheetTooSmall = errors.New("font sheet too small")

// Sheet is a font cut from an image. In each cell, the top-left
// GlyphWidth x GlyphHeight pixels are sampled; bright opaque pixels paint.
type Sheet struct {
	glyphs [256]Glyph
}

// NewSheet cuts glyphs out of img.
func NewSheet(img image.Image) (*Sheet, error) {
	b := img.Bounds()
	cellW := b.Dx() / sheetCells
	cellH := b.Dy() / sheetCells
	if cellW < GlyphWidth || cellH < GlyphHeight {
		return nil, fmt.Errorf("%w: %dx%d", ErrSheetTooSmall, b.Dx(), b.Dy())
	}

	s := &Sheet{}
	for c := 0; c < 256; c++ {
		ox := b.Min.X + (c%sheetCells)*cellW
		oy := b.Min.Y + (c/sheetCells)*cellH
		for y := 0; y < GlyphHeight; y++ {
			for x := 0; x < GlyphWidth; x++ {
				if painted(img.At(ox+x, oy+y)) {
					s.glyphs[c][y][x] = 1
				}
			}
		}
	}
	return s, nil
}

func painted(c color.Color) bool {
	_, _, _, a := c.RGBA()
	if a < 0x8000 {
		return false
	}
	return color.GrayModel.Convert(c).(color.Gray).Y >= 0x80
}

// LoadSheet decodes a PNG or BMP font sheet from fs.
func LoadSheet(fs afero.Fs, path string) (*Sheet, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open font sheet: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return NewSheet(img)
}

// Glyph returns the glyph cut for c.
func (s *Sheet) Glyph(c byte) *Glyph {
	return &s.glyphs[c]
}
