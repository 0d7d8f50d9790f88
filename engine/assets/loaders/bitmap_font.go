package loaders

import (
	"fmt"
	"path/filepath"

	"github.com/fzipp/bmfont"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

// BitmapFontLoader reads AngelCode .fnt descriptions.
type BitmapFontLoader struct {
	// ResourcePath prefixes relative font paths when set.
	ResourcePath string
}

// LoadFont implements renderer.FontLoader. Page image paths are resolved
// against the directory of the .fnt file so they can go straight to the
// texture cache.
func (fl *BitmapFontLoader) LoadFont(path string) (*metadata.BitmapFont, error) {
	fullPath := path
	if fl.ResourcePath != "" && !filepath.IsAbs(path) {
		fullPath = filepath.Join(fl.ResourcePath, path)
	}
	if filepath.Ext(fullPath) != ".fnt" {
		return nil, fmt.Errorf("unsupported bitmap font file '%s'", fullPath)
	}

	font, err := bmfont.Load(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load bitmap font '%s': %w", fullPath, err)
	}

	d := font.Descriptor
	dir := filepath.Dir(fullPath)
	out := &metadata.BitmapFont{
		Face:        d.Info.Face,
		Size:        uint32(d.Info.Size),
		LineHeight:  int32(d.Common.LineHeight),
		Baseline:    int32(d.Common.Base),
		AtlasWidth:  int32(d.Common.ScaleW),
		AtlasHeight: int32(d.Common.ScaleH),
		Glyphs:      make(map[rune]metadata.FontGlyph, len(d.Chars)),
		Kernings:    make(map[metadata.FontKerning]int16, len(d.Kerning)),
		Pages:       make([]metadata.BitmapFontPage, 0, len(d.Pages)),
	}

	for _, p := range d.Pages {
		out.Pages = append(out.Pages, metadata.BitmapFontPage{
			ID:   int8(p.ID),
			File: filepath.Join(dir, p.File),
		})
	}

	for _, g := range d.Chars {
		out.Glyphs[g.ID] = metadata.FontGlyph{
			Codepoint: g.ID,
			X:         uint16(g.X),
			Y:         uint16(g.Y),
			Width:     uint16(g.Width),
			Height:    uint16(g.Height),
			XOffset:   int16(g.XOffset),
			YOffset:   int16(g.YOffset),
			XAdvance:  int16(g.XAdvance),
			PageID:    uint8(g.Page),
		}
	}

	for p, k := range d.Kerning {
		out.Kernings[metadata.FontKerning{Codepoint0: p.First, Codepoint1: p.Second}] = int16(k.Amount)
	}
	return out, nil
}
