package metadata

type FontGlyph struct {
	Codepoint rune
	X         uint16
	Y         uint16
	Width     uint16
	Height    uint16
	XOffset   int16
	YOffset   int16
	XAdvance  int16
	PageID    uint8
}

type FontKerning struct {
	Codepoint0 rune
	Codepoint1 rune
}

type BitmapFontPage struct {
	ID int8
	// File is the page image path, already joined with the font directory
	File string
}

// BitmapFont is an AngelCode bitmap font description. Pixel units.
type BitmapFont struct {
	Face        string
	Size        uint32
	LineHeight  int32
	Baseline    int32
	AtlasWidth  int32
	AtlasHeight int32
	Glyphs      map[rune]FontGlyph
	Kernings    map[FontKerning]int16
	Pages       []BitmapFontPage
}

// Kerning returns the advance adjustment between two codepoints.
func (f *BitmapFont) Kerning(a, b rune) int16 {
	if f.Kernings == nil {
		return 0
	}
	return f.Kernings[FontKerning{Codepoint0: a, Codepoint1: b}]
}

// PageFile returns the image path of the page with the given id.
func (f *BitmapFont) PageFile(id uint8) (string, bool) {
	for _, p := range f.Pages {
		if int(p.ID) == int(id) {
			return p.File, true
		}
	}
	return "", false
}
