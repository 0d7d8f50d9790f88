package renderer

import (
	"testing"

	"github.com/spaghettifunk/tessera/engine/math"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

func testFont() *metadata.BitmapFont {
	return &metadata.BitmapFont{
		Face:        "test",
		LineHeight:  10,
		AtlasWidth:  100,
		AtlasHeight: 100,
		Glyphs: map[rune]metadata.FontGlyph{
			'A': {Codepoint: 'A', X: 0, Y: 0, Width: 8, Height: 10, XAdvance: 9},
			'V': {Codepoint: 'V', X: 10, Y: 0, Width: 8, Height: 10, XAdvance: 9},
			' ': {Codepoint: ' ', XAdvance: 4},
			'b': {Codepoint: 'b', X: 20, Y: 0, Width: 8, Height: 10, XAdvance: 9, PageID: 1},
		},
		Kernings: map[metadata.FontKerning]int16{
			{Codepoint0: 'A', Codepoint1: 'V'}: -2,
		},
		Pages: []metadata.BitmapFontPage{
			{ID: 0, File: "fonts/test_0.png"},
			{ID: 1, File: "fonts/test_1.png"},
		},
	}
}

func TestLayoutTextKerningAndSpaces(t *testing.T) {
	pages := layoutText(testFont(), "A V", 10, math.NewVec4One())
	if len(pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(pages))
	}
	p := pages[0]
	if len(p.vertices) != 8 || len(p.indices) != 12 {
		t.Fatalf("vertices/indices = %d/%d, want 8/12", len(p.vertices), len(p.indices))
	}
	// V starts after A (9) and the space (4); no kerning across the space
	if x := p.vertices[4].Position.X; !math.NearlyEqual(x, 13, 1e-5) {
		t.Errorf("V starts at x=%f, want 13", x)
	}

	pages = layoutText(testFont(), "AV", 10, math.NewVec4One())
	if x := pages[0].vertices[4].Position.X; !math.NearlyEqual(x, 7, 1e-5) {
		t.Errorf("kerned V starts at x=%f, want 7", x)
	}
}

func TestLayoutTextScalesAndBreaksLines(t *testing.T) {
	pages := layoutText(testFont(), "A\nA", 20, math.NewVec4One())
	v := pages[0].vertices
	if w := v[1].Position.X - v[0].Position.X; !math.NearlyEqual(w, 16, 1e-5) {
		t.Errorf("glyph width = %f, want 16 at double scale", w)
	}
	if y := v[7].Position.Y; !math.NearlyEqual(y, -20, 1e-5) {
		t.Errorf("second line top = %f, want -20", y)
	}
	if x := v[4].Position.X; x != 0 {
		t.Errorf("second line starts at x=%f, want 0", x)
	}
}

func TestLayoutTextGroupsPages(t *testing.T) {
	pages := layoutText(testFont(), "AbA", 10, math.NewVec4One())
	if len(pages) != 2 || pages[0].id != 0 || pages[1].id != 1 {
		t.Fatalf("pages = %d, want page 0 then page 1", len(pages))
	}
	if len(pages[0].vertices) != 8 || len(pages[1].vertices) != 4 {
		t.Errorf("page sizes = %d/%d, want 8/4", len(pages[0].vertices), len(pages[1].vertices))
	}
}

func TestMeasureText(t *testing.T) {
	w, h := MeasureText(testFont(), "AV\nA", 10)
	if !math.NearlyEqual(w, 16, 1e-5) || !math.NearlyEqual(h, 20, 1e-5) {
		t.Errorf("MeasureText = %fx%f, want 16x20", w, h)
	}
}

func TestDrawTextUsesPageTextures(t *testing.T) {
	b := newFakeBackend()
	d := newFakeDecoder()
	fonts := &fakeFonts{font: testFont()}
	r, err := NewRenderer(b, RendererConfig{Decoder: d, Fonts: fonts})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	r.BeginFrame()
	for i := 0; i < 2; i++ {
		if err := r.DrawText("fonts/test.fnt", "Ab", 10, math.NewMat4Identity(), math.NewVec4One()); err != nil {
			t.Fatalf("DrawText: %v", err)
		}
	}
	r.EndFrame()

	if fonts.loads != 1 {
		t.Errorf("font loaded %d times, want 1", fonts.loads)
	}
	if d.decodes["fonts/test_0.png"] != 1 || d.decodes["fonts/test_1.png"] != 1 {
		t.Errorf("page decodes = %v, want each page once", d.decodes)
	}
	if len(b.draws) != 4 {
		t.Errorf("draws = %d, want one per page per string", len(b.draws))
	}
}
