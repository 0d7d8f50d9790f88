package renderer

import (
	"sort"

	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/math"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

var _ core.DrawContext = (*Renderer)(nil)

type textPage struct {
	id       uint8
	vertices []math.Vertex2D
	indices  []uint32
}

// layoutText builds glyph quads for text, grouped by atlas page so each page
// becomes a single draw. Pages are returned in ascending id order.
func layoutText(font *metadata.BitmapFont, text string, lineHeight float32, tint math.Vec4) []*textPage {
	if font.LineHeight <= 0 || font.AtlasWidth <= 0 || font.AtlasHeight <= 0 {
		return nil
	}
	scale := lineHeight / float32(font.LineHeight)
	atlasW := float32(font.AtlasWidth)
	atlasH := float32(font.AtlasHeight)

	pages := map[uint8]*textPage{}
	var penX, lineTop float32
	prev := rune(-1)

	for _, cp := range text {
		switch cp {
		case '\n':
			penX = 0
			lineTop -= lineHeight
			prev = -1
			continue
		case '\r':
			continue
		}
		g, ok := font.Glyphs[cp]
		if !ok {
			// fall back to the space advance for unknown codepoints
			if space, ok := font.Glyphs[' ']; ok {
				penX += float32(space.XAdvance) * scale
			}
			prev = -1
			continue
		}
		if prev >= 0 {
			penX += float32(font.Kerning(prev, cp)) * scale
		}

		if g.Width > 0 && g.Height > 0 {
			x0 := penX + float32(g.XOffset)*scale
			x1 := x0 + float32(g.Width)*scale
			y0 := lineTop - float32(g.YOffset)*scale
			y1 := y0 - float32(g.Height)*scale

			u0 := float32(g.X) / atlasW
			v0 := float32(g.Y) / atlasH
			u1 := float32(g.X+g.Width) / atlasW
			v1 := float32(g.Y+g.Height) / atlasH

			p, ok := pages[g.PageID]
			if !ok {
				p = &textPage{id: g.PageID}
				pages[g.PageID] = p
			}
			base := uint32(len(p.vertices))
			p.vertices = append(p.vertices,
				math.Vertex2D{Position: math.Vec2{X: x0, Y: y1}, Texcoord: math.Vec2{X: u0, Y: v1}, Colour: tint},
				math.Vertex2D{Position: math.Vec2{X: x1, Y: y1}, Texcoord: math.Vec2{X: u1, Y: v1}, Colour: tint},
				math.Vertex2D{Position: math.Vec2{X: x1, Y: y0}, Texcoord: math.Vec2{X: u1, Y: v0}, Colour: tint},
				math.Vertex2D{Position: math.Vec2{X: x0, Y: y0}, Texcoord: math.Vec2{X: u0, Y: v0}, Colour: tint},
			)
			for _, i := range quadIndices {
				p.indices = append(p.indices, base+i)
			}
		}
		penX += float32(g.XAdvance) * scale
		prev = cp
	}

	out := make([]*textPage, 0, len(pages))
	for _, p := range pages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// MeasureText returns the width and height of text in world units.
func MeasureText(font *metadata.BitmapFont, text string, lineHeight float32) (float32, float32) {
	if font.LineHeight <= 0 {
		return 0, 0
	}
	scale := lineHeight / float32(font.LineHeight)
	var width, line float32
	lines := 1
	prev := rune(-1)
	for _, cp := range text {
		if cp == '\n' {
			width = math.Max(width, line)
			line = 0
			lines++
			prev = -1
			continue
		}
		g, ok := font.Glyphs[cp]
		if !ok {
			prev = -1
			continue
		}
		if prev >= 0 {
			line += float32(font.Kerning(prev, cp)) * scale
		}
		line += float32(g.XAdvance) * scale
		prev = cp
	}
	return math.Max(width, line), float32(lines) * lineHeight
}
