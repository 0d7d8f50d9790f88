package loaders

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

func writeTestImage(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{G: 255, A: 255})
	img.Set(0, 1, color.NRGBA{B: 255, A: 255})
	img.Set(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	switch filepath.Ext(name) {
	case ".bmp":
		err = bmp.Encode(f, img)
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImageLoaderDecodesRGBA(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"quad.png", "quad.bmp"} {
		t.Run(name, func(t *testing.T) {
			data, err := NewImageLoader("", metadata.ImageParams{}).Decode(writeTestImage(t, dir, name))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if data.Width != 2 || data.Height != 2 || data.ChannelCount != 4 {
				t.Fatalf("decoded %dx%d with %d channels, want 2x2x4", data.Width, data.Height, data.ChannelCount)
			}
			if len(data.Pixels) != 16 {
				t.Fatalf("pixels = %d bytes, want 16", len(data.Pixels))
			}
			// top left pixel is red, top right green
			if data.Pixels[0] != 255 || data.Pixels[1] != 0 || data.Pixels[3] != 255 {
				t.Errorf("pixel 0 = %v, want opaque red", data.Pixels[0:4])
			}
			if data.Pixels[5] != 255 || data.Pixels[4] != 0 {
				t.Errorf("pixel 1 = %v, want opaque green", data.Pixels[4:8])
			}
		})
	}
}

func TestImageLoaderFlipY(t *testing.T) {
	path := writeTestImage(t, t.TempDir(), "quad.png")
	data, err := NewImageLoader("", metadata.ImageParams{FlipY: true}).Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	// the blue pixel of the bottom row comes first
	if data.Pixels[2] != 255 || data.Pixels[0] != 0 {
		t.Errorf("first pixel = %v, want blue", data.Pixels[0:4])
	}
}

func TestImageLoaderResourcePath(t *testing.T) {
	dir := t.TempDir()
	writeTestImage(t, dir, "quad.png")
	data, err := NewImageLoader(dir, metadata.ImageParams{}).Decode("quad.png")
	if err != nil {
		t.Fatalf("Decode relative to the resource path: %v", err)
	}
	if data.Width != 2 || data.Height != 2 {
		t.Errorf("size = %dx%d, want 2x2", data.Width, data.Height)
	}
}

func TestImageLoaderErrors(t *testing.T) {
	dir := t.TempDir()
	il := NewImageLoader("", metadata.ImageParams{})
	if _, err := il.Decode(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("Decode of a missing file should fail")
	}
	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := il.Decode(garbage); err == nil {
		t.Error("Decode of a corrupt file should fail")
	}
}

func TestParseSPIRV(t *testing.T) {
	header := []byte{0x03, 0x02, 0x23, 0x07, 0, 0, 1, 0, 0, 0, 0, 0, 8, 0, 0, 0, 0, 0, 0, 0}
	code, err := ParseSPIRV("ok", header)
	if err != nil {
		t.Fatalf("ParseSPIRV: %v", err)
	}
	if len(code) != 5 || code[0] != spirvMagic || code[1] != 0x00010000 {
		t.Errorf("code = %x", code)
	}

	if _, err := ParseSPIRV("short", header[:19]); err == nil {
		t.Error("misaligned module should be rejected")
	}
	bad := append([]byte(nil), header...)
	bad[0] = 0xff
	if _, err := ParseSPIRV("magic", bad); err == nil {
		t.Error("wrong magic should be rejected")
	}
}

func TestShaderLoaderPath(t *testing.T) {
	sl := &ShaderLoader{Dir: "assets/shaders"}
	if got := sl.Path("sprite", ShaderStageVertex); got != filepath.Join("assets", "shaders", "sprite.vert.spv") {
		t.Errorf("Path = %s", got)
	}
	if _, err := sl.Load("does-not-exist", ShaderStageFragment); err == nil {
		t.Error("Load of a missing module should fail")
	}
}

const testFont = `info face="Test" size=16 bold=0 italic=0 charset="" unicode=1 stretchH=100 smooth=1 aa=1 padding=0,0,0,0 spacing=1,1 outline=0
common lineHeight=18 base=14 scaleW=2 scaleH=2 pages=1 packed=0 alphaChnl=0 redChnl=4 greenChnl=4 blueChnl=4
page id=0 file="test_0.png"
chars count=2
char id=65   x=0     y=0     width=1     height=1     xoffset=0     yoffset=3     xadvance=9     page=0  chnl=15
char id=86   x=1     y=0     width=1     height=1     xoffset=1     yoffset=3     xadvance=8     page=0  chnl=15
kernings count=1
kerning first=65  second=86  amount=-2
`

func TestBitmapFontLoader(t *testing.T) {
	dir := t.TempDir()
	writeTestImage(t, dir, "test_0.png")
	if err := os.WriteFile(filepath.Join(dir, "test.fnt"), []byte(testFont), 0o644); err != nil {
		t.Fatal(err)
	}

	fl := &BitmapFontLoader{ResourcePath: dir}
	font, err := fl.LoadFont("test.fnt")
	if err != nil {
		t.Fatalf("LoadFont: %v", err)
	}
	if font.Face != "Test" || font.LineHeight != 18 || font.Baseline != 14 {
		t.Errorf("font = %s line %d base %d", font.Face, font.LineHeight, font.Baseline)
	}
	if len(font.Glyphs) != 2 || font.Glyphs['A'].XAdvance != 9 || font.Glyphs['V'].XOffset != 1 {
		t.Errorf("glyphs = %+v", font.Glyphs)
	}
	if k := font.Kerning('A', 'V'); k != -2 {
		t.Errorf("Kerning(A, V) = %d, want -2", k)
	}
	file, ok := font.PageFile(0)
	if !ok || file != filepath.Join(dir, "test_0.png") {
		t.Errorf("PageFile(0) = %q, %v", file, ok)
	}

	if _, err := fl.LoadFont("test.ttf"); err == nil {
		t.Error("non .fnt font should be rejected")
	}
}
