package loaders

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

// ImageLoader decodes PNG, JPEG, GIF, BMP, TIFF and WebP files into tightly
// packed RGBA8 pixels.
type ImageLoader struct {
	// ResourcePath prefixes relative image paths when set.
	ResourcePath string
	Params       metadata.ImageParams
}

func NewImageLoader(resourcePath string, params metadata.ImageParams) *ImageLoader {
	return &ImageLoader{ResourcePath: resourcePath, Params: params}
}

// Decode implements renderer.ImageDecoder.
func (il *ImageLoader) Decode(path string) (*metadata.ImageData, error) {
	if il.ResourcePath != "" && !filepath.IsAbs(path) {
		path = filepath.Join(il.ResourcePath, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	data := toImageData(src, il.Params.FlipY)
	if data.Width == 0 || data.Height == 0 {
		return nil, fmt.Errorf("image %s (%s) has no pixels", path, format)
	}
	return data, nil
}

// toImageData converts any decoded image to RGBA8 with rows starting at the
// origin of the source bounds.
func toImageData(src image.Image, flipY bool) *metadata.ImageData {
	bounds := src.Bounds()
	rgba, ok := src.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) || rgba.Stride != 4*bounds.Dx() {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)
	}

	width, height := rgba.Rect.Dx(), rgba.Rect.Dy()
	pixels := make([]uint8, len(rgba.Pix))
	if flipY {
		stride := width * 4
		for y := 0; y < height; y++ {
			copy(pixels[y*stride:(y+1)*stride], rgba.Pix[(height-1-y)*stride:(height-y)*stride])
		}
	} else {
		copy(pixels, rgba.Pix)
	}

	return &metadata.ImageData{
		ChannelCount: 4,
		Width:        uint32(width),
		Height:       uint32(height),
		Pixels:       pixels,
	}
}
